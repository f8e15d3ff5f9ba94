// Package layout draws the frame every screen is rendered inside.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/parlo/internal/ui/theme"
)

// Smallest terminal the chat stays readable in.
const (
	MinWidth  = 60
	MinHeight = 16
)

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// DefaultHints is the footer used when a screen has none of its own.
var DefaultHints = []KeyHint{{Key: "Ctrl+C", Description: "Quit"}}

// IsTooSmall reports whether the terminal is below the minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the learner to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf("Terminal too small\n\nResize to at least %d x %d\n(now %d x %d)",
			MinWidth, MinHeight, width, height))
}

// Frame is the chrome around a screen: a header with the app name, screen
// title and status, and a footer of key hints.
type Frame struct {
	Title  string
	Status string
	Hints  []KeyHint
}

// Render draws the frame at the given size. body is called with the space
// left between header and footer.
func (f Frame) Render(width, height int, body func(width, height int) string) string {
	header := f.header(width)
	footer := f.footer(width)

	bodyHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := lipgloss.NewStyle().
		Width(width).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(body(width, bodyHeight))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (f Frame) header(width int) string {
	name := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Parlo")
	title := lipgloss.NewStyle().Foreground(theme.Text).Render(f.Title)
	status := lipgloss.NewStyle().Foreground(theme.Accent).Render(f.Status)

	// Title is centred; status hugs the right edge.
	inner := max(width-4, 0)
	nameW, titleW, statusW := lipgloss.Width(name), lipgloss.Width(title), lipgloss.Width(status)
	gapL := max((inner-titleW)/2-nameW, 1)
	gapR := max(inner-nameW-gapL-titleW-statusW, 1)

	line := name + strings.Repeat(" ", gapL) + title + strings.Repeat(" ", gapR) + status
	return bar(width).Render(line)
}

func (f Frame) footer(width int) string {
	hints := f.Hints
	if len(hints) == 0 {
		hints = DefaultHints
	}
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key) + " " + desc.Render(h.Description)
	}
	return bar(width).Render(strings.Join(parts, "   "))
}

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}
