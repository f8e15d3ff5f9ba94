package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/parlo/internal/ui/theme"
)

// ShareBar shows Count as a share of Total with a fixed-width label column.
type ShareBar struct {
	Label      string
	LabelWidth int
	Count      int
	Total      int
	Width      int
}

// View renders the bar.
func (b ShareBar) View() string {
	label := lipgloss.NewStyle().
		Foreground(theme.Text).
		Width(b.LabelWidth).
		Render(b.Label)
	countStr := fmt.Sprintf("  %d", b.Count)

	barWidth := b.Width - lipgloss.Width(label) - len(countStr) - 2
	if barWidth < 4 {
		barWidth = 4
	}

	filled := 0
	if b.Total > 0 {
		filled = barWidth * b.Count / b.Total
	}
	filled = max(0, min(filled, barWidth))

	return label + "  " +
		theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled)) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(countStr)
}
