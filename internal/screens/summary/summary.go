// Package summary shows the end-of-conversation mistake report.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/parlo/internal/router"
	"github.com/abhisek/parlo/internal/screen"
	"github.com/abhisek/parlo/internal/tutor"
	"github.com/abhisek/parlo/internal/ui/components"
	"github.com/abhisek/parlo/internal/ui/layout"
	"github.com/abhisek/parlo/internal/ui/theme"
)

// Actions are the follow-ups offered under the summary. History may be nil.
type Actions struct {
	NewConversation func() screen.Screen
	History         func() screen.Screen
}

// SummaryScreen displays the session summary.
type SummaryScreen struct {
	summary  string
	mistakes []tutor.Mistake
	menu     components.Menu
	scroll   int
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(summary string, mistakes []tutor.Mistake, actions Actions) *SummaryScreen {
	items := []components.MenuItem{{
		Label:    "Start a New Conversation",
		Shortcut: "n",
		Action: func() tea.Cmd {
			next := actions.NewConversation()
			return func() tea.Msg { return router.ResetMsg{Screen: next} }
		},
	}}
	if actions.History != nil {
		items = append(items, components.MenuItem{
			Label:    "Past sessions",
			Shortcut: "h",
			Action: func() tea.Cmd {
				next := actions.History()
				return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			},
		})
	}
	items = append(items, components.MenuItem{Label: "Quit", Shortcut: "q", Action: func() tea.Cmd { return tea.Quit }})

	return &SummaryScreen{
		summary:  summary,
		mistakes: mistakes,
		menu:     components.NewMenu(items),
	}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Conversation Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "Enter", Description: "Select"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "pgup":
			s.scroll = max(0, s.scroll-5)
			return s, nil
		case "pgdown":
			s.scroll += 5
			return s, nil
		}
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *SummaryScreen) View(width, height int) string {
	inner := min(width-8, 90)

	heading := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Conversation complete!")
	count := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(mistakeCountLine(len(s.mistakes)))
	menu := lipgloss.PlaceHorizontal(width, lipgloss.Center, s.menu.View())

	top := heading + "\n" + count + "\n"
	bodyHeight := max(height-lipgloss.Height(top)-lipgloss.Height(menu)-1, 1)

	lines := strings.Split(renderSummary(s.summary, inner), "\n")
	s.scroll = min(s.scroll, max(len(lines)-bodyHeight, 0))
	end := min(s.scroll+bodyHeight, len(lines))
	body := lipgloss.NewStyle().
		Height(bodyHeight).
		Render(strings.Join(lines[s.scroll:end], "\n"))

	return top + lipgloss.PlaceHorizontal(width, lipgloss.Center, body) + "\n" + menu
}

func mistakeCountLine(n int) string {
	switch n {
	case 0:
		return "No corrections this time"
	case 1:
		return "1 correction"
	}
	return fmt.Sprintf("%d corrections", n)
}

// renderSummary styles the report's "## " headings and wraps the rest.
func renderSummary(summary string, width int) string {
	body := lipgloss.NewStyle().Foreground(theme.Text).Width(width)
	heading := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	var out []string
	for _, line := range strings.Split(summary, "\n") {
		if title, ok := strings.CutPrefix(line, "## "); ok {
			out = append(out, heading.Render(title))
			continue
		}
		out = append(out, body.Render(line))
	}
	return strings.Join(out, "\n")
}
