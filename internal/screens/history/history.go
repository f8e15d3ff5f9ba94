package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/parlo/internal/router"
	"github.com/abhisek/parlo/internal/screen"
	"github.com/abhisek/parlo/internal/store"
	"github.com/abhisek/parlo/internal/ui/components"
	"github.com/abhisek/parlo/internal/ui/layout"
	"github.com/abhisek/parlo/internal/ui/theme"
)

const listLimit = 50

type historyLoadedMsg struct {
	Sessions []store.SessionRecord
	Counts   map[int64][]store.TypeCount
	Err      error
}

// HistoryScreen displays past sessions and their mistake breakdown.
type HistoryScreen struct {
	repo     store.SessionRepo
	sessions []store.SessionRecord
	counts   map[int64][]store.TypeCount
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo store.SessionRepo) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		sessions, err := s.repo.ListSessions(ctx, store.QueryOpts{Limit: listLimit})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		counts := make(map[int64][]store.TypeCount, len(sessions))
		for _, sess := range sessions {
			c, err := s.repo.CountMistakes(ctx, sess.ID)
			if err != nil {
				return historyLoadedMsg{Err: err}
			}
			counts[sess.ID] = c
		}
		return historyLoadedMsg{Sessions: sessions, Counts: counts}
	}
}

func (s *HistoryScreen) Title() string {
	return "Past Sessions"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
			s.counts = msg.Counts
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading sessions...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Start a conversation!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		counts := s.counts[sess.ID]
		total := 0
		for _, c := range counts {
			total += c.Count
		}

		duration := "in progress"
		if sess.Ended() {
			d := sess.EndTime.Sub(sess.StartTime)
			duration = fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %-12s %-12s %-11s %d mistake%s",
			prefix,
			sess.StartTime.Local().Format("Jan 02 15:04"),
			sess.LearningLanguage,
			sess.ProficiencyLevel,
			duration,
			total, plural(total))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(renderBreakdown(counts, total, width))
		}
	}

	return b.String()
}

func renderBreakdown(counts []store.TypeCount, total, width int) string {
	if len(counts) == 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
				Render("    No mistakes this session")) + "\n"
	}

	var b strings.Builder
	for _, c := range counts {
		bar := components.ShareBar{
			Label:      "    " + c.MistakeType,
			LabelWidth: 18,
			Count:      c.Count,
			Total:      total,
			Width:      min(width-8, 60),
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
		b.WriteString("\n")
	}
	return b.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
