package summary

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/parlo/internal/router"
	"github.com/abhisek/parlo/internal/screen"
	"github.com/abhisek/parlo/internal/tutor"
)

type stubScreen struct{ title string }

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

func testMistakes() []tutor.Mistake {
	return []tutor.Mistake{
		{Original: "yo soy hambre", Corrected: "tengo hambre", Type: tutor.Grammar},
		{Original: "la problema", Corrected: "el problema", Type: tutor.Vocabulary},
	}
}

func testSummary() string {
	return tutor.RenderReport(testMistakes()) +
		"## Improvement Suggestions\n\n1. Review tener expressions.\n2. Learn noun genders with their articles."
}

func newTestScreen(history bool) (*SummaryScreen, *int) {
	restarts := 0
	actions := Actions{NewConversation: func() screen.Screen {
		restarts++
		return &stubScreen{title: "setup"}
	}}
	if history {
		actions.History = func() screen.Screen { return &stubScreen{title: "history"} }
	}
	return New(testSummary(), testMistakes(), actions), &restarts
}

func TestSummaryScreen_Title(t *testing.T) {
	s, _ := newTestScreen(false)
	if s.Title() != "Conversation Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Conversation Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s, _ := newTestScreen(true)
	view := s.View(100, 40)
	for _, want := range []string{"2 corrections", "Grammar (1)", "Improvement Suggestions", "Start a New Conversation", "Past sessions"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "## ") {
		t.Error("heading markers should be styled away")
	}
}

func TestSummaryScreen_NewConversation(t *testing.T) {
	s, restarts := newTestScreen(false)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	msg, ok := cmd().(router.ResetMsg)
	if !ok {
		t.Fatalf("expected ResetMsg, got %T", cmd())
	}
	if msg.Screen.Title() != "setup" || *restarts != 1 {
		t.Errorf("unexpected reset target %q (restarts=%d)", msg.Screen.Title(), *restarts)
	}
}

func TestSummaryScreen_History(t *testing.T) {
	s, _ := newTestScreen(true)
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	push, ok := cmd().(router.PushScreenMsg)
	if !ok || push.Screen.Title() != "history" {
		t.Fatalf("expected push to history, got %#v", cmd())
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s, _ := newTestScreen(false)
	if len(s.KeyHints()) != 3 {
		t.Errorf("KeyHints length = %d, want 3", len(s.KeyHints()))
	}
}

func TestSummaryScreen_NoMistakes(t *testing.T) {
	s := New(tutor.NoMistakesMessage, nil, Actions{NewConversation: func() screen.Screen { return &stubScreen{} }})
	view := s.View(100, 30)
	if !strings.Contains(view, "No corrections this time") {
		t.Error("expected zero-mistake line")
	}
}

func TestSummaryScreen_Shortcuts(t *testing.T) {
	s, _ := newTestScreen(true)
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'h', Text: "h"})
	if cmd == nil {
		t.Fatal("expected a command for the history shortcut")
	}
	if _, ok := cmd().(router.PushScreenMsg); !ok {
		t.Fatal("h should open past sessions")
	}
}
