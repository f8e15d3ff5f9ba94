package setup

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/parlo/internal/router"
	"github.com/abhisek/parlo/internal/scenario"
	"github.com/abhisek/parlo/internal/screen"
	"github.com/abhisek/parlo/internal/tutor"
)

type stubScreen struct{ title string }

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

func newTestSetup(t *testing.T) (*SetupScreen, *[]tutor.Profile) {
	t.Helper()
	catalog, err := scenario.Load("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	var started []tutor.Profile
	s := New(catalog, func(p tutor.Profile) screen.Screen {
		started = append(started, p)
		return &stubScreen{title: "chat"}
	}, func() screen.Screen { return &stubScreen{title: "history"} })
	s.Init()
	return s, &started
}

func typeText(s *SetupScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func press(s *SetupScreen, code rune) tea.Cmd {
	_, cmd := s.Update(tea.KeyPressMsg{Code: code})
	return cmd
}

func TestSetup_RequiresLanguages(t *testing.T) {
	s, started := newTestSetup(t)
	typeText(s, "English")

	if cmd := press(s, tea.KeyEnter); cmd != nil {
		t.Fatal("submit with a missing language should not navigate")
	}
	if len(*started) != 0 {
		t.Fatal("start should not be called")
	}
	if !strings.Contains(s.View(100, 40), "Please fill in all required fields") {
		t.Error("expected validation message")
	}
}

func TestSetup_SubmitBuildsProfile(t *testing.T) {
	s, started := newTestSetup(t)
	typeText(s, "English")
	press(s, tea.KeyTab)
	typeText(s, "Spanish")
	press(s, tea.KeyTab)
	press(s, tea.KeyDown) // intermediate
	press(s, tea.KeyTab)
	press(s, tea.KeyDown)
	press(s, tea.KeyDown) // shopping

	cmd := press(s, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("expected navigation")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok || push.Screen.Title() != "chat" {
		t.Fatalf("expected push to chat, got %#v", cmd())
	}

	want := tutor.Profile{
		NativeLanguage:   "English",
		LearningLanguage: "Spanish",
		Level:            tutor.LevelIntermediate,
		Scenario:         "Shopping for clothes at a store",
	}
	if len(*started) != 1 || (*started)[0] != want {
		t.Fatalf("started = %+v, want %+v", *started, want)
	}
	if strings.Contains(s.View(100, 40), "Please fill") {
		t.Error("validation message should clear on success")
	}
}

func TestSetup_TabWraps(t *testing.T) {
	s, _ := newTestSetup(t)
	for i := 0; i < fieldCount; i++ {
		press(s, tea.KeyTab)
	}
	if s.focus != fieldNative {
		t.Errorf("focus = %d, want %d after a full cycle", s.focus, fieldNative)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	if s.focus != fieldScenario {
		t.Errorf("shift+tab focus = %d, want %d", s.focus, fieldScenario)
	}
}

func TestSetup_History(t *testing.T) {
	s, _ := newTestSetup(t)
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'p', Mod: tea.ModCtrl})
	push, ok := cmd().(router.PushScreenMsg)
	if !ok || push.Screen.Title() != "history" {
		t.Fatalf("expected push to history, got %#v", cmd())
	}
}
