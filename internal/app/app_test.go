package app

import (
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/parlo/internal/llm"
	"github.com/abhisek/parlo/internal/scenario"
	"github.com/abhisek/parlo/internal/screens/chat"
	"github.com/abhisek/parlo/internal/screens/setup"
	"github.com/abhisek/parlo/internal/store"
	"github.com/abhisek/parlo/internal/tutor"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "parlo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	catalog, err := scenario.Load("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return Options{
		Provider:   llm.NewMockProvider(),
		Sessions:   st.SessionRepo(),
		Catalog:    catalog,
		Tutor:      tutor.DefaultConfig(),
		SkipSplash: true,
	}
}

func TestAppStartsOnSetup(t *testing.T) {
	m := newAppModel(testOptions(t))
	if _, ok := m.router.Active().(*setup.SetupScreen); !ok {
		t.Fatalf("active screen = %T, want setup", m.router.Active())
	}
}

func TestAppRendersActiveScreen(t *testing.T) {
	m := newAppModel(testOptions(t))
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	am := updated.(AppModel)
	if am.width != 100 || am.height != 40 {
		t.Fatalf("size = %dx%d", am.width, am.height)
	}
	am.View()
	if !strings.Contains(am.router.View(100, 30), "Practise a conversation") {
		t.Error("expected the setup form")
	}
}

func TestNewChatUsesSetupUserID(t *testing.T) {
	m := newAppModel(testOptions(t))
	p := tutor.Profile{NativeLanguage: "English", LearningLanguage: "German", Level: tutor.LevelBeginner, Scenario: "Job interview practice"}
	c := m.newChat("learner-42", p)
	if _, ok := c.(*chat.ChatScreen); !ok {
		t.Fatalf("newChat returned %T", c)
	}
	if c.Title() != "Job interview practice" {
		t.Errorf("Title = %q", c.Title())
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := newAppModel(testOptions(t))
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected QuitMsg, got %T", cmd())
	}
}
