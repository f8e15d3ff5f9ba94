// Package setup is the form where the learner picks languages, level and
// scenario before a conversation starts.
package setup

import (
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/parlo/internal/router"
	"github.com/abhisek/parlo/internal/scenario"
	"github.com/abhisek/parlo/internal/screen"
	"github.com/abhisek/parlo/internal/tutor"
	"github.com/abhisek/parlo/internal/ui/components"
	"github.com/abhisek/parlo/internal/ui/layout"
	"github.com/abhisek/parlo/internal/ui/theme"
)

// StartFunc builds the conversation screen for a validated profile.
type StartFunc func(p tutor.Profile) screen.Screen

const (
	fieldNative = iota
	fieldLearning
	fieldLevel
	fieldScenario
	fieldCount
)

// SetupScreen collects the learner profile.
type SetupScreen struct {
	catalog  []scenario.Scenario
	start    StartFunc
	history  func() screen.Screen
	native   components.TextInput
	learning components.TextInput
	level    components.Choice
	scene    components.Choice
	focus    int
	errMsg   string
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)

// New creates the setup form. history may be nil.
func New(catalog *scenario.Catalog, start StartFunc, history func() screen.Screen) *SetupScreen {
	scenes := catalog.All()
	titles := make([]string, len(scenes))
	for i, sc := range scenes {
		titles[i] = sc.Description
	}

	levels := make([]string, len(tutor.Levels))
	for i, l := range tutor.Levels {
		levels[i] = l.Title()
	}

	return &SetupScreen{
		catalog:  scenes,
		start:    start,
		history:  history,
		native:   components.NewTextInput("Your native language", "e.g. English", 40),
		learning: components.NewTextInput("Language you want to practise", "e.g. Spanish", 40),
		level:    components.NewChoice("Proficiency level", levels),
		scene:    components.NewChoice("Scenario", titles),
	}
}

func (s *SetupScreen) Init() tea.Cmd {
	return s.setFocus(fieldNative)
}

// Resume restores the cursor when returning from past sessions.
func (s *SetupScreen) Resume() tea.Cmd {
	return s.setFocus(s.focus)
}

func (s *SetupScreen) Title() string {
	return "New Conversation"
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Start"},
	}
	if s.history != nil {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+P", Description: "Past sessions"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// Profile returns the profile the form currently describes.
func (s *SetupScreen) Profile() tutor.Profile {
	p := tutor.Profile{
		NativeLanguage:   s.native.Value(),
		LearningLanguage: s.learning.Value(),
	}
	if s.level.Selected < len(tutor.Levels) {
		p.Level = tutor.Levels[s.level.Selected]
	}
	if s.scene.Selected < len(s.catalog) {
		p.Scenario = s.catalog[s.scene.Selected].Description
	}
	return p
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "tab", "down":
			if kmsg.String() == "tab" || s.focus < fieldLevel {
				return s, s.setFocus((s.focus + 1) % fieldCount)
			}
		case "shift+tab", "up":
			if kmsg.String() == "shift+tab" || s.focus < fieldLevel {
				return s, s.setFocus((s.focus + fieldCount - 1) % fieldCount)
			}
		case "ctrl+p":
			if s.history != nil {
				next := s.history()
				return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			}
			return s, nil
		case "enter":
			return s.submit()
		}
	}

	var cmd tea.Cmd
	switch s.focus {
	case fieldNative:
		s.native, cmd = s.native.Update(msg)
	case fieldLearning:
		s.learning, cmd = s.learning.Update(msg)
	case fieldLevel:
		s.level, cmd = s.level.Update(msg)
	case fieldScenario:
		s.scene, cmd = s.scene.Update(msg)
	}
	return s, cmd
}

func (s *SetupScreen) submit() (screen.Screen, tea.Cmd) {
	p := s.Profile()
	if err := p.Validate(); err != nil {
		s.errMsg = err.Error()
		var cfgErr *tutor.ConfigurationError
		if errors.As(err, &cfgErr) {
			s.errMsg = cfgErr.Reason
		}
		return s, nil
	}
	s.errMsg = ""
	next := s.start(p)
	return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (s *SetupScreen) setFocus(field int) tea.Cmd {
	s.focus = field
	s.native.Blur()
	s.learning.Blur()
	s.level.Blur()
	s.scene.Blur()

	switch field {
	case fieldNative:
		return s.native.Focus()
	case fieldLearning:
		return s.learning.Focus()
	case fieldLevel:
		s.level.Focus()
	case fieldScenario:
		s.scene.Focus()
	}
	return nil
}

func (s *SetupScreen) View(width, height int) string {
	formWidth := min(width-8, 64)

	var b strings.Builder
	b.WriteString(theme.Title.Width(formWidth).Render("Practise a conversation"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(formWidth).Render("Your tutor will correct mistakes as you chat."))
	b.WriteString("\n\n")

	b.WriteString(s.native.View())
	b.WriteString("\n\n")
	b.WriteString(s.learning.View())
	b.WriteString("\n\n")
	b.WriteString(s.level.View())
	b.WriteString("\n")
	b.WriteString(s.scene.View())

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	}

	form := lipgloss.NewStyle().Width(formWidth).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, form)
}
