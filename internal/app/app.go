package app

import (
	"fmt"
	"log/slog"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/abhisek/parlo/internal/llm"
	"github.com/abhisek/parlo/internal/router"
	"github.com/abhisek/parlo/internal/scenario"
	"github.com/abhisek/parlo/internal/screen"
	"github.com/abhisek/parlo/internal/screens/chat"
	"github.com/abhisek/parlo/internal/screens/history"
	"github.com/abhisek/parlo/internal/screens/setup"
	"github.com/abhisek/parlo/internal/screens/summary"
	"github.com/abhisek/parlo/internal/screens/welcome"
	"github.com/abhisek/parlo/internal/store"
	"github.com/abhisek/parlo/internal/tutor"
	"github.com/abhisek/parlo/internal/ui/layout"
)

// Options holds the dependencies the screens need.
type Options struct {
	Provider llm.Provider
	Sessions store.SessionRepo
	Catalog  *scenario.Catalog
	Tutor    tutor.Config
	Logger   *slog.Logger
	// SkipSplash starts directly on the setup form.
	SkipSplash bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts   Options
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel starting on the splash screen.
func newAppModel(opts Options) AppModel {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	m := AppModel{opts: opts}

	var first screen.Screen
	if opts.SkipSplash {
		first = m.newSetup()
	} else {
		first = welcome.New(m.newSetup)
	}
	m.router = router.New(first)
	return m
}

// newSetup builds a setup form bound to a fresh learner id. Every new
// conversation gets its own id.
func (m AppModel) newSetup() screen.Screen {
	userID := uuid.NewString()
	return setup.New(m.opts.Catalog, func(p tutor.Profile) screen.Screen {
		return m.newChat(userID, p)
	}, m.newHistory)
}

func (m AppModel) newChat(userID string, p tutor.Profile) screen.Screen {
	sess := tutor.NewSession(userID, m.opts.Provider, m.opts.Sessions, m.opts.Tutor,
		tutor.WithLogger(m.opts.Logger))
	return chat.New(sess, p, func(text string, mistakes []tutor.Mistake) screen.Screen {
		return summary.New(text, mistakes, summary.Actions{
			NewConversation: m.newSetup,
			History:         m.newHistory,
		})
	})
}

func (m AppModel) newHistory() screen.Screen {
	return history.New(m.opts.Sessions)
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	frame := layout.Frame{}
	if active := m.router.Active(); active != nil {
		frame.Title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			frame.Status = sp.Status()
		}
		if kp, ok := active.(screen.KeyHintProvider); ok {
			frame.Hints = kp.KeyHints()
		}
	}

	v.SetContent(frame.Render(m.width, m.height, m.router.View))
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
