// Package screen defines what the router needs from a screen.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/parlo/internal/ui/layout"
)

// Screen is one full-window view of the app.
type Screen interface {
	// Init returns the command to run when the screen becomes active.
	Init() tea.Cmd

	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the area between header and footer.
	View(width, height int) string

	// Title is shown in the middle of the header.
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider lets a screen put a short status on the right of the
// header, such as the language being practised.
type StatusProvider interface {
	Status() string
}

// Resumer is implemented by screens that need to act when they become the
// top screen again after the one above them is closed.
type Resumer interface {
	Resume() tea.Cmd
}
