// Package chat is the conversation screen.
package chat

import (
	"context"
	"errors"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/parlo/internal/router"
	"github.com/abhisek/parlo/internal/screen"
	"github.com/abhisek/parlo/internal/tutor"
	"github.com/abhisek/parlo/internal/ui/components"
	"github.com/abhisek/parlo/internal/ui/layout"
)

// EndedFunc builds the screen shown once the session has a summary.
type EndedFunc func(summary string, mistakes []tutor.Mistake) screen.Screen

// phase is what the screen is waiting on.
type phase int

const (
	phaseOpening phase = iota
	phaseIdle
	phaseReplying
	phaseEnding
)

// ChatScreen drives one tutor.Session.
type ChatScreen struct {
	sess    *tutor.Session
	profile tutor.Profile
	onEnded EndedFunc

	input       components.TextInput
	spinner     spinner.Model
	phase       phase
	confirmQuit bool
	openFailed  bool
	errMsg      string
	scroll      int // lines scrolled up from the bottom
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)

// New creates a chat screen that begins sess with p on Init.
func New(sess *tutor.Session, p tutor.Profile, onEnded EndedFunc) *ChatScreen {
	return &ChatScreen{
		sess:    sess,
		profile: p,
		onEnded: onEnded,
		input:   components.NewTextInput("", "Type your message...", 500),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (c *ChatScreen) Init() tea.Cmd {
	return tea.Batch(c.begin(), c.spinner.Tick, c.input.Focus())
}

func (c *ChatScreen) Title() string {
	return c.profile.Scenario
}

// Status is shown on the right of the header.
func (c *ChatScreen) Status() string {
	return c.profile.LearningLanguage + " · " + c.profile.Level.Title()
}

func (c *ChatScreen) KeyHints() []layout.KeyHint {
	switch {
	case c.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "End & summarise"},
			{Key: "N", Description: "Keep going"},
			{Key: "L", Description: "Leave without summary"},
		}
	case c.openFailed:
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Ctrl+E", Description: "End conversation"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (c *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case openedMsg:
		return c.handleOpened(msg)
	case replyMsg:
		return c.handleReply(msg)
	case endedMsg:
		return c.handleEnded(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return c, cmd
	case tea.KeyMsg:
		return c.handleKey(msg)
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *ChatScreen) handleOpened(msg openedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		c.openFailed = true
		c.errMsg = describe(msg.Err)
		return c, nil
	}
	c.openFailed = false
	c.errMsg = ""
	c.phase = phaseIdle
	return c, nil
}

func (c *ChatScreen) handleReply(msg replyMsg) (screen.Screen, tea.Cmd) {
	c.phase = phaseIdle
	if msg.Err != nil {
		c.errMsg = describe(msg.Err)
		return c, nil
	}
	c.errMsg = ""
	c.scroll = 0
	return c, nil
}

func (c *ChatScreen) handleEnded(msg endedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		c.phase = phaseIdle
		c.errMsg = describe(msg.Err)
		return c, nil
	}
	next := c.onEnded(msg.Summary, c.sess.Mistakes())
	return c, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (c *ChatScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if c.confirmQuit {
		switch key {
		case "y", "Y":
			c.confirmQuit = false
			return c.end()
		case "n", "N", "esc":
			c.confirmQuit = false
		case "l", "L":
			return c, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return c, nil
	}

	if c.openFailed {
		switch key {
		case "r", "R":
			c.openFailed = false
			c.errMsg = ""
			return c, c.begin()
		case "esc":
			return c, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return c, nil
	}

	switch key {
	case "esc":
		if c.phase == phaseIdle {
			c.confirmQuit = true
		}
		return c, nil
	case "ctrl+e":
		return c.end()
	case "pgup":
		c.scroll += 5
		return c, nil
	case "pgdown":
		c.scroll = max(0, c.scroll-5)
		return c, nil
	case "enter":
		return c.send()
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *ChatScreen) send() (screen.Screen, tea.Cmd) {
	text := c.input.Value()
	if c.phase != phaseIdle || text == "" {
		return c, nil
	}
	c.input.Reset()
	c.phase = phaseReplying
	sess := c.sess
	return c, func() tea.Msg {
		reply, err := sess.Send(context.Background(), text)
		return replyMsg{Reply: reply, Err: err}
	}
}

func (c *ChatScreen) end() (screen.Screen, tea.Cmd) {
	if c.phase != phaseIdle {
		return c, nil
	}
	c.phase = phaseEnding
	sess := c.sess
	return c, func() tea.Msg {
		summary, err := sess.End(context.Background())
		return endedMsg{Summary: summary, Err: err}
	}
}

func (c *ChatScreen) begin() tea.Cmd {
	c.phase = phaseOpening
	sess, p := c.sess, c.profile
	return func() tea.Msg {
		reply, err := sess.Begin(context.Background(), p)
		return openedMsg{Reply: reply, Err: err}
	}
}

// describe turns a session error into a line for the learner.
func describe(err error) string {
	var modelErr *tutor.ModelCallError
	switch {
	case errors.As(err, &modelErr):
		return "The tutor could not respond. Please try again."
	case errors.Is(err, tutor.ErrSessionEnded):
		return "This conversation has ended."
	}
	return err.Error()
}
