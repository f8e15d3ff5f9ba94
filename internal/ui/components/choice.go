package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/parlo/internal/ui/theme"
)

// Choice is a single-select list of options with a label.
type Choice struct {
	Label    string
	Options  []string
	Selected int
	focused  bool
}

// NewChoice creates a choice with the first option selected.
func NewChoice(label string, options []string) Choice {
	return Choice{Label: label, Options: options}
}

// Focus marks the choice as active.
func (c *Choice) Focus() { c.focused = true }

// Blur marks the choice as inactive.
func (c *Choice) Blur() { c.focused = false }

// Focused reports whether the choice is active.
func (c Choice) Focused() bool { return c.focused }

// Update handles keyboard navigation.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || !c.focused {
		return c, nil
	}

	switch kmsg.String() {
	case "up", "left", "k", "h":
		if c.Selected > 0 {
			c.Selected--
		}
	case "down", "right", "j", "l":
		if c.Selected < len(c.Options)-1 {
			c.Selected++
		}
	}
	return c, nil
}

// Value returns the selected option, or "" when there are none.
func (c Choice) Value() string {
	if c.Selected < 0 || c.Selected >= len(c.Options) {
		return ""
	}
	return c.Options[c.Selected]
}

// View renders the label and the options, one per line.
func (c Choice) View() string {
	var b strings.Builder
	if c.focused {
		b.WriteString(theme.Selected.Render(c.Label))
	} else {
		b.WriteString(theme.Label.Render(c.Label))
	}
	b.WriteString("\n")

	for i, opt := range c.Options {
		switch {
		case i == c.Selected && c.focused:
			b.WriteString(theme.Selected.Render("  ▸ " + opt))
		case i == c.Selected:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("  • " + opt))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("    " + opt))
		}
		b.WriteString("\n")
	}
	return b.String()
}
