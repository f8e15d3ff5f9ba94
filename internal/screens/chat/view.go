package chat

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/parlo/internal/tutor"
	"github.com/abhisek/parlo/internal/ui/theme"
)

func (c *ChatScreen) View(width, height int) string {
	if c.confirmQuit {
		return renderQuitConfirm(width)
	}

	inner := max(width-4, 10)
	footer := c.renderInputArea(inner)
	bodyHeight := max(height-lipgloss.Height(footer)-1, 1)

	lines := strings.Split(renderTranscript(c.sess.Transcript(), c.profile.LearningLanguage, inner), "\n")
	if c.phase == phaseOpening && len(lines) <= 1 {
		lines = []string{theme.Hint.Render(c.spinner.View() + " Your tutor is getting ready...")}
	}

	// Clamp scroll so the top of the transcript stays reachable.
	maxScroll := max(len(lines)-bodyHeight, 0)
	c.scroll = min(c.scroll, maxScroll)
	end := len(lines) - c.scroll
	start := max(end-bodyHeight, 0)
	body := strings.Join(lines[start:end], "\n")

	body = lipgloss.NewStyle().Height(bodyHeight).PaddingLeft(2).Render(body)
	return body + "\n" + lipgloss.NewStyle().PaddingLeft(2).Render(footer)
}

func (c *ChatScreen) renderInputArea(width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", width)))
	b.WriteString("\n")

	switch c.phase {
	case phaseReplying:
		b.WriteString(theme.Hint.Render(c.spinner.View() + " Tutor is typing..."))
	case phaseEnding:
		b.WriteString(theme.Hint.Render(c.spinner.View() + " Preparing your summary..."))
	case phaseOpening:
		b.WriteString(theme.Hint.Render("Waiting for the tutor..."))
	default:
		b.WriteString(c.input.View())
	}

	if c.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorText.Render(c.errMsg))
		if c.openFailed {
			b.WriteString(theme.Hint.Render("  Press R to retry."))
		}
	}
	return b.String()
}

// renderTranscript renders learner-facing messages with each correction in
// its own block under the tutor's text.
func renderTranscript(msgs []tutor.Message, language string, width int) string {
	text := lipgloss.NewStyle().Foreground(theme.Text).Width(width)
	correction := theme.CorrectionBox.Width(width - 2)

	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if m.Role == tutor.RoleUser {
			b.WriteString(theme.LearnerName.Render("You"))
		} else {
			b.WriteString(theme.TutorName.Render("Tutor"))
			if language != "" {
				b.WriteString(theme.Hint.Render("  (" + language + ")"))
			}
		}
		b.WriteString("\n")
		b.WriteString(text.Render(m.Text))
		if m.Correction != "" {
			b.WriteString("\n")
			b.WriteString(correction.Render("Correction:\n" + m.Correction))
		}
	}
	return b.String()
}

func renderQuitConfirm(width int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(center.Foreground(theme.Text).Bold(true).Render("End this conversation?"))
	b.WriteString("\n")
	b.WriteString(center.Foreground(theme.TextDim).Render("You will get a summary of your mistakes."))
	b.WriteString("\n\n")
	b.WriteString(center.Foreground(theme.Success).Render("[Y] Yes, show my summary"))
	b.WriteString("\n")
	b.WriteString(center.Foreground(theme.Primary).Render("[N] No, keep going"))
	b.WriteString("\n")
	b.WriteString(center.Foreground(theme.TextDim).Render("[L] Leave without a summary"))
	return b.String()
}
