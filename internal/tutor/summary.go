package tutor

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/parlo/internal/llm"
)

// NoMistakesMessage is the whole summary when nothing was corrected.
const NoMistakesMessage = "You did very well! I didn't notice any mistakes in your conversation."

// Summarizer renders the end-of-session report.
type Summarizer struct {
	provider llm.Provider
	cfg      Config
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(provider llm.Provider, cfg Config) *Summarizer {
	return &Summarizer{provider: provider, cfg: cfg}
}

// Summarize groups mistakes by type and appends the model's improvement
// suggestions. With no mistakes it returns NoMistakesMessage without
// calling the model. A failed model call fails the whole summary.
func (s *Summarizer) Summarize(ctx context.Context, p Profile, mistakes []Mistake) (string, error) {
	if len(mistakes) == 0 {
		return NoMistakesMessage, nil
	}

	report := RenderReport(mistakes)

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, llm.PurposeSummary), llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildSummaryPrompt(p, report)}},
		MaxTokens:   s.cfg.SummaryMaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", &ModelCallError{Purpose: llm.PurposeSummary, Err: err}
	}

	return report + "## Improvement Suggestions\n\n" + resp.Text(), nil
}

// MistakeGroup is the mistakes of one type in the order they were made.
type MistakeGroup struct {
	Type     MistakeType
	Mistakes []Mistake
}

// GroupMistakes groups by type, keeping types in first-seen order.
func GroupMistakes(mistakes []Mistake) []MistakeGroup {
	var groups []MistakeGroup
	index := make(map[MistakeType]int)
	for _, m := range mistakes {
		i, ok := index[m.Type]
		if !ok {
			i = len(groups)
			index[m.Type] = i
			groups = append(groups, MistakeGroup{Type: m.Type})
		}
		groups[i].Mistakes = append(groups[i].Mistakes, m)
	}
	return groups
}

// RenderReport renders the intro line and one numbered section per type.
func RenderReport(mistakes []Mistake) string {
	var b strings.Builder
	b.WriteString(summaryIntro)
	for _, g := range GroupMistakes(mistakes) {
		fmt.Fprintf(&b, "## %s (%d)\n", g.Type, len(g.Mistakes))
		for i, m := range g.Mistakes {
			fmt.Fprintf(&b, "%d. You said: \"%s\" → Correct: \"%s\"\n", i+1, m.Original, m.Corrected)
		}
		b.WriteString("\n")
	}
	return b.String()
}
