package tutor

import (
	"context"

	"github.com/abhisek/parlo/internal/llm"
)

// Conversation owns the tutor prompt and the running turn history for one
// learner. It is not safe for concurrent use; Session serialises access.
type Conversation struct {
	provider llm.Provider
	cfg      Config

	profile *Profile
	system  string
	history []Turn
}

// NewConversation creates an unconfigured conversation.
func NewConversation(provider llm.Provider, cfg Config) *Conversation {
	return &Conversation{provider: provider, cfg: cfg}
}

// Configure validates the profile, builds the system prompt and clears the
// history.
func (c *Conversation) Configure(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.Level, _ = ParseLevel(string(p.Level))
	c.profile = &p
	c.system = buildSystemPrompt(p, c.cfg.Structured)
	c.history = nil
	return nil
}

// Configured reports whether Configure has succeeded.
func (c *Conversation) Configured() bool { return c.profile != nil }

// Profile returns the configured profile, or the zero value.
func (c *Conversation) Profile() Profile {
	if c.profile == nil {
		return Profile{}
	}
	return *c.profile
}

// Start asks the tutor to open the conversation.
func (c *Conversation) Start(ctx context.Context) (string, error) {
	return c.Turn(ctx, OpeningLine)
}

// Turn sends the learner's input with the full history and returns the raw
// reply. The history only grows when the model call succeeds.
func (c *Conversation) Turn(ctx context.Context, input string) (string, error) {
	if c.profile == nil {
		return "", &ConfigurationError{Reason: "conversation turn before setup"}
	}

	messages := make([]llm.Message, 0, len(c.history)+1)
	for _, t := range c.history {
		role := llm.RoleUser
		if t.Role == RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: t.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: input})

	req := llm.Request{
		System:      c.system,
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}
	if c.cfg.Structured {
		req.Schema = TutorReplySchema
	}

	resp, err := c.provider.Generate(llm.WithPurpose(ctx, llm.PurposeConversation), req)
	if err != nil {
		return "", &ModelCallError{Purpose: llm.PurposeConversation, Err: err}
	}
	raw := resp.Text()

	c.history = append(c.history,
		Turn{Role: RoleUser, Content: input},
		Turn{Role: RoleAssistant, Content: raw},
	)
	return raw, nil
}

// History returns a copy of the turns so far.
func (c *Conversation) History() []Turn {
	out := make([]Turn, len(c.history))
	copy(out, c.history)
	return out
}
