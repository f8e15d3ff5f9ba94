package tutor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/abhisek/parlo/internal/llm"
)

// Store is the persistence a Session needs. store.SessionRepo satisfies it.
type Store interface {
	CreateSession(ctx context.Context, userID, native, learning, level string) (int64, error)
	RecordMistake(ctx context.Context, sessionID int64, original, correction, mistakeType string) error
	EndSession(ctx context.Context, sessionID int64) error
}

// Observer is notified of session lifecycle events.
type Observer interface {
	SessionStarted(p Profile)
	TurnFinished(err error)
	MistakeRecorded(t MistakeType)
	SessionEnded(mistakes int)
}

type nopObserver struct{}

func (nopObserver) SessionStarted(Profile)      {}
func (nopObserver) TurnFinished(error)          {}
func (nopObserver) MistakeRecorded(MistakeType) {}
func (nopObserver) SessionEnded(int)            {}

// State is where a Session is in its lifecycle.
type State int

const (
	StateSetup State = iota
	StateActive
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateSetup:
		return "setup"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Message is one entry of the learner-facing transcript.
type Message struct {
	Role       Role   `json:"role"`
	Text       string `json:"text"`
	Correction string `json:"correction,omitempty"`
}

// ErrEmptyInput is returned by Send for blank learner input.
var ErrEmptyInput = errors.New("message is empty")

// Session is one learner's practice conversation from setup to summary.
// All methods are safe for concurrent use; turns are serialised so at most
// one model call is outstanding per session.
type Session struct {
	userID string
	store  Store
	logger *slog.Logger
	obs    Observer

	mu         sync.Mutex
	state      State
	conv       *Conversation
	extractor  *Extractor
	summarizer *Summarizer
	storeID    int64
	mistakes   []Mistake
	transcript []Message
	summary    string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithObserver registers lifecycle callbacks.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.obs = o }
}

// NewSession creates a session in the setup state.
func NewSession(userID string, provider llm.Provider, store Store, cfg Config, opts ...Option) *Session {
	s := &Session{
		userID:     userID,
		store:      store,
		logger:     slog.Default(),
		obs:        nopObserver{},
		conv:       NewConversation(provider, cfg),
		extractor:  NewExtractor(cfg.Structured),
		summarizer: NewSummarizer(provider, cfg),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("user_id", userID))
	return s
}

// UserID returns the learner identifier the session was created for.
func (s *Session) UserID() string { return s.userID }

// Begin configures the tutor, asks for the opening message and records the
// session in the store. The row is created only once the opening succeeds,
// so a failed Begin leaves nothing behind and may be called again. The
// opening is displayed but never scored for mistakes.
func (s *Session) Begin(ctx context.Context, p Profile) (Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSetup {
		return Reply{}, &ConfigurationError{Reason: "session already started"}
	}
	if err := s.conv.Configure(p); err != nil {
		return Reply{}, err
	}
	p = s.conv.Profile()

	raw, err := s.conv.Start(ctx)
	s.obs.TurnFinished(err)
	if err != nil {
		s.logger.Warn("opening turn failed", slog.Any("error", err))
		return Reply{}, err
	}

	id, err := s.store.CreateSession(ctx, s.userID, p.NativeLanguage, p.LearningLanguage, string(p.Level))
	if err != nil {
		return Reply{}, fmt.Errorf("create session: %w", err)
	}
	s.storeID = id
	s.mistakes = nil
	s.logger.Info("session created",
		slog.Int64("session_id", id),
		slog.String("learning", p.LearningLanguage),
		slog.String("level", string(p.Level)),
		slog.String("scenario", p.Scenario))

	reply := s.extractor.Extract(raw)
	reply.Mistakes = nil
	s.transcript = []Message{{
		Role:       RoleAssistant,
		Text:       reply.Display,
		Correction: reply.CorrectionText,
	}}
	s.state = StateActive
	s.obs.SessionStarted(p)
	return reply, nil
}

// Send submits one learner message and returns the tutor's reply with any
// corrections already persisted.
func (s *Session) Send(ctx context.Context, input string) (Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateSetup:
		return Reply{}, &ConfigurationError{Reason: "conversation turn before setup"}
	case StateEnded:
		return Reply{}, ErrSessionEnded
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return Reply{}, ErrEmptyInput
	}

	raw, err := s.conv.Turn(ctx, input)
	s.obs.TurnFinished(err)
	if err != nil {
		s.logger.Warn("turn failed", slog.Int64("session_id", s.storeID), slog.Any("error", err))
		return Reply{}, err
	}

	s.transcript = append(s.transcript, Message{Role: RoleUser, Text: input})
	return s.handleReply(ctx, raw)
}

// handleReply extracts corrections, persists each one and records the
// display text in the transcript. Callers hold s.mu.
func (s *Session) handleReply(ctx context.Context, raw string) (Reply, error) {
	reply := s.extractor.Extract(raw)
	s.transcript = append(s.transcript, Message{
		Role:       RoleAssistant,
		Text:       reply.Display,
		Correction: reply.CorrectionText,
	})

	for _, m := range reply.Mistakes {
		if err := s.store.RecordMistake(ctx, s.storeID, m.Original, m.Corrected, string(m.Type)); err != nil {
			return reply, fmt.Errorf("record mistake: %w", err)
		}
		s.mistakes = append(s.mistakes, m)
		s.obs.MistakeRecorded(m.Type)
		s.logger.Debug("mistake recorded",
			slog.Int64("session_id", s.storeID),
			slog.String("type", string(m.Type)))
	}
	return reply, nil
}

// End generates the summary and closes the session in the store. If the
// summary fails the session stays active so End can be retried.
func (s *Session) End(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateSetup:
		return "", &ConfigurationError{Reason: "end before setup"}
	case StateEnded:
		return s.summary, nil
	}

	summary, err := s.summarizer.Summarize(ctx, s.conv.Profile(), s.mistakes)
	if err != nil {
		s.logger.Warn("summary failed", slog.Int64("session_id", s.storeID), slog.Any("error", err))
		return "", err
	}
	if err := s.store.EndSession(ctx, s.storeID); err != nil {
		return "", fmt.Errorf("end session: %w", err)
	}

	s.summary = summary
	s.state = StateEnded
	s.obs.SessionEnded(len(s.mistakes))
	s.logger.Info("session ended",
		slog.Int64("session_id", s.storeID),
		slog.Int("mistakes", len(s.mistakes)))
	return summary, nil
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StoreID returns the store-assigned session id, or 0 before Begin.
func (s *Session) StoreID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeID
}

// Profile returns the learner's setup.
func (s *Session) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Profile()
}

// Mistakes returns a copy of the corrections made so far.
func (s *Session) Mistakes() []Mistake {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Mistake, len(s.mistakes))
	copy(out, s.mistakes)
	return out
}

// Transcript returns a copy of the learner-facing messages. The opening
// line sent to start the conversation is not included.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// History returns the raw turns sent to the model.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.History()
}

// Summary returns the summary once the session has ended.
func (s *Session) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}
