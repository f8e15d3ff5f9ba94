package store

import (
	"context"
	"time"
)

// QueryOpts configures list queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // LLM events only: exact purpose match
	UserID  string // sessions only: exact user match
}

// SessionRecord is one practice session row.
type SessionRecord struct {
	ID               int64
	UserID           string
	NativeLanguage   string
	LearningLanguage string
	ProficiencyLevel string
	StartTime        time.Time
	EndTime          *time.Time
}

// Ended reports whether EndSession has been called for the session.
func (r SessionRecord) Ended() bool { return r.EndTime != nil }

// MistakeRecord is one persisted correction.
type MistakeRecord struct {
	ID          int64
	SessionID   int64
	MistakeText string
	Correction  string
	MistakeType string
	Timestamp   time.Time
}

// TypeCount is the number of mistakes recorded for one mistake type.
type TypeCount struct {
	MistakeType string
	Count       int
}

// SessionRepo persists sessions and their mistakes. Every method is a
// single auto-committed statement.
type SessionRepo interface {
	// CreateSession inserts a session with start time now and no end time
	// and returns the store-assigned id.
	CreateSession(ctx context.Context, userID, native, learning, level string) (int64, error)

	// RecordMistake inserts one mistake. The session id is not validated.
	RecordMistake(ctx context.Context, sessionID int64, original, correction, mistakeType string) error

	// EndSession sets the end time to now. Unknown ids are not an error.
	EndSession(ctx context.Context, sessionID int64) error

	// GetSessionMistakes returns the session's mistakes in insertion order.
	GetSessionMistakes(ctx context.Context, sessionID int64) ([]MistakeRecord, error)

	// GetSession returns the session, or nil if it does not exist.
	GetSession(ctx context.Context, sessionID int64) (*SessionRecord, error)

	// ListSessions returns sessions newest first.
	ListSessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error)

	// CountMistakes returns per-type mistake counts for a session, most
	// frequent first.
	CountMistakes(ctx context.Context, sessionID int64) ([]TypeCount, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// UsageStat aggregates LLM usage for one purpose.
type UsageStat struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns a single event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]UsageStat, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
