package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names shared by the repositories.
const (
	sessionsTable   = "sessions"
	mistakesTable   = "mistakes"
	llmEventsTable  = "llm_request_events"
	colID           = "id"
	colUserID       = "user_id"
	colNativeLang   = "native_language"
	colLearningLang = "learning_language"
	colLevel        = "proficiency_level"
	colStartTime    = "start_time"
	colEndTime      = "end_time"
	colSessionID    = "session_id"
	colMistakeText  = "mistake_text"
	colCorrection   = "correction"
	colMistakeType  = "mistake_type"
	colTimestamp    = "timestamp"
)

var (
	// SessionsColumns holds the columns for the "sessions" table.
	SessionsColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt64, Increment: true},
		{Name: colUserID, Type: field.TypeString},
		{Name: colNativeLang, Type: field.TypeString},
		{Name: colLearningLang, Type: field.TypeString},
		{Name: colLevel, Type: field.TypeString},
		{Name: colStartTime, Type: field.TypeTime},
		{Name: colEndTime, Type: field.TypeTime, Nullable: true},
	}
	// SessionsTable holds the schema information for the "sessions" table.
	SessionsTable = &schema.Table{
		Name:       sessionsTable,
		Columns:    SessionsColumns,
		PrimaryKey: []*schema.Column{SessionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "session_user_id", Columns: []*schema.Column{SessionsColumns[1]}},
		},
	}

	// MistakesColumns holds the columns for the "mistakes" table.
	// session_id is deliberately not a foreign key: mistakes may reference
	// a session id that was never created.
	MistakesColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt64, Increment: true},
		{Name: colSessionID, Type: field.TypeInt64},
		{Name: colMistakeText, Type: field.TypeString},
		{Name: colCorrection, Type: field.TypeString},
		{Name: colMistakeType, Type: field.TypeString},
		{Name: colTimestamp, Type: field.TypeTime},
	}
	// MistakesTable holds the schema information for the "mistakes" table.
	MistakesTable = &schema.Table{
		Name:       mistakesTable,
		Columns:    MistakesColumns,
		PrimaryKey: []*schema.Column{MistakesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "mistake_session_id", Columns: []*schema.Column{MistakesColumns[1]}},
			{Name: "mistake_mistake_type", Columns: []*schema.Column{MistakesColumns[4]}},
		},
	}

	// LLMRequestEventsColumns holds the columns for the "llm_request_events" table.
	LLMRequestEventsColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt64, Increment: true},
		{Name: colTimestamp, Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LLMRequestEventsTable holds the schema information for the "llm_request_events" table.
	LLMRequestEventsTable = &schema.Table{
		Name:       llmEventsTable,
		Columns:    LLMRequestEventsColumns,
		PrimaryKey: []*schema.Column{LLMRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{LLMRequestEventsColumns[4]}},
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{LLMRequestEventsColumns[1]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		SessionsTable,
		MistakesTable,
		LLMRequestEventsTable,
	}
)
