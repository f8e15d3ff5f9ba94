package tutor

// Config holds generation settings for the tutor's model calls.
type Config struct {
	// Temperature is used for both conversation and summary calls.
	Temperature float64

	// MaxTokens bounds a conversation reply. Zero leaves the provider default.
	MaxTokens int

	// SummaryMaxTokens bounds the improvement suggestions reply.
	SummaryMaxTokens int

	// Structured asks the model for a JSON reply matching TutorReplySchema
	// instead of the free-text correction marker.
	Structured bool
}

// DefaultConfig returns the settings the tutor runs with out of the box.
func DefaultConfig() Config {
	return Config{
		Temperature:      0.7,
		MaxTokens:        800,
		SummaryMaxTokens: 1200,
	}
}
