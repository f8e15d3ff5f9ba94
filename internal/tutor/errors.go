package tutor

import (
	"errors"
	"fmt"
)

// ErrSessionEnded is returned when a turn is attempted after End.
var ErrSessionEnded = errors.New("session already ended")

// ConfigurationError reports an operation invoked before a valid setup.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// ModelCallError wraps a failed language model call. The underlying
// llm error (rate limit, unavailable, invalid response) is kept for
// errors.As.
type ModelCallError struct {
	Purpose string
	Err     error
}

func (e *ModelCallError) Error() string {
	return fmt.Sprintf("model call (%s): %v", e.Purpose, e.Err)
}

func (e *ModelCallError) Unwrap() error { return e.Err }
