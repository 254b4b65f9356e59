package ai

import (
	"time"

	"github.com/rotisserie/eris"
)

// ErrNotConfigured is returned when the pipeline is constructed without a
// completion-service credential.
var ErrNotConfigured = eris.New("ai: completion service not configured")

// MalformedResponseError marks a completion call that succeeded at the
// transport level but returned something that is not the JSON we asked for.
// Callers use it to show a "corrupted input" message instead of a generic
// failure.
type MalformedResponseError struct {
	Raw string
}

func (e *MalformedResponseError) Error() string {
	return "ai: malformed completion response"
}

// RateLimitError carries the suggested retry stance after a 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "ai: rate limited"
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}
