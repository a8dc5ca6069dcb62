package reading

import (
	"errors"

	"github.com/mrlokans/readtrack/internal/timeline"
)

// Sentinel errors returned by the service. Callers match them with
// errors.Is to pick the right HTTP status.
var (
	ErrBookNotFound    = errors.New("book not found")
	ErrSessionNotFound = errors.New("reading session not found")
	ErrEntryNotFound   = errors.New("progress entry not found")

	ErrActiveSessionExists = errors.New("book already has an active session")
	ErrNoCompletedSession  = errors.New("book has no completed session to re-read")
	ErrNotInReadNextQueue  = errors.New("session is not in the read-next queue")
	ErrSessionNotReading   = errors.New("session is not currently being read")
)

// ValidationError carries a rejected progress write. Result holds the
// human-readable reason and, for timeline conflicts, the entry the candidate
// collided with.
type ValidationError struct {
	Result *timeline.Result
}

func (e *ValidationError) Error() string {
	return e.Result.Error
}

// rejected wraps a plain input problem (bad date, missing value) in the same
// shape as a timeline conflict, so API consumers handle both identically.
func rejected(msg string) *ValidationError {
	return &ValidationError{Result: &timeline.Result{Valid: false, Error: msg}}
}
