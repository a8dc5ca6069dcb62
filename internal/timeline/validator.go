// Package timeline validates progress entries against the rest of a
// session's recorded history, so that progress never moves backwards through
// time.
//
// Entries are not required to arrive in order. A reader can log today, then
// backfill last week, then correct a typo from a month ago. Whatever the
// arrival order, the stored timeline must read as non-decreasing when walked
// by calendar day: an entry may never record less progress than any entry
// dated before it, nor more than any entry dated after it. Equal values on
// different days are fine (re-reading a chapter advances no pages).
//
// The validator checks a candidate entry against its interval bounds only --
// the highest progress recorded strictly before the candidate's date and the
// lowest recorded strictly after it -- rather than scanning the whole
// timeline. When a bound is violated the result carries the offending entry,
// so callers can point at exactly which log the new value collides with.
package timeline

import (
	"fmt"

	"github.com/mrlokans/readtrack/internal/dates"
	"github.com/mrlokans/readtrack/internal/entities"
)

// ConflictType tells which side of the candidate entry the conflicting entry
// sits on.
type ConflictType string

const (
	// ConflictBefore marks a conflict with an entry dated earlier than the
	// candidate: the candidate records less progress than was already
	// reached by that date.
	ConflictBefore ConflictType = "before"
	// ConflictAfter marks a conflict with an entry dated later than the
	// candidate: the candidate records more progress than the reader had
	// reached by that later date.
	ConflictAfter ConflictType = "after"
)

// ConflictingEntry identifies the existing progress entry a rejected
// candidate collides with.
type ConflictingEntry struct {
	ID       uint         `json:"id"`
	Type     ConflictType `json:"type"`
	Progress int          `json:"progress"`
	Date     string       `json:"date"`
}

// Result is the outcome of validating a candidate entry. When Valid is
// false, Error holds a human-readable explanation and Conflict the entry
// that imposed the violated bound.
type Result struct {
	Valid    bool              `json:"valid"`
	Error    string            `json:"error,omitempty"`
	Conflict *ConflictingEntry `json:"conflicting_entry,omitempty"`
}

// BoundsSource supplies the interval bounds for a candidate entry. A
// non-zero excludeID leaves that row out of both windows, so an entry being
// edited never bounds itself. byPercentage switches the compared progress
// column for sessions tracked by percentage.
type BoundsSource interface {
	MaxEntryBefore(sessionID uint, date string, excludeID uint, byPercentage bool) (*entities.ProgressLog, error)
	MinEntryAfter(sessionID uint, date string, excludeID uint, byPercentage bool) (*entities.ProgressLog, error)
}

// Validator checks candidate progress entries against their session's
// timeline.
type Validator struct {
	bounds BoundsSource
}

// NewValidator creates a validator reading bounds from the given source.
func NewValidator(bounds BoundsSource) *Validator {
	return &Validator{bounds: bounds}
}

// ValidateNewEntry checks whether recording value on date fits the session's
// existing timeline. An empty timeline accepts anything.
func (v *Validator) ValidateNewEntry(sessionID uint, date string, value int, byPercentage bool) (*Result, error) {
	return v.validate(sessionID, date, value, 0, byPercentage)
}

// ValidateEdit checks whether moving entry entryID to date with the given
// value fits the rest of the timeline. The edited entry itself is excluded
// from the comparison, so changing only its notes or nudging its date
// between its neighbours always passes.
func (v *Validator) ValidateEdit(entryID uint, sessionID uint, date string, value int, byPercentage bool) (*Result, error) {
	return v.validate(sessionID, date, value, entryID, byPercentage)
}

func (v *Validator) validate(sessionID uint, date string, value int, excludeID uint, byPercentage bool) (*Result, error) {
	before, err := v.bounds.MaxEntryBefore(sessionID, date, excludeID, byPercentage)
	if err != nil {
		return nil, fmt.Errorf("failed to query earlier entries: %w", err)
	}
	if before != nil {
		bound := progressOf(before, byPercentage)
		if value < bound {
			return &Result{
				Valid: false,
				Error: fmt.Sprintf("Progress must be at least %s (recorded on %s)",
					formatProgress(bound, byPercentage), dates.Format(before.ProgressDate)),
				Conflict: &ConflictingEntry{
					ID:       before.ID,
					Type:     ConflictBefore,
					Progress: bound,
					Date:     before.ProgressDate,
				},
			}, nil
		}
	}

	after, err := v.bounds.MinEntryAfter(sessionID, date, excludeID, byPercentage)
	if err != nil {
		return nil, fmt.Errorf("failed to query later entries: %w", err)
	}
	if after != nil {
		bound := progressOf(after, byPercentage)
		if value > bound {
			return &Result{
				Valid: false,
				Error: fmt.Sprintf("Progress cannot exceed %s (recorded on %s)",
					formatProgress(bound, byPercentage), dates.Format(after.ProgressDate)),
				Conflict: &ConflictingEntry{
					ID:       after.ID,
					Type:     ConflictAfter,
					Progress: bound,
					Date:     after.ProgressDate,
				},
			}, nil
		}
	}

	return &Result{Valid: true}, nil
}

func progressOf(entry *entities.ProgressLog, byPercentage bool) int {
	if byPercentage {
		return entry.CurrentPercentage
	}
	return entry.CurrentPage
}

func formatProgress(value int, byPercentage bool) string {
	if byPercentage {
		return fmt.Sprintf("%d%%", value)
	}
	return fmt.Sprintf("page %d", value)
}
