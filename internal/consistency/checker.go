// Package consistency audits stored sessions and progress logs for the
// invariants the write path enforces, catching anything that slipped in
// through imports, crashes or older versions of the schema. The checker only
// reads; fixing findings is left to the owner of the data.
package consistency

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/readtrack/internal/dates"
	"github.com/mrlokans/readtrack/internal/entities"
)

// IssueKind classifies a finding.
type IssueKind string

const (
	IssueNonMonotonic       IssueKind = "non_monotonic_progress"
	IssueMalformedDate      IssueKind = "malformed_date"
	IssueMultipleActive     IssueKind = "multiple_active_sessions"
	IssueMissingArchiveDate IssueKind = "missing_archive_date"
	IssueOrphanedEntry      IssueKind = "orphaned_entry"
)

// Issue is a single finding with enough identifiers to locate the offending
// rows by hand.
type Issue struct {
	Kind      IssueKind `json:"kind"`
	BookID    uint      `json:"book_id,omitempty"`
	SessionID uint      `json:"session_id,omitempty"`
	EntryID   uint      `json:"entry_id,omitempty"`
	Detail    string    `json:"detail"`
}

// Report is the outcome of one full sweep.
type Report struct {
	CheckedSessions int     `json:"checked_sessions"`
	CheckedEntries  int     `json:"checked_entries"`
	Issues          []Issue `json:"issues"`
}

// Clean reports whether the sweep found nothing to complain about.
func (r *Report) Clean() bool {
	return len(r.Issues) == 0
}

// Summary is a one-line rendering for logs and stored sweep results.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d sessions and %d entries checked, %d issues found",
		r.CheckedSessions, r.CheckedEntries, len(r.Issues))
}

// Checker runs read-only sweeps over the reading data.
type Checker struct {
	db *gorm.DB
}

// NewChecker creates a consistency checker.
func NewChecker(db *gorm.DB) *Checker {
	return &Checker{db: db}
}

// Run sweeps all sessions and progress logs and returns the findings.
func (c *Checker) Run() (*Report, error) {
	report := &Report{Issues: []Issue{}}

	var sessions []entities.ReadingSession
	err := c.db.Order("book_id ASC, session_number ASC").Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	report.CheckedSessions = len(sessions)

	activePerBook := make(map[uint]int)
	knownSessions := make(map[uint]entities.ReadingSession, len(sessions))
	for _, s := range sessions {
		knownSessions[s.ID] = s
		if s.IsActive {
			activePerBook[s.BookID]++
		}
		c.checkSessionDates(report, s)
	}
	for bookID, count := range activePerBook {
		if count > 1 {
			report.Issues = append(report.Issues, Issue{
				Kind:   IssueMultipleActive,
				BookID: bookID,
				Detail: fmt.Sprintf("book has %d active sessions, want at most 1", count),
			})
		}
	}

	var entries []entities.ProgressLog
	err = c.db.Order("session_id ASC, progress_date ASC, id ASC").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load progress logs: %w", err)
	}
	report.CheckedEntries = len(entries)

	c.checkEntries(report, entries, knownSessions)
	return report, nil
}

func (c *Checker) checkSessionDates(report *Report, s entities.ReadingSession) {
	for _, d := range []struct {
		name  string
		value *string
	}{
		{"started_date", s.StartedDate},
		{"completed_date", s.CompletedDate},
		{"dnf_date", s.DNFDate},
	} {
		if d.value != nil && !dates.Valid(*d.value) {
			report.Issues = append(report.Issues, Issue{
				Kind:      IssueMalformedDate,
				BookID:    s.BookID,
				SessionID: s.ID,
				Detail:    fmt.Sprintf("%s is %q, want YYYY-MM-DD", d.name, *d.value),
			})
		}
	}

	if s.Status == entities.StatusRead && s.CompletedDate == nil {
		report.Issues = append(report.Issues, Issue{
			Kind:      IssueMissingArchiveDate,
			BookID:    s.BookID,
			SessionID: s.ID,
			Detail:    "session is read but has no completed date",
		})
	}
	if s.Status == entities.StatusDNF && s.DNFDate == nil {
		report.Issues = append(report.Issues, Issue{
			Kind:      IssueMissingArchiveDate,
			BookID:    s.BookID,
			SessionID: s.ID,
			Detail:    "session is dnf but has no dnf date",
		})
	}
}

// checkEntries walks each session's timeline in date order and flags any
// step backwards. Entries with malformed dates have no defined position in
// the timeline, so they are reported once and skipped in the walk.
func (c *Checker) checkEntries(report *Report, entries []entities.ProgressLog, knownSessions map[uint]entities.ReadingSession) {
	var (
		currentSession uint
		prev           *entities.ProgressLog
	)
	for i := range entries {
		entry := &entries[i]

		if _, ok := knownSessions[entry.SessionID]; !ok {
			report.Issues = append(report.Issues, Issue{
				Kind:      IssueOrphanedEntry,
				BookID:    entry.BookID,
				SessionID: entry.SessionID,
				EntryID:   entry.ID,
				Detail:    "entry references a session that does not exist",
			})
			continue
		}

		if entry.SessionID != currentSession {
			currentSession = entry.SessionID
			prev = nil
		}

		if !dates.Valid(entry.ProgressDate) {
			report.Issues = append(report.Issues, Issue{
				Kind:      IssueMalformedDate,
				BookID:    entry.BookID,
				SessionID: entry.SessionID,
				EntryID:   entry.ID,
				Detail:    fmt.Sprintf("progress_date is %q, want YYYY-MM-DD", entry.ProgressDate),
			})
			continue
		}

		if prev != nil && prev.ProgressDate < entry.ProgressDate {
			if entry.CurrentPage < prev.CurrentPage {
				report.Issues = append(report.Issues, Issue{
					Kind:      IssueNonMonotonic,
					BookID:    entry.BookID,
					SessionID: entry.SessionID,
					EntryID:   entry.ID,
					Detail: fmt.Sprintf("page drops from %d on %s to %d on %s",
						prev.CurrentPage, prev.ProgressDate, entry.CurrentPage, entry.ProgressDate),
				})
			} else if entry.CurrentPercentage < prev.CurrentPercentage {
				report.Issues = append(report.Issues, Issue{
					Kind:      IssueNonMonotonic,
					BookID:    entry.BookID,
					SessionID: entry.SessionID,
					EntryID:   entry.ID,
					Detail: fmt.Sprintf("percentage drops from %d%% on %s to %d%% on %s",
						prev.CurrentPercentage, prev.ProgressDate, entry.CurrentPercentage, entry.ProgressDate),
				})
			}
		}
		prev = entry
	}
}
