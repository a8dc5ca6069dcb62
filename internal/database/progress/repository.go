// Package progress provides database operations for progress log records.
//
// This package implements the ProgressStore interface defined in
// internal/reading/service.go, the BoundsSource interface defined in
// internal/timeline/validator.go, the ProgressSource interface defined in
// internal/stats/aggregator.go and the PercentageRecalculator interface
// defined in internal/tasks/recalculate.go.
//
// # Interface Implementation
//
//	var _ reading.ProgressStore = (*Repository)(nil)
//	var _ timeline.BoundsSource = (*Repository)(nil)
//	var _ stats.ProgressSource = (*Repository)(nil)
//	var _ tasks.PercentageRecalculator = (*Repository)(nil)
//
// # Usage
//
//	repo := progress.NewRepository(db)
//	entries, err := repo.ListForSession(sessionID)
package progress

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/readtrack/internal/dates"
	"github.com/mrlokans/readtrack/internal/entities"
)

// DayTotal is the sum of pages recorded on a single calendar day.
type DayTotal struct {
	Date      string
	PagesRead int
}

// Repository handles all progress log database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new progress repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a progress entry by ID.
func (r *Repository) GetByID(id uint) (*entities.ProgressLog, error) {
	var entry entities.ProgressLog
	err := r.db.First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListForSession returns the session's timeline in chronological order.
// Entries sharing a date keep insertion order.
func (r *Repository) ListForSession(sessionID uint) ([]entities.ProgressLog, error) {
	var entries []entities.ProgressLog
	err := r.db.Where("session_id = ?", sessionID).
		Order("progress_date ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// InsertEntry persists a validated entry and refreshes the pages-read deltas
// of the whole session timeline in the same transaction, so a mid-timeline
// backfill cannot leave a neighbour's delta stale.
func (r *Repository) InsertEntry(entry *entities.ProgressLog) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return refreshDeltas(tx, entry)
	})
}

// UpdateEntry saves an edited entry and refreshes the pages-read deltas of
// the whole session timeline in the same transaction. Date moves reposition
// the entry, so any delta in the session may change.
func (r *Repository) UpdateEntry(entry *entities.ProgressLog) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(entry).Error; err != nil {
			return err
		}
		return refreshDeltas(tx, entry)
	})
}

// refreshDeltas rewrites the pages-read delta of every entry in the touched
// entry's session. Each delta is the page advance over the immediately
// preceding entry in (date, id) order; drops clamp to zero so corrupt legacy
// rows cannot produce negative page counts. Timelines are at most a few
// hundred rows, so recomputing all of them beats getting the neighbour
// bookkeeping of same-day entries and date moves right.
func refreshDeltas(tx *gorm.DB, touched *entities.ProgressLog) error {
	var entries []entities.ProgressLog
	err := tx.Where("session_id = ?", touched.SessionID).
		Order("progress_date ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return err
	}

	prevPage := 0
	for i := range entries {
		delta := entries[i].CurrentPage - prevPage
		if delta < 0 {
			delta = 0
		}
		prevPage = entries[i].CurrentPage

		if entries[i].ID == touched.ID {
			touched.PagesRead = delta
		}
		if delta == entries[i].PagesRead {
			continue
		}
		err := tx.Model(&entities.ProgressLog{}).
			Where("id = ?", entries[i].ID).
			Update("pages_read", delta).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func progressColumn(byPercentage bool) string {
	if byPercentage {
		return "current_percentage"
	}
	return "current_page"
}

// MaxEntryBefore returns the entry recording the highest progress among those
// strictly before date, or nil when no earlier entry exists. excludeID, when
// non-zero, leaves that row out of the comparison (used while editing it).
// byPercentage switches the compared column for sessions tracked by
// percentage instead of page number.
func (r *Repository) MaxEntryBefore(sessionID uint, date string, excludeID uint, byPercentage bool) (*entities.ProgressLog, error) {
	q := r.db.Where("session_id = ? AND progress_date < ?", sessionID, date)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var entry entities.ProgressLog
	err := q.Order(progressColumn(byPercentage) + " DESC, progress_date DESC").First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MinEntryAfter returns the entry recording the lowest progress among those
// strictly after date, or nil when no later entry exists. See MaxEntryBefore
// for the excludeID and byPercentage parameters.
func (r *Repository) MinEntryAfter(sessionID uint, date string, excludeID uint, byPercentage bool) (*entities.ProgressLog, error) {
	q := r.db.Where("session_id = ? AND progress_date > ?", sessionID, date)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var entry entities.ProgressLog
	err := q.Order(progressColumn(byPercentage) + " ASC, progress_date ASC").First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// RecalculatePercentagesForBook recomputes the stored percentage of every
// progress entry in the book's active reading sessions against the corrected
// page count. All rows are rewritten in one transaction so a failure cannot
// leave the timeline half-converted. Returns the number of rows updated.
func (r *Repository) RecalculatePercentagesForBook(bookID uint, totalPages int) (int64, error) {
	if totalPages <= 0 {
		return 0, fmt.Errorf("total pages must be positive, got %d", totalPages)
	}

	var updated int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var sessionIDs []uint
		err := tx.Model(&entities.ReadingSession{}).
			Where("book_id = ? AND is_active = ? AND status = ?", bookID, true, entities.StatusReading).
			Pluck("id", &sessionIDs).Error
		if err != nil {
			return err
		}
		if len(sessionIDs) == 0 {
			return nil
		}

		var entries []entities.ProgressLog
		err = tx.Where("session_id IN ?", sessionIDs).Find(&entries).Error
		if err != nil {
			return err
		}

		for i := range entries {
			// Integer division floors, matching how percentages are
			// derived when an entry is first logged.
			percentage := entries[i].CurrentPage * 100 / totalPages
			err = tx.Model(&entities.ProgressLog{}).
				Where("id = ?", entries[i].ID).
				Update("current_percentage", percentage).Error
			if err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	return updated, err
}

// HighestActivePageForBook returns the furthest page recorded across the
// book's active reading sessions, or 0 when nothing has been logged.
func (r *Repository) HighestActivePageForBook(bookID uint) (int, error) {
	var maxPage int
	err := r.db.Model(&entities.ProgressLog{}).
		Joins("JOIN reading_sessions ON reading_sessions.id = progress_logs.session_id").
		Where("reading_sessions.book_id = ?", bookID).
		Where("reading_sessions.is_active = ? AND reading_sessions.status = ?", true, entities.StatusReading).
		Select("COALESCE(MAX(progress_logs.current_page), 0)").
		Scan(&maxPage).Error
	return maxPage, err
}

// --- Aggregation queries (stats.ProgressSource) ---

// SumPagesMatching totals the pages-read deltas of entries whose date is a
// well-formed calendar day beginning with datePrefix (e.g. "2026-" for a
// year, a full date for a single day). Rows with malformed dates are
// deliberately excluded; see SumPagesAll for the unscoped total.
func (r *Repository) SumPagesMatching(datePrefix string) (int64, error) {
	var total int64
	err := r.db.Model(&entities.ProgressLog{}).
		Where("progress_date GLOB ?", dates.GlobPattern).
		Where("progress_date LIKE ?", datePrefix+"%").
		Select("COALESCE(SUM(pages_read), 0)").
		Scan(&total).Error
	return total, err
}

// SumPagesAll totals every pages-read delta, including rows whose date is
// malformed.
func (r *Repository) SumPagesAll() (int64, error) {
	var total int64
	err := r.db.Model(&entities.ProgressLog{}).
		Select("COALESCE(SUM(pages_read), 0)").
		Scan(&total).Error
	return total, err
}

// DayTotals returns per-day page totals over well-formed dates, oldest day
// first. Empty bounds leave the corresponding side open.
func (r *Repository) DayTotals(start, end string) ([]DayTotal, error) {
	q := r.db.Model(&entities.ProgressLog{}).
		Where("progress_date GLOB ?", dates.GlobPattern)
	if start != "" {
		q = q.Where("progress_date >= ?", start)
	}
	if end != "" {
		q = q.Where("progress_date <= ?", end)
	}

	var totals []DayTotal
	err := q.Select("progress_date AS date, SUM(pages_read) AS pages_read").
		Group("progress_date").
		Order("progress_date ASC").
		Scan(&totals).Error
	return totals, err
}
