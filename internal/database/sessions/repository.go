// Package sessions provides database operations for reading session records.
//
// This package implements the SessionStore interface defined in
// internal/reading/service.go and the SessionSource interface defined in
// internal/stats/aggregator.go.
//
// # Interface Implementation
//
//	var _ reading.SessionStore = (*Repository)(nil)
//	var _ stats.SessionSource = (*Repository)(nil)
//
// # Usage
//
//	repo := sessions.NewRepository(db)
//	active, err := repo.GetActiveForBook(bookID)
package sessions

import (
	"sort"

	"gorm.io/gorm"

	"github.com/mrlokans/readtrack/internal/dates"
	"github.com/mrlokans/readtrack/internal/entities"
)

// Repository handles all reading session database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sessions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a session by ID.
func (r *Repository) GetByID(id uint) (*entities.ReadingSession, error) {
	var session entities.ReadingSession
	err := r.db.First(&session, id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetActiveForBook returns the book's active session, or nil if the book has
// none. At most one session per book is active at any time.
func (r *Repository) GetActiveForBook(bookID uint) (*entities.ReadingSession, error) {
	var session entities.ReadingSession
	err := r.db.Where("book_id = ? AND is_active = ?", bookID, true).First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetLatestForBook returns the book's highest-numbered session, or nil if the
// book has never been tracked.
func (r *Repository) GetLatestForBook(bookID uint) (*entities.ReadingSession, error) {
	var session entities.ReadingSession
	err := r.db.Where("book_id = ?", bookID).Order("session_number DESC").First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// InsertNext persists session as the book's next attempt. The session number
// is assigned inside the transaction (previous max + 1, starting at 1), and
// any session still flagged active for the book is archived first, so the
// single-active invariant holds even if a stale flag survived a crash.
func (r *Repository) InsertNext(session *entities.ReadingSession) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var maxNumber int
		err := tx.Model(&entities.ReadingSession{}).
			Where("book_id = ?", session.BookID).
			Select("COALESCE(MAX(session_number), 0)").
			Scan(&maxNumber).Error
		if err != nil {
			return err
		}
		session.SessionNumber = maxNumber + 1

		if session.IsActive {
			err = tx.Model(&entities.ReadingSession{}).
				Where("book_id = ? AND is_active = ?", session.BookID, true).
				Update("is_active", false).Error
			if err != nil {
				return err
			}
		}

		return tx.Create(session).Error
	})
}

// Update persists changes to an existing session.
func (r *Repository) Update(session *entities.ReadingSession) error {
	return r.db.Save(session).Error
}

// HasCompletedSession reports whether the book has at least one session that
// was read to the end.
func (r *Repository) HasCompletedSession(bookID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.ReadingSession{}).
		Where("book_id = ? AND status = ?", bookID, entities.StatusRead).
		Count(&count).Error
	return count > 0, err
}

// ListForBook returns the book's full session history, first attempt first.
func (r *Repository) ListForBook(bookID uint) ([]entities.ReadingSession, error) {
	var sessions []entities.ReadingSession
	err := r.db.Where("book_id = ?", bookID).Order("session_number ASC").Find(&sessions).Error
	return sessions, err
}

// ListByStatus returns one session per book for the given status. A book can
// accumulate several archived sessions in the same status; the most recently
// completed one represents the book. Sessions whose completed date failed to
// store as a real calendar day only represent a book when no well-formed
// alternative exists.
func (r *Repository) ListByStatus(status entities.ReadingStatus) ([]entities.ReadingSession, error) {
	var candidates []entities.ReadingSession
	err := r.db.Where("status = ?", status).Order("session_number DESC").Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	byBook := make(map[uint]entities.ReadingSession)
	for _, s := range candidates {
		current, seen := byBook[s.BookID]
		if !seen {
			byBook[s.BookID] = s
			continue
		}
		if completedAfter(s, current) {
			byBook[s.BookID] = s
		}
	}

	result := make([]entities.ReadingSession, 0, len(byBook))
	for _, s := range byBook {
		result = append(result, s)
	}
	sortByRepresentativeDate(result)
	return result, nil
}

// completedAfter reports whether a represents a more recent completion than b.
func completedAfter(a, b entities.ReadingSession) bool {
	aDate, aOK := validCompletedDate(a)
	bDate, bOK := validCompletedDate(b)
	if aOK != bOK {
		return aOK
	}
	if !aOK {
		return a.SessionNumber > b.SessionNumber
	}
	if aDate != bDate {
		return aDate > bDate
	}
	return a.SessionNumber > b.SessionNumber
}

func validCompletedDate(s entities.ReadingSession) (string, bool) {
	if s.CompletedDate == nil || !dates.Valid(*s.CompletedDate) {
		return "", false
	}
	return *s.CompletedDate, true
}

func sortByRepresentativeDate(sessions []entities.ReadingSession) {
	sort.Slice(sessions, func(i, j int) bool {
		return completedAfter(sessions[i], sessions[j])
	})
}

// ListReadNextQueue returns the read-next queue from the top down.
func (r *Repository) ListReadNextQueue() ([]entities.ReadingSession, error) {
	var sessions []entities.ReadingSession
	err := r.db.Where("status = ?", entities.StatusReadNext).
		Order("read_next_order ASC, updated_at ASC").
		Find(&sessions).Error
	return sessions, err
}

// NextReadNextOrder returns the queue position for a session joining the
// read-next queue: one past the current maximum, or 0 for an empty queue.
func (r *Repository) NextReadNextOrder() (int, error) {
	var count int64
	err := r.db.Model(&entities.ReadingSession{}).
		Where("status = ?", entities.StatusReadNext).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	var maxOrder int
	err = r.db.Model(&entities.ReadingSession{}).
		Where("status = ?", entities.StatusReadNext).
		Select("COALESCE(MAX(read_next_order), 0)").
		Scan(&maxOrder).Error
	if err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}

// PromoteToTop moves the session to position 0 of the read-next queue and
// shifts every other queued session down by one. Both updates run in one
// transaction. Already being at the top is a no-op.
func (r *Repository) PromoteToTop(sessionID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var target entities.ReadingSession
		if err := tx.First(&target, sessionID).Error; err != nil {
			return err
		}
		if target.ReadNextOrder == 0 {
			return nil
		}

		err := tx.Model(&entities.ReadingSession{}).
			Where("status = ? AND id <> ?", entities.StatusReadNext, sessionID).
			Update("read_next_order", gorm.Expr("read_next_order + 1")).Error
		if err != nil {
			return err
		}

		return tx.Model(&target).Update("read_next_order", 0).Error
	})
}

// --- Aggregation queries (stats.SessionSource) ---

// CountCompletedMatching counts finished sessions whose completed date is a
// well-formed calendar day beginning with datePrefix (e.g. "2026-" for a
// year, "2026-03-" for a month). Rows with malformed completed dates are
// deliberately excluded; see CountCompleted for the unscoped total.
func (r *Repository) CountCompletedMatching(datePrefix string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.ReadingSession{}).
		Where("status = ?", entities.StatusRead).
		Where("completed_date GLOB ?", dates.GlobPattern).
		Where("completed_date LIKE ?", datePrefix+"%").
		Count(&count).Error
	return count, err
}

// CountCompleted counts every finished session, including rows whose
// completed date is malformed. The all-time total intentionally disagrees
// with the sum of per-year counts when corrupt legacy rows exist.
func (r *Repository) CountCompleted() (int64, error) {
	var count int64
	err := r.db.Model(&entities.ReadingSession{}).
		Where("status = ?", entities.StatusRead).
		Count(&count).Error
	return count, err
}

// CountActiveReading counts sessions that are both active and in the reading
// status.
func (r *Repository) CountActiveReading() (int64, error) {
	var count int64
	err := r.db.Model(&entities.ReadingSession{}).
		Where("is_active = ? AND status = ?", true, entities.StatusReading).
		Count(&count).Error
	return count, err
}
