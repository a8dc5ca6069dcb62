// Package reading implements the session lifecycle around books: the status
// a book is in, the one-active-session rule, re-reads, the read-next queue
// and validated progress logging.
//
// A book moves through to-read, read-next, reading and ends in read or dnf.
// The archived statuses end the session for good; picking the book up again
// means a fresh session with the next session number, never resurrecting an
// old one. Progress writes are gated by the timeline validator before they
// touch storage, so a stored timeline always reads as non-decreasing.
package reading

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/readtrack/internal/dates"
	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/mrlokans/readtrack/internal/timeline"
)

// BookCatalog is the book lookup the service needs.
type BookCatalog interface {
	GetByID(id uint) (*entities.Book, error)
}

// SessionStore persists reading sessions.
type SessionStore interface {
	GetByID(id uint) (*entities.ReadingSession, error)
	GetActiveForBook(bookID uint) (*entities.ReadingSession, error)
	GetLatestForBook(bookID uint) (*entities.ReadingSession, error)
	InsertNext(session *entities.ReadingSession) error
	Update(session *entities.ReadingSession) error
	HasCompletedSession(bookID uint) (bool, error)
	ListForBook(bookID uint) ([]entities.ReadingSession, error)
	ListByStatus(status entities.ReadingStatus) ([]entities.ReadingSession, error)
	ListReadNextQueue() ([]entities.ReadingSession, error)
	NextReadNextOrder() (int, error)
	PromoteToTop(sessionID uint) error
}

// ProgressStore persists progress entries.
type ProgressStore interface {
	GetByID(id uint) (*entities.ProgressLog, error)
	ListForSession(sessionID uint) ([]entities.ProgressLog, error)
	InsertEntry(entry *entities.ProgressLog) error
	UpdateEntry(entry *entities.ProgressLog) error
}

// Service orchestrates session lifecycle and progress writes.
type Service struct {
	books     BookCatalog
	sessions  SessionStore
	progress  ProgressStore
	validator *timeline.Validator
	loc       *time.Location
}

// NewService creates the lifecycle service. loc decides what "today" means
// when a request omits a date.
func NewService(books BookCatalog, sessions SessionStore, progress ProgressStore, validator *timeline.Validator, loc *time.Location) *Service {
	return &Service{
		books:     books,
		sessions:  sessions,
		progress:  progress,
		validator: validator,
		loc:       loc,
	}
}

// StatusChange describes a requested status transition.
type StatusChange struct {
	Status entities.ReadingStatus
	// Date is the calendar day of the transition, YYYY-MM-DD. Empty means
	// today.
	Date string
	// Review is recorded on the session when archiving as read or dnf.
	Review string
}

// SetStatus moves the book's active session to the requested status,
// creating a session when the book has none. Setting the status the book is
// already in is a no-op that returns the existing session, as is re-marking
// a book whose latest session already archived in that status.
func (s *Service) SetStatus(bookID uint, change StatusChange) (*entities.ReadingSession, error) {
	if !entities.ValidStatus(change.Status) {
		return nil, rejected(fmt.Sprintf("unknown reading status %q", change.Status))
	}
	date, err := s.resolveDate(change.Date)
	if err != nil {
		return nil, err
	}
	if _, err := s.books.GetByID(bookID); err != nil {
		return nil, translateNotFound(err, ErrBookNotFound)
	}

	active, err := s.sessions.GetActiveForBook(bookID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return s.beginSession(bookID, change, date)
	}
	if active.Status == change.Status {
		return active, nil
	}

	if err := s.applyTransition(active, change, date); err != nil {
		return nil, err
	}
	if err := s.sessions.Update(active); err != nil {
		return nil, err
	}
	return active, nil
}

// beginSession opens a session for a book with no active one. The store
// assigns the next session number, so a book whose attempts all archived
// continues the sequence instead of restarting it.
func (s *Service) beginSession(bookID uint, change StatusChange, date string) (*entities.ReadingSession, error) {
	latest, err := s.sessions.GetLatestForBook(bookID)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.Status == change.Status && change.Status.Archived() {
		// Marking an already-read or already-abandoned book again must not
		// open a phantom re-read.
		return latest, nil
	}

	session := &entities.ReadingSession{
		BookID:   bookID,
		Status:   change.Status,
		IsActive: !change.Status.Archived(),
	}
	switch change.Status {
	case entities.StatusReadNext:
		order, err := s.sessions.NextReadNextOrder()
		if err != nil {
			return nil, err
		}
		session.ReadNextOrder = order
	case entities.StatusReading:
		session.StartedDate = &date
	case entities.StatusRead:
		session.CompletedDate = &date
		session.Review = change.Review
	case entities.StatusDNF:
		session.DNFDate = &date
		session.Review = change.Review
	}

	if err := s.sessions.InsertNext(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) applyTransition(session *entities.ReadingSession, change StatusChange, date string) error {
	switch change.Status {
	case entities.StatusToRead:
		// Back to the wishlist: the attempt has not happened yet.
		session.StartedDate = nil
		session.CompletedDate = nil
		session.DNFDate = nil
		session.ReadNextOrder = 0
	case entities.StatusReadNext:
		order, err := s.sessions.NextReadNextOrder()
		if err != nil {
			return err
		}
		session.ReadNextOrder = order
	case entities.StatusReading:
		if session.StartedDate == nil {
			session.StartedDate = &date
		}
	case entities.StatusRead:
		session.IsActive = false
		session.CompletedDate = &date
		if change.Review != "" {
			session.Review = change.Review
		}
	case entities.StatusDNF:
		session.IsActive = false
		session.DNFDate = &date
		if change.Review != "" {
			session.Review = change.Review
		}
	}
	session.Status = change.Status
	return nil
}

// StartReread opens the next session for a book that was read to the end at
// least once. date is the day reading resumed; empty means today.
func (s *Service) StartReread(bookID uint, date string) (*entities.ReadingSession, error) {
	resolved, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	if _, err := s.books.GetByID(bookID); err != nil {
		return nil, translateNotFound(err, ErrBookNotFound)
	}

	active, err := s.sessions.GetActiveForBook(bookID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrActiveSessionExists
	}

	completed, err := s.sessions.HasCompletedSession(bookID)
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, ErrNoCompletedSession
	}

	session := &entities.ReadingSession{
		BookID:      bookID,
		Status:      entities.StatusReading,
		IsActive:    true,
		StartedDate: &resolved,
	}
	if err := s.sessions.InsertNext(session); err != nil {
		return nil, err
	}
	return session, nil
}

// MoveToTop puts the session at position 0 of the read-next queue.
func (s *Service) MoveToTop(sessionID uint) (*entities.ReadingSession, error) {
	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return nil, translateNotFound(err, ErrSessionNotFound)
	}
	if session.Status != entities.StatusReadNext {
		return nil, ErrNotInReadNextQueue
	}
	if err := s.sessions.PromoteToTop(sessionID); err != nil {
		return nil, err
	}
	session.ReadNextOrder = 0
	return session, nil
}

// ProgressInput is a requested progress entry. Exactly one of Page and
// Percentage must be set.
type ProgressInput struct {
	Page       *int
	Percentage *int
	// Date is the calendar day the progress was made, YYYY-MM-DD. Empty
	// means today.
	Date  string
	Notes string
}

// LogProgress records a progress entry against the session after the
// timeline validator accepts it. The session must be the book's active one
// and in the reading status.
func (s *Service) LogProgress(sessionID uint, input ProgressInput) (*entities.ProgressLog, error) {
	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return nil, translateNotFound(err, ErrSessionNotFound)
	}
	if !session.IsActive || session.Status != entities.StatusReading {
		return nil, ErrSessionNotReading
	}

	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, err
	}
	book, err := s.books.GetByID(session.BookID)
	if err != nil {
		return nil, translateNotFound(err, ErrBookNotFound)
	}

	page, percentage, byPercentage, err := resolveProgress(input.Page, input.Percentage, book.TotalPages)
	if err != nil {
		return nil, err
	}

	value := page
	if byPercentage {
		value = percentage
	}
	result, err := s.validator.ValidateNewEntry(sessionID, date, value, byPercentage)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &ValidationError{Result: result}
	}

	entry := &entities.ProgressLog{
		BookID:            session.BookID,
		SessionID:         sessionID,
		CurrentPage:       page,
		CurrentPercentage: percentage,
		ProgressDate:      date,
		Notes:             input.Notes,
	}
	if err := s.progress.InsertEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// EditInput is a partial correction of an existing entry. Nil fields keep
// their stored value.
type EditInput struct {
	Page       *int
	Percentage *int
	Date       *string
	Notes      *string
}

// EditProgress corrects an existing entry. The edited entry is excluded from
// its own validation, so moving it between its neighbours or fixing only the
// notes always passes. Archived sessions stay editable: corrections of old
// timelines are the main reason edits exist.
func (s *Service) EditProgress(entryID uint, input EditInput) (*entities.ProgressLog, error) {
	entry, err := s.progress.GetByID(entryID)
	if err != nil {
		return nil, translateNotFound(err, ErrEntryNotFound)
	}
	session, err := s.sessions.GetByID(entry.SessionID)
	if err != nil {
		return nil, translateNotFound(err, ErrSessionNotFound)
	}
	book, err := s.books.GetByID(session.BookID)
	if err != nil {
		return nil, translateNotFound(err, ErrBookNotFound)
	}

	newDate := entry.ProgressDate
	if input.Date != nil {
		if !dates.Valid(*input.Date) {
			return nil, rejected(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", *input.Date))
		}
		newDate = *input.Date
	}

	page := entry.CurrentPage
	percentage := entry.CurrentPercentage
	byPercentage := book.TotalPages == nil || *book.TotalPages <= 0
	if input.Page != nil || input.Percentage != nil {
		page, percentage, byPercentage, err = resolveProgress(input.Page, input.Percentage, book.TotalPages)
		if err != nil {
			return nil, err
		}
	}

	value := page
	if byPercentage {
		value = percentage
	}
	result, err := s.validator.ValidateEdit(entryID, entry.SessionID, newDate, value, byPercentage)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &ValidationError{Result: result}
	}

	entry.CurrentPage = page
	entry.CurrentPercentage = percentage
	entry.ProgressDate = newDate
	if input.Notes != nil {
		entry.Notes = *input.Notes
	}
	if err := s.progress.UpdateEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetSession retrieves a session by ID.
func (s *Service) GetSession(sessionID uint) (*entities.ReadingSession, error) {
	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return nil, translateNotFound(err, ErrSessionNotFound)
	}
	return session, nil
}

// ActiveSession returns the book's active session, or ErrSessionNotFound if
// the book has none.
func (s *Service) ActiveSession(bookID uint) (*entities.ReadingSession, error) {
	if _, err := s.books.GetByID(bookID); err != nil {
		return nil, translateNotFound(err, ErrBookNotFound)
	}
	session, err := s.sessions.GetActiveForBook(bookID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// History returns the book's full session history, first attempt first.
func (s *Service) History(bookID uint) ([]entities.ReadingSession, error) {
	if _, err := s.books.GetByID(bookID); err != nil {
		return nil, translateNotFound(err, ErrBookNotFound)
	}
	return s.sessions.ListForBook(bookID)
}

// Timeline returns the session's progress entries in chronological order.
func (s *Service) Timeline(sessionID uint) ([]entities.ProgressLog, error) {
	if _, err := s.sessions.GetByID(sessionID); err != nil {
		return nil, translateNotFound(err, ErrSessionNotFound)
	}
	return s.progress.ListForSession(sessionID)
}

// ByStatus returns one representative session per book in the given status.
func (s *Service) ByStatus(status entities.ReadingStatus) ([]entities.ReadingSession, error) {
	if !entities.ValidStatus(status) {
		return nil, rejected(fmt.Sprintf("unknown reading status %q", status))
	}
	return s.sessions.ListByStatus(status)
}

// Queue returns the read-next queue from the top down.
func (s *Service) Queue() ([]entities.ReadingSession, error) {
	return s.sessions.ListReadNextQueue()
}

func (s *Service) resolveDate(date string) (string, error) {
	if date == "" {
		return dates.Today(s.loc), nil
	}
	if !dates.Valid(date) {
		return "", rejected(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", date))
	}
	return date, nil
}

// resolveProgress turns raw page-or-percentage input into the canonical
// stored pair. Books with a known page count store pages as the source of
// truth: a percentage input converts to the nearest page and the stored
// percentage is re-derived from that page by flooring. Books without a page
// count track percentage only, with the page fixed at zero.
func resolveProgress(page, percentage *int, totalPages *int) (int, int, bool, error) {
	hasTotal := totalPages != nil && *totalPages > 0
	switch {
	case page != nil && percentage != nil:
		return 0, 0, false, rejected("provide either a page number or a percentage, not both")
	case page != nil:
		if *page < 0 {
			return 0, 0, false, rejected("page number cannot be negative")
		}
		pct := 0
		if hasTotal {
			pct = *page * 100 / *totalPages
		}
		return *page, pct, false, nil
	case percentage != nil:
		if *percentage < 0 || *percentage > 100 {
			return 0, 0, false, rejected("percentage must be between 0 and 100")
		}
		if hasTotal {
			p := int(math.Round(float64(*percentage) * float64(*totalPages) / 100))
			return p, p * 100 / *totalPages, false, nil
		}
		return 0, *percentage, true, nil
	default:
		return 0, 0, false, rejected("a page number or percentage is required")
	}
}

func translateNotFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
