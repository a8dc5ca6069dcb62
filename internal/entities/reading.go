package entities

import (
	"time"
)

type ReadingStatus string

const (
	StatusToRead   ReadingStatus = "to-read"
	StatusReadNext ReadingStatus = "read-next"
	StatusReading  ReadingStatus = "reading"
	StatusRead     ReadingStatus = "read"
	StatusDNF      ReadingStatus = "dnf"
)

// ValidStatus reports whether s is one of the known reading statuses.
func ValidStatus(s ReadingStatus) bool {
	switch s {
	case StatusToRead, StatusReadNext, StatusReading, StatusRead, StatusDNF:
		return true
	}
	return false
}

// Archived reports whether a session in status s is archived (no longer the
// book's current attempt).
func (s ReadingStatus) Archived() bool {
	return s == StatusRead || s == StatusDNF
}

type Book struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Title      string `gorm:"index;size:512" json:"title"`
	Author     string `gorm:"index;size:256" json:"author,omitempty"`
	ISBN       string `gorm:"index;size:20" json:"isbn,omitempty"`
	CoverURL   string `gorm:"size:2048" json:"cover_url,omitempty"`
	TotalPages *int   `json:"total_pages,omitempty"`
	// Rating lives on the book, not on individual sessions: a re-read updates
	// the reader's one opinion of the book rather than forking it.
	Rating    *int      `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sessions []ReadingSession `gorm:"foreignKey:BookID" json:"sessions,omitempty"`
}

// ReadingSession is one read-through attempt of a book. A book has at most
// one active session (IsActive = true); finished or abandoned attempts are
// kept forever as archived sessions.
type ReadingSession struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	BookID uint `gorm:"index;uniqueIndex:idx_book_session,priority:1" json:"book_id"`
	// SessionNumber starts at 1 for a book's first attempt and increases by
	// one with every re-read. Numbers are never reused or compacted.
	SessionNumber int           `gorm:"uniqueIndex:idx_book_session,priority:2" json:"session_number"`
	Status        ReadingStatus `gorm:"size:20;index;default:'to-read'" json:"status"`
	// No column default: gorm omits zero-valued fields that carry one, which
	// would turn an explicit false into true on insert.
	IsActive bool `gorm:"index" json:"is_active"`

	// Calendar days stored as YYYY-MM-DD text, never timestamps, so that
	// day-bucketed stats cannot drift across timezones.
	StartedDate   *string `gorm:"size:10" json:"started_date,omitempty"`
	CompletedDate *string `gorm:"size:10" json:"completed_date,omitempty"`
	DNFDate       *string `gorm:"size:10" json:"dnf_date,omitempty"`

	Review string `gorm:"type:text" json:"review,omitempty"`
	// ReadNextOrder is the queue position while Status is read-next; 0 is the
	// top of the queue. The value is meaningless in any other status.
	ReadNextOrder int `gorm:"default:0" json:"read_next_order"`

	Book Book `gorm:"foreignKey:BookID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProgressLog is one observation of how far into a book the reader is, tied
// to a single session. Ordered by ProgressDate within a session, CurrentPage
// never decreases; the timeline validator enforces this on every write.
type ProgressLog struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	BookID    uint `gorm:"index" json:"book_id"`
	SessionID uint `gorm:"index" json:"session_id"`

	CurrentPage int `json:"current_page"`
	// CurrentPercentage is derived as floor(CurrentPage/TotalPages*100)
	// whenever the book's page count is known; it is only ever entered
	// directly for books without one.
	CurrentPercentage int    `json:"current_percentage"`
	ProgressDate      string `gorm:"size:10;index" json:"progress_date"`
	// PagesRead is the number of pages advanced since the previous entry in
	// the session's timeline, maintained by the store on insert and edit.
	PagesRead int    `json:"pages_read"`
	Notes     string `gorm:"type:text" json:"notes,omitempty"`

	Session ReadingSession `gorm:"foreignKey:SessionID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (Book) TableName() string {
	return "books"
}

func (ReadingSession) TableName() string {
	return "reading_sessions"
}

func (ProgressLog) TableName() string {
	return "progress_logs"
}
