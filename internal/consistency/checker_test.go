package consistency

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/readtrack/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	dbPath := "./test_consistency_" + t.Name() + ".db"
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Book{}, &entities.ReadingSession{}, &entities.ProgressLog{})
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
		_ = os.Remove(dbPath)
	}

	return db, cleanup
}

func seedBook(t *testing.T, db *gorm.DB) *entities.Book {
	book := &entities.Book{Title: "Audited", Author: "A"}
	require.NoError(t, db.Create(book).Error)
	return book
}

func seedSession(t *testing.T, db *gorm.DB, bookID uint, number int, status entities.ReadingStatus, active bool) *entities.ReadingSession {
	session := &entities.ReadingSession{
		BookID:        bookID,
		SessionNumber: number,
		Status:        status,
		IsActive:      active,
	}
	require.NoError(t, db.Create(session).Error)
	return session
}

func seedEntry(t *testing.T, db *gorm.DB, session *entities.ReadingSession, date string, page, percentage int) *entities.ProgressLog {
	entry := &entities.ProgressLog{
		BookID:            session.BookID,
		SessionID:         session.ID,
		CurrentPage:       page,
		CurrentPercentage: percentage,
		ProgressDate:      date,
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func kinds(report *Report) []IssueKind {
	out := make([]IssueKind, 0, len(report.Issues))
	for _, issue := range report.Issues {
		out = append(out, issue.Kind)
	}
	return out
}

func TestCleanDataReportsNothing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	book := seedBook(t, db)
	date := "2026-03-20"
	session := &entities.ReadingSession{
		BookID:        book.ID,
		SessionNumber: 1,
		Status:        entities.StatusRead,
		IsActive:      false,
		CompletedDate: &date,
	}
	require.NoError(t, db.Create(session).Error)
	seedEntry(t, db, session, "2026-03-05", 100, 25)
	seedEntry(t, db, session, "2026-03-10", 150, 37)

	report, err := NewChecker(db).Run()
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, 1, report.CheckedSessions)
	assert.Equal(t, 2, report.CheckedEntries)
	assert.Equal(t, "1 sessions and 2 entries checked, 0 issues found", report.Summary())
}

func TestDetectsNonMonotonicTimeline(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	book := seedBook(t, db)
	session := seedSession(t, db, book.ID, 1, entities.StatusReading, true)
	seedEntry(t, db, session, "2026-03-05", 150, 37)
	bad := seedEntry(t, db, session, "2026-03-10", 100, 25)

	report, err := NewChecker(db).Run()
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, IssueNonMonotonic, report.Issues[0].Kind)
	assert.Equal(t, bad.ID, report.Issues[0].EntryID)
	assert.Contains(t, report.Issues[0].Detail, "page drops from 150")
}

func TestDetectsPercentageRegression(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	book := seedBook(t, db)
	session := seedSession(t, db, book.ID, 1, entities.StatusReading, true)
	seedEntry(t, db, session, "2026-03-05", 0, 45)
	seedEntry(t, db, session, "2026-03-10", 0, 30)

	report, err := NewChecker(db).Run()
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, IssueNonMonotonic, report.Issues[0].Kind)
	assert.Contains(t, report.Issues[0].Detail, "percentage drops")
}

func TestDetectsMalformedDates(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	book := seedBook(t, db)
	badDate := "841276800"
	session := &entities.ReadingSession{
		BookID:        book.ID,
		SessionNumber: 1,
		Status:        entities.StatusRead,
		IsActive:      false,
		CompletedDate: &badDate,
	}
	require.NoError(t, db.Create(session).Error)
	seedEntry(t, db, session, "not-a-date", 100, 25)

	report, err := NewChecker(db).Run()
	require.NoError(t, err)
	assert.ElementsMatch(t, []IssueKind{IssueMalformedDate, IssueMalformedDate}, kinds(report))
}

func TestMalformedEntriesDoNotPoisonTheWalk(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	book := seedBook(t, db)
	session := seedSession(t, db, book.ID, 1, entities.StatusReading, true)
	seedEntry(t, db, session, "2026-03-05", 100, 25)
	seedEntry(t, db, session, "garbage", 999, 99)
	seedEntry(t, db, session, "2026-03-10", 150, 37)

	report, err := NewChecker(db).Run()
	require.NoError(t, err)
	assert.ElementsMatch(t, []IssueKind{IssueMalformedDate}, kinds(report),
		"the well-formed part of the timeline is monotonic")
}

func TestDetectsMultipleActiveSessions(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	book := seedBook(t, db)
	seedSession(t, db, book.ID, 1, entities.StatusReading, true)
	seedSession(t, db, book.ID, 2, entities.StatusReading, true)

	report, err := NewChecker(db).Run()
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, IssueMultipleActive, report.Issues[0].Kind)
	assert.Equal(t, book.ID, report.Issues[0].BookID)
}

func TestDetectsMissingArchiveDates(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	book := seedBook(t, db)
	seedSession(t, db, book.ID, 1, entities.StatusRead, false)
	seedSession(t, db, book.ID, 2, entities.StatusDNF, false)

	report, err := NewChecker(db).Run()
	require.NoError(t, err)
	assert.ElementsMatch(t, []IssueKind{IssueMissingArchiveDate, IssueMissingArchiveDate}, kinds(report))
}

func TestDetectsOrphanedEntries(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	book := seedBook(t, db)
	entry := &entities.ProgressLog{
		BookID:       book.ID,
		SessionID:    4242,
		CurrentPage:  10,
		ProgressDate: "2026-03-05",
	}
	require.NoError(t, db.Create(entry).Error)

	report, err := NewChecker(db).Run()
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, IssueOrphanedEntry, report.Issues[0].Kind)
	assert.Equal(t, uint(4242), report.Issues[0].SessionID)
}
