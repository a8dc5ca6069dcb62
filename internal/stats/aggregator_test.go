package stats

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/readtrack/internal/database/progress"
	"github.com/mrlokans/readtrack/internal/database/sessions"
	"github.com/mrlokans/readtrack/internal/dates"
	"github.com/mrlokans/readtrack/internal/entities"
)

func setupAggregator(t *testing.T) (*Aggregator, *gorm.DB, func()) {
	dbPath := "./test_stats_" + t.Name() + ".db"
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Book{}, &entities.ReadingSession{}, &entities.ProgressLog{})
	require.NoError(t, err)

	aggregator := NewAggregator(sessions.NewRepository(db), progress.NewRepository(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
		_ = os.Remove(dbPath)
	}

	return aggregator, db, cleanup
}

func seedCompleted(t *testing.T, db *gorm.DB, completedDate string) {
	book := &entities.Book{Title: "Seeded", Author: "A"}
	require.NoError(t, db.Create(book).Error)
	date := completedDate
	session := &entities.ReadingSession{
		BookID:        book.ID,
		SessionNumber: 1,
		Status:        entities.StatusRead,
		IsActive:      false,
		CompletedDate: &date,
	}
	require.NoError(t, db.Create(session).Error)
}

func seedPages(t *testing.T, db *gorm.DB, progressDate string, pagesRead int) {
	book := &entities.Book{Title: "Seeded", Author: "A"}
	require.NoError(t, db.Create(book).Error)
	session := &entities.ReadingSession{
		BookID:        book.ID,
		SessionNumber: 1,
		Status:        entities.StatusReading,
		IsActive:      true,
	}
	require.NoError(t, db.Create(session).Error)
	entry := &entities.ProgressLog{
		BookID:       book.ID,
		SessionID:    session.ID,
		CurrentPage:  pagesRead,
		ProgressDate: progressDate,
		PagesRead:    pagesRead,
	}
	require.NoError(t, db.Create(entry).Error)
}

func TestCompletedCounts(t *testing.T) {
	aggregator, db, cleanup := setupAggregator(t)
	defer cleanup()

	seedCompleted(t, db, "2026-01-15")
	seedCompleted(t, db, "2026-03-09")
	seedCompleted(t, db, "2025-12-31")
	seedCompleted(t, db, "841276800")

	year, err := aggregator.CompletedInYear(2026)
	require.NoError(t, err)
	assert.Equal(t, int64(2), year)

	month, err := aggregator.CompletedInMonth(2026, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), month)

	_, err = aggregator.CompletedInMonth(2026, 13)
	assert.Error(t, err)
	_, err = aggregator.CompletedInYear(-5)
	assert.Error(t, err)
}

func TestPagesSums(t *testing.T) {
	aggregator, db, cleanup := setupAggregator(t)
	defer cleanup()

	seedPages(t, db, "2026-03-05", 100)
	seedPages(t, db, "2026-03-05", 30)
	seedPages(t, db, "2026-04-01", 50)
	seedPages(t, db, "2025-07-01", 80)
	seedPages(t, db, "garbage", 999)

	year, err := aggregator.PagesInYear(2026)
	require.NoError(t, err)
	assert.Equal(t, int64(180), year)

	month, err := aggregator.PagesInMonth(2026, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(130), month)

	day, err := aggregator.PagesOnDay("2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, int64(130), day)

	_, err = aggregator.PagesOnDay("03/05/2026")
	assert.Error(t, err)
}

func TestActivityCalendar(t *testing.T) {
	aggregator, db, cleanup := setupAggregator(t)
	defer cleanup()

	seedPages(t, db, "2026-03-05", 100)
	seedPages(t, db, "2026-03-05", 30)
	seedPages(t, db, "2026-03-07", 50)
	seedPages(t, db, "841276800", 40)

	calendar, err := aggregator.ActivityCalendar("2026-03-01", "2026-03-31")
	require.NoError(t, err)
	require.Len(t, calendar, 2)
	assert.Equal(t, ActivityDay{Date: "2026-03-05", PagesRead: 130}, calendar[0])
	assert.Equal(t, ActivityDay{Date: "2026-03-07", PagesRead: 50}, calendar[1])

	_, err = aggregator.ActivityCalendar("bad", "")
	assert.Error(t, err)
	_, err = aggregator.ActivityCalendar("", "2026-3-1")
	assert.Error(t, err)
}

func TestAveragePagesPerDay(t *testing.T) {
	aggregator, db, cleanup := setupAggregator(t)
	defer cleanup()

	average, err := aggregator.AveragePagesPerDay()
	require.NoError(t, err)
	assert.Equal(t, 0, average, "no activity means no average")

	seedPages(t, db, "2026-03-05", 100)
	seedPages(t, db, "2026-03-07", 51)

	average, err = aggregator.AveragePagesPerDay()
	require.NoError(t, err)
	assert.Equal(t, 76, average, "75.5 rounds up; idle days in between are ignored")
}

func TestOverview(t *testing.T) {
	aggregator, db, cleanup := setupAggregator(t)
	defer cleanup()

	now := time.Now().UTC()
	today := now.Format(dates.Layout)
	// A second day in the current year that is never today itself.
	sameYearDay := now.AddDate(0, 0, -1)
	if sameYearDay.Year() != now.Year() {
		sameYearDay = now.AddDate(0, 0, 1)
	}
	sameYear := sameYearDay.Format(dates.Layout)
	lastYear := now.AddDate(-1, 0, 0).Format(dates.Layout)

	seedCompleted(t, db, today)
	seedCompleted(t, db, lastYear)
	seedCompleted(t, db, "841276800")

	seedPages(t, db, today, 40)
	seedPages(t, db, sameYear, 100)
	seedPages(t, db, lastYear, 60)

	book := &entities.Book{Title: "Current", Author: "A"}
	require.NoError(t, db.Create(book).Error)
	session := &entities.ReadingSession{BookID: book.ID, SessionNumber: 1, Status: entities.StatusReading, IsActive: true}
	require.NoError(t, db.Create(session).Error)

	overview, err := aggregator.Overview(time.UTC)
	require.NoError(t, err)

	assert.Equal(t, int64(1), overview.CurrentlyReading)
	assert.Equal(t, int64(3), overview.BooksRead.Total, "the malformed row still counts all-time")
	assert.Equal(t, int64(1), overview.BooksRead.ThisYear)
	assert.Equal(t, int64(200), overview.PagesRead.Total)
	assert.Equal(t, int64(140), overview.PagesRead.ThisYear)
	assert.Equal(t, int64(40), overview.PagesRead.Today)
}

func TestReadingStreak(t *testing.T) {
	aggregator, db, cleanup := setupAggregator(t)
	defer cleanup()

	streak, err := aggregator.ReadingStreak(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 0, streak.CurrentDays)
	assert.Equal(t, 0, streak.LongestDays)

	now := time.Now().UTC()
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format(dates.Layout)
	}

	// A finished four-day run in the past, and a live two-day run.
	for _, d := range []string{day(-30), day(-29), day(-28), day(-27), day(-1), day(0)} {
		seedPages(t, db, d, 10)
	}

	streak, err = aggregator.ReadingStreak(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2, streak.CurrentDays)
	assert.Equal(t, 4, streak.LongestDays)
}

func TestStreakSurvivesUntilADayIsMissed(t *testing.T) {
	aggregator, db, cleanup := setupAggregator(t)
	defer cleanup()

	now := time.Now().UTC()
	yesterday := now.AddDate(0, 0, -1).Format(dates.Layout)

	seedPages(t, db, yesterday, 10)

	streak, err := aggregator.ReadingStreak(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.CurrentDays, "yesterday's reading keeps the streak alive today")
}

func TestStreakBreaksAfterAnIdleDay(t *testing.T) {
	aggregator, db, cleanup := setupAggregator(t)
	defer cleanup()

	threeDaysAgo := time.Now().UTC().AddDate(0, 0, -3).Format(dates.Layout)
	seedPages(t, db, threeDaysAgo, 10)

	streak, err := aggregator.ReadingStreak(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 0, streak.CurrentDays)
	assert.Equal(t, 1, streak.LongestDays)
}

func TestHighestCurrentPageDelegates(t *testing.T) {
	aggregator, db, cleanup := setupAggregator(t)
	defer cleanup()

	book := &entities.Book{Title: "Current", Author: "A"}
	require.NoError(t, db.Create(book).Error)
	session := &entities.ReadingSession{BookID: book.ID, SessionNumber: 1, Status: entities.StatusReading, IsActive: true}
	require.NoError(t, db.Create(session).Error)
	entry := &entities.ProgressLog{BookID: book.ID, SessionID: session.ID, CurrentPage: 225, ProgressDate: "2026-03-20", PagesRead: 225}
	require.NoError(t, db.Create(entry).Error)

	page, err := aggregator.HighestCurrentPage(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 225, page)
}
