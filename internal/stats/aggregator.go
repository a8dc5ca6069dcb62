// Package stats derives reading statistics from stored sessions and progress
// logs: completion counts, page totals, activity calendars and streaks.
//
// Scoped aggregates (per year, per month, per day) are computed only over
// rows whose date column holds a well-formed YYYY-MM-DD day. Rows carrying
// anything else -- epoch timestamps, free text, empty strings left behind by
// older imports -- are excluded from every scoped number but still counted
// in the unscoped totals, so corrupted history can never inflate a year and
// never silently disappears from the lifetime figures either.
package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/mrlokans/readtrack/internal/database/progress"
	"github.com/mrlokans/readtrack/internal/dates"
)

// SessionSource supplies session counts.
type SessionSource interface {
	CountCompletedMatching(datePrefix string) (int64, error)
	CountCompleted() (int64, error)
	CountActiveReading() (int64, error)
}

// ProgressSource supplies page sums and per-day activity.
type ProgressSource interface {
	SumPagesMatching(datePrefix string) (int64, error)
	SumPagesAll() (int64, error)
	DayTotals(start, end string) ([]progress.DayTotal, error)
	HighestActivePageForBook(bookID uint) (int, error)
	RecalculatePercentagesForBook(bookID uint, totalPages int) (int64, error)
}

// BooksRead groups completed-session counts.
type BooksRead struct {
	Total     int64 `json:"total"`
	ThisYear  int64 `json:"this_year"`
	ThisMonth int64 `json:"this_month"`
}

// PagesRead groups page-advance totals.
type PagesRead struct {
	Total     int64 `json:"total"`
	ThisYear  int64 `json:"this_year"`
	ThisMonth int64 `json:"this_month"`
	Today     int64 `json:"today"`
}

// Overview is the dashboard summary.
type Overview struct {
	CurrentlyReading   int64     `json:"currently_reading"`
	BooksRead          BooksRead `json:"books_read"`
	PagesRead          PagesRead `json:"pages_read"`
	AveragePagesPerDay int       `json:"average_pages_per_day"`
}

// ActivityDay is one day of the activity calendar.
type ActivityDay struct {
	Date      string `json:"date"`
	PagesRead int    `json:"pages_read"`
}

// Streak reports consecutive reading days.
type Streak struct {
	CurrentDays int `json:"current_days"`
	LongestDays int `json:"longest_days"`
}

// Aggregator computes statistics from the session and progress stores.
type Aggregator struct {
	sessions SessionSource
	progress ProgressSource
}

// NewAggregator creates a stats aggregator over the given sources.
func NewAggregator(sessions SessionSource, progress ProgressSource) *Aggregator {
	return &Aggregator{sessions: sessions, progress: progress}
}

// CompletedInYear counts sessions finished in the given calendar year.
func (a *Aggregator) CompletedInYear(year int) (int64, error) {
	prefix, err := yearPrefix(year)
	if err != nil {
		return 0, err
	}
	return a.sessions.CountCompletedMatching(prefix)
}

// CompletedInMonth counts sessions finished in the given calendar month.
func (a *Aggregator) CompletedInMonth(year, month int) (int64, error) {
	prefix, err := monthPrefix(year, month)
	if err != nil {
		return 0, err
	}
	return a.sessions.CountCompletedMatching(prefix)
}

// PagesInYear sums pages read in the given calendar year.
func (a *Aggregator) PagesInYear(year int) (int64, error) {
	prefix, err := yearPrefix(year)
	if err != nil {
		return 0, err
	}
	return a.progress.SumPagesMatching(prefix)
}

// PagesInMonth sums pages read in the given calendar month.
func (a *Aggregator) PagesInMonth(year, month int) (int64, error) {
	prefix, err := monthPrefix(year, month)
	if err != nil {
		return 0, err
	}
	return a.progress.SumPagesMatching(prefix)
}

// PagesOnDay sums pages read on one calendar day.
func (a *Aggregator) PagesOnDay(day string) (int64, error) {
	if !dates.Valid(day) {
		return 0, fmt.Errorf("invalid day %q, want YYYY-MM-DD", day)
	}
	return a.progress.SumPagesMatching(day)
}

// HighestCurrentPage returns the furthest page recorded across the book's
// active reading sessions.
func (a *Aggregator) HighestCurrentPage(bookID uint) (int, error) {
	return a.progress.HighestActivePageForBook(bookID)
}

// RecalculatePercentages rewrites the stored percentages of the book's
// active reading sessions against a corrected page count and returns the
// number of rows updated.
func (a *Aggregator) RecalculatePercentages(bookID uint, totalPages int) (int64, error) {
	return a.progress.RecalculatePercentagesForBook(bookID, totalPages)
}

// ActivityCalendar returns per-day page totals between start and end
// inclusive, oldest day first. Empty bounds leave the corresponding side
// open; days without any logged progress are absent rather than zero.
func (a *Aggregator) ActivityCalendar(start, end string) ([]ActivityDay, error) {
	if start != "" && !dates.Valid(start) {
		return nil, fmt.Errorf("invalid start %q, want YYYY-MM-DD", start)
	}
	if end != "" && !dates.Valid(end) {
		return nil, fmt.Errorf("invalid end %q, want YYYY-MM-DD", end)
	}

	totals, err := a.progress.DayTotals(start, end)
	if err != nil {
		return nil, err
	}
	calendar := make([]ActivityDay, len(totals))
	for i, d := range totals {
		calendar[i] = ActivityDay{Date: d.Date, PagesRead: d.PagesRead}
	}
	return calendar, nil
}

// AveragePagesPerDay is the mean page advance over days that have at least
// one progress entry, rounded to the nearest whole page. Days without
// activity do not drag the average down.
func (a *Aggregator) AveragePagesPerDay() (int, error) {
	totals, err := a.progress.DayTotals("", "")
	if err != nil {
		return 0, err
	}
	if len(totals) == 0 {
		return 0, nil
	}

	var sum int64
	for _, d := range totals {
		sum += int64(d.PagesRead)
	}
	return int(math.Round(float64(sum) / float64(len(totals)))), nil
}

// Overview assembles the dashboard summary. loc decides which day, month
// and year count as current.
func (a *Aggregator) Overview(loc *time.Location) (*Overview, error) {
	now := time.Now().In(loc)
	year := now.Year()
	month := int(now.Month())
	today := now.Format(dates.Layout)

	reading, err := a.sessions.CountActiveReading()
	if err != nil {
		return nil, err
	}

	booksTotal, err := a.sessions.CountCompleted()
	if err != nil {
		return nil, err
	}
	booksYear, err := a.CompletedInYear(year)
	if err != nil {
		return nil, err
	}
	booksMonth, err := a.CompletedInMonth(year, month)
	if err != nil {
		return nil, err
	}

	pagesTotal, err := a.progress.SumPagesAll()
	if err != nil {
		return nil, err
	}
	pagesYear, err := a.PagesInYear(year)
	if err != nil {
		return nil, err
	}
	pagesMonth, err := a.PagesInMonth(year, month)
	if err != nil {
		return nil, err
	}
	pagesToday, err := a.progress.SumPagesMatching(today)
	if err != nil {
		return nil, err
	}

	average, err := a.AveragePagesPerDay()
	if err != nil {
		return nil, err
	}

	return &Overview{
		CurrentlyReading: reading,
		BooksRead: BooksRead{
			Total:     booksTotal,
			ThisYear:  booksYear,
			ThisMonth: booksMonth,
		},
		PagesRead: PagesRead{
			Total:     pagesTotal,
			ThisYear:  pagesYear,
			ThisMonth: pagesMonth,
			Today:     pagesToday,
		},
		AveragePagesPerDay: average,
	}, nil
}

// ReadingStreak reports the longest run of consecutive reading days and the
// run ending now. The current streak survives until a full day passes with
// no progress: a reader who logged yesterday but not yet today is still on
// their streak.
func (a *Aggregator) ReadingStreak(loc *time.Location) (*Streak, error) {
	totals, err := a.progress.DayTotals("", "")
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return &Streak{}, nil
	}

	longest, run := 0, 0
	for i := range totals {
		if i > 0 && totals[i-1].Date == dates.Prev(totals[i].Date) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	current := 0
	today := dates.Today(loc)
	last := totals[len(totals)-1].Date
	if last == today || last == dates.Prev(today) {
		current = 1
		for i := len(totals) - 1; i > 0; i-- {
			if totals[i-1].Date != dates.Prev(totals[i].Date) {
				break
			}
			current++
		}
	}

	return &Streak{CurrentDays: current, LongestDays: longest}, nil
}

func yearPrefix(year int) (string, error) {
	if year < 1 || year > 9999 {
		return "", fmt.Errorf("year out of range: %d", year)
	}
	return fmt.Sprintf("%04d-", year), nil
}

func monthPrefix(year, month int) (string, error) {
	if year < 1 || year > 9999 {
		return "", fmt.Errorf("year out of range: %d", year)
	}
	if month < 1 || month > 12 {
		return "", fmt.Errorf("month out of range: %d", month)
	}
	return fmt.Sprintf("%04d-%02d-", year, month), nil
}
