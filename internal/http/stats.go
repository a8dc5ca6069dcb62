package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readtrack/internal/dates"
	"github.com/mrlokans/readtrack/internal/stats"
)

// GoalSource provides the configured reading goals, 0 when unset.
type GoalSource interface {
	GetYearlyBooksGoal() int
	GetDailyPagesGoal() int
}

type StatsController struct {
	aggregator *stats.Aggregator
	goals      GoalSource
}

func NewStatsController(aggregator *stats.Aggregator, goals GoalSource) *StatsController {
	return &StatsController{aggregator: aggregator, goals: goals}
}

// GetOverview returns the dashboard summary. The optional timezone query
// parameter controls which calendar day counts as "today"; unknown names
// fall back to UTC
// GET /api/stats/overview?timezone=Europe/Berlin
func (sc *StatsController) GetOverview(c *gin.Context) {
	loc := dates.Location(c.Query("timezone"))

	overview, err := sc.aggregator.Overview(loc)
	if err != nil {
		respondInternalError(c, err, "stats overview")
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetBooksRead returns how many books were finished in a year or month
// GET /api/stats/books?year=2026
// GET /api/stats/books?year=2026&month=3
func (sc *StatsController) GetBooksRead(c *gin.Context) {
	year, ok := parseQueryInt(c, "year")
	if !ok {
		return
	}
	if year < 1 || year > 9999 {
		respondBadRequest(c, "year out of range")
		return
	}

	if monthStr := c.Query("month"); monthStr != "" {
		month, ok := parseQueryInt(c, "month")
		if !ok {
			return
		}
		if month < 1 || month > 12 {
			respondBadRequest(c, "month out of range")
			return
		}
		count, err := sc.aggregator.CompletedInMonth(year, month)
		if err != nil {
			respondInternalError(c, err, "books read in month")
			return
		}
		c.JSON(http.StatusOK, gin.H{"year": year, "month": month, "count": count})
		return
	}

	count, err := sc.aggregator.CompletedInYear(year)
	if err != nil {
		respondInternalError(c, err, "books read in year")
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "count": count})
}

// GetPagesRead returns the pages read in a year, month or single day
// GET /api/stats/pages?year=2026
// GET /api/stats/pages?year=2026&month=3
// GET /api/stats/pages?date=2026-03-05
func (sc *StatsController) GetPagesRead(c *gin.Context) {
	if day := c.Query("date"); day != "" {
		if !dates.Valid(day) {
			respondBadRequest(c, "date must be YYYY-MM-DD")
			return
		}
		pages, err := sc.aggregator.PagesOnDay(day)
		if err != nil {
			respondInternalError(c, err, "pages read on day")
			return
		}
		c.JSON(http.StatusOK, gin.H{"date": day, "pages": pages})
		return
	}

	year, ok := parseQueryInt(c, "year")
	if !ok {
		return
	}
	if year < 1 || year > 9999 {
		respondBadRequest(c, "year out of range")
		return
	}

	if monthStr := c.Query("month"); monthStr != "" {
		month, ok := parseQueryInt(c, "month")
		if !ok {
			return
		}
		if month < 1 || month > 12 {
			respondBadRequest(c, "month out of range")
			return
		}
		pages, err := sc.aggregator.PagesInMonth(year, month)
		if err != nil {
			respondInternalError(c, err, "pages read in month")
			return
		}
		c.JSON(http.StatusOK, gin.H{"year": year, "month": month, "pages": pages})
		return
	}

	pages, err := sc.aggregator.PagesInYear(year)
	if err != nil {
		respondInternalError(c, err, "pages read in year")
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "pages": pages})
}

// GetActivity returns per-day page totals for the calendar heatmap
// GET /api/stats/activity?start=2026-01-01&end=2026-12-31
func (sc *StatsController) GetActivity(c *gin.Context) {
	start := c.Query("start")
	end := c.Query("end")
	if start != "" && !dates.Valid(start) {
		respondBadRequest(c, "start must be YYYY-MM-DD")
		return
	}
	if end != "" && !dates.Valid(end) {
		respondBadRequest(c, "end must be YYYY-MM-DD")
		return
	}

	days, err := sc.aggregator.ActivityCalendar(start, end)
	if err != nil {
		respondInternalError(c, err, "activity calendar")
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days, "count": len(days)})
}

// GetStreak returns the current and longest run of consecutive reading days
// GET /api/stats/streak?timezone=Europe/Berlin
func (sc *StatsController) GetStreak(c *gin.Context) {
	loc := dates.Location(c.Query("timezone"))

	streak, err := sc.aggregator.ReadingStreak(loc)
	if err != nil {
		respondInternalError(c, err, "reading streak")
		return
	}

	c.JSON(http.StatusOK, streak)
}

// GoalProgress pairs a configured goal with the current count towards it.
type GoalProgress struct {
	Goal      int  `json:"goal"`
	Current   int  `json:"current"`
	Achieved  bool `json:"achieved"`
	Remaining int  `json:"remaining"`
}

// GetGoalProgress reports progress against the configured yearly books and
// daily pages goals for the caller's timezone
// GET /api/stats/goals?timezone=Europe/Berlin
func (sc *StatsController) GetGoalProgress(c *gin.Context) {
	loc := dates.Location(c.Query("timezone"))
	now := time.Now().In(loc)

	booksThisYear, err := sc.aggregator.CompletedInYear(now.Year())
	if err != nil {
		respondInternalError(c, err, "goal progress: books")
		return
	}
	pagesToday, err := sc.aggregator.PagesOnDay(dates.Today(loc))
	if err != nil {
		respondInternalError(c, err, "goal progress: pages")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"yearly_books": goalProgress(sc.goals.GetYearlyBooksGoal(), int(booksThisYear)),
		"daily_pages":  goalProgress(sc.goals.GetDailyPagesGoal(), int(pagesToday)),
	})
}

func goalProgress(goal, current int) GoalProgress {
	remaining := goal - current
	if remaining < 0 {
		remaining = 0
	}
	return GoalProgress{
		Goal:      goal,
		Current:   current,
		Achieved:  goal > 0 && current >= goal,
		Remaining: remaining,
	}
}
