package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Create controllers with appropriate interfaces
	health := NewHealthController(cfg.Database, cfg.TaskClient, cfg.Version)
	booksController := NewBooksController(cfg.BookStore, cfg.Aggregator, cfg.Aggregator, cfg.TaskClient)
	sessionsController := NewSessionsController(cfg.ReadingService)
	progressController := NewProgressController(cfg.ReadingService)
	statsController := NewStatsController(cfg.Aggregator, cfg.Goals)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Books API endpoints
	router.POST("/api/books", booksController.CreateBook)
	router.GET("/api/books", booksController.GetAllBooks)
	router.GET("/api/books/:id", booksController.GetBook)
	router.PUT("/api/books/:id/pages", booksController.UpdateTotalPages)
	router.PATCH("/api/books/:id/rating", booksController.RateBook)
	router.GET("/api/books/:id/current-page", booksController.GetCurrentPage)

	// Session lifecycle endpoints
	router.POST("/api/books/:id/status", sessionsController.SetStatus)
	router.POST("/api/books/:id/reread", sessionsController.StartReread)
	router.GET("/api/books/:id/sessions", sessionsController.GetHistory)
	router.GET("/api/books/:id/sessions/active", sessionsController.GetActiveSession)
	router.GET("/api/sessions", sessionsController.ListByStatus)
	router.GET("/api/sessions/queue", sessionsController.GetQueue)
	router.POST("/api/sessions/:id/move-to-top", sessionsController.MoveToTop)

	// Progress endpoints
	router.POST("/api/sessions/:id/progress", progressController.LogProgress)
	router.GET("/api/sessions/:id/progress", progressController.GetTimeline)
	router.PUT("/api/progress/:id", progressController.EditProgress)

	// Stats endpoints
	router.GET("/api/stats/overview", statsController.GetOverview)
	router.GET("/api/stats/books", statsController.GetBooksRead)
	router.GET("/api/stats/pages", statsController.GetPagesRead)
	router.GET("/api/stats/activity", statsController.GetActivity)
	router.GET("/api/stats/streak", statsController.GetStreak)
	router.GET("/api/stats/goals", statsController.GetGoalProgress)

	// Goal settings endpoints
	if cfg.Goals != nil {
		goalsController := NewGoalsController(cfg.Goals)
		router.GET("/settings/goals", goalsController.GetGoals)
		router.POST("/settings/goals", goalsController.UpdateGoals)
		router.POST("/settings/goals/reset", goalsController.ResetGoals)

		// Sweep settings endpoints
		sweepController := NewSweepController(cfg.Goals, cfg.SweepScheduler)
		router.GET("/settings/sweep", sweepController.GetSettings)
		router.POST("/settings/sweep/save", sweepController.UpdateSettings)
		router.POST("/settings/sweep/reset", sweepController.ResetSettings)
		router.POST("/settings/sweep/run-now", sweepController.RunNow)
		router.GET("/settings/sweep/status", sweepController.GetStatus)
	}

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
