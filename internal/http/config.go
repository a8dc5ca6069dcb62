package http

import (
	"github.com/mrlokans/readtrack/internal/database"
	"github.com/mrlokans/readtrack/internal/goalstore"
	"github.com/mrlokans/readtrack/internal/reading"
	"github.com/mrlokans/readtrack/internal/scheduler"
	"github.com/mrlokans/readtrack/internal/stats"
	"github.com/mrlokans/readtrack/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database       *database.Database
	ReadingService *reading.Service
	Aggregator     *stats.Aggregator

	// Book storage
	BookStore BookStore

	// Goals and sweep settings
	Goals *goalstore.Store

	// Consistency sweep scheduler (optional)
	SweepScheduler *scheduler.SweepScheduler

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
