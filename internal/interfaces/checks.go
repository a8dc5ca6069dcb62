package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/readtrack/internal/consistency"
	"github.com/mrlokans/readtrack/internal/database/books"
	"github.com/mrlokans/readtrack/internal/database/progress"
	"github.com/mrlokans/readtrack/internal/database/sessions"
	"github.com/mrlokans/readtrack/internal/goalstore"
	"github.com/mrlokans/readtrack/internal/http"
	"github.com/mrlokans/readtrack/internal/reading"
	"github.com/mrlokans/readtrack/internal/stats"
	"github.com/mrlokans/readtrack/internal/tasks"
	"github.com/mrlokans/readtrack/internal/timeline"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Book repository implementations
var _ http.BookStore = (*books.Repository)(nil)
var _ reading.BookCatalog = (*books.Repository)(nil)

// Session repository implementations
var _ reading.SessionStore = (*sessions.Repository)(nil)
var _ stats.SessionSource = (*sessions.Repository)(nil)

// Progress repository implementations
var _ reading.ProgressStore = (*progress.Repository)(nil)
var _ timeline.BoundsSource = (*progress.Repository)(nil)
var _ stats.ProgressSource = (*progress.Repository)(nil)
var _ tasks.PercentageRecalculator = (*progress.Repository)(nil)

// =============================================================================
// Statistics
// =============================================================================

// Aggregator implementations
var _ http.PageReader = (*stats.Aggregator)(nil)
var _ http.Recalculator = (*stats.Aggregator)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

// Sweep implementations
var _ tasks.SweepRunner = (*consistency.Checker)(nil)
var _ tasks.SweepRecorder = (*goalstore.Store)(nil)

// =============================================================================
// Settings
// =============================================================================

// Goal store implementations
var _ http.GoalSource = (*goalstore.Store)(nil)
