// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, settings access
//	├── books/           # Book catalog lookups and page-count updates
//	├── sessions/        # Reading session records and the read-next queue
//	└── progress/        # Progress log records and timeline bound queries
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./readtrack.db")
//
//	// Create domain-specific repositories
//	booksRepo := books.NewRepository(db.DB)
//	sessionsRepo := sessions.NewRepository(db.DB)
//	progressRepo := progress.NewRepository(db.DB)
//
//	// Use repositories
//	session, err := sessionsRepo.GetActiveForBook(bookID)
//	entry, err := progressRepo.MaxEntryBefore(sessionID, "2025-11-10", 0, false)
//
// # Interface Implementations
//
//   - books.Repository: implements reading.BookCatalog and http.BookStore
//   - sessions.Repository: implements reading.SessionStore and stats.SessionSource
//   - progress.Repository: implements reading.ProgressStore, timeline.BoundsSource,
//     stats.ProgressSource and tasks.PercentageRecalculator
//
// Compile-time checks for these live in internal/interfaces.
//
// # Date columns
//
// started_date, completed_date, dnf_date and progress_date are YYYY-MM-DD
// text columns, not timestamps. Legacy imports are known to have written
// non-date values into them (epoch seconds), so date-scoped queries in this
// layer filter with a strict GLOB pattern instead of trusting the column;
// see internal/dates.
package database
