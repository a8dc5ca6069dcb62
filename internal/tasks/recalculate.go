package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// RecalculatePercentagesTask rewrites the stored progress percentages of a
// book's active reading sessions after its page count was corrected. The
// rewrite itself runs in one database transaction; the queue only adds
// retries on top.
type RecalculatePercentagesTask struct {
	BookID     uint `json:"book_id"`
	TotalPages int  `json:"total_pages"`
}

// Config returns the queue configuration for percentage recalculations.
func (t RecalculatePercentagesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "recalculate_percentages",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PercentageRecalculator rewrites stored percentages against a corrected
// page count and reports how many rows changed.
type PercentageRecalculator interface {
	RecalculatePercentagesForBook(bookID uint, totalPages int) (int64, error)
}

// RecalculatePercentagesProcessor creates a processor function for
// RecalculatePercentagesTask.
func RecalculatePercentagesProcessor(recalculator PercentageRecalculator) backlite.QueueProcessor[RecalculatePercentagesTask] {
	return func(ctx context.Context, task RecalculatePercentagesTask) error {
		if recalculator == nil {
			return fmt.Errorf("recalculator not configured")
		}

		updated, err := recalculator.RecalculatePercentagesForBook(task.BookID, task.TotalPages)
		if err != nil {
			return fmt.Errorf("recalculate percentages for book %d: %w", task.BookID, err)
		}

		log.Printf("[TASK] Recalculated percentages for book %d against %d pages: %d entries updated",
			task.BookID, task.TotalPages, updated)
		return nil
	}
}

// NewRecalculatePercentagesQueue creates a backlite queue for percentage
// recalculation tasks.
func NewRecalculatePercentagesQueue(recalculator PercentageRecalculator) backlite.Queue {
	return backlite.NewQueue(RecalculatePercentagesProcessor(recalculator))
}
