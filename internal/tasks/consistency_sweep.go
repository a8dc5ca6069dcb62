package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/readtrack/internal/consistency"
)

// ConsistencySweepTask audits all stored sessions and progress logs for
// invariant violations. Trigger records what scheduled the sweep.
type ConsistencySweepTask struct {
	Trigger string `json:"trigger"` // "cron", "manual"
}

// Config returns the queue configuration for consistency sweeps.
func (t ConsistencySweepTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "consistency_sweep",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SweepRunner runs one full consistency sweep.
type SweepRunner interface {
	Run() (*consistency.Report, error)
}

// SweepRecorder persists the outcome of the latest sweep.
type SweepRecorder interface {
	SetSweepStatus(status, summary string) error
}

// ConsistencySweepProcessor creates a processor function for
// ConsistencySweepTask. Findings are logged and the outcome recorded; the
// sweep never modifies the audited data.
func ConsistencySweepProcessor(runner SweepRunner, recorder SweepRecorder) backlite.QueueProcessor[ConsistencySweepTask] {
	return func(ctx context.Context, task ConsistencySweepTask) error {
		if runner == nil {
			return fmt.Errorf("sweep runner not configured")
		}

		report, err := runner.Run()
		if err != nil {
			if recorder != nil {
				_ = recorder.SetSweepStatus("failed", err.Error())
			}
			return fmt.Errorf("consistency sweep (%s): %w", task.Trigger, err)
		}

		status := "clean"
		if !report.Clean() {
			status = "issues"
			for _, issue := range report.Issues {
				log.Printf("[TASK] Consistency issue (%s): %s", issue.Kind, issue.Detail)
			}
		}
		if recorder != nil {
			if err := recorder.SetSweepStatus(status, report.Summary()); err != nil {
				return fmt.Errorf("record sweep outcome: %w", err)
			}
		}

		log.Printf("[TASK] Consistency sweep (%s): %s", task.Trigger, report.Summary())
		return nil
	}
}

// NewConsistencySweepQueue creates a backlite queue for consistency sweeps.
func NewConsistencySweepQueue(runner SweepRunner, recorder SweepRecorder) backlite.Queue {
	return backlite.NewQueue(ConsistencySweepProcessor(runner, recorder))
}
