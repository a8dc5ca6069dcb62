// Package scheduler runs the periodic consistency sweep on a cron schedule.
//
// The scheduler itself does no checking: on every tick it enqueues a
// ConsistencySweepTask, and the task queue workers perform the sweep. That
// keeps long-running audits off the cron goroutine and gives them the queue's
// retry and retention behaviour.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/readtrack/internal/goalstore"
	"github.com/mrlokans/readtrack/internal/tasks"
)

// SweepScheduler manages the periodic consistency sweep
type SweepScheduler struct {
	goals      *goalstore.Store
	taskClient *tasks.Client

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewSweepScheduler creates a new scheduler instance
func NewSweepScheduler(goals *goalstore.Store, taskClient *tasks.Client) *SweepScheduler {
	return &SweepScheduler{
		goals:      goals,
		taskClient: taskClient,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if the sweep is enabled
func (s *SweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	config := s.goals.GetSweepConfig()

	if !config.Enabled {
		log.Printf("Consistency sweep scheduler: disabled")
		return nil
	}

	// Validate schedule
	if err := goalstore.ValidateCronSchedule(config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", config.Schedule, err)
	}

	// Add the sweep job
	entryID, err := s.cron.AddFunc(config.Schedule, func() {
		s.enqueueSweep("cron")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweep job: %w", err)
	}
	s.entryID = entryID

	// Create cancellable context
	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	// Start cron scheduler
	s.cron.Start()
	s.isRunning = true

	// Calculate next run
	nextRun, _ := goalstore.GetNextRunTime(config.Schedule)
	log.Printf("Consistency sweep scheduler: started with schedule '%s' (%s). Next run: %v",
		config.Schedule,
		goalstore.GetCronDescription(config.Schedule),
		nextRun)

	// Monitor for context cancellation
	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *SweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	// Drop the entry so a later Start does not double-schedule it
	s.cron.Remove(s.entryID)

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Consistency sweep scheduler: stopped")
}

// Reschedule updates the schedule (call after settings change)
func (s *SweepScheduler) Reschedule() error {
	s.mu.Lock()
	wasRunning := s.isRunning
	s.mu.Unlock()

	if wasRunning {
		s.Stop()
	}

	// Restart with new settings
	return s.Start(context.Background())
}

// RunNow enqueues an immediate sweep regardless of schedule or enabled state
func (s *SweepScheduler) RunNow() error {
	return s.enqueueSweep("manual")
}

// IsRunning returns whether the scheduler is active
func (s *SweepScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next scheduled sweep will occur
func (s *SweepScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entries := s.cron.Entries()
	for _, entry := range entries {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *SweepScheduler) enqueueSweep(trigger string) error {
	if _, err := s.taskClient.Add(tasks.ConsistencySweepTask{Trigger: trigger}).Save(); err != nil {
		log.Printf("Consistency sweep scheduler: failed to enqueue sweep: %v", err)
		return fmt.Errorf("failed to enqueue sweep: %w", err)
	}
	log.Printf("Consistency sweep scheduler: sweep enqueued (trigger: %s)", trigger)
	return nil
}
