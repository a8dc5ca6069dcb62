package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readtrack/internal/goalstore"
	"github.com/mrlokans/readtrack/internal/scheduler"
)

// SweepController handles consistency sweep settings and operations
type SweepController struct {
	goals     *goalstore.Store
	scheduler *scheduler.SweepScheduler
}

// NewSweepController creates a new controller
func NewSweepController(goals *goalstore.Store, sched *scheduler.SweepScheduler) *SweepController {
	return &SweepController{
		goals:     goals,
		scheduler: sched,
	}
}

// SweepSettingsResponse is the response for GET /settings/sweep
type SweepSettingsResponse struct {
	Config    goalstore.SweepConfigInfo `json:"config"`
	Status    goalstore.SweepStatus     `json:"status"`
	NextRun   *time.Time                `json:"next_run,omitempty"`
	IsRunning bool                      `json:"is_running"`
	Presets   []SchedulePreset          `json:"presets"`
}

// SchedulePreset is a predefined schedule option
type SchedulePreset struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// GetSettings returns current sweep settings
func (c *SweepController) GetSettings(ctx *gin.Context) {
	config := c.goals.GetSweepConfigInfo()
	status := c.goals.GetSweepStatus()

	var nextRun *time.Time
	isRunning := false
	if c.scheduler != nil {
		nextRun = c.scheduler.GetNextRunTime()
		isRunning = c.scheduler.IsRunning()
	}

	ctx.JSON(http.StatusOK, SweepSettingsResponse{
		Config:    config,
		Status:    status,
		NextRun:   nextRun,
		IsRunning: isRunning,
		Presets: []SchedulePreset{
			{Label: "Nightly at 4am", Value: "0 4 * * *", Description: "Runs once daily at 04:00"},
			{Label: "Every 6 hours", Value: "0 */6 * * *", Description: "Runs at midnight, 6am, noon, 6pm"},
			{Label: "Daily at midnight", Value: "0 0 * * *", Description: "Runs once daily at 00:00"},
			{Label: "Weekly on Sunday", Value: "0 0 * * 0", Description: "Runs every Sunday at midnight"},
		},
	})
}

// UpdateSweepRequest is the request body for POST /settings/sweep/save
type UpdateSweepRequest struct {
	Enabled  *bool  `json:"enabled"`
	Schedule string `json:"schedule"`
}

// UpdateSettings saves sweep settings and reschedules the job
func (c *SweepController) UpdateSettings(ctx *gin.Context) {
	var req UpdateSweepRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, "invalid request body")
		return
	}

	if req.Schedule != "" {
		if err := goalstore.ValidateCronSchedule(req.Schedule); err != nil {
			respondBadRequest(ctx, "invalid cron schedule: "+err.Error())
			return
		}
		if err := c.goals.SetSweepSchedule(req.Schedule); err != nil {
			respondInternalError(ctx, err, "save sweep schedule")
			return
		}
	}

	if req.Enabled != nil {
		if err := c.goals.SetSweepEnabled(*req.Enabled); err != nil {
			respondInternalError(ctx, err, "save sweep enabled state")
			return
		}
	}

	if c.scheduler != nil {
		if err := c.scheduler.Reschedule(); err != nil {
			respondError(ctx, http.StatusInternalServerError, "settings saved but failed to reschedule: "+err.Error())
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"config": c.goals.GetSweepConfigInfo()})
}

// ResetSettings clears database overrides, reverting to env/defaults
func (c *SweepController) ResetSettings(ctx *gin.Context) {
	if err := c.goals.ClearSweepSettings(); err != nil {
		respondInternalError(ctx, err, "reset sweep settings")
		return
	}

	if c.scheduler != nil {
		_ = c.scheduler.Reschedule()
	}

	ctx.JSON(http.StatusOK, gin.H{"config": c.goals.GetSweepConfigInfo()})
}

// RunNow enqueues an immediate sweep
func (c *SweepController) RunNow(ctx *gin.Context) {
	if c.scheduler == nil {
		respondError(ctx, http.StatusServiceUnavailable, "task queue is not enabled")
		return
	}

	if err := c.scheduler.RunNow(); err != nil {
		respondInternalError(ctx, err, "enqueue sweep")
		return
	}

	respondAccepted(ctx, "consistency sweep enqueued", nil)
}

// GetStatus returns just the latest sweep outcome (for polling)
func (c *SweepController) GetStatus(ctx *gin.Context) {
	status := c.goals.GetSweepStatus()

	var nextRun *time.Time
	isRunning := false
	if c.scheduler != nil {
		nextRun = c.scheduler.GetNextRunTime()
		isRunning = c.scheduler.IsRunning()
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":     status,
		"next_run":   nextRun,
		"is_running": isRunning,
	})
}
