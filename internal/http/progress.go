package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readtrack/internal/reading"
)

// ProgressController exposes progress logging, corrections and session
// timelines. Validation failures surface as 422 responses carrying the
// conflicting entry so clients can show which log blocked the write.
type ProgressController struct {
	service *reading.Service
}

func NewProgressController(service *reading.Service) *ProgressController {
	return &ProgressController{service: service}
}

// LogProgressRequest is the request body for logging progress. Exactly one
// of page and percentage must be set.
type LogProgressRequest struct {
	Page       *int   `json:"page"`
	Percentage *int   `json:"percentage"`
	Date       string `json:"date"`
	Notes      string `json:"notes"`
}

// LogProgress records a progress entry on a session
// POST /api/sessions/:id/progress
func (pc *ProgressController) LogProgress(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req LogProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	entry, err := pc.service.LogProgress(sessionID, reading.ProgressInput{
		Page:       req.Page,
		Percentage: req.Percentage,
		Date:       req.Date,
		Notes:      req.Notes,
	})
	if err != nil {
		respondServiceError(c, err, "log progress")
		return
	}

	respondCreated(c, entry)
}

// EditProgressRequest is the request body for editing an entry. Omitted
// fields keep their current value.
type EditProgressRequest struct {
	Page       *int    `json:"page"`
	Percentage *int    `json:"percentage"`
	Date       *string `json:"date"`
	Notes      *string `json:"notes"`
}

// EditProgress corrects an existing progress entry
// PUT /api/progress/:id
func (pc *ProgressController) EditProgress(c *gin.Context) {
	entryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req EditProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	entry, err := pc.service.EditProgress(entryID, reading.EditInput{
		Page:       req.Page,
		Percentage: req.Percentage,
		Date:       req.Date,
		Notes:      req.Notes,
	})
	if err != nil {
		respondServiceError(c, err, "edit progress")
		return
	}

	c.JSON(http.StatusOK, entry)
}

// GetTimeline returns a session's progress entries in chronological order
// GET /api/sessions/:id/progress
func (pc *ProgressController) GetTimeline(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entries, err := pc.service.Timeline(sessionID)
	if err != nil {
		respondServiceError(c, err, "get timeline")
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}
