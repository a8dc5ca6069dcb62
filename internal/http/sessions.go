package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/mrlokans/readtrack/internal/reading"
)

// SessionsController exposes the reading session lifecycle: status changes,
// re-reads, the read-next queue and per-book history.
type SessionsController struct {
	service *reading.Service
}

func NewSessionsController(service *reading.Service) *SessionsController {
	return &SessionsController{service: service}
}

// SetStatusRequest is the request body for a status change.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Date   string `json:"date"`
	Review string `json:"review"`
}

// SetStatus moves a book to a new reading status, creating a session when
// the book has no active one
// POST /api/books/:id/status
func (sc *SessionsController) SetStatus(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	session, err := sc.service.SetStatus(bookID, reading.StatusChange{
		Status: entities.ReadingStatus(req.Status),
		Date:   req.Date,
		Review: req.Review,
	})
	if err != nil {
		respondServiceError(c, err, "set status")
		return
	}

	c.JSON(http.StatusOK, session)
}

// StartRereadRequest is the request body for starting a re-read.
type StartRereadRequest struct {
	Date string `json:"date"`
}

// StartReread opens a fresh session for a previously finished book
// POST /api/books/:id/reread
func (sc *SessionsController) StartReread(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req StartRereadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	session, err := sc.service.StartReread(bookID, req.Date)
	if err != nil {
		respondServiceError(c, err, "start reread")
		return
	}

	respondCreated(c, session)
}

// GetActiveSession returns the book's current session
// GET /api/books/:id/sessions/active
func (sc *SessionsController) GetActiveSession(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	session, err := sc.service.ActiveSession(bookID)
	if err != nil {
		respondServiceError(c, err, "get active session")
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetHistory returns every session of a book, oldest attempt first
// GET /api/books/:id/sessions
func (sc *SessionsController) GetHistory(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	sessions, err := sc.service.History(bookID)
	if err != nil {
		respondServiceError(c, err, "get session history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// ListByStatus returns one representative session per book in the given status
// GET /api/sessions?status=read
func (sc *SessionsController) ListByStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		respondBadRequest(c, "status is required")
		return
	}

	sessions, err := sc.service.ByStatus(entities.ReadingStatus(status))
	if err != nil {
		respondServiceError(c, err, "list sessions by status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// GetQueue returns the read-next queue in priority order
// GET /api/sessions/queue
func (sc *SessionsController) GetQueue(c *gin.Context) {
	sessions, err := sc.service.Queue()
	if err != nil {
		respondServiceError(c, err, "get read-next queue")
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// MoveToTop promotes a read-next session to the front of the queue
// POST /api/sessions/:id/move-to-top
func (sc *SessionsController) MoveToTop(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	session, err := sc.service.MoveToTop(sessionID)
	if err != nil {
		respondServiceError(c, err, "move session to top")
		return
	}

	c.JSON(http.StatusOK, session)
}
