package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readtrack/internal/goalstore"
)

// GoalsController manages the reading goal settings.
type GoalsController struct {
	store *goalstore.Store
}

func NewGoalsController(store *goalstore.Store) *GoalsController {
	return &GoalsController{store: store}
}

// GetGoals returns both goals with their sources
// GET /settings/goals
func (gc *GoalsController) GetGoals(c *gin.Context) {
	c.JSON(http.StatusOK, gc.store.GetGoalsInfo())
}

// UpdateGoalsRequest is the request body for saving goals. Omitted fields
// keep their current value; 0 disables a goal.
type UpdateGoalsRequest struct {
	YearlyBooks *int `json:"yearly_books"`
	DailyPages  *int `json:"daily_pages"`
}

// UpdateGoals saves goal overrides to the database
// POST /settings/goals
func (gc *GoalsController) UpdateGoals(c *gin.Context) {
	var req UpdateGoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.YearlyBooks != nil {
		if *req.YearlyBooks < 0 {
			respondBadRequest(c, "yearly_books must not be negative")
			return
		}
		if err := gc.store.SetYearlyBooksGoal(*req.YearlyBooks); err != nil {
			respondInternalError(c, err, "save yearly books goal")
			return
		}
	}

	if req.DailyPages != nil {
		if *req.DailyPages < 0 {
			respondBadRequest(c, "daily_pages must not be negative")
			return
		}
		if err := gc.store.SetDailyPagesGoal(*req.DailyPages); err != nil {
			respondInternalError(c, err, "save daily pages goal")
			return
		}
	}

	c.JSON(http.StatusOK, gc.store.GetGoalsInfo())
}

// ResetGoals clears database overrides, reverting to env/defaults
// POST /settings/goals/reset
func (gc *GoalsController) ResetGoals(c *gin.Context) {
	if err := gc.store.ClearGoals(); err != nil {
		respondInternalError(c, err, "reset goals")
		return
	}

	c.JSON(http.StatusOK, gc.store.GetGoalsInfo())
}
