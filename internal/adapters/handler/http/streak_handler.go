package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/services"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/streak"
)

type StreakHandler struct {
	svc *services.StreakService
}

func NewStreakHandler(svc *services.StreakService) *StreakHandler {
	return &StreakHandler{svc: svc}
}

type computeRequest struct {
	Dates []string `json:"dates" binding:"required"`
	// RFC 3339 instant or YYYY-MM-DD; empty means now
	Reference string `json:"reference"`
}

func (h *StreakHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/habits/:id/streaks", h.ForHabit)
	router.POST("/streaks/compute", h.Compute)
}

// ForHabit godoc
// @Summary  Current and best streak of a habit
// @Tags     streaks
// @Produce  json
// @Param    id   path      string  true   "Habit ID"
// @Param    tz   query     string  false  "IANA timezone, defaults to UTC"
// @Success  200  {object}  streak.Result
// @Failure  404  {object}  map[string]string
// @Security BearerAuth
// @Router   /habits/{id}/streaks [get]
func (h *StreakHandler) ForHabit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	loc, ok := location(c)
	if !ok {
		return
	}

	res, err := h.svc.ForHabit(c.Request.Context(), c.Param("id"), userID, loc)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Compute godoc
// @Summary  Compute streaks for arbitrary dates
// @Tags     streaks
// @Accept   json
// @Produce  json
// @Param    body  body      computeRequest  true   "Dates and reference"
// @Param    tz    query     string          false  "IANA timezone applied to the reference"
// @Success  200   {object}  streak.Result
// @Failure  400   {object}  map[string]string
// @Security BearerAuth
// @Router   /streaks/compute [post]
func (h *StreakHandler) Compute(c *gin.Context) {
	var req computeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	reference, ok := h.reference(c, req.Reference)
	if !ok {
		return
	}

	res, err := h.svc.Compute(req.Dates, reference)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// reference resolves the instant "today" is derived from. An explicit tz
// overrides the offset of an RFC 3339 reference; a bare date is midnight in
// tz.
func (h *StreakHandler) reference(c *gin.Context, raw string) (time.Time, bool) {
	loc, ok := location(c)
	if !ok {
		return time.Time{}, false
	}
	explicitTZ := c.Query("tz") != ""

	if raw == "" {
		return h.svc.Now().In(loc), true
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		if explicitTZ {
			t = t.In(loc)
		}
		return t, true
	}

	t, err := time.ParseInLocation(streak.DateLayout, raw, loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format", "details": "reference: " + raw})
		return time.Time{}, false
	}
	return t, true
}
