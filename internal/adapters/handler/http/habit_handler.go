package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/services"
)

type HabitHandler struct {
	svc *services.HabitService
}

func NewHabitHandler(svc *services.HabitService) *HabitHandler {
	return &HabitHandler{
		svc: svc,
	}
}

type createHabitRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	HabitView   bool   `json:"habit_view"`
	DailyGoal   *int   `json:"daily_goal"`
	Color       string `json:"color"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.DELETE("/:id", h.Delete)
	}
}

// Create godoc
// @Summary  Create a habit
// @Tags     habits
// @Accept   json
// @Produce  json
// @Param    habit  body      createHabitRequest  true  "Habit"
// @Success  201    {object}  domain.Habit
// @Failure  400    {object}  map[string]string
// @Security BearerAuth
// @Router   /habits [post]
func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	habit, err := h.svc.Create(c.Request.Context(), services.CreateHabitInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		HabitView:   req.HabitView,
		DailyGoal:   req.DailyGoal,
		Color:       req.Color,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit)
}

// List godoc
// @Summary  List habits with their streaks
// @Tags     habits
// @Produce  json
// @Param    tz   query     string  false  "IANA timezone, defaults to UTC"
// @Success  200  {array}   domain.HabitWithStreaks
// @Failure  400  {object}  map[string]string
// @Security BearerAuth
// @Router   /habits [get]
func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	loc, ok := location(c)
	if !ok {
		return
	}

	list, err := h.svc.ListWithStreaks(c.Request.Context(), userID, loc)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Delete godoc
// @Summary  Delete a habit and its completions
// @Tags     habits
// @Param    id   path  string  true  "Habit ID"
// @Success  204
// @Failure  404  {object}  map[string]string
// @Security BearerAuth
// @Router   /habits/{id} [delete]
func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
