package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/services"
)

type CompletionHandler struct {
	svc *services.CompletionService
}

func NewCompletionHandler(svc *services.CompletionService) *CompletionHandler {
	return &CompletionHandler{svc: svc}
}

type completeRequest struct {
	Date string `json:"date" binding:"required"`
}

func (h *CompletionHandler) RegisterRoutes(router *gin.RouterGroup) {
	completions := router.Group("/habits/:id/completions")
	{
		completions.GET("", h.List)
		completions.POST("", h.Complete)
		completions.DELETE("/:date", h.Undo)
	}
}

// List godoc
// @Summary  Completion dates of a habit
// @Tags     completions
// @Produce  json
// @Param    id   path      string  true  "Habit ID"
// @Success  200  {object}  map[string][]string
// @Security BearerAuth
// @Router   /habits/{id}/completions [get]
func (h *CompletionHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	dates, err := h.svc.List(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates})
}

// Complete godoc
// @Summary  Mark a habit done on a day
// @Tags     completions
// @Accept   json
// @Produce  json
// @Param    id    path      string           true  "Habit ID"
// @Param    body  body      completeRequest  true  "Day as YYYY-MM-DD or RFC 3339"
// @Success  201   {object}  domain.Completion
// @Failure  400   {object}  map[string]string
// @Security BearerAuth
// @Router   /habits/{id}/completions [post]
func (h *CompletionHandler) Complete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	completion, err := h.svc.Complete(c.Request.Context(), c.Param("id"), userID, req.Date)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, completion)
}

// Undo godoc
// @Summary  Remove the completions of a day
// @Tags     completions
// @Param    id    path  string  true  "Habit ID"
// @Param    date  path  string  true  "YYYY-MM-DD"
// @Success  204
// @Failure  404  {object}  map[string]string
// @Security BearerAuth
// @Router   /habits/{id}/completions/{date} [delete]
func (h *CompletionHandler) Undo(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.svc.Undo(c.Request.Context(), c.Param("id"), userID, c.Param("date")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
