package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/streak"
)

var validationErrors = []error{
	domain.ErrHabitTitleEmpty,
	domain.ErrHabitTitleTooLong,
	domain.ErrHabitDescEmpty,
	domain.ErrHabitDescTooLong,
	domain.ErrHabitInvalidUserID,
	domain.ErrInvalidColor,
	domain.ErrInvalidDailyGoal,
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized access"})

	case errors.Is(err, domain.ErrHabitNotFound) || errors.Is(err, domain.ErrCompletionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})

	case errors.Is(err, streak.ErrInvalidDateFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format", "details": err.Error()})

	case isValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		// picked up by the request logger
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user context missing"})
	}
	return userID, ok
}

// location reads the IANA zone in ?tz=, UTC when absent.
func location(c *gin.Context) (*time.Location, bool) {
	tz := c.Query("tz")
	if tz == "" {
		return time.UTC, true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timezone", "details": tz})
		return nil, false
	}
	return loc, true
}
