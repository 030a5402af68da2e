package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-streaks/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/metrics"
	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/services"
	"github.com/comitanigiacomo/kanso-streaks/internal/logging"
)

const testSecret = "handler-test-secret"

// 2024-01-03 10:00 UTC
func fixedClock() time.Time {
	return time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)
}

type testEnv struct {
	router      *gin.Engine
	habits      *repository.InMemoryHabitRepository
	completions *repository.InMemoryCompletionRepository
	metrics     *metrics.Metrics
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	completions := repository.NewInMemoryCompletionRepository()
	habits := repository.NewInMemoryHabitRepository(completions)
	m := metrics.New()
	log := logging.Discard()

	tokens, err := services.NewTokenService(testSecret, "", "")
	require.NoError(t, err)

	streakSvc := services.NewStreakService(habits, completions, nil, m, log, fixedClock)
	habitSvc := services.NewHabitService(habits, completions, streakSvc, fixedClock)
	completionSvc := services.NewCompletionService(completions, habits, streakSvc, nil)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		HabitHandler:      adapterHTTP.NewHabitHandler(habitSvc),
		CompletionHandler: adapterHTTP.NewCompletionHandler(completionSvc),
		StreakHandler:     adapterHTTP.NewStreakHandler(streakSvc),
		TokenService:      tokens,
		Metrics:           m,
		Logger:            log,
		StartTime:         time.Now(),
	})

	return &testEnv{router: router, habits: habits, completions: completions, metrics: m}
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func (e *testEnv) do(t *testing.T, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	if userID != "" {
		req.Header.Set("Authorization", bearer(t, userID))
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedHabit(t *testing.T, userID, title string, dates ...string) *domain.Habit {
	t.Helper()
	ctx := context.Background()

	h, err := domain.NewHabit(userID, title, "desc", false, 1, "teal")
	require.NoError(t, err)
	require.NoError(t, e.habits.Create(ctx, h))

	for _, d := range dates {
		c, err := domain.NewCompletion(h.ID, userID, d)
		require.NoError(t, err)
		require.NoError(t, e.completions.Create(ctx, c))
	}
	return h
}

func TestCreateHabit(t *testing.T) {
	t.Run("Success: 201 Created", func(t *testing.T) {
		env := setupRouter(t)

		w := env.do(t, http.MethodPost, "/api/v1/habits", "user-1",
			`{"title": "Gym", "description": "Three times a week", "daily_goal": 2, "color": "#00FF00"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"title":"Gym"`)
		assert.Contains(t, w.Body.String(), `"daily_goal":2`)
		assert.Contains(t, w.Body.String(), `"id":`)
	})

	t.Run("Success: Limits count characters, not bytes", func(t *testing.T) {
		env := setupRouter(t)

		title := strings.Repeat("é", 100)
		w := env.do(t, http.MethodPost, "/api/v1/habits", "user-1",
			`{"title": "`+title+`", "description": "x"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"daily_goal":1`)
	})

	t.Run("Fail: 401 Unauthorized (Missing Header)", func(t *testing.T) {
		env := setupRouter(t)

		w := env.do(t, http.MethodPost, "/api/v1/habits", "", `{"title": "Gym", "description": "x"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Fail: 400 Bad Request (Invalid JSON/Validation)", func(t *testing.T) {
		env := setupRouter(t)

		bodies := []string{
			`{"title": ""}`,
			`{"title": "Gym"}`,
			`{"title": "Gym", "description": "x", "color": "blurple"}`,
			`{"title": "Gym", "description": "x", "daily_goal": -1}`,
			`{"title": "Gym", "description": "x", "daily_goal": 0}`,
			`not json`,
		}
		for _, b := range bodies {
			w := env.do(t, http.MethodPost, "/api/v1/habits", "user-1", b)
			assert.Equal(t, http.StatusBadRequest, w.Code, "body: "+b)
		}
	})
}

func TestGetHabits(t *testing.T) {
	t.Run("Success: 200 OK with streaks", func(t *testing.T) {
		env := setupRouter(t)
		env.seedHabit(t, "user-1", "Run", "2024-01-01", "2024-01-02", "2024-01-03")
		env.seedHabit(t, "user-2", "Hidden")

		w := env.do(t, http.MethodGet, "/api/v1/habits", "user-1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var list []domain.HabitWithStreaks
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "Run", list[0].Title)
		assert.Equal(t, 3, list[0].Streaks.Current)
		assert.Equal(t, 3, list[0].Streaks.Best)
		assert.Equal(t, 1, list[0].CompletedToday)
	})

	t.Run("Fail: 400 on unknown timezone", func(t *testing.T) {
		env := setupRouter(t)

		w := env.do(t, http.MethodGet, "/api/v1/habits?tz=Mars/Olympus", "user-1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid timezone")
	})
}

func TestDeleteHabit(t *testing.T) {
	t.Run("Success: 204 No Content", func(t *testing.T) {
		env := setupRouter(t)
		h := env.seedHabit(t, "user-1", "Run", "2024-01-03")

		w := env.do(t, http.MethodDelete, "/api/v1/habits/"+h.ID, "user-1", "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		_, err := env.habits.GetByID(context.Background(), h.ID)
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})

	t.Run("Fail: 404 Not Found (IDOR Protection)", func(t *testing.T) {
		env := setupRouter(t)
		h := env.seedHabit(t, "user-1", "Secret")

		w := env.do(t, http.MethodDelete, "/api/v1/habits/"+h.ID, "user-2", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPublicEndpoints(t *testing.T) {
	env := setupRouter(t)

	w := env.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"disabled"`)

	env.do(t, http.MethodGet, "/api/v1/habits", "user-1", "")
	w = env.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "kanso_streaks_http_requests_total")

	w = env.do(t, http.MethodGet, "/swagger/doc.json", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Kanso Streaks API")
}
