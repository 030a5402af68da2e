package http_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteHabit(t *testing.T) {
	t.Run("Success: 201 with canonical date", func(t *testing.T) {
		env := setupRouter(t)
		h := env.seedHabit(t, "user-1", "Read")

		w := env.do(t, http.MethodPost, "/api/v1/habits/"+h.ID+"/completions", "user-1",
			`{"date": "2024-01-03T23:30:00-05:00"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"completion_date":"2024-01-03"`)

		dates, err := env.completions.ListDates(context.Background(), h.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-01-03"}, dates)
	})

	t.Run("Fail: 400 invalid date format", func(t *testing.T) {
		env := setupRouter(t)
		h := env.seedHabit(t, "user-1", "Read")

		w := env.do(t, http.MethodPost, "/api/v1/habits/"+h.ID+"/completions", "user-1", `{"date": "tomorrow"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid date format")
	})

	t.Run("Fail: 403 on a foreign habit", func(t *testing.T) {
		env := setupRouter(t)
		h := env.seedHabit(t, "owner", "Read")

		w := env.do(t, http.MethodPost, "/api/v1/habits/"+h.ID+"/completions", "attacker", `{"date": "2024-01-03"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Fail: 404 on an unknown habit", func(t *testing.T) {
		env := setupRouter(t)

		w := env.do(t, http.MethodPost, "/api/v1/habits/nope/completions", "user-1", `{"date": "2024-01-03"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListCompletions(t *testing.T) {
	env := setupRouter(t)
	h := env.seedHabit(t, "user-1", "Read", "2024-01-02", "2024-01-01")

	w := env.do(t, http.MethodGet, "/api/v1/habits/"+h.ID+"/completions", "user-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"dates":["2024-01-01","2024-01-02"]}`, w.Body.String())
}

func TestUndoCompletion(t *testing.T) {
	t.Run("Success: 204 and streak drops", func(t *testing.T) {
		env := setupRouter(t)
		h := env.seedHabit(t, "user-1", "Read", "2024-01-02", "2024-01-03")

		w := env.do(t, http.MethodDelete, "/api/v1/habits/"+h.ID+"/completions/2024-01-03", "user-1", "")
		require.Equal(t, http.StatusNoContent, w.Code)

		w = env.do(t, http.MethodGet, "/api/v1/habits/"+h.ID+"/streaks", "user-1", "")
		assert.JSONEq(t, `{"current":1,"best":1}`, w.Body.String())
	})

	t.Run("Fail: 404 when nothing recorded", func(t *testing.T) {
		env := setupRouter(t)
		h := env.seedHabit(t, "user-1", "Read")

		w := env.do(t, http.MethodDelete, "/api/v1/habits/"+h.ID+"/completions/2024-01-03", "user-1", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Fail: 400 on a malformed day", func(t *testing.T) {
		env := setupRouter(t)
		h := env.seedHabit(t, "user-1", "Read")

		w := env.do(t, http.MethodDelete, "/api/v1/habits/"+h.ID+"/completions/2024-13-40", "user-1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
