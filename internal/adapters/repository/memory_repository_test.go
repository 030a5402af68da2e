package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
)

func mustCompletion(t *testing.T, habitID, userID, date string) *domain.Completion {
	t.Helper()
	c, err := domain.NewCompletion(habitID, userID, date)
	require.NoError(t, err)
	return c
}

func TestInMemoryRepositories(t *testing.T) {
	ctx := context.Background()
	completions := NewInMemoryCompletionRepository()
	habits := NewInMemoryHabitRepository(completions)

	first, _ := domain.NewHabit("user-1", "Run", "5k", false, 1, "")
	time.Sleep(time.Millisecond)
	second, _ := domain.NewHabit("user-1", "Read", "pages", false, 2, "")
	other, _ := domain.NewHabit("user-2", "Swim", "laps", false, 1, "")

	for _, h := range []*domain.Habit{second, first, other} {
		require.NoError(t, habits.Create(ctx, h))
	}

	t.Run("List is scoped to the owner and ordered by creation", func(t *testing.T) {
		list, err := habits.ListByUserID(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, second.ID, list[1].ID)
	})

	t.Run("GetByID returns a copy", func(t *testing.T) {
		got, err := habits.GetByID(ctx, first.ID)
		require.NoError(t, err)
		got.Title = "mutated"

		again, _ := habits.GetByID(ctx, first.ID)
		assert.Equal(t, "Run", again.Title)
	})

	t.Run("Completion dates keep duplicates", func(t *testing.T) {
		require.NoError(t, completions.Create(ctx, mustCompletion(t, second.ID, "user-1", "2024-01-02")))
		require.NoError(t, completions.Create(ctx, mustCompletion(t, second.ID, "user-1", "2024-01-02")))
		require.NoError(t, completions.Create(ctx, mustCompletion(t, second.ID, "user-1", "2024-01-01")))
		require.NoError(t, completions.Create(ctx, mustCompletion(t, first.ID, "user-1", "2024-01-02")))
		require.NoError(t, completions.Create(ctx, mustCompletion(t, other.ID, "user-2", "2024-01-02")))

		dates, err := completions.ListDates(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-02"}, dates)

		grouped, err := completions.ListDatesByUserID(ctx, "user-1")
		require.NoError(t, err)
		assert.Len(t, grouped, 2)
		assert.Equal(t, []string{"2024-01-02"}, grouped[first.ID])

		ids, err := completions.HabitsCompletedOn(ctx, "2024-01-02")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{first.ID, second.ID, other.ID}, ids)
	})

	t.Run("DeleteByDate removes every completion on that day", func(t *testing.T) {
		require.NoError(t, completions.DeleteByDate(ctx, second.ID, "2024-01-02"))

		dates, _ := completions.ListDates(ctx, second.ID)
		assert.Equal(t, []string{"2024-01-01"}, dates)

		assert.ErrorIs(t, completions.DeleteByDate(ctx, second.ID, "2024-01-02"), domain.ErrCompletionNotFound)
	})

	t.Run("Deleting a habit cascades to its completions", func(t *testing.T) {
		require.NoError(t, habits.Delete(ctx, first.ID))

		_, err := habits.GetByID(ctx, first.ID)
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)

		dates, _ := completions.ListDates(ctx, first.ID)
		assert.Empty(t, dates)

		assert.ErrorIs(t, habits.Delete(ctx, first.ID), domain.ErrHabitNotFound)
	})
}
