package repository

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/logging"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", getEnv("REDIS_HOST", "localhost"), getEnv("REDIS_PORT", "6379")),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       1,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	rdb.FlushDB(ctx)

	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestCachedHabitRepository_Integration(t *testing.T) {
	rdb := setupTestRedis(t)
	ctx := context.Background()

	inner := NewInMemoryHabitRepository(nil)
	repo := NewCachedHabitRepository(inner, rdb, logging.Discard())

	h, _ := domain.NewHabit("cache-user", "Meditate", "10 min", false, 1, "")
	require.NoError(t, repo.Create(ctx, h))

	t.Run("Read-through fills the cache", func(t *testing.T) {
		list, err := repo.ListByUserID(ctx, "cache-user")
		require.NoError(t, err)
		assert.Len(t, list, 1)

		exists, err := rdb.Exists(ctx, "habits:cache-user").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
	})

	t.Run("Corrupted entry is dropped and reloaded", func(t *testing.T) {
		require.NoError(t, rdb.Set(ctx, "habits:cache-user", "{not json", 0).Err())

		list, err := repo.ListByUserID(ctx, "cache-user")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Writes invalidate the list", func(t *testing.T) {
		h2, _ := domain.NewHabit("cache-user", "Stretch", "5 min", false, 1, "")
		require.NoError(t, repo.Create(ctx, h2))

		exists, _ := rdb.Exists(ctx, "habits:cache-user").Result()
		assert.Equal(t, int64(0), exists)

		list, _ := repo.ListByUserID(ctx, "cache-user")
		assert.Len(t, list, 2)

		require.NoError(t, repo.Delete(ctx, h2.ID))
		exists, _ = rdb.Exists(ctx, "habits:cache-user").Result()
		assert.Equal(t, int64(0), exists)
	})
}
