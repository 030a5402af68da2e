package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/streak"
)

// generationTTL bounds how long an idle habit keeps its counter.
const generationTTL = 7 * 24 * time.Hour

var errSuperseded = errors.New("snapshot generation superseded")

// StreakSnapshots stores computed streaks per habit and calendar day.
// The day is part of the key, so a snapshot never outlives the day it
// was computed for. Each habit also carries a generation counter that
// Invalidate bumps; a Set only lands if the generation it was read
// under is still current.
type StreakSnapshots struct {
	rdb *redis.Client
}

func NewStreakSnapshots(rdb *redis.Client) *StreakSnapshots {
	return &StreakSnapshots{rdb: rdb}
}

func snapshotKey(habitID string, day streak.Day) string {
	return fmt.Sprintf("streaks:%s:%s", habitID, day)
}

func snapshotPattern(habitID string) string {
	return fmt.Sprintf("streaks:%s:*", habitID)
}

// outside snapshotPattern so Invalidate never deletes it
func generationKey(habitID string) string {
	return fmt.Sprintf("streaks-gen:%s", habitID)
}

// ttlUntilNextDay is the time left in day, with a one minute floor.
func ttlUntilNextDay(day streak.Day, now time.Time) time.Duration {
	_, offset := now.Zone()
	boundary := day.Time().AddDate(0, 0, 1).Add(-time.Duration(offset) * time.Second)
	ttl := boundary.Sub(now)
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return ttl
}

// Get reports ok=false on a miss.
func (s *StreakSnapshots) Get(ctx context.Context, habitID string, day streak.Day) (streak.Result, bool, error) {
	val, err := s.rdb.Get(ctx, snapshotKey(habitID, day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return streak.Result{}, false, nil
	}
	if err != nil {
		return streak.Result{}, false, fmt.Errorf("snapshot read: %w", err)
	}

	var res streak.Result
	if err := json.Unmarshal(val, &res); err != nil {
		s.rdb.Del(ctx, snapshotKey(habitID, day))
		return streak.Result{}, false, fmt.Errorf("snapshot decode: %w", err)
	}
	return res, true, nil
}

// Generation is 0 for a habit that was never invalidated.
func (s *StreakSnapshots) Generation(ctx context.Context, habitID string) (int64, error) {
	gen, err := s.rdb.Get(ctx, generationKey(habitID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("snapshot generation: %w", err)
	}
	return gen, nil
}

// Set stores res for the calendar day of now. It reports false without
// writing when the habit was invalidated after gen was read.
func (s *StreakSnapshots) Set(ctx context.Context, habitID string, gen int64, now time.Time, res streak.Result) (bool, error) {
	day := streak.DayOf(now)

	data, err := json.Marshal(res)
	if err != nil {
		return false, err
	}

	genKey := generationKey(habitID)
	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errSuperseded
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, snapshotKey(habitID, day), data, ttlUntilNextDay(day, now))
			return nil
		})
		return err
	}, genKey)

	switch {
	case errors.Is(err, errSuperseded), errors.Is(err, redis.TxFailedErr):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("snapshot write: %w", err)
	}
	return true, nil
}

// Invalidate bumps the generation, then drops every snapshot of the habit
// whatever zone it was keyed in. A Set racing the bump is either refused
// or removed by the scan that follows.
func (s *StreakSnapshots) Invalidate(ctx context.Context, habitID string) error {
	genKey := generationKey(habitID)
	if _, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		return nil
	}); err != nil {
		return fmt.Errorf("snapshot generation bump: %w", err)
	}

	iter := s.rdb.Scan(ctx, 0, snapshotPattern(habitID), 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("snapshot scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}
