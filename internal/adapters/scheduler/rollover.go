package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/streak"
)

const DefaultSchedule = "5 0 * * *"

type CompletionLister interface {
	HabitsCompletedOn(ctx context.Context, date string) ([]string, error)
}

type Enqueuer interface {
	Enqueue(habitID string)
}

type Metrics interface {
	AddRolloverQueued(n int)
}

// Rollover re-queues every habit completed yesterday once the day turns, so
// snapshots keyed by the new day are warm before the first read.
type Rollover struct {
	completions CompletionLister
	worker      Enqueuer
	metrics     Metrics
	log         logrus.FieldLogger
	schedule    string
	now         func() time.Time
	cron        *cron.Cron
}

// NewRollover runs in UTC. An empty schedule uses DefaultSchedule.
func NewRollover(completions CompletionLister, worker Enqueuer, metrics Metrics, log logrus.FieldLogger, schedule string) *Rollover {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Rollover{
		completions: completions,
		worker:      worker,
		metrics:     metrics,
		log:         log.WithField("component", "rollover"),
		schedule:    schedule,
		now:         time.Now,
		cron:        cron.New(cron.WithLocation(time.UTC)),
	}
}

func (r *Rollover) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, r.tick); err != nil {
		return fmt.Errorf("failed to add rollover job: %w", err)
	}

	r.cron.Start()
	r.log.WithField("schedule", r.schedule).Info("rollover scheduler started")
	return nil
}

// Stop waits for a running tick to finish.
func (r *Rollover) Stop() {
	<-r.cron.Stop().Done()
	r.log.Info("rollover scheduler stopped")
}

func (r *Rollover) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := r.Run(ctx); err != nil {
		r.log.WithError(err).Error("rollover failed")
	}
}

// Run enqueues the habits completed on the UTC day before now and returns
// how many were queued.
func (r *Rollover) Run(ctx context.Context) (int, error) {
	yesterday := streak.DayOf(r.now().UTC()).Prev()

	ids, err := r.completions.HabitsCompletedOn(ctx, yesterday.String())
	if err != nil {
		return 0, fmt.Errorf("list habits completed on %s: %w", yesterday, err)
	}

	for _, id := range ids {
		r.worker.Enqueue(id)
	}
	if r.metrics != nil {
		r.metrics.AddRolloverQueued(len(ids))
	}

	r.log.WithFields(logrus.Fields{
		"day":    yesterday.String(),
		"queued": len(ids),
	}).Info("rollover completed")
	return len(ids), nil
}
