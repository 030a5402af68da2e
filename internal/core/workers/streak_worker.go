package workers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-streaks/internal/core/streak"
)

const (
	JobOK     = "ok"
	JobFailed = "failed"

	defaultQueueSize = 100
)

// Refresher recomputes the streaks of one habit and stores the snapshot.
type Refresher interface {
	Refresh(ctx context.Context, habitID string) (streak.Result, error)
}

type Metrics interface {
	ObserveJob(result string)
	IncDroppedJob()
}

type StreakJob struct {
	HabitID string
}

type StreakWorker struct {
	refresher Refresher
	metrics   Metrics
	log       logrus.FieldLogger
	jobs      chan StreakJob
}

// NewStreakWorker accepts nil metrics. A queueSize of zero or less uses the default.
func NewStreakWorker(refresher Refresher, metrics Metrics, log logrus.FieldLogger, queueSize int) *StreakWorker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &StreakWorker{
		refresher: refresher,
		metrics:   metrics,
		log:       log.WithField("component", "streak_worker"),
		jobs:      make(chan StreakJob, queueSize),
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		w.log.Info("streak worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.log.Info("streak worker shutting down")
				return
			}
		}
	}()
}

// Enqueue never blocks. Jobs are dropped when the queue is full; the next
// read recomputes anyway since the snapshot was already invalidated.
func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		w.log.WithField("habit_id", habitID).Warn("queue full, dropping job")
		if w.metrics != nil {
			w.metrics.IncDroppedJob()
		}
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	res, err := w.refresher.Refresh(ctx, job.HabitID)
	if err != nil {
		w.log.WithError(err).WithField("habit_id", job.HabitID).Error("streak refresh failed")
		w.observe(JobFailed)
		return
	}

	w.log.WithFields(logrus.Fields{
		"habit_id": job.HabitID,
		"current":  res.Current,
		"best":     res.Best,
	}).Debug("streak refreshed")
	w.observe(JobOK)
}

func (w *StreakWorker) observe(result string) {
	if w.metrics != nil {
		w.metrics.ObserveJob(result)
	}
}
