package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-streaks/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/metrics"
	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/scheduler"
	"github.com/comitanigiacomo/kanso-streaks/internal/config"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/services"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/workers"
)

type app struct {
	router   *gin.Engine
	worker   *workers.StreakWorker
	rollover *scheduler.Rollover
}

// newApp wires the object graph. A nil db selects in-memory storage and a
// nil rdb runs without caching or rate limiting.
func newApp(cfg *config.Config, log *logrus.Logger, db *sqlx.DB, rdb *redis.Client, clock services.Clock) (*app, error) {
	m := metrics.New()

	var (
		habitRepo      domain.HabitRepository
		completionRepo domain.CompletionRepository
	)
	if db != nil {
		habitRepo = repository.NewPostgresHabitRepository(db)
		completionRepo = repository.NewPostgresCompletionRepository(db)
	} else {
		completions := repository.NewInMemoryCompletionRepository()
		habitRepo = repository.NewInMemoryHabitRepository(completions)
		completionRepo = completions
	}

	var snapshots services.SnapshotStore
	if rdb != nil {
		habitRepo = repository.NewCachedHabitRepository(habitRepo, rdb, log)
		snapshots = cache.NewStreakSnapshots(rdb)
	}

	tokenService, err := services.NewTokenService(cfg.JWTSecret, cfg.JWTPublicKey, cfg.AuthIssuer)
	if err != nil {
		return nil, err
	}

	streakService := services.NewStreakService(habitRepo, completionRepo, snapshots, m, log, clock)
	worker := workers.NewStreakWorker(streakService, m, log, cfg.WorkerQueueSize)
	habitService := services.NewHabitService(habitRepo, completionRepo, streakService, clock)
	completionService := services.NewCompletionService(completionRepo, habitRepo, streakService, worker)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		HabitHandler:      adapterHTTP.NewHabitHandler(habitService),
		CompletionHandler: adapterHTTP.NewCompletionHandler(completionService),
		StreakHandler:     adapterHTTP.NewStreakHandler(streakService),
		TokenService:      tokenService,
		Metrics:           m,
		Logger:            log,
		DB:                db,
		Redis:             rdb,
		RateLimit:         cfg.RateLimit,
		RateWindow:        cfg.RateWindow,
		CORSOrigins:       cfg.CORSOrigins,
		PublicHost:        cfg.PublicHost,
		StartTime:         time.Now(),
	})

	return &app{
		router:   router,
		worker:   worker,
		rollover: scheduler.NewRollover(completionRepo, worker, m, log, cfg.RolloverSchedule),
	}, nil
}

// start launches the background parts; they stop with ctx and stop().
func (a *app) start(ctx context.Context) (stop func(), err error) {
	a.worker.Start(ctx)
	if err := a.rollover.Start(); err != nil {
		return nil, fmt.Errorf("start rollover: %w", err)
	}
	return a.rollover.Stop, nil
}

func openDB(cfg *config.Config, log logrus.FieldLogger) (*sqlx.DB, error) {
	log.Info("connecting to database")

	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := repository.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("database connected, schema up to date")
	return db, nil
}
