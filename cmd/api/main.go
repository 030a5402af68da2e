package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-streaks/internal/config"
	"github.com/comitanigiacomo/kanso-streaks/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "json").WithError(err).Fatal("invalid configuration")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	var db *sqlx.DB
	if cfg.Storage == config.StoragePostgres {
		db, err = openDB(cfg, log)
		if err != nil {
			log.WithError(err).Fatal("database unavailable")
		}
		defer db.Close()
	} else {
		log.Warn("using in-memory storage, data is lost on restart")
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb, err = cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, running without cache and rate limiting")
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	application, err := newApp(cfg, log, db, rdb, time.Now)
	if err != nil {
		log.WithError(err).Fatal("failed to build application")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopBackground, err := application.start(ctx)
	if err != nil {
		log.WithError(err).Fatal("failed to start background jobs")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      application.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("kanso streaks running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("stop signal received, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	cancel()
	stopBackground()

	log.Info("server stopped gracefully")
}
