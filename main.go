// Command adaptive-engine wires configuration, storage, caching, and the
// engine into an HTTP server, mirroring the teacher's
// event-service/main.go start/signal/graceful-shutdown pattern.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adaptive-engine/internal/clock"
	"adaptive-engine/internal/config"
	"adaptive-engine/internal/engine"
	"adaptive-engine/internal/events"
	"adaptive-engine/internal/httpapi"
	"adaptive-engine/internal/logger"
	"adaptive-engine/internal/metrics"
	"adaptive-engine/internal/store/postgres"
	"adaptive-engine/internal/store/rediscache"
)

func main() {
	cfg := config.Load()
	log.SetOutput(os.Stdout)

	appLogger := logger.New(&cfg.Logging)
	appMetrics := metrics.New()

	db, err := postgres.New(cfg.Database, appMetrics, appLogger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient, err := rediscache.New(cfg.Redis, appMetrics, appLogger)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	attemptStore := postgres.NewAttemptStore(db)
	tagMasteryStore := rediscache.NewFocusAnalyticsCache(postgres.NewTagMasteryStore(db), clock.Real{})

	publisher := events.New(cfg.Kafka, appLogger)
	defer publisher.Close()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	pgxPool, err := postgres.NewPgxPool(startupCtx, cfg.Database, appLogger)
	cancelStartup()
	if err != nil {
		log.Fatalf("failed to connect pgx pool: %v", err)
	}
	defer pgxPool.Close()

	deps := engine.Deps{
		Catalog:          postgres.NewProblemStore(db),
		UserProblems:     postgres.NewUserProblemStore(db),
		Attempts:         attemptStore,
		Sessions:         postgres.NewSessionStore(db, attemptStore),
		TagMastery:       tagMasteryStore,
		TagRelationships: postgres.NewTagRelationshipStore(db),
		Ladders:          postgres.NewPatternLadderStore(db),
		Analytics:        postgres.NewSessionAnalyticsStore(db),
		SessionStates:    postgres.NewSessionStateStore(pgxPool, appMetrics),
		Clock:            clock.Real{},
		Config:           cfg,
		Logger:           appLogger,
		Metrics:          appMetrics,
		Events:           publisher,
	}
	e := engine.New(deps)

	srv := httpapi.NewServer(cfg, e, appLogger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("received shutdown signal...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		appLogger.WithError(err).Error("server forced to shutdown")
	} else {
		appLogger.Info("server shutdown complete")
	}
}
