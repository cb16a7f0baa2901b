package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/replenish-planner/internal/api"
	"github.com/andresuchdata/replenish-planner/internal/cache"
	"github.com/andresuchdata/replenish-planner/internal/cashflow"
	"github.com/andresuchdata/replenish-planner/internal/config"
	"github.com/andresuchdata/replenish-planner/internal/repository/postgres"
	"github.com/andresuchdata/replenish-planner/internal/service"
	"github.com/andresuchdata/replenish-planner/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logger.Configure(cfg.Server.Mode, cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	planCache, err := cache.NewPlanCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Plan cache unavailable, continuing without it")
		planCache = cache.NewNoopPlanCache()
	}

	opts := []service.Option{
		service.WithCache(planCache),
		service.WithWorkers(cfg.Planner.Workers),
		service.WithMaxBatchSize(cfg.Planner.MaxBatchSize),
		service.WithCashflowCalculator(cashflow.NewCalculator(
			cashflow.WithThresholds(cfg.Planner.CriticalMonths, cfg.Planner.WarningMonths),
		)),
	}

	if cfg.Database.Enabled {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		if err := db.Migrate(context.Background()); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		opts = append(opts, service.WithRepository(postgres.NewSnapshotRepository(db)))
	}

	planner := service.NewPlannerService(opts...)

	router := api.NewRouter(&api.Services{Planner: planner}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// In-flight plans get 5 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
