package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/olist-etl/api/routes"
	"github.com/angelmondragon/olist-etl/internal/analytics"
	"github.com/angelmondragon/olist-etl/internal/pipeline"
	"github.com/angelmondragon/olist-etl/pkg/config"
	"github.com/angelmondragon/olist-etl/pkg/db"
	"github.com/angelmondragon/olist-etl/pkg/instance"
	"github.com/angelmondragon/olist-etl/pkg/logger"
	"github.com/angelmondragon/olist-etl/pkg/migrate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var (
		dbClient *db.Client
		pinger   db.Pinger
	)
	if cfg.NeedsDB() {
		dbClient, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}()
		pinger = dbClient

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run dev migrations", err)
			os.Exit(1)
		}
	}

	lock, redisClient, err := pipeline.OpenWarehouseLock(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	p, err := pipeline.New(pipeline.Params{Config: cfg, Logger: logg, DB: dbClient, Lock: lock})
	if err != nil {
		logg.Error(ctx, "failed to build pipeline", err)
		os.Exit(1)
	}

	results := analytics.NewService()
	refresher, err := pipeline.NewRefresher(pipeline.RefreshParams{
		Runner:    p,
		Publisher: results,
		Logger:    logg,
		Interval:  cfg.Pipeline.RefreshInterval,
	})
	if err != nil {
		logg.Error(ctx, "failed to build refresher", err)
		os.Exit(1)
	}
	go func() {
		if err := refresher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Warn(ctx, "pipeline refresher stopped; serving the last published results")
		}
	}()

	addr := ":" + cfg.App.Port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, pinger, results, p.Registry()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
