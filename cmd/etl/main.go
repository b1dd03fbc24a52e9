package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/olist-etl/internal/pipeline"
	"github.com/angelmondragon/olist-etl/pkg/config"
	"github.com/angelmondragon/olist-etl/pkg/db"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
	"github.com/angelmondragon/olist-etl/pkg/instance"
	"github.com/angelmondragon/olist-etl/pkg/logger"
	"github.com/angelmondragon/olist-etl/pkg/migrate"
)

func main() {
	os.Exit(run())
}

func run() int {
	logg := logger.New(logger.Options{ServiceName: "etl"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		return pkgerrors.MetadataFor(pkgerrors.CodeValidation).ExitCode
	}

	logg = logger.New(logger.Options{
		ServiceName: "etl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
	})

	var dbClient *db.Client
	if cfg.NeedsDB() {
		dbClient, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			return pkgerrors.MetadataFor(pkgerrors.CodeDependency).ExitCode
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(ctx, "error closing database", err)
			}
		}()

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run dev migrations", err)
			return pkgerrors.MetadataFor(pkgerrors.CodeDependency).ExitCode
		}
	}

	lock, redisClient, err := pipeline.OpenWarehouseLock(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		return pkgerrors.ExitCode(err)
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
		return pkgerrors.ExitCode(err)
	}

	outcome, err := p.Run(ctx)
	if err != nil {
		ctx = logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
		logg.Error(ctx, "pipeline run failed", err)
		return pkgerrors.ExitCode(err)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"run_id":  outcome.RunID,
		"results": outcome.Results.Len(),
		"files":   outcome.Files,
	}), "etl finished")
	return 0
}
