package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/olist-etl/pkg/config"
	"github.com/angelmondragon/olist-etl/pkg/db"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
	"github.com/angelmondragon/olist-etl/pkg/logger"
	"github.com/angelmondragon/olist-etl/pkg/migrate"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate|list")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	// file-only commands work without a warehouse config
	switch *cmd {
	case "create":
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			return fail(context.Background(), logg, "create migration", err)
		}
		fmt.Println("created migration:", path)
		return 0
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			return fail(context.Background(), logg, "validate migrations", err)
		}
		fmt.Println("migration validation passed")
		return 0
	case "list":
		files, err := migrate.ListFiles(*dir)
		if err != nil {
			return fail(context.Background(), logg, "list migrations", err)
		}
		for _, f := range files {
			fmt.Printf("%d\t%s\n", f.Version, f.Name)
		}
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		return fail(context.Background(), logg, "load config", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "config"))
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
		"db":  cfg.DB.Driver,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fail(ctx, logg, "connect warehouse", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database"))
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()
	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fail(ctx, logg, "open sql handle", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database"))
	}

	dialect := cfg.DB.GooseDialect()
	switch *cmd {
	case "up", "down", "status":
		err = migrate.Run(ctx, sqlDB, dialect, *dir, *cmd)
	case "version":
		if *version == "" {
			err = pkgerrors.New(pkgerrors.CodeValidation, "missing -version for version command")
			break
		}
		err = migrate.MigrateToVersion(ctx, sqlDB, dialect, *dir, *version)
	default:
		err = pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown -cmd value %q", *cmd))
	}
	if err != nil {
		return fail(ctx, logg, "migrate "+*cmd, err)
	}
	logg.Info(ctx, "migrate finished")
	return 0
}

func fail(ctx context.Context, logg *logger.Logger, action string, err error) int {
	logg.Error(logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), action+" failed", err)
	return pkgerrors.ExitCode(err)
}
