package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"

	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
)

const DefaultDir = "pkg/migrate/migrations"

// Run executes a goose command against the warehouse. dialect is the goose
// dialect name ("sqlite3" or "postgres").
func Run(ctx context.Context, db *sql.DB, dialect, dir, command string, args ...string) error {
	if err := prepare(db, dialect, dir); err != nil {
		return err
	}
	// goose prints status output to stdout itself
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeSchema, err, fmt.Sprintf("goose %s", command))
	}
	return nil
}

// MigrateToVersion moves the schema up or down until it sits at version.
func MigrateToVersion(ctx context.Context, db *sql.DB, dialect, dir, version string) error {
	target, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid version %q (expected YYYYMMDDHHMMSS)", version))
	}
	if err := prepare(db, dialect, dir); err != nil {
		return err
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read warehouse schema version")
	}
	switch {
	case current < target:
		err = goose.UpToContext(ctx, db, dir, target)
	case current > target:
		err = goose.DownToContext(ctx, db, dir, target)
	default:
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeSchema, err, fmt.Sprintf("migrate %d -> %d", current, target))
	}
	return nil
}

func prepare(db *sql.DB, dialect, dir string) error {
	if db == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "database handle is required")
	}
	if dir == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "migrations dir is required")
	}
	if err := goose.SetDialect(dialect); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "set goose dialect")
	}
	return nil
}
