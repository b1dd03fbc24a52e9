package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/olist-etl/pkg/db/models"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
	"github.com/angelmondragon/olist-etl/pkg/migrate"
)

func TestOlistMigrationContainsTables(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_olist_tables.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no olist migration file found")

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)

	for _, table := range models.AllTables {
		require.Contains(t, content, "CREATE TABLE IF NOT EXISTS "+table)
		require.Contains(t, content, "DROP TABLE IF EXISTS "+table)
	}
}

func TestValidateDir(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.sql"), []byte("-- +goose Up"), 0o644))
	require.Error(t, migrate.ValidateDir(dir))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Seller Table")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_seller_table.sql"))
	require.NoError(t, migrate.ValidateDir(dir))

	_, err = migrate.CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}

func TestCreateSQLMigrationOrdersAfterLatest(t *testing.T) {
	dir := t.TempDir()
	future := "-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "29990101000000_future.sql"), []byte(future), 0o644))

	path, err := migrate.CreateSQLMigration(dir, "next")
	require.NoError(t, err)
	require.Equal(t, "29990101000001_next.sql", filepath.Base(path))

	files, err := migrate.ListFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Equal(t, "future", files[0].Name)
	require.Equal(t, "next", files[1].Name)
}

func TestValidateDirRejectsUnbalancedStatements(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\nSELECT 1;\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_broken.sql"), []byte(body), 0o644))

	err := migrate.ValidateDir(dir)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestRunUpCreatesWarehouseSchema(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_up?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	require.NoError(t, migrate.Run(ctx, sqlDB, "sqlite3", "migrations", "up"))

	for _, table := range models.AllTables {
		require.True(t, conn.Migrator().HasTable(table), "missing table %s", table)
	}
	require.True(t, conn.Migrator().HasColumn(&models.OrderItem{}, "freight_value"))
	require.True(t, conn.Migrator().HasColumn(&models.Holiday{}, "launch_year"))

	require.NoError(t, migrate.Run(ctx, sqlDB, "sqlite3", "migrations", "down"))
	require.False(t, conn.Migrator().HasTable(models.TableOrders))
}

func TestMigrateToVersion(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_version?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	err = migrate.MigrateToVersion(ctx, sqlDB, "sqlite3", "migrations", "latest")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	require.NoError(t, migrate.MigrateToVersion(ctx, sqlDB, "sqlite3", "migrations", "20250301120000"))
	require.True(t, conn.Migrator().HasTable(models.TableOrders))

	require.NoError(t, migrate.MigrateToVersion(ctx, sqlDB, "sqlite3", "migrations", "0"))
	require.False(t, conn.Migrator().HasTable(models.TableOrders))
}
