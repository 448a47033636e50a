package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"ats-backend/internal/shared/telemetry"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

var gooseSetup sync.Once

// gooseLogger routes goose output through telemetry.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	telemetry.Info("db.migrate", map[string]any{"detail": strings.TrimSpace(fmt.Sprintf(format, v...))})
}

func (gooseLogger) Fatalf(format string, v ...any) {
	telemetry.Error("db.migrate.fatal", map[string]any{"detail": strings.TrimSpace(fmt.Sprintf(format, v...))})
	telemetry.Sync()
	os.Exit(1)
}

func setupGoose() error {
	var err error
	gooseSetup.Do(func() {
		goose.SetBaseFS(migrationFiles)
		goose.SetLogger(gooseLogger{})
		err = goose.SetDialect("postgres")
	})
	return err
}

// RunMigrations applies the embedded documents/analyses migrations and
// returns the resulting schema version. A nil database is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) (int64, error) {
	if database == nil {
		return 0, nil
	}
	if err := setupGoose(); err != nil {
		return 0, err
	}
	if err := goose.UpContext(ctx, database, migrationsDir); err != nil {
		return 0, fmt.Errorf("goose up: %w", err)
	}
	return goose.GetDBVersionContext(ctx, database)
}

// RollbackMigration undoes the most recent migration.
func RollbackMigration(ctx context.Context, database *sql.DB) (int64, error) {
	if database == nil {
		return 0, nil
	}
	if err := setupGoose(); err != nil {
		return 0, err
	}
	if err := goose.DownContext(ctx, database, migrationsDir); err != nil {
		return 0, fmt.Errorf("goose down: %w", err)
	}
	return goose.GetDBVersionContext(ctx, database)
}
