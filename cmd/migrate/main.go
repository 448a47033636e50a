package main

// Apply the embedded schema migrations:
//   go run ./cmd/migrate
// Roll back the latest one:
//   go run ./cmd/migrate -down

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"ats-backend/internal/shared/config"
	"ats-backend/internal/shared/storage/db"
	"ats-backend/internal/shared/telemetry"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration instead of applying pending ones")
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)
	defer telemetry.Sync()

	if cfg.DatabaseURL == "" {
		telemetry.Error("migrate.config", map[string]any{"err": "DATABASE_URL is required"})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		telemetry.Error("migrate.connect", map[string]any{"err": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	run, action := db.RunMigrations, "up"
	if *down {
		run, action = db.RollbackMigration, "down"
	}
	version, err := run(ctx, sqlDB)
	if err != nil {
		telemetry.Error("migrate.failed", map[string]any{"action": action, "err": err})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"action": action, "version": version})
}
