// Command migrate applies, rolls back or lists the embedded schema migrations.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"oil-tonnage/internal/config"
	"oil-tonnage/internal/storage"
	"oil-tonnage/pkg/logger"
)

const usage = "usage: migrate up|down|status"

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg.Database, zapLogger, os.Args[1], os.Stdout); err != nil {
		zapLogger.Fatal("Migration command failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
	_ = zapLogger.Sync()
}

func run(ctx context.Context, dbCfg config.DatabaseConfig, zapLogger *zap.Logger, command string, out io.Writer) error {
	switch command {
	case "up", "down", "status":
	default:
		return fmt.Errorf("unknown command %q, %s", command, usage)
	}

	dbCfg.AutoMigrate = false
	store, err := storage.Open(ctx, dbCfg, zapLogger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	switch command {
	case "up":
		return store.Migrate(ctx, zapLogger)
	case "down":
		return store.Rollback(ctx, zapLogger)
	default:
		return printStatus(ctx, store, out)
	}
}

func printStatus(ctx context.Context, store *storage.Storage, out io.Writer) error {
	statuses, err := store.MigrationStatus(ctx)
	if err != nil {
		return err
	}
	for _, st := range statuses {
		applied := "-"
		if !st.AppliedAt.IsZero() {
			applied = st.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(out, "%05d  %-8s  %s  %s\n", st.Source.Version, st.State, applied, st.Source.Path)
	}
	return nil
}
