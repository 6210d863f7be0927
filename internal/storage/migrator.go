package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"oil-tonnage/internal/config"
	"oil-tonnage/internal/storage/migrations"
)

func newMigrationProvider(db *sql.DB, driver string) (*goose.Provider, error) {
	var dialect goose.Dialect
	switch driver {
	case config.DriverPostgres:
		dialect = goose.DialectPostgres
	case config.DriverSQLite:
		dialect = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	fsys, err := migrations.Dir(driver)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(dialect, db, fsys)
}

func RunMigrations(ctx context.Context, db *sql.DB, driver string, logger *zap.Logger) error {
	const operation = "storage.RunMigrations"

	logger.Info("Running database migrations...", zap.String("driver", driver))

	provider, err := newMigrationProvider(db, driver)
	if err != nil {
		return fmt.Errorf("%s: failed to create provider: %w", operation, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", operation, err)
	}

	for _, r := range results {
		logger.Info("Applied migration",
			zap.Int64("version", r.Source.Version),
			zap.String("path", r.Source.Path),
			zap.Duration("duration", r.Duration))
	}

	logger.Info("Database migrations completed successfully", zap.Int("applied", len(results)))
	return nil
}

func RollbackMigration(ctx context.Context, db *sql.DB, driver string, logger *zap.Logger) error {
	const operation = "storage.RollbackMigration"

	logger.Info("Rolling back last migration...")

	provider, err := newMigrationProvider(db, driver)
	if err != nil {
		return fmt.Errorf("%s: failed to create provider: %w", operation, err)
	}

	result, err := provider.Down(ctx)
	if errors.Is(err, goose.ErrNoNextVersion) {
		logger.Info("Nothing to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: failed to rollback migration: %w", operation, err)
	}

	logger.Info("Migration rollback completed", zap.Int64("version", result.Source.Version))
	return nil
}

// MigrationStatus reports every known migration and whether it is applied.
func MigrationStatus(ctx context.Context, db *sql.DB, driver string) ([]*goose.MigrationStatus, error) {
	const operation = "storage.MigrationStatus"

	provider, err := newMigrationProvider(db, driver)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create provider: %w", operation, err)
	}

	status, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to check migration status: %w", operation, err)
	}
	return status, nil
}
