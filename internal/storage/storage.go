package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"oil-tonnage/internal/config"
	"oil-tonnage/internal/domain"
)

// sqliteParams keeps LIKE case-sensitive, matching postgres semantics.
const sqliteParams = "?_cslike=1&_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"

// Storage owns the connection pool and serves both the VCF reference table
// and the calculation history. Every operation borrows a connection for the
// duration of a single statement or transaction.
type Storage struct {
	db           *sqlx.DB
	dialect      dialect
	queryTimeout time.Duration
	now          func() time.Time
}

func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Storage, error) {
	const operation = "storage.Open"

	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	dsn := cfg.DSN()
	if cfg.Driver == config.DriverSQLite {
		dsn += sqliteParams
	}

	var db *sqlx.DB

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = cfg.ConnectTimeout
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to database...", zap.String("driver", cfg.Driver))

	err = backoff.RetryNotify(
		func() error {
			conn, err := sqlx.ConnectContext(ctx, cfg.Driver, dsn)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			db = conn
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("Database connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to database", zap.String("driver", cfg.Driver))

	s := newStorage(db, d, cfg.QueryTimeout)
	if cfg.AutoMigrate {
		if err := s.Migrate(ctx, logger); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", operation, err)
		}
	}
	return s, nil
}

func newStorage(db *sqlx.DB, d dialect, queryTimeout time.Duration) *Storage {
	return &Storage{
		db:           db,
		dialect:      d,
		queryTimeout: queryTimeout,
		now:          time.Now,
	}
}

// Migrate applies pending schema migrations for the storage driver.
func (s *Storage) Migrate(ctx context.Context, logger *zap.Logger) error {
	return RunMigrations(ctx, s.db.DB, s.db.DriverName(), logger)
}

// Rollback reverts the most recently applied migration.
func (s *Storage) Rollback(ctx context.Context, logger *zap.Logger) error {
	return RollbackMigration(ctx, s.db.DB, s.db.DriverName(), logger)
}

// MigrationStatus lists every embedded migration with its applied state.
func (s *Storage) MigrationStatus(ctx context.Context) ([]*goose.MigrationStatus, error) {
	return MigrationStatus(ctx, s.db.DB, s.db.DriverName())
}

// Ping checks that a pooled connection can reach the database.
func (s *Storage) Ping(ctx context.Context) error {
	const operation = "storage.Ping"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return unavailable(operation, err)
	}
	return nil
}

func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// withTimeout bounds an operation, including the wait for a free pool slot.
func (s *Storage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

func unavailable(operation string, err error) error {
	return &domain.StoreUnavailableError{Op: operation, Err: err}
}
