package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"oil-tonnage/internal/calculation"
	"oil-tonnage/internal/config"
	"oil-tonnage/internal/server"
	"oil-tonnage/internal/storage"
	redisstorage "oil-tonnage/internal/storage/redis"
	"oil-tonnage/internal/vcf"
	"oil-tonnage/pkg/logger"
	"oil-tonnage/pkg/redis"
)

// ENTRY POINT

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Инициализация логгера
	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Обработка сигналов завершения
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	err = run(ctx, cfg, zapLogger)
	cancel()
	if err != nil {
		zapLogger.Fatal("Server stopped with error", zap.Error(err))
	}

	zapLogger.Info("Server shutdown gracefully")
	_ = zapLogger.Sync()
}

// run owns every resource it opens and releases them before returning.
func run(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) error {
	// Инициализация хранилища
	store, err := storage.Open(ctx, cfg.Database, zapLogger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	count, err := store.CountVCFEntries(ctx)
	switch {
	case err != nil:
		zapLogger.Warn("Failed to count VCF reference entries", zap.Error(err))
	case count == 0:
		zapLogger.Warn("VCF reference table is empty, every calculation will fail until it is imported")
	default:
		zapLogger.Info("VCF reference table loaded", zap.Int("entries", count))
	}

	var (
		resolverOpts []vcf.Option
		serverOpts   = server.Options{
			StaticDir:         cfg.HTTP.StaticDir,
			RateLimitRequests: cfg.RateLimitRequests,
			RateLimitWindow:   cfg.RateLimitWindow,
		}
	)

	// Инициализация Redis клиента
	if cfg.Redis.Enabled() {
		redisClient := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.VCFCacheTTL)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx); err != nil {
			zapLogger.Warn("Redis is unreachable, cache and rate limit will fail open", zap.Error(err))
		}

		redisStore := redisstorage.New(redisClient)
		resolverOpts = append(resolverOpts, vcf.WithCache(redisStore, cfg.VCFCacheTTL))
		serverOpts.Limiter = redisStore
	} else {
		zapLogger.Info("Redis is not configured, running without cache and rate limit")
	}

	svc := calculation.NewService(
		vcf.NewResolver(store, resolverOpts...),
		store,
		cfg.MaxPageSize,
	)

	// Запуск сервера
	return server.New(svc, zapLogger, serverOpts).Run(ctx, cfg.HTTP)
}
