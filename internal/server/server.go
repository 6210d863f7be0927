package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"oil-tonnage/internal/config"
	"oil-tonnage/internal/domain"
)

// Service is the calculation workflow the handlers drive.
type Service interface {
	Calculate(ctx context.Context, volume, density, temperature float64) (domain.CalculationRecord, error)
	List(ctx context.Context, q domain.ListQuery) (domain.ListQuery, domain.ListResult, error)
	Delete(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
	Export(ctx context.Context, w io.Writer, q domain.ListQuery) error
	Health(ctx context.Context) error
}

// RateLimiter counts requests per client within a window.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, client, action string, limit int64, window time.Duration) (bool, error)
}

type Options struct {
	StaticDir         string
	Limiter           RateLimiter
	RateLimitRequests int64
	RateLimitWindow   time.Duration
}

type Server struct {
	service Service
	logger  *zap.Logger
	opts    Options
	handler http.Handler
}

func New(service Service, logger *zap.Logger, opts Options) *Server {
	s := &Server{
		service: service,
		logger:  logger,
		opts:    opts,
	}
	// Wrapping the whole router covers 404 and 405 answers too.
	s.handler = s.requestID(s.accessLog(s.recoverer(s.routes())))
	return s
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	if s.opts.Limiter != nil && s.opts.RateLimitRequests > 0 {
		api.Use(s.rateLimit)
	}
	api.HandleFunc("/calculate", s.calculate).Methods(http.MethodPost)
	api.HandleFunc("/calculations", s.listCalculations).Methods(http.MethodGet)
	api.HandleFunc("/calculations", s.clearCalculations).Methods(http.MethodDelete)
	api.HandleFunc("/calculations/export", s.exportCalculations).Methods(http.MethodGet)
	api.HandleFunc("/calculations/{id}", s.deleteCalculation).Methods(http.MethodDelete)
	api.HandleFunc("/health", s.health).Methods(http.MethodGet)

	if s.opts.StaticDir != "" {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.opts.StaticDir)))
	}
	return router
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg config.HTTPConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting HTTP server", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
