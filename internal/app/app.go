package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ghani-Agu/review-app/internal/config"
	"github.com/Ghani-Agu/review-app/internal/event"
	handler "github.com/Ghani-Agu/review-app/internal/handler/http"
	"github.com/Ghani-Agu/review-app/internal/migrations"
	pgrepo "github.com/Ghani-Agu/review-app/internal/repository/postgres"
	"github.com/Ghani-Agu/review-app/internal/service"
	"github.com/Ghani-Agu/review-app/pkg/database"
	"github.com/Ghani-Agu/review-app/pkg/health"
	"github.com/Ghani-Agu/review-app/pkg/kafka"
	"github.com/Ghani-Agu/review-app/pkg/tracing"
)

// App wires together the review service's dependencies.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	pool     *pgxpool.Pool
	producer *kafka.Producer
	server   *http.Server

	shutdownTracing func(context.Context) error
}

// NewApp constructs the application: database pool, migrations, Kafka
// producer, tracing, repositories, services, handlers and the HTTP server.
func NewApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	shutdownTracing, err := tracing.InitTracer(ctx, tracing.Config{
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: "review-app",
		Environment: cfg.Environment,
		SampleRatio: cfg.TracingSampleRatio,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, log)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	database.RegisterPoolMetrics(pool, "review-app")
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold, log)

	producer := kafka.NewProducer(kafka.DefaultProducerConfig(cfg.KafkaBrokers), log)
	publisher := event.NewReviewPublisher(producer, cfg.ReviewTopic, log)

	repo := pgrepo.NewReviewRepository(pool)
	reviewService := service.NewReviewService(repo, publisher, log)
	reviewHandler := handler.NewReviewHandler(reviewService, log)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("kafka", producer.Ping)

	router := handler.NewRouter(handler.RouterConfig{
		ProxyPrefix:       cfg.ProxyPrefix,
		CacheMaxAge:       cfg.CacheMaxAge,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
	}, reviewHandler, healthHandler, log)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          log,
		pool:            pool,
		producer:        producer,
		server:          server,
		shutdownTracing: shutdownTracing,
	}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled or the
// server fails, then shuts everything down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening",
			slog.String("addr", a.server.Addr),
			slog.String("proxy_prefix", a.cfg.ProxyPrefix),
			slog.String("environment", a.cfg.Environment),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close(context.Background())
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown failed", slog.String("error", err.Error()))
	}

	a.close(shutdownCtx)
	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) close(ctx context.Context) {
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close failed", slog.String("error", err.Error()))
	}
	if err := a.shutdownTracing(ctx); err != nil {
		a.logger.Error("tracing shutdown failed", slog.String("error", err.Error()))
	}
	a.pool.Close()
}
