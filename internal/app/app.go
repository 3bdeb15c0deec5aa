// Package app wires the cart service together and runs it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mireska/cartsvc/pkg/health"
	"github.com/mireska/cartsvc/pkg/httpclient"
	pkgkafka "github.com/mireska/cartsvc/pkg/kafka"
	"github.com/mireska/cartsvc/pkg/tracing"

	"github.com/mireska/cartsvc/internal/catalog"
	"github.com/mireska/cartsvc/internal/checkout"
	"github.com/mireska/cartsvc/internal/config"
	"github.com/mireska/cartsvc/internal/event"
	handler "github.com/mireska/cartsvc/internal/handler/http"
	redisrepo "github.com/mireska/cartsvc/internal/repository/redis"
	"github.com/mireska/cartsvc/internal/service"
)

// App wires together all dependencies and runs the cart service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	rdb             *redis.Client
	producer        *pkgkafka.Producer
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates the application, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracingShutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName: "cart",
		Environment: cfg.Environment,
		Endpoint:    cfg.TracingEndpoint,
		SampleRate:  cfg.TracingSample,
		Enabled:     cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Outbound clients. Each collaborator gets its own breaker so a melting
	// order service does not block catalog reads.
	baseClient := httpclient.New(httpclient.DefaultConfig())
	catalogClient := httpclient.NewBreakerClient(baseClient, httpclient.DefaultBreakerConfig("catalog"), logger)
	orderClient := httpclient.NewBreakerClient(baseClient, httpclient.DefaultBreakerConfig("order"), logger)

	repo := redisrepo.NewCartRepository(rdb, cfg.CartTTL())
	eventProducer := event.NewProducer(producer, logger)
	catalogSvc := catalog.NewClient(catalogClient, cfg.CatalogURL)
	cartService := service.NewCartService(repo, catalogSvc, eventProducer, logger)
	checkoutService := checkout.NewService(repo, catalogSvc, orderClient, cfg.OrderURL, eventProducer, logger)

	healthReg := health.NewRegistry()
	healthReg.Add("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthReg.Add("kafka", producer.Ping)

	router := handler.NewRouter(cartService, checkoutService, healthReg, logger, cfg.PprofCIDRs)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		rdb:             rdb,
		producer:        producer,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
