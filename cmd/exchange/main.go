package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/currency-exchange/internal/currency"
	"github.com/richxcame/currency-exchange/internal/parser"
	"github.com/richxcame/currency-exchange/internal/providers"
	"github.com/richxcame/currency-exchange/migrations"
	"github.com/richxcame/currency-exchange/pkg/common"
	"github.com/richxcame/currency-exchange/pkg/config"
	"github.com/richxcame/currency-exchange/pkg/database"
	"github.com/richxcame/currency-exchange/pkg/eventbus"
	"github.com/richxcame/currency-exchange/pkg/health"
	"github.com/richxcame/currency-exchange/pkg/logger"
	"github.com/richxcame/currency-exchange/pkg/middleware"
	"github.com/richxcame/currency-exchange/pkg/redis"
	"github.com/richxcame/currency-exchange/pkg/resilience"
	"github.com/richxcame/currency-exchange/pkg/tracing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	serviceName = "exchange"
	version     = "1.0.0"
)

func main() {
	// Load configuration
	cfg, err := config.Load(serviceName)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Amounts are serialized as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Server.Environment,
			Release:     serviceName + "@" + version,
		}); err != nil {
			logger.Warn("Failed to initialize Sentry", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	shutdownTracing, err := tracing.Init(context.Background(), cfg.Tracing, serviceName, version)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	// Connect to PostgreSQL and apply migrations
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db, migrations.FS); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to Redis
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Conversion events are optional
	var publisher eventbus.Publisher = eventbus.NopPublisher{}
	if cfg.NATS.Enabled {
		bus, err := eventbus.Connect(cfg.NATS.URL, serviceName)
		if err != nil {
			logger.Warn("NATS unavailable, conversion events disabled", zap.Error(err))
		} else {
			defer bus.Close()
			publisher = bus
			logger.Info("Connected to NATS", zap.String("url", cfg.NATS.URL))
		}
	}

	// Rate providers, tried in this order, each behind its own breaker
	providerTimeout := cfg.Providers.Timeout()
	breakerSettings := func(name string) resilience.Settings {
		return resilience.BuildSettings(name,
			cfg.Providers.BreakerIntervalSeconds,
			cfg.Providers.BreakerTimeoutSeconds,
			cfg.Providers.BreakerFailureThreshold,
			cfg.Providers.BreakerSuccessThreshold,
		)
	}
	chain := providers.NewChain(
		providers.WithCircuitBreaker(providers.NewCurrencyLayerProvider(
			providers.NewHTTPClient(cfg.Providers.CurrencyLayer.URL, providerTimeout, cfg.Providers.RetryAttempts),
			cfg.Providers.CurrencyLayer.AccessKey,
		), breakerSettings(providers.CurrencyLayerName)),
		providers.WithCircuitBreaker(providers.NewFixerProvider(
			providers.NewHTTPClient(cfg.Providers.Fixer.URL, providerTimeout, cfg.Providers.RetryAttempts),
			cfg.Providers.Fixer.AccessKey,
		), breakerSettings(providers.FixerName)),
	)
	if cfg.Providers.CurrencyLayer.AccessKey == "" || cfg.Providers.Fixer.AccessKey == "" {
		logger.Warn("One or more rate providers have no access key configured")
	}
	logger.Info("Rate providers configured", zap.Strings("order", chain.Names()))

	// Create service and handler
	repo := currency.NewRepository(db)
	cache := currency.NewRedisRateCache(redisClient, currency.DefaultStaleRetention)
	resolver := currency.NewRateResolver(cache, chain, cfg.Rates.CacheTTL)
	pipeline := currency.NewPipeline(resolver, currency.NewConverter(), repo, publisher)
	batch := currency.NewBatchProcessor(pipeline, cfg.Batch.Workers)
	service := currency.NewService(resolver, pipeline, batch, repo)
	handler := currency.NewHandler(service, parser.NewRegistry(), int64(cfg.Batch.MaxUploadMB)<<20,
		time.Duration(cfg.Server.RequestTimeout)*time.Second)

	// Set up Gin router
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", middleware.CorrelationIDHeader}

	router.Use(cors.New(corsConfig))
	router.Use(middleware.CorrelationID())
	if cfg.Sentry.Enabled {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger("/livez", "/healthz", "/metrics"))
	router.Use(middleware.Metrics(serviceName))
	router.Use(middleware.SecurityHeaders())

	// Health check and metrics
	dbCheck := health.NewCachedChecker(health.DatabaseChecker(db), 5*time.Second)
	redisCheck := health.NewCachedChecker(health.RedisChecker(redisClient), 5*time.Second)
	router.GET("/livez", common.HealthCheck(serviceName, version))
	router.GET("/healthz", common.HealthCheckWithDeps(serviceName, version, map[string]func() error{
		"database": dbCheck.Check,
		"redis":    redisCheck.Check,
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	handler.RegisterRoutes(router.Group("/api/v1"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Exchange service starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("Failed to flush traces", zap.Error(err))
	}

	logger.Info("Exchange service stopped")
}
