package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"google.golang.org/grpc"

	_ "github.com/tair/stock-ledger/docs"
	"github.com/tair/stock-ledger/internal/stock"
	"github.com/tair/stock-ledger/internal/stock/cache"
	grpcDelivery "github.com/tair/stock-ledger/internal/stock/delivery/grpc"
	httpDelivery "github.com/tair/stock-ledger/internal/stock/delivery/http"
	"github.com/tair/stock-ledger/internal/stock/events"
	"github.com/tair/stock-ledger/internal/stock/repository"
	"github.com/tair/stock-ledger/kafka"
	"github.com/tair/stock-ledger/pkg/auth"
	"github.com/tair/stock-ledger/pkg/config"
	"github.com/tair/stock-ledger/pkg/database"
	"github.com/tair/stock-ledger/pkg/lock"
	"github.com/tair/stock-ledger/pkg/logger"
	"github.com/tair/stock-ledger/pkg/tracing"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting stock service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.InitTracer(cfg.ServiceName, cfg.JaegerEndpoint)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Tracing disabled")
	}

	// Connect to database
	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := repository.NewGormStore(db).AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	rdb := connectRedis(ctx, cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	locker, err := newLocker(cfg, rdb)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize lot locks")
	}

	bus := events.NewBus()
	responseCache := cache.New(rdb, cfg.CacheTTL)
	bus.Subscribe("response-cache", responseCache.OnChange)

	closeKafka := startKafka(ctx, cfg, bus, responseCache)
	defer closeKafka()

	// Initialize handler with Wire DI
	handler, err := stock.InitializeHTTPHandler(
		db,
		locker,
		bus,
		auth.NewVerifier(cfg.JWTSecret),
		prometheus.DefaultRegisterer,
		responseCache,
		httpDelivery.NewRateLimiter(rdb, cfg.RateLimit, time.Minute),
	)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize handler")
	}

	httpServer := newHTTPServer(handler, sqlDB, cfg.HTTPPort)
	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Str("swagger", "/swagger/index.html").
			Msg("HTTP server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	checker := grpcDelivery.NewHealthChecker(sqlDB, 10*time.Second)
	go checker.Run(ctx)
	grpcServer := grpcDelivery.NewServer(checker)
	go startGRPCServer(grpcServer, cfg.GRPCPort)

	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	grpcServer.GracefulStop()

	if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
		logger.Logger.Error().Err(err).Msg("Tracer shutdown failed")
	}
}

func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		logger.Logger.Info().Msg("Redis not configured, response cache disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		if cfg.LockBackend == config.LockBackendRedis {
			logger.Logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis required for lot locks")
		}
		logger.Logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, response cache disabled")
		_ = rdb.Close()
		return nil
	}

	logger.Logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis connected")
	return rdb
}

func newLocker(cfg *config.Config, rdb *redis.Client) (lock.Locker, error) {
	switch cfg.LockBackend {
	case config.LockBackendLocal:
		return lock.NewLocal(5 * time.Second), nil
	case config.LockBackendRedis:
		if rdb == nil {
			return nil, errors.New("redis lock backend requires REDIS_ADDR")
		}
		return lock.NewRedis(rdb, cfg.LockTTL, 5*time.Second, 50*time.Millisecond), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.LockBackend)
	}
}

// startKafka forwards local changes to other instances and drops the
// response cache when another instance changes stock
func startKafka(ctx context.Context, cfg *config.Config, bus *events.Bus, responseCache *cache.Cache) func() {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Logger.Info().Msg("Kafka not configured, change events stay in-process")
		return func() {}
	}

	hostname, _ := os.Hostname()
	origin := fmt.Sprintf("%s-%s", hostname, uuid.NewString()[:8])

	publisher, err := kafka.NewPublisher(cfg.KafkaBrokers, origin)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize Kafka publisher")
		return func() {}
	}
	bus.Subscribe("kafka", publisher.OnChange)

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID+"-"+origin, origin, []string{kafka.TopicStockChanged})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize Kafka consumer")
		return func() { _ = publisher.Close() }
	}
	consumer.RegisterHandler(kafka.EventTypeStockChanged, func(ctx context.Context, event kafka.StockChangedEvent) error {
		return responseCache.Invalidate(ctx)
	})

	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to start Kafka consumer")
	}

	return func() {
		_ = consumer.Close()
		_ = publisher.Close()
	}
}

func newHTTPServer(handler *httpDelivery.StockHandler, db *sql.DB, port string) *http.Server {
	router := mux.NewRouter()

	middlewareConfig := httpDelivery.DefaultMiddlewareConfig()
	httpDelivery.RegisterMiddlewares(router, middlewareConfig)

	handler.RegisterRoutes(router)
	handler.RegisterHealthCheck(router, db)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return &http.Server{
		Addr:              ":" + port,
		Handler:           httpDelivery.SetupCORS(middlewareConfig)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func startGRPCServer(server *grpc.Server, port string) {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		logger.Logger.Fatal().Err(err).Str("port", port).Msg("Failed to listen")
	}

	logger.Logger.Info().
		Str("port", port).
		Bool("reflection", true).
		Msg("gRPC server started")

	if err := server.Serve(lis); err != nil {
		logger.Logger.Error().Err(err).Msg("gRPC server stopped")
	}
}
