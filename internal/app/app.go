package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cartflow/storefront/internal/cache"
	"github.com/cartflow/storefront/internal/config"
	"github.com/cartflow/storefront/internal/event"
	handler "github.com/cartflow/storefront/internal/handler/http"
	"github.com/cartflow/storefront/internal/repository/memory"
	"github.com/cartflow/storefront/internal/repository/mongodb"
	"github.com/cartflow/storefront/internal/service"
	"github.com/cartflow/storefront/pkg/database"
	"github.com/cartflow/storefront/pkg/health"
	pkgkafka "github.com/cartflow/storefront/pkg/kafka"
	"github.com/cartflow/storefront/pkg/middleware"
	"github.com/cartflow/storefront/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler()

	stores, err := a.openStores(ctx, healthHandler)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	productCache, err := a.openCache(ctx, healthHandler)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	publisher := a.openPublisher(healthHandler)

	// Build the dependency graph.
	eventProducer := event.NewProducer(publisher, logger)
	ratings := service.NewRatingAggregator(stores.Products, stores.Reviews, eventProducer, logger)
	svcs := handler.Services{
		Products: service.NewProductService(stores, ratings, productCache, eventProducer, cfg.RelatedProductsLimit, logger),
		Reviews:  service.NewReviewService(stores, ratings, productCache, eventProducer, logger),
		Orders:   service.NewOrderService(stores.Orders, eventProducer, logger),
	}

	// HTTP router.
	router := handler.NewRouter(svcs, healthHandler, handler.RouterConfig{
		JWTSecret:       cfg.JWTSecret,
		CORSOrigins:     cfg.CORSAllowedOrigins,
		PprofCIDRs:      cfg.PprofAllowedCIDRs,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
		RateLimit: middleware.RateLimitConfig{
			RPS:   cfg.RateLimitRPS,
			Burst: cfg.RateLimitBurst,
		},
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// openStores connects the configured document store and returns its
// repositories.
func (a *App) openStores(ctx context.Context, healthHandler *health.Handler) (service.Stores, error) {
	if a.cfg.StoreDriver == config.StoreMemory {
		store := memory.NewStore()
		healthHandler.RegisterCritical("store", store.Ping)
		a.logger.Warn("using in-memory store, data is lost on restart")
		return service.Stores{
			Products: memory.NewProductRepository(store),
			Reviews:  memory.NewReviewRepository(store),
			Users:    memory.NewUserRepository(store),
			Orders:   memory.NewOrderRepository(store),
			Tx:       store,
		}, nil
	}

	// Configure slow query logging.
	if a.cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(a.cfg.SlowQueryThreshold(), a.logger)
	}

	mongoCfg := database.DefaultMongoConfig()
	mongoCfg.URI = a.cfg.MongoURI
	mongoCfg.Database = a.cfg.MongoDatabase
	mongoCfg.ConnectTimeout = a.cfg.MongoConnectTimeout
	mongoCfg.MaxPoolSize = a.cfg.MongoMaxPoolSize

	client, err := database.NewMongoClient(ctx, mongoCfg, database.NewCommandMonitor(serviceName), a.logger)
	if err != nil {
		return service.Stores{}, fmt.Errorf("connect to mongo: %w", err)
	}
	a.mongoClient = client
	a.logger.Info("connected to MongoDB",
		slog.String("database", a.cfg.MongoDatabase),
		slog.Bool("transactions", a.cfg.MongoTransactions),
	)

	db := client.Database(a.cfg.MongoDatabase)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return service.Stores{}, fmt.Errorf("ensure indexes: %w", err)
	}
	a.logger.Info("mongo indexes ensured")

	healthHandler.RegisterCritical("mongo", database.MongoPinger(client))

	return service.Stores{
		Products: mongodb.NewProductRepository(db),
		Reviews:  mongodb.NewReviewRepository(db),
		Users:    mongodb.NewUserRepository(db),
		Orders:   mongodb.NewOrderRepository(db),
		Tx:       mongodb.NewTransactor(client, a.cfg.MongoTransactions),
	}, nil
}

// openCache connects the Redis product cache, or returns a no-op cache when
// Redis is not configured.
func (a *App) openCache(ctx context.Context, healthHandler *health.Handler) (service.ProductCache, error) {
	if !a.cfg.CacheEnabled() {
		a.logger.Info("product cache disabled")
		return cache.Nop{}, nil
	}

	client, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
		Retry:    database.RetryPolicy{Attempts: 2, BaseWait: 250 * time.Millisecond},
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redisClient = client
	a.logger.Info("connected to Redis", slog.String("addr", a.cfg.RedisAddr))

	productCache := cache.NewProductCache(client, a.cfg.ProductCacheTTL, cache.DefaultBreakerConfig("redis-product-cache"), a.logger)
	healthHandler.RegisterNonCritical("redis", productCache.Ping)
	return productCache, nil
}

// openPublisher creates the Kafka producer, or a publisher that drops events
// when no brokers are configured.
func (a *App) openPublisher(healthHandler *health.Handler) event.Publisher {
	if !a.cfg.EventsEnabled() {
		a.logger.Info("event publishing disabled")
		return event.NopPublisher{}
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), a.logger)
	a.producer = producer
	a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))

	healthHandler.RegisterNonCritical("kafka", producer.Ping)
	return producer
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer, Redis and MongoDB clients
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 3. Close clients.
	if err := a.closeClients(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

func (a *App) closeClients() error {
	var errs []error

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.mongoClient != nil {
		if err := database.DisconnectMongo(context.Background(), a.mongoClient); err != nil {
			a.logger.Error("mongo disconnect error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// closeResources releases whatever NewApp opened before it failed.
func (a *App) closeResources() {
	_ = a.closeClients()
	if a.tracerShutdown != nil {
		_ = a.tracerShutdown(context.Background())
	}
}
