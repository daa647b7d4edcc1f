package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"chatline/internal/audit"
	"chatline/internal/broker"
	"chatline/internal/config"
	"chatline/internal/constants"
	"chatline/internal/logger"
	"chatline/pkg/bootstrap"
	"chatline/pkg/health"
	"chatline/pkg/metrics"
	"chatline/pkg/middleware"
	"chatline/pkg/migrations"
	"chatline/pkg/models"
	"chatline/pkg/ratelimit"
	"chatline/pkg/retry"
	"chatline/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	service        *audit.Service
	tracerProvider *tracing.TracerProvider
	server         *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("logs-service")
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.InitBroker("logs-service"); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	a.initService()

	tp, err := tracing.Init(a.Config.Tracing, "logs-service")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterAuditMetrics()
	metrics.RegisterBrokerMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}
	if a.Config.RateLimit.Enabled {
		metrics.RegisterRateLimitMetrics()
	}

	if err := a.initHTTPServer(); err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	mongoClient, err := a.dbConnector.InitMongoDB(ctx)
	if err != nil {
		return err
	}
	a.mongoClient = mongoClient

	if err := migrations.EnsureLogsCollection(ctx, a.mongoDatabase()); err != nil {
		return fmt.Errorf("failed to ensure logs collection: %w", err)
	}

	if a.Config.Audit.Idempotency.Enabled {
		rdb, err := a.dbConnector.InitRedis(ctx)
		if err != nil {
			return fmt.Errorf("idempotency guard enabled but redis unavailable: %w", err)
		}
		a.redisClient = rdb
	}

	return nil
}

func (a *App) mongoDatabase() *mongo.Database {
	return a.mongoClient.Database(a.Config.Database.MongoDB.Database)
}

func (a *App) initService() {
	repo := audit.NewRepository(a.mongoDatabase())

	var dedup *audit.Deduplicator
	if a.redisClient != nil {
		store := audit.NewCircuitBreakerStore(audit.NewRedisStore(a.redisClient), a.Config.CircuitBreaker)
		dedup = audit.NewDeduplicator(store, a.Config.Audit.Idempotency, a.Logger)
	}

	a.service = audit.NewService(repo, dedup, a.Logger)
}

func (a *App) initHTTPServer() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware("logs-service"))
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())

	if a.Config.RateLimit.Enabled {
		rateLimitConfig := ratelimit.RateLimitConfig{
			RPS:             a.Config.RateLimit.RPS,
			Burst:           a.Config.RateLimit.Burst,
			CleanupInterval: time.Duration(a.Config.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.Config.RateLimit.MaxAge) * time.Second,
		}
		router.Use(ratelimit.RateLimitMiddleware(rateLimitConfig))
	}

	handler := audit.NewHandler(a.service, a.Logger)
	handler.RegisterRoutes(router)

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewMongoDBChecker(a.mongoClient))
	if a.redisClient != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redisClient))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler: router,
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.Logger.InfowCtx(gCtx, "Starting audit event consumer",
			"topic", constants.TopicChatToLogs,
		)
		return a.Consumer.Consume(gCtx, constants.TopicChatToLogs, a.handleAuditEvent)
	})

	return g.Wait()
}

func (a *App) handleAuditEvent(ctx context.Context, d broker.Delivery) error {
	event, err := models.DecodeAuditEvent(d.Value)
	if err != nil {
		return retry.NewFatalError(fmt.Errorf("invalid audit event: %w", err))
	}

	return a.service.Record(ctx, event)
}

func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.InfowCtx(ctx, "Shutting down logs service")

	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.server != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			if err := a.server.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("HTTP server shutdown error: %w", err))
			}
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redisClient, nil, a.mongoClient)...)

		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
