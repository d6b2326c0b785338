package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/products-ms/internal/config"
	httpDelivery "github.com/Pesokrava/products-ms/internal/delivery/http"
	"github.com/Pesokrava/products-ms/internal/delivery/rpc"
	"github.com/Pesokrava/products-ms/internal/delivery/rpc/handler"
	"github.com/Pesokrava/products-ms/internal/delivery/rpc/message"
	"github.com/Pesokrava/products-ms/internal/delivery/rpc/middleware"
	"github.com/Pesokrava/products-ms/internal/domain"
	"github.com/Pesokrava/products-ms/internal/pkg/broker"
	"github.com/Pesokrava/products-ms/internal/pkg/database"
	"github.com/Pesokrava/products-ms/internal/pkg/logger"
	"github.com/Pesokrava/products-ms/internal/pkg/rediscli"
	"github.com/Pesokrava/products-ms/internal/pkg/telemetry"
	"github.com/Pesokrava/products-ms/internal/repository/lock"
	"github.com/Pesokrava/products-ms/internal/repository/memory"
	"github.com/Pesokrava/products-ms/internal/repository/postgres"
	"github.com/Pesokrava/products-ms/internal/usecase/product"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewWithOptions(cfg.Env, logger.Options{
		Level:   cfg.LogLevel,
		Service: cfg.ServiceName,
	})
	logger.SetGlobalLogger(appLogger)
	appLogger.Info("Starting products microservice...")

	telem, err := telemetry.New(context.Background(), telemetry.Options{
		ServiceName:  cfg.ServiceName,
		Environment:  cfg.Env,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize telemetry", err)
	}

	// Interrupting while dependencies are still coming up aborts the retries.
	startCtx, stopStart := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopStart()

	var checks []httpDelivery.HealthCheck
	var productRepo domain.ProductRepository

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		appLogger.Warn("Using in-memory storage; products are lost on restart")
		productRepo = memory.NewProductRepository()
	default:
		db := openDatabase(startCtx, cfg, appLogger)
		defer db.Close()
		productRepo = postgres.NewProductRepository(db)
		checks = append(checks, httpDelivery.HealthCheck{Name: "database", Check: db.PingContext})
	}

	serviceOpts := []product.Option{product.WithTelemetry(telem.Tracer(), telem.Meter())}
	if cfg.Lock.Enabled {
		redisClient := openRedis(startCtx, cfg, appLogger)
		defer redisClient.Close()
		serviceOpts = append(serviceOpts, product.WithLocker(lock.NewRedisLocker(redisClient, cfg.Lock.TTL, appLogger)))
		checks = append(checks, httpDelivery.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}

	stopStart()

	appLogger.Info("Connecting to NATS...")
	nc, err := broker.Connect(cfg, cfg.ServiceName, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to NATS", err)
	}
	defer nc.Close()
	checks = append(checks, httpDelivery.HealthCheck{Name: "nats", Check: func(context.Context) error {
		return broker.Status(nc)
	}})

	productService := product.NewService(productRepo, appLogger, serviceOpts...)
	productHandler := handler.NewProductHandler(productService, cfg.Pagination.DefaultLimit, appLogger)

	metrics, err := middleware.Metrics(telem.Meter())
	if err != nil {
		appLogger.Fatal("Failed to create RPC metrics", err)
	}
	router := rpc.NewProductRouter(productHandler, []message.Middleware{
		middleware.Recovery(appLogger),
		middleware.Tracing(telem.Tracer()),
		metrics,
		middleware.Logger(appLogger),
		middleware.Timeout(cfg.RPC.HandlerTimeout),
	}...)

	server := rpc.NewServer(nc, router, cfg, appLogger)
	if err := server.Start(); err != nil {
		appLogger.Fatal("Failed to start RPC server", err)
	}

	opsServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Ops.Port),
		Handler:      httpDelivery.NewOpsRouter(telem.MetricsHandler(), appLogger, checks...),
		ReadTimeout:  cfg.Gateway.ReadTimeout,
		WriteTimeout: cfg.Gateway.WriteTimeout,
	}

	go func() {
		appLogger.Infof("Ops server listening on port %s", cfg.Ops.Port)
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Ops server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down products microservice...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("RPC server forced to shutdown", err)
	}
	if err := opsServer.Shutdown(ctx); err != nil {
		appLogger.Error("Ops server forced to shutdown", err)
	}
	if err := nc.Drain(); err != nil {
		appLogger.Warnf("Failed to drain NATS connection: %v", err)
	}
	if err := telem.Shutdown(ctx); err != nil {
		appLogger.Error("Failed to flush telemetry", err)
	}

	appLogger.Info("Products microservice stopped gracefully")
}

func openDatabase(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) *sqlx.DB {
	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(ctx, cfg, appLogger, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	appLogger.Info("Connected to PostgreSQL successfully")

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db); err != nil {
			db.Close()
			appLogger.Fatal("Failed to run migrations", err)
		}
		appLogger.Info("Database migrations applied")
	}

	return db
}

func openRedis(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) *redis.Client {
	appLogger.Info("Connecting to Redis...")
	client, err := rediscli.WaitForRedis(ctx, cfg, appLogger, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	appLogger.Info("Connected to Redis successfully; per-product locking enabled")
	return client
}
