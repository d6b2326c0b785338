package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Pesokrava/products-ms/internal/config"
	httpDelivery "github.com/Pesokrava/products-ms/internal/delivery/http"
	"github.com/Pesokrava/products-ms/internal/delivery/http/handler"
	"github.com/Pesokrava/products-ms/internal/delivery/rpc"
	"github.com/Pesokrava/products-ms/internal/pkg/broker"
	"github.com/Pesokrava/products-ms/internal/pkg/logger"
	"github.com/Pesokrava/products-ms/internal/pkg/telemetry"

	_ "github.com/Pesokrava/products-ms/docs"
)

// @title Products API
// @version 1.0
// @description REST gateway to the products microservice. Every call is forwarded over NATS request/reply.

// @contact.name API Support
// @contact.url http://github.com/Pesokrava/products-ms

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @tag.name Products
// @tag.description Product management endpoints

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewWithOptions(cfg.Env, logger.Options{
		Level:   cfg.LogLevel,
		Service: "products-gateway",
	})
	appLogger.Info("Starting products gateway...")

	telem, err := telemetry.New(context.Background(), telemetry.Options{
		ServiceName:  "products-gateway",
		Environment:  cfg.Env,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize telemetry", err)
	}

	appLogger.Info("Connecting to NATS...")
	nc, err := broker.Connect(cfg, "products-gateway", appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to NATS", err)
	}
	defer nc.Close()

	productHandler := handler.NewProductHandler(rpc.NewClient(nc, cfg), appLogger)

	router := httpDelivery.NewRouter(productHandler, telem.MetricsHandler(), cfg, appLogger,
		httpDelivery.HealthCheck{Name: "nats", Check: func(context.Context) error {
			return broker.Status(nc)
		}},
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Gateway.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Gateway.ReadTimeout,
		WriteTimeout: cfg.Gateway.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Gateway.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
	if err := telem.Shutdown(ctx); err != nil {
		appLogger.Error("Failed to flush telemetry", err)
	}

	appLogger.Info("Server stopped gracefully")
}
