package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet-tracker/internal/config"
	"fleet-tracker/internal/infrastructure/database/postgres"
	"fleet-tracker/internal/ingestion"
	"fleet-tracker/internal/logger"
	"fleet-tracker/internal/routes"
	"fleet-tracker/internal/telematics"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
	)

	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		logger.Fatal("Database configuration is missing. Please set DB_HOST and DB_NAME environment variables.")
	}

	client, err := telematics.NewClient(telematics.Config{
		BaseURL:  cfg.Telematics.BaseURL,
		Token:    cfg.Telematics.Token,
		Timeout:  cfg.Telematics.Timeout,
		CacheTTL: cfg.Telematics.CacheTTL,
	})
	if err != nil {
		logger.Fatal("Failed to build telematics client. Please set TELEMATICS_TOKEN.", zap.Error(err))
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to migrate database schema", zap.Error(err))
	}

	router, webhookService := routes.SetupRoutes(cfg, db, client)

	var subscriber *ingestion.Subscriber
	if cfg.MQTT.Broker != "" {
		subscriber, err = ingestion.NewSubscriber(&cfg.MQTT, webhookService, ingestion.NewMetricsTracker())
		if err != nil {
			logger.Fatal("Failed to build MQTT subscriber", zap.Error(err))
		}
		if err := subscriber.Start(); err != nil {
			logger.Fatal("Failed to start MQTT subscriber", zap.Error(err))
		}
		defer subscriber.Stop()
	}

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Failed to shutdown server", zap.Error(err))
	}

	logger.Info("Server exited properly")
}
