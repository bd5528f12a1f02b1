package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gosubgroup/adapters/excel"
	"gosubgroup/adapters/postgres"
	"gosubgroup/app"
	"gosubgroup/internal"
	"gosubgroup/internal/api"
	"gosubgroup/internal/config"
	"gosubgroup/internal/search/beam"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.DefaultLogger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the run store; migrations run on open
	db, err := postgres.Open(ctx, appConfig.Database.Driver, appConfig.Database.URL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	logger.Info("Run store ready (%s)", appConfig.Database.Driver)

	metrics := api.Metrics{}
	service := app.NewDiscoveryService(
		excel.NewDataReader(excel.DefaultReaderConfig()),
		postgres.NewRunRepository(db),
		logger,
	).WithObservers(beam.NewLoggingObserver(logger), metrics).WithListeners(metrics)

	server := &http.Server{
		Addr:        ":" + appConfig.Server.Port,
		Handler:     api.NewServer(service, appConfig, logger),
		ReadTimeout: appConfig.Server.ReadTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown failed: %v", err)
		}
	}()

	logger.Info("Starting gosubgroup server on port %s (data dir %s)", appConfig.Server.Port, appConfig.Data.Dir)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}
