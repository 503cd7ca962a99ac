package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finance-ledger/internal/api"
	"github.com/dvloznov/finance-ledger/internal/bootstrap"
	"github.com/dvloznov/finance-ledger/internal/config"
	"github.com/dvloznov/finance-ledger/internal/gcsuploader"
	"github.com/dvloznov/finance-ledger/internal/jobs"
	"github.com/dvloznov/finance-ledger/internal/jobs/inmemory"
	"github.com/dvloznov/finance-ledger/internal/logger"
	"github.com/dvloznov/finance-ledger/internal/service"
	"github.com/shopspring/decimal"
)

func main() {
	var (
		envFile = flag.String("env", "", "Path to a .env file (defaults to ./.env when present)")
		port    = flag.String("port", "", "HTTP server port (overrides PORT)")
	)
	flag.Parse()

	bootLog := logger.New()

	cfg, err := config.Load(*envFile)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.NewWithLevel(cfg.LogLevel)
	ctx := logger.WithContext(context.Background(), log)

	// Monetary values are sent as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger store")
	}
	defer store.Close()

	svc := service.NewTransactionService(store)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	var (
		publisher jobs.Publisher
		jobQueue  *inmemory.Queue
	)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if cfg.GCS.Bucket == "" {
		log.Warn().Msg("No GCS bucket configured - asynchronous imports will be disabled")
	} else {
		storageSvc, err := gcsuploader.NewGCSStorageService(ctx, cfg.Server.MaxUploadBytes)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage client")
		}
		defer storageSvc.Close()

		jobQueue = inmemory.NewQueue(cfg.Jobs.QueueSize, cfg.Jobs.Workers, jobStore)
		publisher = jobQueue

		log.Info().Int("workers", cfg.Jobs.Workers).Msg("Starting import workers")
		if err := jobQueue.Start(workerCtx, service.NewImportJobHandler(svc, storageSvc)); err != nil {
			log.Fatal().Err(err).Msg("Failed to start import workers")
		}
	}

	handler := api.NewRouter(api.Dependencies{
		Service:        svc,
		Publisher:      publisher,
		JobStore:       jobStore,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		MaxRetries:     cfg.Jobs.MaxRetries,
		Log:            log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("store", cfg.Store.Backend).
			Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if jobQueue != nil {
		if err := jobQueue.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error stopping job queue")
		}
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
