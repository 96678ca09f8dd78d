package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flightlog-service/internal/infrastructure/config"
	"flightlog-service/internal/infrastructure/oauth"
	"flightlog-service/internal/infrastructure/persistence"
	"flightlog-service/internal/interface/gmail"
	interfaceRepo "flightlog-service/internal/interface/repository"
	"flightlog-service/internal/normalize"
	"flightlog-service/internal/parser"
	"flightlog-service/internal/usecase"
	"flightlog-service/pkg/logger"
	"flightlog-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Flightlog Service")

	// Load configuration. A missing or implausible TARGET_YEAR is fatal here,
	// before any email is touched.
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	db := persistence.GetDatabase(mongoClient, cfg.MongoDB)

	// Airport timezone and airline reference tables live in PostgreSQL
	gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	timezoneRepository := interfaceRepo.NewGormTimezoneRepository(gormDB)
	airlineRepository := interfaceRepo.NewGormAirlineRepository(gormDB)

	emailRepository := interfaceRepo.NewMongoEmailRepository(db)
	historyRepository := interfaceRepo.NewMongoTravelHistoryRepository(db)

	m := metrics.NewMetrics("flightlog")

	// Assemble the extraction pipeline
	detector := parser.NewFormatDetector(log)
	registry := parser.DefaultRegistry(log)
	normalizer := normalize.NewNormalizer(timezoneRepository, airlineRepository, cfg.TargetYear, log)
	historyBuilder := usecase.NewHistoryBuilder(detector, registry, normalizer, emailRepository, historyRepository, m, log)

	// Set up Gmail OAuth
	gmailOAuth := oauth.NewGmailOAuth(
		cfg.GmailClientID,
		cfg.GmailClientSecret,
		cfg.GmailRefreshToken,
		log,
	)
	tokenSource := gmailOAuth.GetTokenSource(ctx)

	// Set up Gmail service
	gmailService, err := gmail.NewGmailService(ctx, tokenSource, emailRepository, log, cfg.GmailPollInterval, cfg.TargetYear)
	if err != nil {
		log.Fatal("Failed to create Gmail service", "error", err)
	}

	// Reconcile the stored history with the current extraction rules before
	// incremental processing starts
	if err := historyBuilder.RebuildHistory(ctx); err != nil {
		log.Error("Failed to rebuild travel history", "error", err)
	}

	// Start Gmail polling in a goroutine
	go gmailService.StartPolling(ctx)

	// Start the pipeline worker in a goroutine
	go func() {
		processTicker := time.NewTicker(30 * time.Second)
		defer processTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Pipeline worker stopped")
				return
			case <-processTicker.C:
				log.Info("Processing pending emails")
				if err := historyBuilder.ProcessPendingEmails(ctx); err != nil {
					log.Error("Error processing emails", "error", err)
				}
			}
		}
	}()

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines

	if err := mongoClient.Disconnect(context.Background()); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Flightlog Service stopped")
}
