package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "muds-matching-backend/internal/api/http"
	"muds-matching-backend/internal/config"
	"muds-matching-backend/internal/logger"
	"muds-matching-backend/internal/matching"
	"muds-matching-backend/internal/repository/postgres"
	"muds-matching-backend/internal/security"
	"muds-matching-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Matching Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Notifier
	var notifier service.Notifier
	if cfg.Slack.Enabled {
		notifier = service.NewSlackNotifier(cfg.Slack.BotToken, cfg.Slack.AdminChannelID)
		logger.Info("Slack notifier enabled")
	} else {
		notifier = service.NewNoopNotifier()
		logger.Info("Slack disabled, running with no-op notifier")
	}

	// Initialize Mailer
	var mailer service.AdminMailer
	if cfg.Email.Enabled {
		mailer = service.NewSendgridMailer(cfg.Email)
	} else {
		mailer = service.NewNoopMailer()
	}

	// Initialize Ranker
	scorer := matching.NewScorer(matching.Tokenizer(cfg.Matching.Tokenizer), cfg.Matching.MaxFeatures)
	ranker := matching.NewRanker(scorer, cfg.Matching.Weights, cfg.Matching.TopN)

	// Initialize Services
	matchingSvc := service.NewMatchingService(
		store.JuniorRepository,
		store.SeniorRepository,
		store.MatchingRepository,
		ranker,
		notifier,
		mailer,
	)

	var fetcher service.RowFetcher
	if cfg.Sheets.Enabled {
		fetcher, err = service.NewSheetsFetcher(context.Background(), cfg.Sheets.CredentialsFile)
		if err != nil {
			logger.Error("Failed to initialize sheets client", "error", err)
			log.Fatalf("Failed to initialize sheets client: %v", err)
		}
	}
	syncSvc := service.NewSyncService(cfg.Sheets, fetcher, store.JuniorRepository, store.SeniorRepository, notifier)

	authSvc := service.NewAuthService(cfg.Google, tokenManager)

	// Set up HTTP server
	router := httpapi.NewRouter(httpapi.RouterDeps{
		MatchingSvc:        matchingSvc,
		SyncSvc:            syncSvc,
		AuthSvc:            authSvc,
		SeniorRepo:         store.SeniorRepository,
		TokenManager:       tokenManager,
		AdminToken:         cfg.Admin.APIToken,
		SlackSigningSecret: cfg.Slack.SigningSecret,
	})

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
