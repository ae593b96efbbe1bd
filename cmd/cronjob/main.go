package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"muds-matching-backend/internal/config"
	"muds-matching-backend/internal/jobs"
	"muds-matching-backend/internal/logger"
	"muds-matching-backend/internal/matching"
	"muds-matching-backend/internal/repository/postgres"
	"muds-matching-backend/internal/scheduler"
	"muds-matching-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'sync-rosters', 'send-feedback-requests', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Matching Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Initialize Notifier and Mailer
	var notifier service.Notifier
	if cfg.Slack.Enabled {
		notifier = service.NewSlackNotifier(cfg.Slack.BotToken, cfg.Slack.AdminChannelID)
	} else {
		notifier = service.NewNoopNotifier()
	}
	var mailer service.AdminMailer
	if cfg.Email.Enabled {
		mailer = service.NewSendgridMailer(cfg.Email)
	} else {
		mailer = service.NewNoopMailer()
	}

	// Initialize Services
	scorer := matching.NewScorer(matching.Tokenizer(cfg.Matching.Tokenizer), cfg.Matching.MaxFeatures)
	ranker := matching.NewRanker(scorer, cfg.Matching.Weights, cfg.Matching.TopN)
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

	jobServices := &jobs.Services{
		Matching: matchingSvc,
		Sync:     syncSvc,
		Mailer:   mailer,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(db, store, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "sync-rosters":
		jobRunner.SyncRosters()
	case "send-feedback-requests":
		jobRunner.SendFeedbackRequests()
	case "all":
		jobRunner.RunAllJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - sync-rosters\n")
		fmt.Printf("  - send-feedback-requests\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
