package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/medcase-assist-server/internal/api"
	"github.com/medcase-assist-server/internal/config"
	"github.com/medcase-assist-server/internal/database"
	"github.com/medcase-assist-server/internal/domain"
	"github.com/medcase-assist-server/internal/qahistory"
	"github.com/medcase-assist-server/internal/repository"
	"github.com/medcase-assist-server/internal/service"
	"github.com/medcase-assist-server/pkg/external"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := newLogger(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting case assistant server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	migrationRunner, err := database.NewMigrationRunner(cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create migration runner")
	}
	if err := migrationRunner.Up(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}
	migrationRunner.Close()

	repo := repository.NewCaseRepository(db.Pool, logger)

	// External collaborators, each behind a circuit breaker.
	literature := external.NewResilientSearcher(
		external.NewPubMedClient(cfg.ExternalAPI.PubMed, logger), logger)
	summarizer := external.NewResilientSummarizer(
		external.NewOllamaClient(cfg.ExternalAPI.Ollama, logger), logger)
	primary := external.NewResilientTranslator(
		external.NewLibreTranslateClient(cfg.ExternalAPI.Translate, logger), "translate-primary", logger)

	// The secondary endpoint is optional; keep the interface nil rather
	// than boxing a nil client into it.
	var secondary domain.MachineTranslator
	if googleClient := external.NewGoogleTranslateClient(cfg.ExternalAPI.Translate, logger); googleClient != nil {
		secondary = external.NewResilientTranslator(googleClient, "translate-secondary", logger)
	}

	var redisClient *redis.Client
	if cfg.Cache.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			logger.WithError(err).Fatal("Invalid Redis URL")
		}
		opts.MaxRetries = cfg.Cache.MaxRetries
		opts.PoolSize = cfg.Cache.PoolSize
		opts.PoolTimeout = cfg.Cache.PoolTimeout
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	cache, err := service.NewTranslationCache(cfg.Cache.MemorySize, redisClient, cfg.Cache.RedisTTL, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create translation cache")
	}

	translator := service.NewTranslator(primary, secondary, cache, cfg.Pipeline.BatchWorkers, logger)

	qaStore, err := newQAStore(cfg, configManager)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Q&A history store")
	}
	defer qaStore.Close()

	pipeline := service.NewEnrichmentPipeline(
		repo, literature, summarizer, translator, qaStore, cfg.Pipeline, logger)

	server := api.NewServer(cfg, db, repo, pipeline, translator, cache, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// newLogger builds the application logger from the logging config.
func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.Output == "stderr" {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(os.Stdout)
	}

	return logger
}

// newQAStore selects the Q&A history backend.
func newQAStore(cfg *domain.Config, manager *config.Manager) (qahistory.Store, error) {
	switch cfg.QAHistory.Backend {
	case "sqlite":
		return qahistory.NewSQLiteStore(cfg.QAHistory.SQLitePath)
	default:
		return qahistory.NewPostgresStoreFromURL(manager.GetDatabaseConnectionString())
	}
}
