package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/srwlli/dashboard-sub004/internal/config"
	"github.com/srwlli/dashboard-sub004/internal/db"
	coderefnats "github.com/srwlli/dashboard-sub004/internal/nats"
	"github.com/srwlli/dashboard-sub004/internal/worker"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	// Determine worker type from env
	workerType := os.Getenv("WORKER_TYPE")
	if workerType == "" {
		workerType = "all" // Run all worker types
	}

	// Connect to the job queue (optional)
	var jobDB *sql.DB
	if cfg.DatabaseURL != "" {
		jobDB, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to database, workers will run in limited mode")
		} else if err := jobDB.Ping(); err != nil {
			log.Warn().Err(err).Msg("database ping failed, workers will run in limited mode")
			jobDB.Close()
			jobDB = nil
		} else {
			log.Info().Msg("connected to database")
			defer jobDB.Close()
		}
	}

	// The store persists scan results and graph snapshots
	var store *db.Store
	if jobDB != nil {
		pgdb, err := db.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to open result store, workers cannot persist results")
		} else {
			store = db.NewStore(pgdb)
			defer pgdb.Close()
		}
	}

	// Connect to NATS (optional)
	var natsClient *coderefnats.Client
	if cfg.NATSURL != "" {
		natsClient, err = coderefnats.NewClient(cfg.NATSURL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, workers will poll database")
		} else {
			log.Info().Str("url", cfg.NATSURL).Msg("connected to NATS")
			defer natsClient.Close()
		}
	}

	// Create worker pool
	pool, err := worker.NewPool(worker.PoolConfig{
		Config:     cfg,
		WorkerType: workerType,
		DB:         jobDB,
		NATS:       natsClient,
		Store:      store,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create worker pool")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("worker pool is shutting down...")
		cancel()
	}()

	log.Info().Str("type", workerType).Msg("starting worker pool")
	if err := pool.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("worker pool error")
	}

	log.Info().Msg("worker pool stopped")
}
