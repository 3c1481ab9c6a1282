package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/srwlli/dashboard-sub004/internal/api"
	"github.com/srwlli/dashboard-sub004/internal/config"
	"github.com/srwlli/dashboard-sub004/internal/db"
	"github.com/srwlli/dashboard-sub004/internal/jobs"
	coderefnats "github.com/srwlli/dashboard-sub004/internal/nats"
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

	ctx := context.Background()

	// Connect to the database
	pgdb, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgdb.Close()

	// The job queue runs on database/sql for its row-locking queries
	jobDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open job store")
	}
	defer jobDB.Close()
	jobRepo := jobs.NewRepository(jobDB)

	// Connect to NATS (optional, queued jobs fall back to worker polling)
	var natsClient *coderefnats.Client
	if cfg.NATSURL != "" {
		natsClient, err = coderefnats.NewClient(cfg.NATSURL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, jobs will be picked up by polling")
		} else {
			defer natsClient.Close()
			if err := natsClient.SetupStreams(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to set up NATS streams")
			}
		}
	}

	// Create server
	srv, err := api.NewServer(api.ServerConfig{
		Config:   cfg,
		Store:    db.NewStore(pgdb),
		JobRepo:  jobRepo,
		Pipeline: jobs.NewPipeline(jobRepo, natsClient),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}

	// Start server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("server is shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Fatal().Err(err).Msg("could not gracefully shutdown the server")
		}
		close(done)
	}()

	log.Info().Int("port", cfg.Port).Msg("starting API server")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("could not listen on port")
	}

	<-done
	log.Info().Msg("server stopped")
}
