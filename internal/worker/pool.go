package worker

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/srwlli/dashboard-sub004/internal/config"
	"github.com/srwlli/dashboard-sub004/internal/db"
	"github.com/srwlli/dashboard-sub004/internal/jobs"
	coderefnats "github.com/srwlli/dashboard-sub004/internal/nats"
)

// WorkerType selects which workers a pool runs.
type WorkerType string

const (
	WorkerScan   WorkerType = "scan"
	WorkerGraph  WorkerType = "graph"
	WorkerReport WorkerType = "report"
	WorkerAll    WorkerType = "all"
)

// Worker is the interface all workers must implement
type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

// Pool manages a set of workers sharing one job repository and pipeline.
type Pool struct {
	cfg        *config.Config
	workerType WorkerType
	workers    []Worker
	nats       *coderefnats.Client
	repo       *jobs.Repository
	pipeline   *jobs.Pipeline
	db         *sql.DB
	store      *db.Store
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	Config     *config.Config
	WorkerType string
	DB         *sql.DB
	NATS       *coderefnats.Client
	Store      *db.Store // store for project/scan/snapshot persistence
}

// NewPool creates a worker pool for the given worker type.
func NewPool(cfg PoolConfig) (*Pool, error) {
	p := &Pool{
		cfg:        cfg.Config,
		workerType: WorkerType(cfg.WorkerType),
		workers:    make([]Worker, 0),
		db:         cfg.DB,
		nats:       cfg.NATS,
		store:      cfg.Store,
	}

	if cfg.DB != nil {
		p.repo = jobs.NewRepository(cfg.DB)
		p.pipeline = jobs.NewPipeline(p.repo, cfg.NATS)
	}

	if err := p.initWorkers(); err != nil {
		return nil, fmt.Errorf("failed to initialize workers: %w", err)
	}

	return p, nil
}

func (p *Pool) initWorkers() error {
	switch p.workerType {
	case WorkerAll:
		p.addWorker(jobs.JobTypeScan)
		p.addWorker(jobs.JobTypeGraph)
		p.addWorker(jobs.JobTypeReport)
	case WorkerScan:
		p.addWorker(jobs.JobTypeScan)
	case WorkerGraph:
		p.addWorker(jobs.JobTypeGraph)
	case WorkerReport:
		p.addWorker(jobs.JobTypeReport)
	default:
		return fmt.Errorf("unknown worker type: %s", p.workerType)
	}

	return nil
}

func (p *Pool) addWorker(jobType jobs.JobType) {
	base := NewBaseWorker(BaseWorkerConfig{
		Config:     p.cfg,
		JobType:    jobType,
		Repository: p.repo,
		NATS:       p.nats,
		Pipeline:   p.pipeline,
	})

	var worker Worker
	switch jobType {
	case jobs.JobTypeScan:
		worker = NewScanWorker(base, p.cfg, p.store)
	case jobs.JobTypeGraph:
		worker = NewGraphWorker(base, p.store)
	case jobs.JobTypeReport:
		worker = NewReportWorker(base, p.store)
	}

	if worker != nil {
		p.workers = append(p.workers, worker)
	}
}

// Run starts all workers and blocks until context is cancelled
func (p *Pool) Run(ctx context.Context) error {
	if len(p.workers) == 0 {
		return fmt.Errorf("no workers configured")
	}

	// Set up NATS streams if connected
	if p.nats != nil && p.nats.IsConnected() {
		if err := p.nats.SetupStreams(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to setup NATS streams, workers will poll DB")
		} else {
			log.Info().Msg("NATS streams configured")
		}
	}

	errCh := make(chan error, len(p.workers))

	for _, w := range p.workers {
		go func(worker Worker) {
			log.Info().Str("worker", worker.Name()).Msg("starting worker")
			if err := worker.Run(ctx); err != nil {
				errCh <- fmt.Errorf("worker %s failed: %w", worker.Name(), err)
			}
		}(w)
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("context cancelled, stopping workers")
		return nil
	case err := <-errCh:
		return err
	}
}

// Pipeline returns the job pipeline manager
func (p *Pool) Pipeline() *jobs.Pipeline {
	return p.pipeline
}

// Repository returns the job repository
func (p *Pool) Repository() *jobs.Repository {
	return p.repo
}

// NATS returns the NATS client
func (p *Pool) NATS() *coderefnats.Client {
	return p.nats
}
