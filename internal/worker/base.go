// Package worker runs the async job consumers: a shared NATS/polling loop
// plus the scan, graph, and report workers built on top of it.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/srwlli/dashboard-sub004/internal/config"
	"github.com/srwlli/dashboard-sub004/internal/jobs"
	coderefnats "github.com/srwlli/dashboard-sub004/internal/nats"
)

// JobHandler processes one claimed job.
type JobHandler func(ctx context.Context, job *jobs.Job) error

// BaseWorker owns the fetch/claim/process loop shared by all workers. Jobs
// arrive through a JetStream consumer when NATS is reachable and through
// database polling otherwise; either way the database row is the source of
// truth and must be claimed before processing.
type BaseWorker struct {
	cfg        *config.Config
	workerID   string
	jobType    jobs.JobType
	repo       *jobs.Repository
	nats       *coderefnats.Client
	pipeline   *jobs.Pipeline
	consumer   jetstream.Consumer
	handler    JobHandler
	pollPeriod time.Duration
	lockTime   time.Duration
}

// BaseWorkerConfig configures a base worker
type BaseWorkerConfig struct {
	Config     *config.Config
	WorkerID   string
	JobType    jobs.JobType
	Repository *jobs.Repository
	NATS       *coderefnats.Client
	Pipeline   *jobs.Pipeline
	Handler    JobHandler
}

// NewBaseWorker creates a base worker. An empty WorkerID gets a generated
// "<type>-<random>" identity.
func NewBaseWorker(cfg BaseWorkerConfig) *BaseWorker {
	workerID := cfg.WorkerID
	if workerID == "" {
		workerID = fmt.Sprintf("%s-%s", cfg.JobType, uuid.New().String()[:8])
	}

	return &BaseWorker{
		cfg:        cfg.Config,
		workerID:   workerID,
		jobType:    cfg.JobType,
		repo:       cfg.Repository,
		nats:       cfg.NATS,
		pipeline:   cfg.Pipeline,
		handler:    cfg.Handler,
		pollPeriod: 5 * time.Second,
		lockTime:   5 * time.Minute,
	}
}

// Run processes jobs until the context is cancelled.
func (w *BaseWorker) Run(ctx context.Context) error {
	logger := log.With().
		Str("worker_id", w.workerID).
		Str("job_type", string(w.jobType)).
		Logger()

	if w.nats != nil && w.nats.IsConnected() {
		consumerName := coderefnats.ConsumerForJobType(string(w.jobType))
		consumer, err := w.nats.JetStream().Consumer(ctx, coderefnats.StreamJobs, consumerName)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to get consumer, falling back to polling")
		} else {
			w.consumer = consumer
			logger.Info().Msg("connected to NATS consumer")
		}
	}

	logger.Info().Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("worker stopping")
			return nil
		default:
			if err := w.processNext(ctx); err != nil {
				logger.Error().Err(err).Msg("error processing job")
			}
		}
	}
}

func (w *BaseWorker) processNext(ctx context.Context) error {
	if w.consumer != nil {
		return w.processFromNATS(ctx)
	}
	return w.processFromDB(ctx)
}

// processFromNATS fetches one message from the JetStream consumer. The
// message is only a notification; the job itself is claimed from the
// database, so a message for an already-claimed job is simply acked away.
func (w *BaseWorker) processFromNATS(ctx context.Context) error {
	fetchCtx, cancel := context.WithTimeout(ctx, w.pollPeriod)
	defer cancel()

	msgs, err := w.consumer.Fetch(1, jetstream.FetchMaxWait(w.pollPeriod))
	if err != nil {
		if err == context.DeadlineExceeded || fetchCtx.Err() != nil {
			return nil // no jobs available
		}
		return fmt.Errorf("failed to fetch from NATS: %w", err)
	}

	for msg := range msgs.Messages() {
		jobMsg, err := jobs.DecodeJobMessage(msg.Data())
		if err != nil {
			log.Error().Err(err).Msg("failed to decode job message")
			msg.Nak()
			continue
		}

		job, err := w.repo.Claim(ctx, jobMsg.JobID, w.workerID, w.lockTime)
		if err != nil {
			log.Error().Err(err).Str("job_id", jobMsg.JobID.String()).Msg("failed to claim job")
			msg.Nak()
			continue
		}

		if job == nil {
			// Another worker got there first.
			msg.Ack()
			continue
		}

		if err := w.processJob(ctx, job); err != nil {
			log.Error().Err(err).Str("job_id", job.ID.String()).Msg("job processing failed")
		}

		msg.Ack()
	}

	if msgs.Error() != nil && msgs.Error() != context.DeadlineExceeded {
		return msgs.Error()
	}

	return nil
}

// processFromDB claims the oldest pending job of this worker's type, waiting
// out a poll period when the queue is empty.
func (w *BaseWorker) processFromDB(ctx context.Context) error {
	pending, err := w.repo.ListPendingByType(ctx, w.jobType, 1)
	if err != nil {
		return fmt.Errorf("failed to list pending jobs: %w", err)
	}

	if len(pending) == 0 {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.pollPeriod):
			return nil
		}
	}

	for _, candidate := range pending {
		job, err := w.repo.Claim(ctx, candidate.ID, w.workerID, w.lockTime)
		if err != nil {
			log.Warn().Err(err).Str("job_id", candidate.ID.String()).Msg("failed to claim job")
			continue
		}

		if job == nil {
			continue
		}

		if err := w.processJob(ctx, job); err != nil {
			log.Error().Err(err).Str("job_id", job.ID.String()).Msg("job processing failed")
		}
	}

	return nil
}

// processJob runs the handler under a deadline shorter than the claim lock,
// extending the lock in the background while the handler works. Handler
// errors mark the job failed; the handler itself is responsible for marking
// success via Complete.
func (w *BaseWorker) processJob(ctx context.Context, job *jobs.Job) error {
	logger := log.With().
		Str("worker_id", w.workerID).
		Str("job_id", job.ID.String()).
		Str("job_type", string(job.Type)).
		Logger()

	logger.Info().Msg("processing job")

	jobCtx, cancel := context.WithTimeout(ctx, w.lockTime-30*time.Second)
	defer cancel()

	done := make(chan struct{})
	go w.extendLockPeriodically(ctx, job.ID, done)

	err := w.handler(jobCtx, job)

	close(done)

	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		if failErr := w.repo.Fail(ctx, job.ID, err.Error(), nil); failErr != nil {
			logger.Error().Err(failErr).Msg("failed to mark job as failed")
		}
		return err
	}

	logger.Info().Msg("job completed")
	return nil
}

func (w *BaseWorker) extendLockPeriodically(ctx context.Context, jobID uuid.UUID, done chan struct{}) {
	ticker := time.NewTicker(w.lockTime / 2)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.repo.ExtendLock(ctx, jobID, w.workerID, w.lockTime); err != nil {
				log.Warn().Err(err).Str("job_id", jobID.String()).Msg("failed to extend lock")
			}
		}
	}
}

// WorkerID returns the worker's unique ID
func (w *BaseWorker) WorkerID() string {
	return w.workerID
}

// JobType returns the job type this worker handles
func (w *BaseWorker) JobType() jobs.JobType {
	return w.jobType
}

// SetPollPeriod sets the polling interval
func (w *BaseWorker) SetPollPeriod(d time.Duration) {
	w.pollPeriod = d
}

// SetLockTime sets the job lock duration
func (w *BaseWorker) SetLockTime(d time.Duration) {
	w.lockTime = d
}

// Repository returns the job repository
func (w *BaseWorker) Repository() *jobs.Repository {
	return w.repo
}

// Pipeline returns the pipeline manager
func (w *BaseWorker) Pipeline() *jobs.Pipeline {
	return w.pipeline
}
