// Package jobs provides pipeline orchestration for code analysis workflows
package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	coderefnats "github.com/srwlli/dashboard-sub004/internal/nats"
)

// Pipeline orchestrates the scan, graph and report workflow
type Pipeline struct {
	repo *Repository
	nats *coderefnats.Client
}

// NewPipeline creates a new pipeline manager
func NewPipeline(repo *Repository, nats *coderefnats.Client) *Pipeline {
	return &Pipeline{
		repo: repo,
		nats: nats,
	}
}

// PipelineOptions configures pipeline execution
type PipelineOptions struct {
	Branch          string   // Git branch to check out
	Languages       []string // Language selectors to scan
	BuildGraph      bool     // Whether to build a dependency graph after the scan
	GenerateReports bool     // Whether to generate reports after the graph
}

// StartScan starts the scan pipeline for a project
func (p *Pipeline) StartScan(ctx context.Context, payload ScanPayload) (*Job, error) {
	job, err := NewJob(JobTypeScan, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	job.ProjectID = &payload.ProjectID
	job.ScanID = &payload.ScanID

	if err := p.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	if err := p.publishJob(ctx, job); err != nil {
		log.Error().Err(err).Str("job_id", job.ID.String()).Msg("failed to publish job")
		// Job is in DB, worker can poll for it
	}

	log.Info().
		Str("job_id", job.ID.String()).
		Str("project_id", payload.ProjectID.String()).
		Msg("started scan pipeline")

	return job, nil
}

// StartFullPipeline starts the complete scan, graph and report chain
// This creates the initial scan job; subsequent jobs are created by workers
func (p *Pipeline) StartFullPipeline(ctx context.Context, project, scan uuid.UUID, repoURL string, options PipelineOptions) (*Job, error) {
	payload := ScanPayload{
		ProjectID:       project,
		ScanID:          scan,
		RepositoryURL:   repoURL,
		Branch:          options.Branch,
		Languages:       options.Languages,
		BuildGraph:      options.BuildGraph,
		GenerateReports: options.GenerateReports,
	}

	job, err := p.StartScan(ctx, payload)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("job_id", job.ID.String()).
		Str("project_id", project.String()).
		Bool("build_graph", options.BuildGraph).
		Bool("generate_reports", options.GenerateReports).
		Msg("started full pipeline")

	return job, nil
}

// ChainJob creates a child job linked to a parent
func (p *Pipeline) ChainJob(ctx context.Context, parentID uuid.UUID, jobType JobType, payload interface{}) (*Job, error) {
	job, err := NewJob(jobType, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	job.ParentJobID = &parentID

	// Inherit project_id and scan_id from parent if not set
	parent, err := p.repo.GetByID(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get parent job: %w", err)
	}
	if parent != nil && parent.ProjectID != nil {
		job.ProjectID = parent.ProjectID
	}
	if parent != nil && parent.ScanID != nil {
		job.ScanID = parent.ScanID
	}

	if err := p.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	if err := p.publishJob(ctx, job); err != nil {
		log.Error().Err(err).Str("job_id", job.ID.String()).Msg("failed to publish job")
	}

	log.Debug().
		Str("job_id", job.ID.String()).
		Str("parent_id", parentID.String()).
		Str("type", string(jobType)).
		Msg("created chained job")

	return job, nil
}

// CreateGraphJob creates a graph build job after a scan completes
func (p *Pipeline) CreateGraphJob(ctx context.Context, parentID uuid.UUID, projectID, scanID uuid.UUID, generateReports bool) (*Job, error) {
	payload := GraphPayload{
		ProjectID:       projectID,
		ScanID:          scanID,
		GenerateReports: generateReports,
	}

	return p.ChainJob(ctx, parentID, JobTypeGraph, payload)
}

// CreateReportJob creates a report job after a graph build completes
func (p *Pipeline) CreateReportJob(ctx context.Context, parentID uuid.UUID, projectID, scanID, snapshotID uuid.UUID) (*Job, error) {
	payload := ReportPayload{
		ProjectID:  projectID,
		ScanID:     scanID,
		SnapshotID: snapshotID,
	}

	return p.ChainJob(ctx, parentID, JobTypeReport, payload)
}

// publishJob publishes a job notification to NATS
func (p *Pipeline) publishJob(ctx context.Context, job *Job) error {
	if p.nats == nil {
		return nil // NATS not configured, workers will poll DB
	}

	msg := &JobMessage{
		JobID:    job.ID,
		Type:     job.Type,
		Priority: job.Priority,
	}

	data, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	subject := coderefnats.SubjectForJobType(string(job.Type))
	if subject == "" {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	_, err = p.nats.Publish(ctx, subject, data)
	return err
}

// GetJobStatus returns the current status of a job and its children
func (p *Pipeline) GetJobStatus(ctx context.Context, jobID uuid.UUID) (*JobStatusReport, error) {
	job, err := p.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("job not found")
	}

	children, err := p.repo.GetChildJobs(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return &JobStatusReport{
		Job:      job,
		Children: children,
	}, nil
}

// JobStatusReport contains a job and its child jobs
type JobStatusReport struct {
	Job      *Job   `json:"job"`
	Children []*Job `json:"children,omitempty"`
}

// RetryFailedJobs requeues all jobs in retrying status
func (p *Pipeline) RetryFailedJobs(ctx context.Context) (int, error) {
	jobs, err := p.repo.ListByStatus(ctx, StatusRetrying, 100)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, job := range jobs {
		if err := p.repo.Retry(ctx, job.ID); err != nil {
			log.Warn().Err(err).Str("job_id", job.ID.String()).Msg("failed to retry job")
			continue
		}

		// Republish to NATS
		job.Status = StatusPending
		if err := p.publishJob(ctx, job); err != nil {
			log.Warn().Err(err).Str("job_id", job.ID.String()).Msg("failed to republish job")
		}

		count++
	}

	return count, nil
}
