// Package jobs defines job types and payloads for async processing
package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of async job
type JobType string

const (
	JobTypeScan   JobType = "scan"
	JobTypeGraph  JobType = "graph"
	JobTypeReport JobType = "report"
)

// JobStatus represents the current state of a job
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusRetrying  JobStatus = "retrying"
	StatusCancelled JobStatus = "cancelled"
)

// Job represents an async job in the system
type Job struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	Type         JobType          `json:"type" db:"type"`
	Status       JobStatus        `json:"status" db:"status"`
	Priority     int              `json:"priority" db:"priority"`
	ProjectID    *uuid.UUID       `json:"project_id,omitempty" db:"project_id"`
	ScanID       *uuid.UUID       `json:"scan_id,omitempty" db:"scan_id"`
	ParentJobID  *uuid.UUID       `json:"parent_job_id,omitempty" db:"parent_job_id"`
	Payload      json.RawMessage  `json:"payload" db:"payload"`
	Result       *json.RawMessage `json:"result,omitempty" db:"result"`
	ErrorMessage *string          `json:"error_message,omitempty" db:"error_message"`
	ErrorDetails *json.RawMessage `json:"error_details,omitempty" db:"error_details"`
	RetryCount   int              `json:"retry_count" db:"retry_count"`
	MaxRetries   int              `json:"max_retries" db:"max_retries"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
	StartedAt    *time.Time       `json:"started_at,omitempty" db:"started_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
	LockedUntil  *time.Time       `json:"locked_until,omitempty" db:"locked_until"`
	WorkerID     *string          `json:"worker_id,omitempty" db:"worker_id"`
}

// ScanPayload is the payload for scan jobs
type ScanPayload struct {
	ProjectID     uuid.UUID `json:"project_id"`
	ScanID        uuid.UUID `json:"scan_id"`
	RepositoryURL string    `json:"repository_url,omitempty"`
	Branch        string    `json:"branch,omitempty"`
	LocalPath     string    `json:"local_path,omitempty"`
	Languages     []string  `json:"languages,omitempty"`
	// Pipeline options (propagated through chain)
	BuildGraph      bool `json:"build_graph,omitempty"`
	GenerateReports bool `json:"generate_reports,omitempty"`
}

// GraphPayload is the payload for graph build jobs
type GraphPayload struct {
	ProjectID uuid.UUID `json:"project_id"`
	ScanID    uuid.UUID `json:"scan_id"`
	// Pipeline options (propagated through chain)
	GenerateReports bool `json:"generate_reports,omitempty"`
}

// ReportPayload is the payload for report jobs
type ReportPayload struct {
	ProjectID  uuid.UUID `json:"project_id"`
	ScanID     uuid.UUID `json:"scan_id"`
	SnapshotID uuid.UUID `json:"snapshot_id"`
}

// ScanResult is the result of a scan job
type ScanResult struct {
	ScanID        uuid.UUID `json:"scan_id"`
	CommitSHA     string    `json:"commit_sha,omitempty"`
	TotalFiles    int       `json:"total_files"`
	ScannedFiles  int       `json:"scanned_files"`
	FailedFiles   int       `json:"failed_files"`
	TotalElements int       `json:"total_elements"`
	DurationMs    int64     `json:"duration_ms"`
}

// GraphResult is the result of a graph build job
type GraphResult struct {
	SnapshotID   uuid.UUID `json:"snapshot_id"`
	NodeCount    int       `json:"node_count"`
	EdgeCount    int       `json:"edge_count"`
	AutoFillRate float64   `json:"autofill_rate"`
}

// ReportResult is the result of a report job
type ReportResult struct {
	SnapshotID         uuid.UUID `json:"snapshot_id"`
	ValidationErrors   int       `json:"validation_errors"`
	ValidationWarnings int       `json:"validation_warnings"`
	ExportCoverage     float64   `json:"export_coverage"`
	EntryPointCount    int       `json:"entry_point_count"`
	OrphanCount        int       `json:"orphan_count"`
}

// NewJob creates a new job with defaults
func NewJob(jobType JobType, payload interface{}) (*Job, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		Status:     StatusPending,
		Priority:   0,
		Payload:    payloadBytes,
		RetryCount: 0,
		MaxRetries: 3,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}, nil
}

// SetPayload marshals and sets the payload
func (j *Job) SetPayload(payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	j.Payload = data
	return nil
}

// GetPayload unmarshals the payload into the provided struct
func (j *Job) GetPayload(v interface{}) error {
	return json.Unmarshal(j.Payload, v)
}

// SetResult marshals and sets the result
func (j *Job) SetResult(result interface{}) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	raw := json.RawMessage(data)
	j.Result = &raw
	return nil
}

// GetResult unmarshals the result into the provided struct
func (j *Job) GetResult(v interface{}) error {
	if j.Result == nil {
		return nil
	}
	return json.Unmarshal(*j.Result, v)
}

// CanRetry returns true if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// JobMessage is the message sent via NATS for job notifications
type JobMessage struct {
	JobID    uuid.UUID `json:"job_id"`
	Type     JobType   `json:"type"`
	Priority int       `json:"priority"`
}

// Encode serializes the job message to JSON
func (m *JobMessage) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeJobMessage deserializes a job message from JSON
func DecodeJobMessage(data []byte) (*JobMessage, error) {
	var m JobMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
