package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides database operations
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new store
func NewStore(db *DB) *Store {
	return &Store{pool: db.Pool()}
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Project represents a registered codebase
type Project struct {
	ID            uuid.UUID `json:"id"`
	URL           string    `json:"url"`
	Name          string    `json:"name"`
	DefaultBranch string    `json:"default_branch"`
	LocalPath     *string   `json:"local_path,omitempty"`
	Languages     []string  `json:"languages,omitempty"`
	LastCommitSHA *string   `json:"last_commit_sha,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Scan represents one element-extraction pass over a project
type Scan struct {
	ID          uuid.UUID        `json:"id"`
	ProjectID   uuid.UUID        `json:"project_id"`
	CommitSHA   *string          `json:"commit_sha,omitempty"`
	Status      string           `json:"status"`
	Stats       *json.RawMessage `json:"stats,omitempty"`
	Elements    *json.RawMessage `json:"elements,omitempty"`
	Error       *string          `json:"error,omitempty"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// GraphSnapshot represents a persisted dependency graph document
type GraphSnapshot struct {
	ID           uuid.UUID       `json:"id"`
	ProjectID    uuid.UUID       `json:"project_id"`
	ScanID       uuid.UUID       `json:"scan_id"`
	Document     json.RawMessage `json:"document"`
	NodeCount    int             `json:"node_count"`
	EdgeCount    int             `json:"edge_count"`
	AutoFillRate float64         `json:"autofill_rate"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CreateProject creates a new project
func (s *Store) CreateProject(ctx context.Context, project *Project) error {
	project.ID = uuid.New()
	project.Status = "pending"
	project.CreatedAt = time.Now()
	project.UpdatedAt = time.Now()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO projects (id, url, name, default_branch, local_path, languages, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, project.ID, project.URL, project.Name, project.DefaultBranch, project.LocalPath,
		project.Languages, project.Status, project.CreatedAt, project.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetProject gets a project by ID
func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	project := &Project{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, url, name, default_branch, local_path, languages, last_commit_sha, status, created_at, updated_at
		FROM projects WHERE id = $1
	`, id).Scan(&project.ID, &project.URL, &project.Name, &project.DefaultBranch, &project.LocalPath,
		&project.Languages, &project.LastCommitSHA, &project.Status, &project.CreatedAt, &project.UpdatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// GetProjectByURL gets a project by URL
func (s *Store) GetProjectByURL(ctx context.Context, url string) (*Project, error) {
	project := &Project{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, url, name, default_branch, local_path, languages, last_commit_sha, status, created_at, updated_at
		FROM projects WHERE url = $1
	`, url).Scan(&project.ID, &project.URL, &project.Name, &project.DefaultBranch, &project.LocalPath,
		&project.Languages, &project.LastCommitSHA, &project.Status, &project.CreatedAt, &project.UpdatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// ListProjects lists all projects
func (s *Store) ListProjects(ctx context.Context, limit, offset int) ([]Project, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, url, name, default_branch, local_path, languages, last_commit_sha, status, created_at, updated_at
		FROM projects
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		var project Project
		if err := rows.Scan(&project.ID, &project.URL, &project.Name, &project.DefaultBranch,
			&project.LocalPath, &project.Languages, &project.LastCommitSHA, &project.Status,
			&project.CreatedAt, &project.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	return projects, nil
}

// UpdateProjectStatus updates project status
func (s *Store) UpdateProjectStatus(ctx context.Context, id uuid.UUID, status string, commitSHA *string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE projects SET status = $2, last_commit_sha = COALESCE($3, last_commit_sha), updated_at = $4
		WHERE id = $1
	`, id, status, commitSHA, time.Now())
	return err
}

// DeleteProject deletes a project and all related data (cascading)
func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID) error {
	// The database schema has ON DELETE CASCADE, so this will delete related scans and snapshots
	result, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("project not found")
	}

	return nil
}

// CreateScan creates a new scan
func (s *Store) CreateScan(ctx context.Context, scan *Scan) error {
	// Only generate a new UUID if one isn't already set
	if scan.ID == uuid.Nil {
		scan.ID = uuid.New()
	}
	if scan.Status == "" {
		scan.Status = "pending"
	}
	scan.CreatedAt = time.Now()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO scans (id, project_id, commit_sha, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, scan.ID, scan.ProjectID, scan.CommitSHA, scan.Status, scan.CreatedAt)

	return err
}

// GetScan gets a scan by ID
func (s *Store) GetScan(ctx context.Context, id uuid.UUID) (*Scan, error) {
	scan := &Scan{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, project_id, commit_sha, status, stats, elements, error, started_at, completed_at, created_at
		FROM scans WHERE id = $1
	`, id).Scan(&scan.ID, &scan.ProjectID, &scan.CommitSHA, &scan.Status, &scan.Stats,
		&scan.Elements, &scan.Error, &scan.StartedAt, &scan.CompletedAt, &scan.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}

	return scan, nil
}

// UpdateScanStatus updates a scan's status
func (s *Store) UpdateScanStatus(ctx context.Context, id uuid.UUID, status string) error {
	now := time.Now()
	var startedAt, completedAt *time.Time

	if status == "running" {
		startedAt = &now
	}
	if status == "completed" || status == "failed" {
		completedAt = &now
	}

	_, err := s.pool.Exec(ctx, `
		UPDATE scans
		SET status = $2,
		    started_at = COALESCE($3, started_at),
		    completed_at = COALESCE($4, completed_at)
		WHERE id = $1
	`, id, status, startedAt, completedAt)

	return err
}

// CompleteScan stores scan results and marks the scan completed
func (s *Store) CompleteScan(ctx context.Context, id uuid.UUID, commitSHA *string, stats, elements json.RawMessage) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE scans
		SET status = 'completed', commit_sha = COALESCE($2, commit_sha),
		    stats = $3, elements = $4, completed_at = $5
		WHERE id = $1
	`, id, commitSHA, stats, elements, time.Now())

	if err != nil {
		return fmt.Errorf("failed to complete scan: %w", err)
	}

	return nil
}

// FailScan records a scan failure
func (s *Store) FailScan(ctx context.Context, id uuid.UUID, message string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE scans
		SET status = 'failed', error = $2, completed_at = $3
		WHERE id = $1
	`, id, message, time.Now())

	if err != nil {
		return fmt.Errorf("failed to mark scan failed: %w", err)
	}

	return nil
}

// ListScansByProject lists all scans for a project
func (s *Store) ListScansByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]Scan, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, commit_sha, status, stats, elements, error, started_at, completed_at, created_at
		FROM scans
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, projectID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	scans := make([]Scan, 0)
	for rows.Next() {
		var scan Scan
		if err := rows.Scan(&scan.ID, &scan.ProjectID, &scan.CommitSHA, &scan.Status, &scan.Stats,
			&scan.Elements, &scan.Error, &scan.StartedAt, &scan.CompletedAt, &scan.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		scans = append(scans, scan)
	}

	return scans, nil
}

// GetLatestCompletedScan returns the most recent completed scan for a project
func (s *Store) GetLatestCompletedScan(ctx context.Context, projectID uuid.UUID) (*Scan, error) {
	scan := &Scan{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, project_id, commit_sha, status, stats, elements, error, started_at, completed_at, created_at
		FROM scans
		WHERE project_id = $1 AND status = 'completed'
		ORDER BY completed_at DESC
		LIMIT 1
	`, projectID).Scan(&scan.ID, &scan.ProjectID, &scan.CommitSHA, &scan.Status, &scan.Stats,
		&scan.Elements, &scan.Error, &scan.StartedAt, &scan.CompletedAt, &scan.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest scan: %w", err)
	}

	return scan, nil
}

// CreateGraphSnapshot creates a new graph snapshot
func (s *Store) CreateGraphSnapshot(ctx context.Context, snapshot *GraphSnapshot) error {
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}
	snapshot.CreatedAt = time.Now()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO graph_snapshots (id, project_id, scan_id, document, node_count, edge_count, autofill_rate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, snapshot.ID, snapshot.ProjectID, snapshot.ScanID, snapshot.Document,
		snapshot.NodeCount, snapshot.EdgeCount, snapshot.AutoFillRate, snapshot.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create graph snapshot: %w", err)
	}

	return nil
}

// GetGraphSnapshot gets a graph snapshot by ID
func (s *Store) GetGraphSnapshot(ctx context.Context, id uuid.UUID) (*GraphSnapshot, error) {
	snapshot := &GraphSnapshot{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, project_id, scan_id, document, node_count, edge_count, autofill_rate, created_at
		FROM graph_snapshots WHERE id = $1
	`, id).Scan(&snapshot.ID, &snapshot.ProjectID, &snapshot.ScanID, &snapshot.Document,
		&snapshot.NodeCount, &snapshot.EdgeCount, &snapshot.AutoFillRate, &snapshot.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get graph snapshot: %w", err)
	}

	return snapshot, nil
}

// GetLatestGraphSnapshot returns the most recent snapshot for a project
func (s *Store) GetLatestGraphSnapshot(ctx context.Context, projectID uuid.UUID) (*GraphSnapshot, error) {
	snapshot := &GraphSnapshot{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, project_id, scan_id, document, node_count, edge_count, autofill_rate, created_at
		FROM graph_snapshots
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, projectID).Scan(&snapshot.ID, &snapshot.ProjectID, &snapshot.ScanID, &snapshot.Document,
		&snapshot.NodeCount, &snapshot.EdgeCount, &snapshot.AutoFillRate, &snapshot.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest graph snapshot: %w", err)
	}

	return snapshot, nil
}

// GetProjectSummary returns aggregated scan stats for a project
func (s *Store) GetProjectSummary(ctx context.Context, projectID uuid.UUID) (map[string]interface{}, error) {
	var totalScans, completedScans, failedScans int
	var lastScanAt *time.Time

	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) as total_scans,
			COUNT(*) FILTER (WHERE status = 'completed') as completed_scans,
			COUNT(*) FILTER (WHERE status = 'failed') as failed_scans,
			MAX(completed_at) as last_scan_at
		FROM scans
		WHERE project_id = $1
	`, projectID).Scan(&totalScans, &completedScans, &failedScans, &lastScanAt)

	if err != nil {
		return nil, fmt.Errorf("failed to get project summary: %w", err)
	}

	return map[string]interface{}{
		"total_scans":     totalScans,
		"completed_scans": completedScans,
		"failed_scans":    failedScans,
		"last_scan_at":    lastScanAt,
	}, nil
}
