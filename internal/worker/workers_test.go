package worker

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/srwlli/dashboard-sub004/internal/config"
	"github.com/srwlli/dashboard-sub004/internal/jobs"
)

func TestScanWorker_Name(t *testing.T) {
	base := NewBaseWorker(BaseWorkerConfig{
		JobType: jobs.JobTypeScan,
	})
	worker := NewScanWorker(base, &config.Config{}, nil)

	if worker.Name() != "scan" {
		t.Errorf("Name() = %s, want scan", worker.Name())
	}
}

func TestGraphWorker_Name(t *testing.T) {
	base := NewBaseWorker(BaseWorkerConfig{
		JobType: jobs.JobTypeGraph,
	})
	worker := NewGraphWorker(base, nil)

	if worker.Name() != "graph" {
		t.Errorf("Name() = %s, want graph", worker.Name())
	}
}

func TestReportWorker_Name(t *testing.T) {
	base := NewBaseWorker(BaseWorkerConfig{
		JobType: jobs.JobTypeReport,
	})
	worker := NewReportWorker(base, nil)

	if worker.Name() != "report" {
		t.Errorf("Name() = %s, want report", worker.Name())
	}
}

func TestWorker_Interface(t *testing.T) {
	// Verify all workers implement the Worker interface
	cfg := &config.Config{}

	workers := []Worker{
		NewScanWorker(NewBaseWorker(BaseWorkerConfig{Config: cfg, JobType: jobs.JobTypeScan}), cfg, nil),
		NewGraphWorker(NewBaseWorker(BaseWorkerConfig{JobType: jobs.JobTypeGraph}), nil),
		NewReportWorker(NewBaseWorker(BaseWorkerConfig{JobType: jobs.JobTypeReport}), nil),
	}

	expectedNames := []string{"scan", "graph", "report"}

	for i, w := range workers {
		if w.Name() != expectedNames[i] {
			t.Errorf("worker[%d].Name() = %s, want %s", i, w.Name(), expectedNames[i])
		}
	}
}

func TestWorker_BaseWorkerEmbedding(t *testing.T) {
	base := NewBaseWorker(BaseWorkerConfig{
		WorkerID: "test-scan-1",
		JobType:  jobs.JobTypeScan,
	})
	worker := NewScanWorker(base, nil, nil)

	// Should have access to base worker methods
	if worker.WorkerID() != "test-scan-1" {
		t.Errorf("WorkerID() = %s, want test-scan-1", worker.WorkerID())
	}

	if worker.JobType() != jobs.JobTypeScan {
		t.Errorf("JobType() = %s, want scan", worker.JobType())
	}
}

func TestScanWorker_PayloadParsing(t *testing.T) {
	payload := jobs.ScanPayload{
		ProjectID:     uuid.New(),
		ScanID:        uuid.New(),
		RepositoryURL: "https://github.com/acme/webapp",
		Branch:        "main",
		Languages:     []string{"typescript"},
		BuildGraph:    true,
	}

	job, err := jobs.NewJob(jobs.JobTypeScan, payload)
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	var parsed jobs.ScanPayload
	if err := job.GetPayload(&parsed); err != nil {
		t.Fatalf("GetPayload failed: %v", err)
	}

	if parsed.RepositoryURL != payload.RepositoryURL {
		t.Errorf("RepositoryURL mismatch")
	}
	if parsed.ScanID != payload.ScanID {
		t.Errorf("ScanID mismatch")
	}
	if !parsed.BuildGraph {
		t.Error("BuildGraph should be true")
	}
}

func TestGraphWorker_PayloadParsing(t *testing.T) {
	payload := jobs.GraphPayload{
		ProjectID:       uuid.New(),
		ScanID:          uuid.New(),
		GenerateReports: true,
	}

	job, err := jobs.NewJob(jobs.JobTypeGraph, payload)
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	var parsed jobs.GraphPayload
	if err := job.GetPayload(&parsed); err != nil {
		t.Fatalf("GetPayload failed: %v", err)
	}

	if parsed.ScanID != payload.ScanID {
		t.Errorf("ScanID mismatch")
	}
	if !parsed.GenerateReports {
		t.Error("GenerateReports should be true")
	}
}

func TestReportWorker_PayloadParsing(t *testing.T) {
	payload := jobs.ReportPayload{
		ProjectID:  uuid.New(),
		ScanID:     uuid.New(),
		SnapshotID: uuid.New(),
	}

	job, err := jobs.NewJob(jobs.JobTypeReport, payload)
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	var parsed jobs.ReportPayload
	if err := job.GetPayload(&parsed); err != nil {
		t.Fatalf("GetPayload failed: %v", err)
	}

	if parsed.SnapshotID != payload.SnapshotID {
		t.Errorf("SnapshotID mismatch")
	}
}

func TestScanWorker_InvalidPayload(t *testing.T) {
	worker := NewScanWorker(NewBaseWorker(BaseWorkerConfig{
		JobType: jobs.JobTypeScan,
	}), nil, nil)

	job := &jobs.Job{
		ID:      uuid.New(),
		Type:    jobs.JobTypeScan,
		Payload: json.RawMessage(`{not json`),
	}

	err := worker.handleJob(context.Background(), job)
	if err == nil {
		t.Fatal("expected error for invalid payload")
	}

	if !strings.Contains(err.Error(), "failed to parse payload") {
		t.Errorf("error = %v, want payload parse failure", err)
	}
}

func TestGraphWorker_RequiresDatabase(t *testing.T) {
	worker := NewGraphWorker(NewBaseWorker(BaseWorkerConfig{
		JobType: jobs.JobTypeGraph,
	}), nil)

	job, err := jobs.NewJob(jobs.JobTypeGraph, jobs.GraphPayload{
		ProjectID: uuid.New(),
		ScanID:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	err = worker.handleJob(context.Background(), job)
	if err == nil {
		t.Fatal("expected error without database")
	}

	if !strings.Contains(err.Error(), "requires a database") {
		t.Errorf("error = %v, want database requirement", err)
	}
}

func TestReportWorker_RequiresDatabase(t *testing.T) {
	worker := NewReportWorker(NewBaseWorker(BaseWorkerConfig{
		JobType: jobs.JobTypeReport,
	}), nil)

	job, err := jobs.NewJob(jobs.JobTypeReport, jobs.ReportPayload{
		ProjectID: uuid.New(),
		ScanID:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}

	err = worker.handleJob(context.Background(), job)
	if err == nil {
		t.Fatal("expected error without database")
	}

	if !strings.Contains(err.Error(), "requires a database") {
		t.Errorf("error = %v, want database requirement", err)
	}
}

func TestScanWorker_ResolveRootLocalPath(t *testing.T) {
	worker := NewScanWorker(NewBaseWorker(BaseWorkerConfig{
		JobType: jobs.JobTypeScan,
	}), nil, nil)

	dir := t.TempDir()
	root, sha, err := worker.resolveRoot(context.Background(), jobs.ScanPayload{
		LocalPath: dir,
	})
	if err != nil {
		t.Fatalf("resolveRoot failed: %v", err)
	}

	if root != dir {
		t.Errorf("root = %s, want %s", root, dir)
	}

	// A plain directory is not a git checkout, so no commit SHA
	if sha != "" {
		t.Errorf("sha = %s, want empty", sha)
	}
}

func TestScanWorker_ResolveRootNoWorkspace(t *testing.T) {
	// Without a config there is no checkout service, so remote URLs fail
	worker := NewScanWorker(NewBaseWorker(BaseWorkerConfig{
		JobType: jobs.JobTypeScan,
	}), nil, nil)

	_, _, err := worker.resolveRoot(context.Background(), jobs.ScanPayload{
		RepositoryURL: "https://github.com/acme/webapp",
	})
	if err == nil {
		t.Fatal("expected error without workspace")
	}

	if !strings.Contains(err.Error(), "no workspace configured") {
		t.Errorf("error = %v, want workspace requirement", err)
	}
}
