package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/srwlli/dashboard-sub004/internal/config"
	"github.com/srwlli/dashboard-sub004/internal/db"
	"github.com/srwlli/dashboard-sub004/internal/detect"
	"github.com/srwlli/dashboard-sub004/internal/jobs"
	"github.com/srwlli/dashboard-sub004/internal/repo"
	"github.com/srwlli/dashboard-sub004/internal/report"
	"github.com/srwlli/dashboard-sub004/internal/scanner"
	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// ScanWorker checks out a project, scans it for elements, annotates them
// with call/import relationships, and persists the resulting index.
type ScanWorker struct {
	*BaseWorker
	store    *db.Store
	checkout *repo.Service
}

func NewScanWorker(base *BaseWorker, cfg *config.Config, store *db.Store) *ScanWorker {
	var checkout *repo.Service
	if cfg != nil {
		checkout = repo.NewService(cfg.WorkspaceDir, cfg.GitToken)
	}
	w := &ScanWorker{BaseWorker: base, store: store, checkout: checkout}
	base.handler = w.handleJob
	return w
}

func (w *ScanWorker) Name() string { return "scan" }

func (w *ScanWorker) handleJob(ctx context.Context, job *jobs.Job) error {
	var payload jobs.ScanPayload
	if err := job.GetPayload(&payload); err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	log.Info().
		Str("scan_id", payload.ScanID.String()).
		Str("repo_url", payload.RepositoryURL).
		Str("local_path", payload.LocalPath).
		Msg("scanning project")

	w.updateScanStatus(ctx, payload.ScanID, "running")

	root, commitSHA, err := w.resolveRoot(ctx, payload)
	if err != nil {
		w.failScan(ctx, payload.ScanID, err)
		return err
	}

	languages := payload.Languages
	if len(languages) == 0 {
		counts, err := repo.DetectLanguages(root)
		if err != nil {
			log.Warn().Err(err).Msg("language detection failed, scanning all known extensions")
		}
		languages = repo.LanguageSelectors(counts)
	}

	s := scanner.New(nil)
	scanResult, err := s.Scan(ctx, root, languages, scanner.Options{
		Recursive:     true,
		UseAST:        true,
		RegexFallback: true,
		Parallel:      true,
		Workers:       4,
	})
	if err != nil {
		w.failScan(ctx, payload.ScanID, err)
		return fmt.Errorf("scan failed: %w", err)
	}

	ann := detect.NewAnnotator(root).Annotate(ctx, scanResult.Files, scanResult.Elements)
	index := report.NewIndex(root, languages, scanResult, ann, time.Now())

	log.Info().
		Int("files", index.Stats.TotalFiles).
		Int("elements", index.Stats.TotalElements).
		Int("failed", index.Stats.FailedFiles).
		Strs("languages", languages).
		Msg("scan complete")

	if w.store != nil {
		statsJSON, err := json.Marshal(index.Stats)
		if err != nil {
			return fmt.Errorf("failed to serialize stats: %w", err)
		}
		indexJSON, err := json.Marshal(index)
		if err != nil {
			return fmt.Errorf("failed to serialize index: %w", err)
		}
		var sha *string
		if commitSHA != "" {
			sha = &commitSHA
		}
		if err := w.store.CompleteScan(ctx, payload.ScanID, sha, statsJSON, indexJSON); err != nil {
			log.Warn().Err(err).Msg("failed to persist scan")
		}
		if err := w.store.UpdateProjectStatus(ctx, payload.ProjectID, "ready", sha); err != nil {
			log.Warn().Err(err).Msg("failed to update project status")
		}
	} else {
		log.Warn().Msg("scan worker has no store, skipping persistence")
	}

	result := jobs.ScanResult{
		ScanID:        payload.ScanID,
		CommitSHA:     commitSHA,
		TotalFiles:    index.Stats.TotalFiles,
		ScannedFiles:  index.Stats.ScannedFiles,
		FailedFiles:   index.Stats.FailedFiles,
		TotalElements: index.Stats.TotalElements,
		DurationMs:    index.Stats.DurationMs,
	}

	if err := w.Repository().Complete(ctx, job.ID, result); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	if w.Pipeline() != nil && payload.BuildGraph {
		_, err := w.Pipeline().CreateGraphJob(ctx, job.ID, payload.ProjectID, payload.ScanID, payload.GenerateReports)
		if err != nil {
			log.Warn().Err(err).Msg("failed to create graph job")
		}
	}

	return nil
}

// resolveRoot returns the directory to scan: the payload's local path when
// set, otherwise a fresh checkout of the repository URL. The commit SHA is
// best-effort for local paths that are not git checkouts.
func (w *ScanWorker) resolveRoot(ctx context.Context, payload jobs.ScanPayload) (string, string, error) {
	if payload.LocalPath != "" {
		sha, err := repo.HeadSHA(payload.LocalPath)
		if err != nil {
			log.Debug().Err(err).Str("path", payload.LocalPath).Msg("local path has no git HEAD")
			sha = ""
		}
		return payload.LocalPath, sha, nil
	}

	if w.checkout == nil {
		return "", "", fmt.Errorf("no workspace configured for remote checkout")
	}

	info, err := repo.ParseURL(payload.RepositoryURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid repository URL: %w", err)
	}
	if payload.Branch != "" {
		info.Branch = payload.Branch
	}

	checkout, err := w.checkout.Checkout(ctx, info)
	if err != nil {
		return "", "", fmt.Errorf("checkout failed: %w", err)
	}
	return checkout.Path, checkout.CommitSHA, nil
}

func (w *ScanWorker) updateScanStatus(ctx context.Context, scanID uuid.UUID, status string) {
	if w.store == nil {
		return
	}
	if err := w.store.UpdateScanStatus(ctx, scanID, status); err != nil {
		log.Warn().Err(err).Str("scan_id", scanID.String()).Msg("failed to update scan status")
	}
}

func (w *ScanWorker) failScan(ctx context.Context, scanID uuid.UUID, cause error) {
	if w.store == nil {
		return
	}
	if err := w.store.FailScan(ctx, scanID, cause.Error()); err != nil {
		log.Warn().Err(err).Str("scan_id", scanID.String()).Msg("failed to mark scan failed")
	}
}

// GraphWorker rebuilds the dependency graph from a persisted scan index and
// stores it as a snapshot.
type GraphWorker struct {
	*BaseWorker
	store *db.Store
}

func NewGraphWorker(base *BaseWorker, store *db.Store) *GraphWorker {
	w := &GraphWorker{BaseWorker: base, store: store}
	base.handler = w.handleJob
	return w
}

func (w *GraphWorker) Name() string { return "graph" }

func (w *GraphWorker) handleJob(ctx context.Context, job *jobs.Job) error {
	var payload jobs.GraphPayload
	if err := job.GetPayload(&payload); err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	if w.store == nil {
		return fmt.Errorf("graph worker requires a database")
	}

	log.Info().
		Str("scan_id", payload.ScanID.String()).
		Msg("building dependency graph")

	scan, err := w.store.GetScan(ctx, payload.ScanID)
	if err != nil {
		return fmt.Errorf("failed to load scan: %w", err)
	}
	if scan == nil || scan.Elements == nil {
		return fmt.Errorf("scan %s has no element index", payload.ScanID)
	}

	index, err := report.DecodeIndex(*scan.Elements)
	if err != nil {
		return fmt.Errorf("failed to decode index: %w", err)
	}

	graph := index.BuildGraph()
	doc := graph.Snapshot(index.ProjectPath, time.Now())
	encoded, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}

	snapshot := &db.GraphSnapshot{
		ProjectID:    payload.ProjectID,
		ScanID:       payload.ScanID,
		Document:     encoded,
		NodeCount:    graph.NodeCount(),
		EdgeCount:    graph.EdgeCount(),
		AutoFillRate: graph.AverageAutoFill(),
	}
	if err := w.store.CreateGraphSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to persist graph snapshot: %w", err)
	}

	log.Info().
		Str("snapshot_id", snapshot.ID.String()).
		Int("nodes", snapshot.NodeCount).
		Int("edges", snapshot.EdgeCount).
		Float64("auto_fill", snapshot.AutoFillRate).
		Msg("graph snapshot stored")

	result := jobs.GraphResult{
		SnapshotID:   snapshot.ID,
		NodeCount:    snapshot.NodeCount,
		EdgeCount:    snapshot.EdgeCount,
		AutoFillRate: snapshot.AutoFillRate,
	}

	if err := w.Repository().Complete(ctx, job.ID, result); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	if w.Pipeline() != nil && payload.GenerateReports {
		_, err := w.Pipeline().CreateReportJob(ctx, job.ID, payload.ProjectID, payload.ScanID, snapshot.ID)
		if err != nil {
			log.Warn().Err(err).Msg("failed to create report job")
		}
	}

	return nil
}

// ReportWorker validates a stored graph snapshot against its scan index and
// computes coverage; the summaries land in the job result.
type ReportWorker struct {
	*BaseWorker
	store *db.Store
}

func NewReportWorker(base *BaseWorker, store *db.Store) *ReportWorker {
	w := &ReportWorker{BaseWorker: base, store: store}
	base.handler = w.handleJob
	return w
}

func (w *ReportWorker) Name() string { return "report" }

func (w *ReportWorker) handleJob(ctx context.Context, job *jobs.Job) error {
	var payload jobs.ReportPayload
	if err := job.GetPayload(&payload); err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	if w.store == nil {
		return fmt.Errorf("report worker requires a database")
	}

	log.Info().
		Str("scan_id", payload.ScanID.String()).
		Str("snapshot_id", payload.SnapshotID.String()).
		Msg("generating reports")

	snapshot, err := w.loadSnapshot(ctx, payload)
	if err != nil {
		return err
	}

	doc, err := model.DecodeGraphDocument(snapshot.Document)
	if err != nil {
		return fmt.Errorf("failed to decode graph snapshot: %w", err)
	}
	graph := doc.Graph()

	scan, err := w.store.GetScan(ctx, payload.ScanID)
	if err != nil {
		return fmt.Errorf("failed to load scan: %w", err)
	}
	if scan == nil || scan.Elements == nil {
		return fmt.Errorf("scan %s has no element index", payload.ScanID)
	}
	index, err := report.DecodeIndex(*scan.Elements)
	if err != nil {
		return fmt.Errorf("failed to decode index: %w", err)
	}

	now := time.Now()
	validation := report.Validate(index, graph, now)
	coverage := report.Coverage(index, graph, now)

	log.Info().
		Bool("valid", validation.Valid).
		Int("errors", validation.Errors).
		Int("warnings", validation.Warnings).
		Float64("export_coverage", coverage.ExportCoverage).
		Int("orphans", coverage.OrphanCount).
		Msg("reports generated")

	result := jobs.ReportResult{
		SnapshotID:         snapshot.ID,
		ValidationErrors:   validation.Errors,
		ValidationWarnings: validation.Warnings,
		ExportCoverage:     coverage.ExportCoverage,
		EntryPointCount:    coverage.EntryPoints.Total,
		OrphanCount:        coverage.OrphanCount,
	}

	if err := w.Repository().Complete(ctx, job.ID, result); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	return nil
}

// loadSnapshot fetches the snapshot named by the payload, falling back to
// the project's latest when no snapshot ID was carried over.
func (w *ReportWorker) loadSnapshot(ctx context.Context, payload jobs.ReportPayload) (*db.GraphSnapshot, error) {
	if payload.SnapshotID != uuid.Nil {
		snapshot, err := w.store.GetGraphSnapshot(ctx, payload.SnapshotID)
		if err != nil {
			return nil, fmt.Errorf("failed to load graph snapshot: %w", err)
		}
		if snapshot == nil {
			return nil, fmt.Errorf("graph snapshot %s not found", payload.SnapshotID)
		}
		return snapshot, nil
	}

	snapshot, err := w.store.GetLatestGraphSnapshot(ctx, payload.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest graph snapshot: %w", err)
	}
	if snapshot == nil {
		return nil, fmt.Errorf("project %s has no graph snapshot", payload.ProjectID)
	}
	return snapshot, nil
}
