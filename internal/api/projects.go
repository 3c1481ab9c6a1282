package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/srwlli/dashboard-sub004/internal/db"
	"github.com/srwlli/dashboard-sub004/internal/jobs"
	"github.com/srwlli/dashboard-sub004/internal/repo"
)

// RegisterProjectRequest is the request body for registering a project
type RegisterProjectRequest struct {
	URL           string   `json:"url"`
	Name          string   `json:"name,omitempty"`
	DefaultBranch string   `json:"default_branch,omitempty"`
	LocalPath     string   `json:"local_path,omitempty"`
	Languages     []string `json:"languages,omitempty"`
}

// TriggerScanRequest is the request body for starting a scan. Empty fields
// fall back to the project's registered values; graph and report generation
// default to on.
type TriggerScanRequest struct {
	Branch          string   `json:"branch,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	BuildGraph      *bool    `json:"build_graph,omitempty"`
	GenerateReports *bool    `json:"generate_reports,omitempty"`
}

// createProject registers a new project
// POST /api/v1/projects
func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	var req RegisterProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" && req.LocalPath == "" {
		respondError(w, http.StatusBadRequest, "url or local_path is required")
		return
	}

	name := req.Name
	branch := req.DefaultBranch

	if req.URL != "" {
		info, err := repo.ParseURL(req.URL)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid repository URL")
			return
		}
		if name == "" {
			name = info.Name
		}
		if branch == "" {
			branch = info.Branch
		}

		existing, err := s.store.GetProjectByURL(r.Context(), req.URL)
		if err != nil {
			log.Error().Err(err).Msg("failed to check project URL")
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if existing != nil {
			respondError(w, http.StatusConflict, "project already registered")
			return
		}
	}

	if name == "" {
		name = filepath.Base(strings.TrimRight(req.LocalPath, "/"))
	}
	if branch == "" {
		branch = "main"
	}

	project := &db.Project{
		URL:           req.URL,
		Name:          name,
		DefaultBranch: branch,
		Languages:     req.Languages,
	}
	if req.LocalPath != "" {
		project.LocalPath = &req.LocalPath
	}

	if err := s.store.CreateProject(r.Context(), project); err != nil {
		log.Error().Err(err).Msg("failed to create project")
		respondError(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	log.Info().
		Str("project_id", project.ID.String()).
		Str("name", project.Name).
		Msg("project registered")

	respondJSON(w, http.StatusCreated, project)
}

// listProjects lists registered projects
// GET /api/v1/projects
func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	limit, offset := pageParams(r)

	projects, err := s.store.ListProjects(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list projects")
		respondError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}

	respondJSON(w, http.StatusOK, projects)
}

// getProject returns a single project
// GET /api/v1/projects/{projectID}
func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	project, err := s.store.GetProject(r.Context(), projectID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get project")
		respondError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if project == nil {
		respondError(w, http.StatusNotFound, "project not found")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// getProjectSummary returns a project with aggregated scan stats
// GET /api/v1/projects/{projectID}/summary
func (s *Server) getProjectSummary(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	project, err := s.store.GetProject(r.Context(), projectID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get project")
		respondError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if project == nil {
		respondError(w, http.StatusNotFound, "project not found")
		return
	}

	summary, err := s.store.GetProjectSummary(r.Context(), projectID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get project summary")
		respondError(w, http.StatusInternalServerError, "failed to get project summary")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"project": project,
		"summary": summary,
	})
}

// deleteProject removes a project and its scans and snapshots
// DELETE /api/v1/projects/{projectID}
func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	if err := s.store.DeleteProject(r.Context(), projectID); err != nil {
		respondError(w, http.StatusNotFound, "project not found")
		return
	}

	log.Info().Str("project_id", projectID.String()).Msg("project deleted")

	w.WriteHeader(http.StatusNoContent)
}

// createScan creates a scan record and enqueues the scan pipeline
// POST /api/v1/projects/{projectID}/scans
func (s *Server) createScan(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "database not available")
		return
	}
	if s.pipeline == nil {
		respondError(w, http.StatusServiceUnavailable, "job system not available")
		return
	}

	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	project, err := s.store.GetProject(r.Context(), projectID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get project")
		respondError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if project == nil {
		respondError(w, http.StatusNotFound, "project not found")
		return
	}

	// The body is optional; an empty POST scans with the project defaults
	var req TriggerScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scan := &db.Scan{ProjectID: project.ID}
	if err := s.store.CreateScan(r.Context(), scan); err != nil {
		log.Error().Err(err).Msg("failed to create scan")
		respondError(w, http.StatusInternalServerError, "failed to create scan")
		return
	}

	payload := jobs.ScanPayload{
		ProjectID:       project.ID,
		ScanID:          scan.ID,
		RepositoryURL:   project.URL,
		Branch:          req.Branch,
		Languages:       req.Languages,
		BuildGraph:      boolDefault(req.BuildGraph, true),
		GenerateReports: boolDefault(req.GenerateReports, true),
	}
	if payload.Branch == "" {
		payload.Branch = project.DefaultBranch
	}
	if len(payload.Languages) == 0 {
		payload.Languages = project.Languages
	}
	if project.LocalPath != nil {
		payload.LocalPath = *project.LocalPath
	}

	job, err := s.pipeline.StartScan(r.Context(), payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to start scan pipeline")
		respondError(w, http.StatusInternalServerError, "failed to start scan")
		return
	}

	log.Info().
		Str("project_id", project.ID.String()).
		Str("scan_id", scan.ID.String()).
		Str("job_id", job.ID.String()).
		Msg("scan queued")

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"scan": scan,
		"job":  jobToResponse(job),
	})
}

// listScans lists scans for a project
// GET /api/v1/projects/{projectID}/scans
func (s *Server) listScans(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	limit, offset := pageParams(r)

	scans, err := s.store.ListScansByProject(r.Context(), projectID, limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list scans")
		respondError(w, http.StatusInternalServerError, "failed to list scans")
		return
	}

	respondJSON(w, http.StatusOK, scans)
}

// getScan returns a scan's status and result
// GET /api/v1/scans/{scanID}
func (s *Server) getScan(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	scanID, err := uuid.Parse(chi.URLParam(r, "scanID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid scan ID")
		return
	}

	scan, err := s.store.GetScan(r.Context(), scanID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get scan")
		respondError(w, http.StatusInternalServerError, "failed to get scan")
		return
	}
	if scan == nil {
		respondError(w, http.StatusNotFound, "scan not found")
		return
	}

	respondJSON(w, http.StatusOK, scan)
}

func pageParams(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

func boolDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
