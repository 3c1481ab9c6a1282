package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// getProjectGraph returns the latest stored graph snapshot for a project
// GET /api/v1/projects/{projectID}/graph
func (s *Server) getProjectGraph(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	snapshot, err := s.store.GetLatestGraphSnapshot(r.Context(), projectID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get graph snapshot")
		respondError(w, http.StatusInternalServerError, "failed to get graph snapshot")
		return
	}
	if snapshot == nil {
		respondError(w, http.StatusNotFound, "no graph snapshot for project")
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// latestGraph returns the queryable graph for the project's newest snapshot.
// The LRU cache is keyed by snapshot ID, so a new snapshot is decoded exactly
// once and older entries age out.
func (s *Server) latestGraph(ctx context.Context, projectID uuid.UUID) (*model.DependencyGraph, error) {
	snapshot, err := s.store.GetLatestGraphSnapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, nil
	}

	if g, ok := s.graphs.Get(snapshot.ID); ok {
		return g, nil
	}

	doc, err := model.DecodeGraphDocument(snapshot.Document)
	if err != nil {
		return nil, fmt.Errorf("corrupt graph snapshot %s: %w", snapshot.ID, err)
	}

	g := doc.Graph()
	s.graphs.Add(snapshot.ID, g)
	return g, nil
}

// nodeQuery resolves the project graph and node ID shared by the query
// passthrough endpoints. The query layer is total, so an unknown node yields
// empty results rather than 404.
func (s *Server) nodeQuery(w http.ResponseWriter, r *http.Request, fn func(g *model.DependencyGraph, nodeID string) interface{}) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	nodeID, err := nodeParam(r)
	if err != nil || nodeID == "" {
		respondError(w, http.StatusBadRequest, "invalid node ID")
		return
	}

	graph, err := s.latestGraph(r.Context(), projectID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load graph")
		respondError(w, http.StatusInternalServerError, "failed to load graph")
		return
	}
	if graph == nil {
		respondError(w, http.StatusNotFound, "no graph snapshot for project")
		return
	}

	respondJSON(w, http.StatusOK, fn(graph, nodeID))
}

// GET /api/v1/projects/{projectID}/graph/elements/{nodeID}/characteristics
func (s *Server) getNodeCharacteristics(w http.ResponseWriter, r *http.Request) {
	s.nodeQuery(w, r, func(g *model.DependencyGraph, nodeID string) interface{} {
		return g.Characteristics(nodeID)
	})
}

// GET /api/v1/projects/{projectID}/graph/elements/{nodeID}/imports
func (s *Server) getNodeImports(w http.ResponseWriter, r *http.Request) {
	s.nodeQuery(w, r, func(g *model.DependencyGraph, nodeID string) interface{} {
		return map[string]interface{}{"imports": g.ImportsFor(nodeID)}
	})
}

// GET /api/v1/projects/{projectID}/graph/elements/{nodeID}/exports
func (s *Server) getNodeExports(w http.ResponseWriter, r *http.Request) {
	s.nodeQuery(w, r, func(g *model.DependencyGraph, nodeID string) interface{} {
		return map[string]interface{}{"exports": g.ExportsFor(nodeID)}
	})
}

// GET /api/v1/projects/{projectID}/graph/elements/{nodeID}/consumers
func (s *Server) getNodeConsumers(w http.ResponseWriter, r *http.Request) {
	s.nodeQuery(w, r, func(g *model.DependencyGraph, nodeID string) interface{} {
		return map[string]interface{}{"consumers": g.ConsumersFor(nodeID)}
	})
}

// GET /api/v1/projects/{projectID}/graph/elements/{nodeID}/dependencies
func (s *Server) getNodeDependencies(w http.ResponseWriter, r *http.Request) {
	s.nodeQuery(w, r, func(g *model.DependencyGraph, nodeID string) interface{} {
		return map[string]interface{}{"dependencies": g.DependenciesFor(nodeID)}
	})
}

// GET /api/v1/projects/{projectID}/graph/elements/{nodeID}/autofill
func (s *Server) getNodeAutoFill(w http.ResponseWriter, r *http.Request) {
	s.nodeQuery(w, r, func(g *model.DependencyGraph, nodeID string) interface{} {
		return map[string]interface{}{
			"node_id":       nodeID,
			"autofill_rate": g.AutoFillRate(nodeID),
		}
	})
}
