package report

import (
	"math"
	"sort"
	"time"

	"github.com/srwlli/dashboard-sub004/internal/detect"
	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// OrphanElement is an element nobody reaches: not exported, not an entry
// point, and without call or depends-on edges in either direction.
type OrphanElement struct {
	Name string `json:"name"`
	File string `json:"file"`
	Line int    `json:"line"`
}

// CoverageReport measures how completely the index describes the project:
// file and export coverage, relationship density, entry-point counts, and
// the elements left unconnected.
type CoverageReport struct {
	Version     string `json:"version"`
	GeneratedAt string `json:"generatedAt"`
	ProjectPath string `json:"projectPath"`

	TotalFiles        int     `json:"totalFiles"`
	FilesWithElements int     `json:"filesWithElements"`
	FileCoverage      float64 `json:"fileCoverage"`

	TotalElements    int     `json:"totalElements"`
	ExportedElements int     `json:"exportedElements"`
	ExportCoverage   float64 `json:"exportCoverage"`

	ElementsWithCalls   int     `json:"elementsWithCalls"`
	ElementsWithImports int     `json:"elementsWithImports"`
	RelationCoverage    float64 `json:"relationCoverage"`

	AutoFillRate float64 `json:"autoFillRate"`

	EntryPoints detect.EntryPointStats `json:"entryPoints"`

	OrphanCount int             `json:"orphanCount"`
	Orphans     []OrphanElement `json:"orphans,omitempty"`
}

// Coverage computes the coverage report for an index and its graph. A nil
// graph is built from the document.
func Coverage(doc *IndexDocument, graph *model.DependencyGraph, generatedAt time.Time) *CoverageReport {
	if graph == nil {
		graph = doc.BuildGraph()
	}
	r := &CoverageReport{
		Version:       IndexDocumentVersion,
		GeneratedAt:   generatedAt.UTC().Format(time.RFC3339),
		ProjectPath:   doc.ProjectPath,
		TotalFiles:    len(doc.Files),
		TotalElements: len(doc.Elements),
	}

	withElements := make(map[string]bool)
	entryIDs := make(map[string]bool)
	entries, stats := detect.DetectEntryPoints(doc.Elements)
	r.EntryPoints = stats
	for _, el := range entries {
		entryIDs[model.ElementNodeID(el.File, el.Name)] = true
	}

	for _, el := range doc.Elements {
		withElements[el.File] = true
		if el.Exported {
			r.ExportedElements++
		}
		if len(el.Calls) > 0 {
			r.ElementsWithCalls++
		}
		if len(el.Imports) > 0 {
			r.ElementsWithImports++
		}
	}
	r.FilesWithElements = len(withElements)

	related := 0
	elementNodes := 0
	for _, node := range graph.Nodes() {
		if node.Type != model.NodeElement {
			continue
		}
		elementNodes++
		if connected(graph, node.ID) {
			related++
			continue
		}
		if node.Metadata.Exported || entryIDs[node.ID] {
			continue
		}
		r.Orphans = append(r.Orphans, OrphanElement{
			Name: node.Label,
			File: node.Path,
			Line: node.Metadata.Line,
		})
	}
	r.OrphanCount = len(r.Orphans)
	sort.Slice(r.Orphans, func(i, j int) bool {
		if r.Orphans[i].File != r.Orphans[j].File {
			return r.Orphans[i].File < r.Orphans[j].File
		}
		return r.Orphans[i].Line < r.Orphans[j].Line
	})

	r.FileCoverage = percent(r.FilesWithElements, r.TotalFiles)
	r.ExportCoverage = percent(r.ExportedElements, r.TotalElements)
	r.RelationCoverage = percent(related, elementNodes)
	r.AutoFillRate = graph.AverageAutoFill()
	return r
}

// connected reports whether a node has any call or depends-on edge in either
// direction. Containment and import bookkeeping edges do not count.
func connected(g *model.DependencyGraph, nodeID string) bool {
	for _, e := range g.EdgesFrom(nodeID) {
		if e.Type == model.EdgeCalls || e.Type == model.EdgeDependsOn {
			return true
		}
	}
	for _, e := range g.EdgesTo(nodeID) {
		if e.Type == model.EdgeCalls || e.Type == model.EdgeDependsOn {
			return true
		}
	}
	return false
}

// percent returns part/total as a percentage rounded to two decimals, with 0
// for an empty total.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

// Encode renders the report as indented JSON.
func (r *CoverageReport) Encode() ([]byte, error) {
	return encodeJSON(r, "coverage report")
}

// WriteFile writes the encoded report, creating parent directories.
func (r *CoverageReport) WriteFile(path string) error {
	return writeJSON(r, "coverage report", path)
}
