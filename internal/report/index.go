// Package report generates the analysis artifacts: the element index,
// per-element context documents, and the validation and coverage reports.
// Everything here consumes the public core contracts only - elements, the
// dependency graph, and its query layer.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/srwlli/dashboard-sub004/internal/detect"
	"github.com/srwlli/dashboard-sub004/internal/scanner"
	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// IndexDocumentVersion is the index serialization format version.
const IndexDocumentVersion = "1.0.0"

// IndexStats summarizes the scan pass behind an index.
type IndexStats struct {
	TotalFiles    int   `json:"totalFiles"`
	ScannedFiles  int   `json:"scannedFiles"`
	FailedFiles   int   `json:"failedFiles"`
	TotalElements int   `json:"totalElements"`
	DurationMs    int64 `json:"durationMs"`
}

// IndexError records one file that scanning or annotation could not fully
// process.
type IndexError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// IndexDocument is the persisted element index: every scanned file, every
// discovered element with its call/import annotations, and the per-file
// export and dynamic-import records. It is self-contained - the dependency
// graph can be rebuilt from the document alone, without re-reading sources.
type IndexDocument struct {
	Version     string   `json:"version"`
	GeneratedAt string   `json:"generatedAt"` // ISO-8601
	ProjectPath string   `json:"projectPath"`
	Languages   []string `json:"languages,omitempty"`
	Files       []string `json:"files,omitempty"`

	Elements       []model.ElementData              `json:"elements"`
	Exports        map[string][]model.ModuleExport  `json:"exports,omitempty"`
	DynamicImports map[string][]model.DynamicImport `json:"dynamicImports,omitempty"`

	Errors []IndexError `json:"errors,omitempty"`
	Stats  IndexStats   `json:"stats"`
}

// NewIndex assembles an index from a scan result and its annotation pass.
// Annotation failures are folded into the error list alongside the scan's
// own per-file errors.
func NewIndex(projectPath string, languages []string, scan *scanner.ScanResult, ann *detect.Annotation, generatedAt time.Time) *IndexDocument {
	doc := &IndexDocument{
		Version:     IndexDocumentVersion,
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		ProjectPath: projectPath,
		Languages:   languages,
		Files:       scan.Files,
		Elements:    scan.Elements,
		Stats: IndexStats{
			TotalFiles:    scan.Stats.TotalFiles,
			ScannedFiles:  scan.Stats.ScannedFiles,
			FailedFiles:   scan.Stats.FailedFiles,
			TotalElements: scan.Stats.TotalElements,
			DurationMs:    scan.Stats.Duration.Milliseconds(),
		},
	}
	for _, fe := range scan.Errors {
		doc.Errors = append(doc.Errors, IndexError{Path: fe.Path, Message: fe.Message})
	}
	if ann != nil {
		if len(ann.Exports) > 0 {
			doc.Exports = ann.Exports
		}
		if len(ann.DynamicImports) > 0 {
			doc.DynamicImports = ann.DynamicImports
		}
		for _, path := range sortedKeys(ann.Failed) {
			doc.Errors = append(doc.Errors, IndexError{Path: path, Message: ann.Failed[path]})
		}
	}
	return doc
}

// BuildGraph assembles the dependency graph from the indexed records.
func (d *IndexDocument) BuildGraph() *model.DependencyGraph {
	b := model.NewGraphBuilder(d.ProjectPath)
	b.AddElements(d.Elements)
	for _, file := range sortedKeys(d.Exports) {
		b.AddFileExports(file, d.Exports[file])
	}
	for _, file := range sortedKeys(d.DynamicImports) {
		b.AddDynamicImports(file, d.DynamicImports[file])
	}
	return b.Build()
}

// Encode renders the document as indented JSON.
func (d *IndexDocument) Encode() ([]byte, error) {
	return encodeJSON(d, "index")
}

// WriteFile writes the encoded document, creating parent directories.
func (d *IndexDocument) WriteFile(path string) error {
	return writeJSON(d, "index", path)
}

// LoadIndex reads a serialized index from disk.
func LoadIndex(path string) (*IndexDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	return DecodeIndex(data)
}

// DecodeIndex parses a serialized index document.
func DecodeIndex(data []byte) (*IndexDocument, error) {
	var doc IndexDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	return &doc, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
