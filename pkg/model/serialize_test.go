package model

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// Serialization Tests
// =============================================================================

func sampleGraph() *DependencyGraph {
	b := NewGraphBuilder("/work/demo")
	b.AddElements([]ElementData{
		{Type: ElementTypeFunction, Name: "alpha", File: "src/a.ts", Line: 1, Exported: true, Calls: []string{"beta"}},
		{Type: ElementTypeFunction, Name: "beta", File: "src/a.ts", Line: 8},
		{Type: ElementTypeClass, Name: "Store", File: "src/store.ts", Line: 2, Exported: true},
	})
	return b.Build()
}

func TestSnapshot_Deterministic(t *testing.T) {
	g := sampleGraph()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first, err := g.Snapshot("/work/demo", at).Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	second, err := g.Snapshot("/work/demo", at).Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("two snapshots of the same graph encoded differently")
	}
}

func TestSnapshot_Fields(t *testing.T) {
	g := sampleGraph()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	doc := g.Snapshot("/work/demo", at)

	if doc.Version != GraphDocumentVersion {
		t.Errorf("Version = %s, want %s", doc.Version, GraphDocumentVersion)
	}
	if doc.GeneratedAt != "2025-06-01T12:00:00Z" {
		t.Errorf("GeneratedAt = %s, want 2025-06-01T12:00:00Z", doc.GeneratedAt)
	}
	if doc.ProjectPath != "/work/demo" {
		t.Errorf("ProjectPath = %s, want /work/demo", doc.ProjectPath)
	}
	if doc.Statistics.TotalNodes != 5 {
		t.Errorf("TotalNodes = %d, want 5", doc.Statistics.TotalNodes)
	}
	// 3 containment edges + 1 call edge.
	if doc.Statistics.TotalEdges != 4 {
		t.Errorf("TotalEdges = %d, want 4", doc.Statistics.TotalEdges)
	}
}

func TestWriteFiles_DualWriteByteIdentical(t *testing.T) {
	g := sampleGraph()
	doc := g.Snapshot("/work/demo", time.Now())

	dir := t.TempDir()
	primary := filepath.Join(dir, ".coderef", "graph.json")
	mirror := filepath.Join(dir, ".coderef", "exports", "graph.json")

	if err := doc.WriteFiles(primary, mirror); err != nil {
		t.Fatalf("WriteFiles() error = %v", err)
	}

	a, err := os.ReadFile(primary)
	if err != nil {
		t.Fatalf("read primary: %v", err)
	}
	b, err := os.ReadFile(mirror)
	if err != nil {
		t.Fatalf("read mirror: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("primary and mirrored graph files differ")
	}
	if len(a) == 0 {
		t.Error("written graph file is empty")
	}
}

func TestGraphDocument_RoundTrip(t *testing.T) {
	g := sampleGraph()
	doc := g.Snapshot("/work/demo", time.Now())

	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	decoded, err := DecodeGraphDocument(data)
	if err != nil {
		t.Fatalf("DecodeGraphDocument() error = %v", err)
	}

	restored := decoded.Graph()
	if restored.NodeCount() != g.NodeCount() {
		t.Errorf("restored NodeCount = %d, want %d", restored.NodeCount(), g.NodeCount())
	}
	if restored.EdgeCount() != g.EdgeCount() {
		t.Errorf("restored EdgeCount = %d, want %d", restored.EdgeCount(), g.EdgeCount())
	}

	deps := restored.DependenciesFor("element:src/a.ts:alpha")
	if len(deps) != 1 || deps[0].Name != "beta" {
		t.Errorf("restored DependenciesFor(alpha) = %v, want [beta]", deps)
	}
}
