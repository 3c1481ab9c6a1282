package model

import (
	"testing"
)

// =============================================================================
// Query Layer Tests
// =============================================================================

func emptyGraph() *DependencyGraph {
	return NewDependencyGraph()
}

func TestQueries_EmptyGraphTotality(t *testing.T) {
	g := emptyGraph()
	id := "element:src/a.ts:anything"

	if got := g.ImportsFor(id); len(got) != 0 {
		t.Errorf("ImportsFor = %v, want empty", got)
	}
	if got := g.ExportsFor(id); len(got) != 0 {
		t.Errorf("ExportsFor = %v, want empty", got)
	}
	if got := g.ConsumersFor(id); len(got) != 0 {
		t.Errorf("ConsumersFor = %v, want empty", got)
	}
	if got := g.DependenciesFor(id); len(got) != 0 {
		t.Errorf("DependenciesFor = %v, want empty", got)
	}
	if got := g.AutoFillRate(id); got != 0 {
		t.Errorf("AutoFillRate = %d, want 0", got)
	}
}

func TestImportsFor_PrefersEdgeMetadataAndDeduplicates(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(GraphNode{ID: "element:a.ts:f", Type: NodeElement, Path: "a.ts", Label: "f"})
	g.AddNode(GraphNode{ID: "file:b.ts", Type: NodeFile, Path: "b.ts"})

	// Metadata source wins over the target node's path.
	g.AddEdge(GraphEdge{Type: EdgeImports, Source: "element:a.ts:f", Target: "file:b.ts", Metadata: EdgeMetadata{Source: "./b"}})
	// No metadata: falls back to the target node path.
	g.AddEdge(GraphEdge{Type: EdgeImports, Source: "element:a.ts:f", Target: "file:b.ts"})
	// Duplicate metadata source collapses.
	g.AddEdge(GraphEdge{Type: EdgeReexports, Source: "element:a.ts:f", Target: "file:b.ts", Metadata: EdgeMetadata{Source: "./b"}})
	// Calls edges never contribute to imports.
	g.AddEdge(GraphEdge{Type: EdgeCalls, Source: "element:a.ts:f", Target: "element:a.ts:g"})

	got := g.ImportsFor("element:a.ts:f")
	want := []string{"./b", "b.ts"}
	if len(got) != len(want) {
		t.Fatalf("ImportsFor = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ImportsFor[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestImportsFor_DanglingTargetWithoutMetadata(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(GraphNode{ID: "element:a.ts:f", Type: NodeElement, Path: "a.ts", Label: "f"})
	g.AddEdge(GraphEdge{Type: EdgeImports, Source: "element:a.ts:f", Target: "file:ghost.ts"})

	// No metadata and no target node: nothing usable, nothing returned.
	if got := g.ImportsFor("element:a.ts:f"); len(got) != 0 {
		t.Errorf("ImportsFor = %v, want empty", got)
	}
}

func TestExportsFor_SelfExportFallback(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(GraphNode{ID: "element:a.ts:Widget", Type: NodeElement, Path: "a.ts", Label: "Widget"})

	got := g.ExportsFor("element:a.ts:Widget")
	if len(got) != 1 || got[0] != "Widget" {
		t.Errorf("ExportsFor = %v, want [Widget]", got)
	}
}

func TestExportsFor_MetadataDeduplicated(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(GraphNode{
		ID: "file:a.ts", Type: NodeFile, Path: "a.ts", Label: "a.ts",
		Metadata: NodeMetadata{Exports: []string{"x", "", "y", "x"}},
	})

	got := g.ExportsFor("file:a.ts")
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("ExportsFor = %v, want [x y]", got)
	}
}

func TestConsumersFor_DeduplicatesByFileAndName(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(GraphNode{ID: "element:a.ts:target", Type: NodeElement, Path: "a.ts", Label: "target"})
	g.AddNode(GraphNode{ID: "element:a.ts:caller", Type: NodeElement, Path: "a.ts", Label: "caller", Metadata: NodeMetadata{Line: 12}})

	g.AddEdge(GraphEdge{Type: EdgeCalls, Source: "element:a.ts:caller", Target: "element:a.ts:target"})
	g.AddEdge(GraphEdge{Type: EdgeDependsOn, Source: "element:a.ts:caller", Target: "element:a.ts:target"})
	// Containment-style inbound edges are not consumption.
	g.AddEdge(GraphEdge{Type: EdgeImports, Source: "file:a.ts", Target: "element:a.ts:target"})

	got := g.ConsumersFor("element:a.ts:target")
	if len(got) != 1 {
		t.Fatalf("ConsumersFor = %v, want 1 entry", got)
	}
	if got[0].Name != "caller" || got[0].File != "a.ts" || got[0].Line != 12 {
		t.Errorf("ConsumersFor[0] = %+v, want caller/a.ts/12", got[0])
	}
}

func TestConsumersFor_MissingSourceNodeParsedFromID(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(GraphNode{ID: "element:a.ts:target", Type: NodeElement, Path: "a.ts", Label: "target"})
	g.AddEdge(GraphEdge{Type: EdgeCalls, Source: "element:lib/ext.ts:helper", Target: "element:a.ts:target"})

	got := g.ConsumersFor("element:a.ts:target")
	if len(got) != 1 {
		t.Fatalf("ConsumersFor = %v, want 1 entry", got)
	}
	if got[0].Name != "helper" || got[0].File != "lib/ext.ts" {
		t.Errorf("ConsumersFor[0] = %+v, want helper/lib/ext.ts", got[0])
	}
}

func TestAutoFillRate_Rounding(t *testing.T) {
	g := NewDependencyGraph()
	// Element with an import edge and the self-export fallback: 2 of 4.
	g.AddNode(GraphNode{ID: "element:a.ts:f", Type: NodeElement, Path: "a.ts", Label: "f"})
	g.AddNode(GraphNode{ID: "file:b.ts", Type: NodeFile, Path: "b.ts"})
	g.AddEdge(GraphEdge{Type: EdgeImports, Source: "element:a.ts:f", Target: "file:b.ts", Metadata: EdgeMetadata{Source: "./b"}})

	if got := g.AutoFillRate("element:a.ts:f"); got != 50 {
		t.Errorf("AutoFillRate = %d, want 50", got)
	}

	// Add a consumer: 3 of 4 rounds to 75.
	g.AddEdge(GraphEdge{Type: EdgeCalls, Source: "element:a.ts:g", Target: "element:a.ts:f"})
	if got := g.AutoFillRate("element:a.ts:f"); got != 75 {
		t.Errorf("AutoFillRate = %d, want 75", got)
	}
}

func TestAverageAutoFill(t *testing.T) {
	if got := emptyGraph().AverageAutoFill(); got != 0 {
		t.Errorf("AverageAutoFill on empty graph = %v, want 0", got)
	}

	g := NewDependencyGraph()
	// One isolated element (25: self-export only) and one with an import
	// edge (50). File nodes are excluded from the average.
	g.AddNode(GraphNode{ID: "element:a.ts:f", Type: NodeElement, Path: "a.ts", Label: "f"})
	g.AddNode(GraphNode{ID: "element:a.ts:g", Type: NodeElement, Path: "a.ts", Label: "g"})
	g.AddNode(GraphNode{ID: "file:a.ts", Type: NodeFile, Path: "a.ts"})
	g.AddEdge(GraphEdge{Type: EdgeImports, Source: "element:a.ts:g", Target: "file:b.ts", Metadata: EdgeMetadata{Source: "./b"}})

	if got := g.AverageAutoFill(); got != 37.5 {
		t.Errorf("AverageAutoFill = %v, want 37.5", got)
	}
}

func TestCharacteristics_Bundle(t *testing.T) {
	g := NewDependencyGraph()
	g.AddNode(GraphNode{ID: "element:a.ts:f", Type: NodeElement, Path: "a.ts", Label: "f"})
	g.AddNode(GraphNode{ID: "element:a.ts:g", Type: NodeElement, Path: "a.ts", Label: "g"})
	g.AddEdge(GraphEdge{Type: EdgeCalls, Source: "element:a.ts:f", Target: "element:a.ts:g"})

	c := g.Characteristics("element:a.ts:f")
	if len(c.Imports) != 0 {
		t.Errorf("Imports = %v, want empty", c.Imports)
	}
	if len(c.Exports) != 1 {
		t.Errorf("Exports = %v, want [f]", c.Exports)
	}
	if len(c.Consumers) != 0 {
		t.Errorf("Consumers = %v, want empty", c.Consumers)
	}
	if len(c.Dependencies) != 1 {
		t.Errorf("Dependencies = %v, want [g]", c.Dependencies)
	}
}
