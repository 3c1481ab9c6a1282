package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// GraphDocumentVersion is the serialization format version.
const GraphDocumentVersion = "1.0.0"

// GraphDocument is the stable wire form of a DependencyGraph.
type GraphDocument struct {
	Version     string      `json:"version"`
	GeneratedAt string      `json:"generatedAt"` // ISO-8601
	ProjectPath string      `json:"projectPath"`
	Nodes       []GraphNode `json:"nodes"`
	Edges       []GraphEdge `json:"edges"`
	Statistics  GraphStats  `json:"statistics"`
}

// Snapshot produces the serializable document for a graph. Nodes are ordered
// by ID so repeated snapshots of the same graph encode identically; edges
// keep construction order.
func (g *DependencyGraph) Snapshot(projectPath string, generatedAt time.Time) *GraphDocument {
	nodes := make([]GraphNode, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, *n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	edges := make([]GraphEdge, len(g.edges))
	copy(edges, g.edges)

	return &GraphDocument{
		Version:     GraphDocumentVersion,
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		ProjectPath: projectPath,
		Nodes:       nodes,
		Edges:       edges,
		Statistics:  g.Stats(),
	}
}

// Encode renders the document as indented JSON.
func (d *GraphDocument) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode graph document: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFiles encodes the document once and writes the same bytes to every
// path, creating parent directories as needed. Writing a primary location
// and a mirrored exports location therefore always produces byte-identical
// files.
func (d *GraphDocument) WriteFiles(paths ...string) error {
	data, err := d.Encode()
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// LoadGraphDocument reads a serialized graph document from disk.
func LoadGraphDocument(path string) (*GraphDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph document: %w", err)
	}
	return DecodeGraphDocument(data)
}

// DecodeGraphDocument parses a serialized graph document.
func DecodeGraphDocument(data []byte) (*GraphDocument, error) {
	var doc GraphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode graph document: %w", err)
	}
	return &doc, nil
}

// Graph reconstructs a queryable DependencyGraph from the document. The edge
// indexes are built before returning, so the graph is safe for concurrent
// readers as long as nothing mutates it afterwards.
func (d *GraphDocument) Graph() *DependencyGraph {
	g := NewDependencyGraph()
	for _, n := range d.Nodes {
		g.AddNode(n)
	}
	for _, e := range d.Edges {
		g.AddEdge(e)
	}
	g.ensureIndexes()
	return g
}
