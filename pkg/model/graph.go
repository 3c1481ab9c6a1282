package model

import "strings"

// NodeType distinguishes graph vertices.
type NodeType string

const (
	NodeFile    NodeType = "file"
	NodeElement NodeType = "element"
)

// EdgeType classifies a directed relationship between two nodes.
type EdgeType string

const (
	EdgeImports   EdgeType = "imports"
	EdgeReexports EdgeType = "reexports"
	EdgeCalls     EdgeType = "calls"
	EdgeDependsOn EdgeType = "depends-on"
)

// NodeMetadata carries per-node attributes used by the query layer.
type NodeMetadata struct {
	Line     int      `json:"line,omitempty"`
	Exported bool     `json:"exported,omitempty"`
	Exports  []string `json:"exports,omitempty"` // named + default export surface
}

// GraphNode is one graph vertex: a source file or a discovered element.
type GraphNode struct {
	ID          string       `json:"id"`
	Type        NodeType     `json:"type"`
	Label       string       `json:"label"`
	Path        string       `json:"path"`
	ElementType ElementType  `json:"elementType,omitempty"`
	Metadata    NodeMetadata `json:"metadata"`
}

// EdgeMetadata carries per-edge attributes.
type EdgeMetadata struct {
	// Source preserves the original import specifier when the edge was
	// derived from a module import.
	Source     string   `json:"source,omitempty"`
	Specifiers []string `json:"specifiers,omitempty"`
}

// GraphEdge is a directed relationship between two node IDs. Endpoints need
// not both resolve to existing nodes; lookups on a missing endpoint return
// empty results.
type GraphEdge struct {
	Type     EdgeType     `json:"type"`
	Source   string       `json:"source"`
	Target   string       `json:"target"`
	Metadata EdgeMetadata `json:"metadata,omitempty"`
}

// FileNodeID returns the node ID for a source file.
func FileNodeID(path string) string {
	return "file:" + path
}

// ElementNodeID returns the node ID for an element.
func ElementNodeID(file, name string) string {
	return "element:" + file + ":" + name
}

// ParseNodeID splits a bare file:name node reference. The file is everything
// before the first colon; the remainder is the name, so names that themselves
// contain colons survive. An input with no colon is returned as both parts.
func ParseNodeID(nodeID string) (name, file string) {
	idx := strings.Index(nodeID, ":")
	if idx < 0 {
		return nodeID, nodeID
	}
	return nodeID[idx+1:], nodeID[:idx]
}

// DependencyGraph is an immutable-once-built snapshot of files, elements, and
// their relationships. The adjacency indexes are a derived view regenerated
// whenever the edge set changes; queries are pure reads.
type DependencyGraph struct {
	nodes map[string]*GraphNode
	edges []GraphEdge

	// Derived adjacency indexes, keyed by node ID.
	bySource map[string][]*GraphEdge
	byTarget map[string][]*GraphEdge
	stale    bool
}

// NewDependencyGraph returns an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes:    make(map[string]*GraphNode),
		bySource: make(map[string][]*GraphEdge),
		byTarget: make(map[string][]*GraphEdge),
	}
}

// AddNode inserts a node, replacing any node with the same ID.
func (g *DependencyGraph) AddNode(node GraphNode) {
	g.nodes[node.ID] = &node
}

// AddEdge appends an edge and marks the adjacency indexes stale.
func (g *DependencyGraph) AddEdge(edge GraphEdge) {
	g.edges = append(g.edges, edge)
	g.stale = true
}

// Node returns the node with the given ID, or nil.
func (g *DependencyGraph) Node(id string) *GraphNode {
	return g.nodes[id]
}

// HasNode reports whether a node with the given ID exists.
func (g *DependencyGraph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes. Iteration order is unspecified.
func (g *DependencyGraph) Nodes() []*GraphNode {
	out := make([]*GraphNode, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *DependencyGraph) Edges() []GraphEdge {
	return g.edges
}

// EdgesFrom returns the edges originating at the given node ID.
func (g *DependencyGraph) EdgesFrom(id string) []*GraphEdge {
	g.ensureIndexes()
	return g.bySource[id]
}

// EdgesTo returns the edges targeting the given node ID.
func (g *DependencyGraph) EdgesTo(id string) []*GraphEdge {
	g.ensureIndexes()
	return g.byTarget[id]
}

// NodeCount returns the number of nodes.
func (g *DependencyGraph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *DependencyGraph) EdgeCount() int {
	return len(g.edges)
}

// ensureIndexes regenerates the adjacency indexes after mutation. The
// indexes are never edited independently of the edge list.
func (g *DependencyGraph) ensureIndexes() {
	if !g.stale && g.bySource != nil {
		return
	}
	g.bySource = make(map[string][]*GraphEdge, len(g.nodes))
	g.byTarget = make(map[string][]*GraphEdge, len(g.nodes))
	for i := range g.edges {
		e := &g.edges[i]
		g.bySource[e.Source] = append(g.bySource[e.Source], e)
		g.byTarget[e.Target] = append(g.byTarget[e.Target], e)
	}
	g.stale = false
}

// GraphStats summarizes a built graph.
type GraphStats struct {
	TotalNodes            int `json:"totalNodes"`
	TotalEdges            int `json:"totalEdges"`
	FilesWithDependencies int `json:"filesWithDependencies"`
}

// Stats computes summary statistics. FilesWithDependencies counts distinct
// files contributing at least one element.
func (g *DependencyGraph) Stats() GraphStats {
	files := make(map[string]struct{})
	for _, n := range g.nodes {
		if n.Type == NodeElement {
			files[n.Path] = struct{}{}
		}
	}
	return GraphStats{
		TotalNodes:            len(g.nodes),
		TotalEdges:            len(g.edges),
		FilesWithDependencies: len(files),
	}
}
