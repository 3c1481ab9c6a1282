// Package render draws dependency graphs as diagram source text.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// Renderer draws a dependency graph in one output format.
type Renderer interface {
	// Name returns the renderer name (e.g., "mermaid", "dot")
	Name() string

	// FileExtension returns the diagram file extension (e.g., ".mmd", ".dot")
	FileExtension() string

	// Render produces diagram source for the graph
	Render(g *model.DependencyGraph, opts Options) (string, error)
}

// Options controls what a renderer draws.
type Options struct {
	// Title is the diagram caption; empty omits it.
	Title string

	// Edges restricts the drawn edge types; empty draws all of them.
	Edges []model.EdgeType

	// MaxNodes caps the node count; 0 draws everything. Nodes are kept in
	// ID order and a trailing comment records the omission.
	MaxNodes int

	// Direction is the layout direction, "TD" or "LR". Defaults to "LR".
	Direction string
}

func (o Options) direction() string {
	if o.Direction == "" {
		return "LR"
	}
	return o.Direction
}

func (o Options) wantsEdge(t model.EdgeType) bool {
	if len(o.Edges) == 0 {
		return true
	}
	for _, e := range o.Edges {
		if e == t {
			return true
		}
	}
	return false
}

// Registry holds all available renderers
type Registry struct {
	renderers map[string]Renderer
}

// NewRegistry creates a registry with the built-in renderers
func NewRegistry() *Registry {
	r := &Registry{
		renderers: make(map[string]Renderer),
	}
	r.Register(&MermaidRenderer{})
	r.Register(&DOTRenderer{})
	return r
}

// Register adds a renderer to the registry
func (r *Registry) Register(re Renderer) {
	r.renderers[re.Name()] = re
}

// Get returns a renderer by name
func (r *Registry) Get(name string) (Renderer, error) {
	re, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("renderer not found: %s", name)
	}
	return re, nil
}

// List returns all registered renderer names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// drawNode is one node slot in a diagram: known nodes carry their graph node,
// dangling edge endpoints (external modules, unresolved elements) get a
// synthesized label.
type drawNode struct {
	id       string
	node     *model.GraphNode
	external bool
}

func (d drawNode) label() string {
	if d.node != nil {
		return d.node.Label
	}
	if rest, ok := strings.CutPrefix(d.id, "element:"); ok {
		name, _ := model.ParseNodeID(rest)
		return name
	}
	return strings.TrimPrefix(d.id, "file:")
}

// collect gathers every node the diagram will draw: graph nodes plus the
// dangling endpoints of the selected edges, in sorted ID order, capped by
// opts.MaxNodes. It returns the draw list, the drawable edges, and the count
// of omitted nodes.
func collect(g *model.DependencyGraph, opts Options) ([]drawNode, []model.GraphEdge, int) {
	ids := make(map[string]bool)
	for _, n := range g.Nodes() {
		ids[n.ID] = true
	}

	var edges []model.GraphEdge
	for _, e := range g.Edges() {
		if !opts.wantsEdge(e.Type) || e.Source == "" || e.Target == "" {
			continue
		}
		edges = append(edges, e)
		ids[e.Source] = true
		ids[e.Target] = true
	}
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		if edges[i].Target != edges[j].Target {
			return edges[i].Target < edges[j].Target
		}
		return edges[i].Type < edges[j].Type
	})

	ordered := make([]string, 0, len(ids))
	for id := range ids {
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)

	omitted := 0
	if opts.MaxNodes > 0 && len(ordered) > opts.MaxNodes {
		omitted = len(ordered) - opts.MaxNodes
		kept := make(map[string]bool, opts.MaxNodes)
		for _, id := range ordered[:opts.MaxNodes] {
			kept[id] = true
		}
		ordered = ordered[:opts.MaxNodes]

		filtered := edges[:0]
		for _, e := range edges {
			if kept[e.Source] && kept[e.Target] {
				filtered = append(filtered, e)
			}
		}
		edges = filtered
	}

	nodes := make([]drawNode, 0, len(ordered))
	for _, id := range ordered {
		n := g.Node(id)
		nodes = append(nodes, drawNode{id: id, node: n, external: n == nil})
	}
	return nodes, edges, omitted
}
