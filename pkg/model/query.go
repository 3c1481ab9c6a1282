package model

import (
	"math"
	"strings"
)

// ElementRef is a lightweight reference to an element, produced by the
// consumer/dependency queries.
type ElementRef struct {
	Name string `json:"name"`
	File string `json:"file"`
	Line int    `json:"line,omitempty"`
}

// ElementCharacteristics bundles the four query categories for one node.
type ElementCharacteristics struct {
	Imports      []string     `json:"imports"`
	Exports      []string     `json:"exports"`
	Consumers    []ElementRef `json:"consumers"`
	Dependencies []ElementRef `json:"dependencies"`
}

// All query functions are total: a missing node, a node without edges, and an
// empty graph all produce empty results, never an error. Downstream consumers
// treat "no data" uniformly.

// ImportsFor returns the module paths a node imports: targets of its
// imports/reexports edges, preferring the edge's recorded module source and
// falling back to the target node's file path. Deduplicated, ordered by
// first occurrence.
func (g *DependencyGraph) ImportsFor(nodeID string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, e := range g.EdgesFrom(nodeID) {
		if e.Type != EdgeImports && e.Type != EdgeReexports {
			continue
		}
		path := e.Metadata.Source
		if path == "" {
			if target := g.Node(e.Target); target != nil {
				path = target.Path
			}
		}
		if path == "" {
			continue
		}
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}
	return out
}

// ExportsFor returns a node's export surface. It prefers the node's recorded
// export metadata (deduplicated, empties removed); a node without metadata
// falls back to its own name, assuming self-export when no better data
// exists. A missing node returns empty.
func (g *DependencyGraph) ExportsFor(nodeID string) []string {
	node := g.Node(nodeID)
	if node == nil {
		return []string{}
	}
	if len(node.Metadata.Exports) > 0 {
		out := []string{}
		seen := make(map[string]struct{})
		for _, name := range node.Metadata.Exports {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
		return out
	}
	if node.Label != "" {
		return []string{node.Label}
	}
	return []string{}
}

// ConsumersFor returns the elements that call or depend on a node: sources
// of inbound calls/depends-on edges, deduplicated by (file, name).
func (g *DependencyGraph) ConsumersFor(nodeID string) []ElementRef {
	out := []ElementRef{}
	seen := make(map[string]struct{})
	for _, e := range g.EdgesTo(nodeID) {
		if e.Type != EdgeCalls && e.Type != EdgeDependsOn {
			continue
		}
		ref := g.refForNode(e.Source)
		key := ref.File + "\x00" + ref.Name
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ref)
	}
	return out
}

// DependenciesFor returns the elements a node calls or depends on: targets
// of outbound calls/depends-on edges, deduplicated by (file, name).
func (g *DependencyGraph) DependenciesFor(nodeID string) []ElementRef {
	out := []ElementRef{}
	seen := make(map[string]struct{})
	for _, e := range g.EdgesFrom(nodeID) {
		if e.Type != EdgeCalls && e.Type != EdgeDependsOn {
			continue
		}
		ref := g.refForNode(e.Target)
		key := ref.File + "\x00" + ref.Name
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ref)
	}
	return out
}

// Characteristics bundles imports, exports, consumers, and dependencies for
// one node.
func (g *DependencyGraph) Characteristics(nodeID string) ElementCharacteristics {
	return ElementCharacteristics{
		Imports:      g.ImportsFor(nodeID),
		Exports:      g.ExportsFor(nodeID),
		Consumers:    g.ConsumersFor(nodeID),
		Dependencies: g.DependenciesFor(nodeID),
	}
}

// AutoFillRate scores how much of a node's characteristic data is available:
// the percentage of the four categories that are non-empty, rounded to the
// nearest integer.
func (g *DependencyGraph) AutoFillRate(nodeID string) int {
	c := g.Characteristics(nodeID)
	populated := 0
	if len(c.Imports) > 0 {
		populated++
	}
	if len(c.Exports) > 0 {
		populated++
	}
	if len(c.Consumers) > 0 {
		populated++
	}
	if len(c.Dependencies) > 0 {
		populated++
	}
	return int(math.Round(float64(populated) / 4.0 * 100.0))
}

// AverageAutoFill returns the mean auto-fill rate across the element nodes,
// rounded to two decimals. A graph without element nodes scores 0.
func (g *DependencyGraph) AverageAutoFill() float64 {
	total, count := 0, 0
	for _, n := range g.Nodes() {
		if n.Type != NodeElement {
			continue
		}
		total += g.AutoFillRate(n.ID)
		count++
	}
	if count == 0 {
		return 0
	}
	return math.Round(float64(total)/float64(count)*100) / 100
}

// refForNode builds an ElementRef for a node ID, reading the node when it
// exists and otherwise parsing the reference out of the ID string.
func (g *DependencyGraph) refForNode(nodeID string) ElementRef {
	if node := g.Node(nodeID); node != nil {
		return ElementRef{
			Name: node.Label,
			File: node.Path,
			Line: node.Metadata.Line,
		}
	}
	name, file := ParseNodeID(stripNodePrefix(nodeID))
	return ElementRef{Name: name, File: file}
}

// stripNodePrefix removes the element:/file: namespace so the remainder
// follows the bare file:name convention ParseNodeID expects.
func stripNodePrefix(nodeID string) string {
	if rest, ok := strings.CutPrefix(nodeID, "element:"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(nodeID, "file:"); ok {
		return rest
	}
	return nodeID
}
