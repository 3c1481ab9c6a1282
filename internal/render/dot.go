package render

import (
	"fmt"
	"strings"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// DOTRenderer draws the graph in Graphviz DOT syntax
type DOTRenderer struct{}

func (r *DOTRenderer) Name() string          { return "dot" }
func (r *DOTRenderer) FileExtension() string { return ".dot" }

// Render produces Graphviz source. Node IDs are the graph's own node IDs,
// quoted; files are folders, elements are boxes, dangling endpoints are
// dashed ellipses.
func (r *DOTRenderer) Render(g *model.DependencyGraph, opts Options) (string, error) {
	nodes, edges, omitted := collect(g, opts)

	var sb strings.Builder
	sb.WriteString("digraph dependencies {\n")
	if opts.Title != "" {
		fmt.Fprintf(&sb, "    label=%s;\n", dotQuote(opts.Title))
	}
	if opts.direction() == "LR" {
		sb.WriteString("    rankdir=LR;\n")
	}
	sb.WriteString("    node [fontname=\"Helvetica\", fontsize=11];\n")

	for _, n := range nodes {
		attrs := []string{fmt.Sprintf("label=%s", dotQuote(n.label()))}
		switch {
		case n.external:
			attrs = append(attrs, "shape=ellipse", "style=dashed", "color=gray50")
		case n.node.Type == model.NodeFile:
			attrs = append(attrs, "shape=folder", "fillcolor=lightblue", "style=filled")
		default:
			attrs = append(attrs, "shape=box", "fillcolor=palegreen", "style=filled")
		}
		fmt.Fprintf(&sb, "    %s [%s];\n", dotQuote(n.id), strings.Join(attrs, ", "))
	}

	for _, e := range edges {
		var attrs string
		switch e.Type {
		case model.EdgeCalls:
			attrs = ` [label="calls", color=darkgreen]`
		case model.EdgeReexports:
			attrs = ` [label="reexports", style=dashed]`
		case model.EdgeDependsOn:
			attrs = ` [label="dynamic", style=dotted]`
		}
		fmt.Fprintf(&sb, "    %s -> %s%s;\n", dotQuote(e.Source), dotQuote(e.Target), attrs)
	}

	if omitted > 0 {
		fmt.Fprintf(&sb, "    // %d nodes omitted\n", omitted)
	}
	sb.WriteString("}\n")
	return sb.String(), nil
}

// dotQuote wraps a string as a quoted DOT identifier.
func dotQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}
