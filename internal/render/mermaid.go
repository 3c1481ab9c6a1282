package render

import (
	"fmt"
	"strings"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// MermaidRenderer draws the graph as a Mermaid flowchart
type MermaidRenderer struct{}

func (r *MermaidRenderer) Name() string          { return "mermaid" }
func (r *MermaidRenderer) FileExtension() string { return ".mmd" }

// Render produces Mermaid flowchart source. Files are rectangles, elements
// are stadiums, dangling endpoints (external modules, unresolved targets)
// are hexagons.
func (r *MermaidRenderer) Render(g *model.DependencyGraph, opts Options) (string, error) {
	nodes, edges, omitted := collect(g, opts)

	var sb strings.Builder
	if opts.Title != "" {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", opts.Title)
		sb.WriteString("---\n")
	}
	fmt.Fprintf(&sb, "flowchart %s\n", opts.direction())

	alias := make(map[string]string, len(nodes))
	for i, n := range nodes {
		alias[n.id] = fmt.Sprintf("n%d", i)
	}

	for _, n := range nodes {
		label := mermaidEscape(n.label())
		switch {
		case n.external:
			fmt.Fprintf(&sb, "    %s{{\"%s\"}}:::external\n", alias[n.id], label)
		case n.node.Type == model.NodeFile:
			fmt.Fprintf(&sb, "    %s[\"%s\"]:::file\n", alias[n.id], label)
		default:
			fmt.Fprintf(&sb, "    %s([\"%s\"]):::element\n", alias[n.id], label)
		}
	}

	for _, e := range edges {
		src, okS := alias[e.Source]
		dst, okT := alias[e.Target]
		if !okS || !okT {
			continue
		}
		switch e.Type {
		case model.EdgeCalls:
			fmt.Fprintf(&sb, "    %s -->|calls| %s\n", src, dst)
		case model.EdgeReexports:
			fmt.Fprintf(&sb, "    %s -.->|reexports| %s\n", src, dst)
		case model.EdgeDependsOn:
			fmt.Fprintf(&sb, "    %s -.->|dynamic| %s\n", src, dst)
		default:
			fmt.Fprintf(&sb, "    %s --> %s\n", src, dst)
		}
	}

	sb.WriteString("    classDef file fill:#dbeafe,stroke:#1d4ed8\n")
	sb.WriteString("    classDef element fill:#dcfce7,stroke:#15803d\n")
	sb.WriteString("    classDef external fill:#f3f4f6,stroke:#6b7280\n")

	if omitted > 0 {
		fmt.Fprintf(&sb, "    %%%% %d nodes omitted\n", omitted)
	}
	return sb.String(), nil
}

// mermaidEscape keeps labels inside their quoted form: quotes become the
// mermaid entity, newlines collapse to spaces.
func mermaidEscape(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
