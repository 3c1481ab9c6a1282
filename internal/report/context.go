package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// ElementContext is the full picture for one element: identity plus the four
// characteristic categories and the auto-fill score.
type ElementContext struct {
	Name         string             `json:"name"`
	Type         model.ElementType  `json:"type"`
	File         string             `json:"file"`
	Line         int                `json:"line"`
	Exported     bool               `json:"exported"`
	AutoFillRate int                `json:"autoFillRate"`
	Imports      []string           `json:"imports"`
	Exports      []string           `json:"exports"`
	Consumers    []model.ElementRef `json:"consumers"`
	Dependencies []model.ElementRef `json:"dependencies"`
}

// ContextDocument bundles element contexts for a project, in scan order. It
// is written both as JSON and as markdown for direct reading.
type ContextDocument struct {
	Version     string           `json:"version"`
	GeneratedAt string           `json:"generatedAt"`
	ProjectPath string           `json:"projectPath"`
	Languages   []string         `json:"languages,omitempty"`
	Elements    []ElementContext `json:"elements"`
}

// NewContext builds the context document from an index and its graph. A nil
// graph is built from the document.
func NewContext(doc *IndexDocument, graph *model.DependencyGraph, generatedAt time.Time) *ContextDocument {
	if graph == nil {
		graph = doc.BuildGraph()
	}
	c := &ContextDocument{
		Version:     IndexDocumentVersion,
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		ProjectPath: doc.ProjectPath,
		Languages:   doc.Languages,
		Elements:    make([]ElementContext, 0, len(doc.Elements)),
	}
	for _, el := range doc.Elements {
		id := model.ElementNodeID(el.File, el.Name)
		ch := graph.Characteristics(id)
		c.Elements = append(c.Elements, ElementContext{
			Name:         el.Name,
			Type:         el.Type,
			File:         el.File,
			Line:         el.Line,
			Exported:     el.Exported,
			AutoFillRate: graph.AutoFillRate(id),
			Imports:      ch.Imports,
			Exports:      ch.Exports,
			Consumers:    ch.Consumers,
			Dependencies: ch.Dependencies,
		})
	}
	return c
}

// Filter returns a copy containing only elements whose name or file matches.
// An empty query returns the document unchanged.
func (c *ContextDocument) Filter(query string) *ContextDocument {
	if query == "" {
		return c
	}
	out := *c
	out.Elements = make([]ElementContext, 0)
	for _, el := range c.Elements {
		if el.Name == query || el.File == query {
			out.Elements = append(out.Elements, el)
		}
	}
	return &out
}

// Encode renders the document as indented JSON.
func (c *ContextDocument) Encode() ([]byte, error) {
	return encodeJSON(c, "context document")
}

// WriteFile writes the encoded document, creating parent directories.
func (c *ContextDocument) WriteFile(path string) error {
	return writeJSON(c, "context document", path)
}

// Markdown renders the document as a readable report, grouped by file.
func (c *ContextDocument) Markdown() []byte {
	var b strings.Builder
	b.WriteString("# Code Context\n\n")
	fmt.Fprintf(&b, "- Project: %s\n", c.ProjectPath)
	fmt.Fprintf(&b, "- Generated: %s\n", c.GeneratedAt)
	if len(c.Languages) > 0 {
		fmt.Fprintf(&b, "- Languages: %s\n", strings.Join(c.Languages, ", "))
	}
	fmt.Fprintf(&b, "- Elements: %d\n", len(c.Elements))

	currentFile := ""
	for _, el := range c.Elements {
		if el.File != currentFile {
			currentFile = el.File
			fmt.Fprintf(&b, "\n## %s\n", currentFile)
		}
		visibility := "internal"
		if el.Exported {
			visibility = "exported"
		}
		fmt.Fprintf(&b, "\n### %s\n\n", el.Name)
		fmt.Fprintf(&b, "%s %s, line %d, auto-fill %d%%\n\n", visibility, el.Type, el.Line, el.AutoFillRate)
		writeList(&b, "Imports", el.Imports)
		writeList(&b, "Exports", el.Exports)
		writeRefList(&b, "Consumers", el.Consumers)
		writeRefList(&b, "Dependencies", el.Dependencies)
	}
	return []byte(b.String())
}

// WriteMarkdown writes the markdown rendering, creating parent directories.
func (c *ContextDocument) WriteMarkdown(path string) error {
	return writeArtifact(path, c.Markdown())
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(b, "- %s: none\n", label)
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(items, ", "))
}

func writeRefList(b *strings.Builder, label string, refs []model.ElementRef) {
	if len(refs) == 0 {
		fmt.Fprintf(b, "- %s: none\n", label)
		return
	}
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Line > 0 {
			parts = append(parts, fmt.Sprintf("%s (%s:%d)", ref.Name, ref.File, ref.Line))
		} else {
			parts = append(parts, fmt.Sprintf("%s (%s)", ref.Name, ref.File))
		}
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(parts, ", "))
}
