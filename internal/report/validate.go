package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// Issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationIssue is one finding from an index/graph consistency check.
type ValidationIssue struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	NodeID   string `json:"nodeId,omitempty"`
}

// ValidationReport is the result of validating an index and its graph.
// Errors are structural defects; warnings are tolerated best-effort gaps
// (unresolved calls, duplicate names, unresolvable dynamic imports).
type ValidationReport struct {
	Version     string            `json:"version"`
	GeneratedAt string            `json:"generatedAt"`
	ProjectPath string            `json:"projectPath"`
	Valid       bool              `json:"valid"`
	Errors      int               `json:"errors"`
	Warnings    int               `json:"warnings"`
	Issues      []ValidationIssue `json:"issues,omitempty"`
}

// Validate checks an index document and its graph for consistency. A nil
// graph is built from the document. The report is valid when no
// error-severity issues were found; warnings never invalidate.
func Validate(doc *IndexDocument, graph *model.DependencyGraph, generatedAt time.Time) *ValidationReport {
	if graph == nil {
		graph = doc.BuildGraph()
	}
	r := &ValidationReport{
		Version:     IndexDocumentVersion,
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		ProjectPath: doc.ProjectPath,
	}

	indexed := make(map[string]bool, len(doc.Files))
	for _, f := range doc.Files {
		indexed[f] = true
	}

	nodeIDs := make(map[string]int)
	for _, el := range doc.Elements {
		switch {
		case el.Name == "":
			r.add(SeverityError, "empty-name",
				fmt.Sprintf("element at %s:%d has no name", el.File, el.Line), el.File, "")
		case el.File == "":
			r.add(SeverityError, "empty-file",
				fmt.Sprintf("element %q has no file", el.Name), "", "")
		case el.Line < 1:
			r.add(SeverityError, "invalid-line",
				fmt.Sprintf("element %q in %s has line %d", el.Name, el.File, el.Line), el.File, "")
		}
		if el.Name != "" && el.File != "" {
			nodeIDs[model.ElementNodeID(el.File, el.Name)]++
		}
	}
	for id, count := range nodeIDs {
		if count > 1 {
			r.add(SeverityWarning, "duplicate-element",
				fmt.Sprintf("%d elements share the node ID %s; queries collapse them", count, id), "", id)
		}
	}

	for _, el := range doc.Elements {
		for _, callee := range el.Calls {
			// Bare callee names routinely point outside the file (builtins,
			// imported functions); only class-qualified names claim a
			// same-file declaration.
			if callee == el.Name || !strings.Contains(callee, ".") {
				continue
			}
			if _, ok := nodeIDs[model.ElementNodeID(el.File, callee)]; !ok {
				r.add(SeverityWarning, "unresolved-call",
					fmt.Sprintf("%s calls %q but no element by that name exists in %s", el.Name, callee, el.File),
					el.File, model.ElementNodeID(el.File, el.Name))
			}
		}
		for _, imp := range el.Imports {
			if looksInternal(imp.Source) && len(indexed) > 0 && !indexed[imp.Source] {
				r.add(SeverityWarning, "missing-import-target",
					fmt.Sprintf("%s imports %s, which is not in the scanned file set", el.File, imp.Source),
					el.File, "")
			}
		}
	}

	for file, dynamics := range doc.DynamicImports {
		for _, dyn := range dynamics {
			if dyn.ModulePath == model.DynamicSentinel || strings.HasSuffix(dyn.ModulePath, "...") {
				r.add(SeverityWarning, "unresolved-dynamic-import",
					fmt.Sprintf("%s has a dynamic import whose target cannot be statically resolved", file),
					file, "")
			}
		}
	}

	for _, e := range graph.Edges() {
		if e.Source == "" || e.Target == "" {
			r.add(SeverityError, "empty-edge-endpoint",
				fmt.Sprintf("%s edge has an empty endpoint", e.Type), "", "")
			continue
		}
		if e.Type == model.EdgeDependsOn && !graph.HasNode(e.Source) {
			r.add(SeverityWarning, "dangling-source",
				fmt.Sprintf("depends-on edge originates at %s, which is not a known node", e.Source), "", e.Source)
		}
	}

	r.Valid = r.Errors == 0
	return r
}

func (r *ValidationReport) add(severity, code, message, file, nodeID string) {
	r.Issues = append(r.Issues, ValidationIssue{
		Severity: severity,
		Code:     code,
		Message:  message,
		File:     file,
		NodeID:   nodeID,
	})
	if severity == SeverityError {
		r.Errors++
	} else {
		r.Warnings++
	}
}

// looksInternal reports whether an import source is a resolved project file
// rather than an external package specifier.
func looksInternal(source string) bool {
	switch {
	case source == "" || source == model.DynamicSentinel:
		return false
	case strings.HasSuffix(source, ".ts"), strings.HasSuffix(source, ".tsx"),
		strings.HasSuffix(source, ".js"), strings.HasSuffix(source, ".jsx"),
		strings.HasSuffix(source, ".mjs"), strings.HasSuffix(source, ".cjs"):
		return true
	}
	return false
}

// Encode renders the report as indented JSON.
func (r *ValidationReport) Encode() ([]byte, error) {
	return encodeJSON(r, "validation report")
}

// WriteFile writes the encoded report, creating parent directories.
func (r *ValidationReport) WriteFile(path string) error {
	return writeJSON(r, "validation report", path)
}
