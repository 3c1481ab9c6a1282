package detect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// ExportDetector extracts a file's export surface: ESM named/default
// exports, re-exports, barrel exports, and CommonJS module.exports /
// exports.x assignments.
type ExportDetector struct {
	root  string
	cache map[string][]model.ModuleExport
}

// NewExportDetector returns a detector reading files relative to root.
func NewExportDetector(root string) *ExportDetector {
	return &ExportDetector{root: root, cache: make(map[string][]model.ModuleExport)}
}

// DetectExports reads and analyzes one file, caching the result per path.
func (d *ExportDetector) DetectExports(ctx context.Context, path string) ([]model.ModuleExport, error) {
	if cached, ok := d.cache[path]; ok {
		return cached, nil
	}
	content, err := os.ReadFile(filepath.Join(d.root, path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	exports, err := d.ExportsFromSource(ctx, content, path)
	if err != nil {
		return nil, err
	}
	d.cache[path] = exports
	return exports, nil
}

// ClearCache drops all cached per-file results.
func (d *ExportDetector) ClearCache() {
	d.cache = make(map[string][]model.ModuleExport)
}

// ExportsFromSource extracts export declarations from content. Exports are
// module-level constructs, so only top-level statements are inspected.
func (d *ExportDetector) ExportsFromSource(ctx context.Context, content []byte, path string) ([]model.ModuleExport, error) {
	tree, ok, err := parseScript(ctx, content, path)
	if err != nil || !ok {
		return nil, err
	}
	defer tree.Close()

	var exports []model.ModuleExport
	root := tree.RootNode()
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "export_statement":
			if exp := d.parseExportStatement(child, content, path); exp != nil {
				exports = append(exports, *exp)
			}
		case "expression_statement":
			if exp := parseCommonJSExport(child, content); exp != nil {
				exports = append(exports, *exp)
			}
		}
	}
	return exports, nil
}

func (d *ExportDetector) parseExportStatement(n *sitter.Node, src []byte, path string) *model.ModuleExport {
	exp := &model.ModuleExport{ExportType: model.ImportESM, Line: line(n)}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "*":
			exp.Specifiers = append(exp.Specifiers, "*")
			exp.IsBarrelExport = true
		case "namespace_export":
			// export * as ns from './x' aggregates the whole module.
			if ns := childText(child, "identifier", src); ns != "" {
				exp.Specifiers = append(exp.Specifiers, ns)
			}
			exp.IsBarrelExport = true
		case "export_clause":
			exp.Specifiers = append(exp.Specifiers, exportClauseSpecifiers(child, src)...)
		case "string":
			exp.Source = ResolveModulePath(d.root, path, stringLiteral(child, src))
		case "default":
			exp.Specifiers = append(exp.Specifiers, "default")
		case "function_declaration", "generator_function_declaration",
			"class_declaration", "abstract_class_declaration":
			if name := declarationName(child, src); name != "" {
				exp.Specifiers = append(exp.Specifiers, name)
			}
		case "interface_declaration", "type_alias_declaration":
			if name := childText(child, "type_identifier", src); name != "" {
				exp.Specifiers = append(exp.Specifiers, name)
			}
		case "enum_declaration":
			if name := childText(child, "identifier", src); name != "" {
				exp.Specifiers = append(exp.Specifiers, name)
			}
		case "lexical_declaration", "variable_declaration":
			exp.Specifiers = append(exp.Specifiers, declaratorNames(child, src)...)
		}
	}

	if len(exp.Specifiers) == 0 && exp.Source == "" {
		return nil
	}
	return exp
}

// exportClauseSpecifiers returns the public names of an export list,
// honoring "as" renames: export { g as h } exposes h.
func exportClauseSpecifiers(clause *sitter.Node, src []byte) []string {
	var specs []string
	for i := 0; i < int(clause.ChildCount()); i++ {
		spec := clause.Child(i)
		if spec.Type() != "export_specifier" {
			continue
		}
		name := spec.ChildByFieldName("alias")
		if name == nil {
			name = spec.ChildByFieldName("name")
		}
		if name != nil {
			specs = append(specs, name.Content(src))
		}
	}
	return specs
}

func declarationName(n *sitter.Node, src []byte) string {
	if name := childText(n, "type_identifier", src); name != "" {
		return name
	}
	return childText(n, "identifier", src)
}

func declaratorNames(n *sitter.Node, src []byte) []string {
	var names []string
	for i := 0; i < int(n.ChildCount()); i++ {
		decl := n.Child(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		if name := childText(decl, "identifier", src); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// parseCommonJSExport handles module.exports = ... and exports.x = ...
// assignments at the top level.
func parseCommonJSExport(stmt *sitter.Node, src []byte) *model.ModuleExport {
	assign := childOfType(stmt, "assignment_expression")
	if assign == nil {
		return nil
	}
	left := assign.ChildByFieldName("left")
	right := assign.ChildByFieldName("right")
	if left == nil || left.Type() != "member_expression" {
		return nil
	}

	exp := &model.ModuleExport{ExportType: model.ImportCommonJS, Line: line(assign)}
	target := left.Content(src)
	switch {
	case target == "module.exports":
		if right != nil && right.Type() == "object" {
			for i := 0; i < int(right.ChildCount()); i++ {
				child := right.Child(i)
				switch child.Type() {
				case "shorthand_property_identifier":
					exp.Specifiers = append(exp.Specifiers, child.Content(src))
				case "pair":
					if key := child.ChildByFieldName("key"); key != nil {
						exp.Specifiers = append(exp.Specifiers, key.Content(src))
					}
				}
			}
		} else {
			exp.Specifiers = []string{"default"}
		}
	case len(target) > len("exports.") && target[:len("exports.")] == "exports.":
		exp.Specifiers = []string{target[len("exports."):]}
	default:
		return nil
	}
	return exp
}
