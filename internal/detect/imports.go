package detect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// ImportDetector extracts module references: ESM import statements,
// CommonJS require calls, and dynamic import() calls. Relative specifiers
// are resolved against the importing file and probed on disk under root;
// bare specifiers pass through as external.
type ImportDetector struct {
	root  string
	cache map[string][]model.ModuleImport
}

// NewImportDetector returns a detector reading and resolving under root.
func NewImportDetector(root string) *ImportDetector {
	return &ImportDetector{root: root, cache: make(map[string][]model.ModuleImport)}
}

// DetectImports reads and analyzes one file, caching the result per path.
func (d *ImportDetector) DetectImports(ctx context.Context, path string) ([]model.ModuleImport, error) {
	if cached, ok := d.cache[path]; ok {
		return cached, nil
	}
	content, err := os.ReadFile(filepath.Join(d.root, path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	imports, err := d.ImportsFromSource(ctx, content, path)
	if err != nil {
		return nil, err
	}
	d.cache[path] = imports
	return imports, nil
}

// ClearCache drops all cached per-file results.
func (d *ImportDetector) ClearCache() {
	d.cache = make(map[string][]model.ModuleImport)
}

// ImportsFromSource extracts module references from content.
func (d *ImportDetector) ImportsFromSource(ctx context.Context, content []byte, path string) ([]model.ModuleImport, error) {
	tree, ok, err := parseScript(ctx, content, path)
	if err != nil || !ok {
		return nil, err
	}
	defer tree.Close()

	var imports []model.ModuleImport
	iter := sitter.NewIterator(tree.RootNode(), sitter.DFSMode)
	for {
		n, err := iter.Next()
		if err != nil || n == nil {
			break
		}
		switch n.Type() {
		case "import_statement":
			if imp := d.parseImportStatement(n, content, path); imp != nil {
				imports = append(imports, *imp)
			}
		case "call_expression":
			if imp := d.parseRequire(n, content, path); imp != nil {
				imports = append(imports, *imp)
			}
			if imp := d.parseDynamicImport(n, content, path); imp != nil {
				imports = append(imports, *imp)
			}
		}
	}
	return imports, nil
}

// parseImportStatement handles the ESM forms: default, namespace, named,
// side-effect, and combinations.
func (d *ImportDetector) parseImportStatement(n *sitter.Node, src []byte, path string) *model.ModuleImport {
	imp := &model.ModuleImport{ImportType: model.ImportESM, Line: line(n)}
	sawClause := false

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "import_clause":
			sawClause = true
			imp.Specifiers = append(imp.Specifiers, importClauseSpecifiers(child, src)...)
		case "string":
			imp.Source = ResolveModulePath(d.root, path, stringLiteral(child, src))
		}
	}
	if imp.Source == "" {
		return nil
	}
	imp.IsSideEffect = !sawClause
	return imp
}

func importClauseSpecifiers(clause *sitter.Node, src []byte) []string {
	var specs []string
	for i := 0; i < int(clause.ChildCount()); i++ {
		child := clause.Child(i)
		switch child.Type() {
		case "identifier":
			specs = append(specs, "default")
		case "namespace_import":
			specs = append(specs, "*")
		case "named_imports":
			for j := 0; j < int(child.ChildCount()); j++ {
				spec := child.Child(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				// The name field is the source-module name; alias only
				// renames the local binding.
				if name := spec.ChildByFieldName("name"); name != nil {
					specs = append(specs, name.Content(src))
				}
			}
		}
	}
	return specs
}

// parseRequire handles const x = require('./y'), destructured bindings,
// and bare require statements.
func (d *ImportDetector) parseRequire(n *sitter.Node, src []byte, path string) *model.ModuleImport {
	callee := n.Child(0)
	if callee == nil || callee.Type() != "identifier" || callee.Content(src) != "require" {
		return nil
	}
	source := callArgumentLiteral(n, src)
	if source == "" {
		return nil
	}

	imp := &model.ModuleImport{
		Source:     ResolveModulePath(d.root, path, source),
		ImportType: model.ImportCommonJS,
		Line:       line(n),
	}
	parent := n.Parent()
	switch {
	case parent != nil && parent.Type() == "variable_declarator":
		if name := parent.ChildByFieldName("name"); name != nil {
			if name.Type() == "object_pattern" {
				imp.Specifiers = objectPatternNames(name, src)
			} else {
				imp.Specifiers = []string{"*"}
			}
		}
	case parent != nil && parent.Type() == "expression_statement":
		imp.IsSideEffect = true
	}
	return imp
}

// parseDynamicImport records import() calls in the import list. Literal
// arguments are resolved; computed arguments keep the sentinel. Richer
// classification lives in the dynamic-import detector.
func (d *ImportDetector) parseDynamicImport(n *sitter.Node, src []byte, path string) *model.ModuleImport {
	callee := n.Child(0)
	if callee == nil || callee.Type() != "import" {
		return nil
	}
	imp := &model.ModuleImport{
		Source:     model.DynamicSentinel,
		ImportType: model.ImportESM,
		Dynamic:    true,
		Line:       line(n),
	}
	if literal := callArgumentLiteral(n, src); literal != "" {
		imp.Source = ResolveModulePath(d.root, path, literal)
	}
	return imp
}

// callArgumentLiteral returns the first string-literal argument of a call,
// or "" when the argument is computed.
func callArgumentLiteral(call *sitter.Node, src []byte) string {
	args := childOfType(call, "arguments")
	if args == nil {
		return ""
	}
	for i := 0; i < int(args.ChildCount()); i++ {
		if child := args.Child(i); child.Type() == "string" {
			return stringLiteral(child, src)
		}
	}
	return ""
}
