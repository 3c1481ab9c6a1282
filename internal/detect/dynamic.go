package detect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// DynamicImportDetector recognizes import() call sites and how their result
// is consumed: awaited, chained through .then(), or used bare. The module
// path keeps the literal argument as written; template literals reduce to
// their static prefix plus an ellipsis, fully computed expressions to the
// sentinel.
type DynamicImportDetector struct {
	root  string
	cache map[string][]model.DynamicImport
}

// NewDynamicImportDetector returns a detector reading files relative to root.
func NewDynamicImportDetector(root string) *DynamicImportDetector {
	return &DynamicImportDetector{root: root, cache: make(map[string][]model.DynamicImport)}
}

// DetectDynamicImports reads and analyzes one file, caching per path.
func (d *DynamicImportDetector) DetectDynamicImports(ctx context.Context, path string) ([]model.DynamicImport, error) {
	if cached, ok := d.cache[path]; ok {
		return cached, nil
	}
	content, err := os.ReadFile(filepath.Join(d.root, path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	imports, err := d.DynamicImportsFromSource(ctx, content, path)
	if err != nil {
		return nil, err
	}
	d.cache[path] = imports
	return imports, nil
}

// ClearCache drops all cached per-file results.
func (d *DynamicImportDetector) ClearCache() {
	d.cache = make(map[string][]model.DynamicImport)
}

// DynamicImportsFromSource extracts import() records from content.
func (d *DynamicImportDetector) DynamicImportsFromSource(ctx context.Context, content []byte, path string) ([]model.DynamicImport, error) {
	tree, ok, err := parseScript(ctx, content, path)
	if err != nil || !ok {
		return nil, err
	}
	defer tree.Close()

	var imports []model.DynamicImport
	iter := sitter.NewIterator(tree.RootNode(), sitter.DFSMode)
	for {
		n, err := iter.Next()
		if err != nil || n == nil {
			break
		}
		if n.Type() != "call_expression" {
			continue
		}
		callee := n.Child(0)
		if callee == nil || callee.Type() != "import" {
			continue
		}

		rec := model.DynamicImport{
			ModulePath: dynamicModulePath(n, content),
			Line:       line(n),
		}
		rec.Kind, rec.Symbols = classifyDynamic(n, content)
		rec.ContainingFunction, rec.ContainingClass = enclosingContext(n, content)
		imports = append(imports, rec)
	}
	return imports, nil
}

// dynamicModulePath reduces the import() argument to a literal path, a
// static template prefix plus "...", or the sentinel.
func dynamicModulePath(call *sitter.Node, src []byte) string {
	args := childOfType(call, "arguments")
	if args == nil {
		return model.DynamicSentinel
	}
	arg := args.NamedChild(0)
	if arg == nil {
		return model.DynamicSentinel
	}
	switch arg.Type() {
	case "string":
		return stringLiteral(arg, src)
	case "template_string":
		text := strings.Trim(arg.Content(src), "`")
		idx := strings.Index(text, "${")
		if idx < 0 {
			return text
		}
		if idx == 0 {
			return model.DynamicSentinel
		}
		return text[:idx] + "..."
	default:
		return model.DynamicSentinel
	}
}

// classifyDynamic determines how the import() result is consumed and which
// symbols the consumer binds.
func classifyDynamic(n *sitter.Node, src []byte) (model.DynamicImportKind, []string) {
	parent := n.Parent()
	if parent != nil && parent.Type() == "await_expression" {
		return model.DynamicAwait, awaitBindingSymbols(parent, src)
	}
	if parent != nil && parent.Type() == "member_expression" {
		prop := parent.ChildByFieldName("property")
		grandparent := parent.Parent()
		if prop != nil && prop.Content(src) == "then" && grandparent != nil && grandparent.Type() == "call_expression" {
			return model.DynamicPromise, thenCallbackSymbols(grandparent, src)
		}
	}
	return model.DynamicBare, nil
}

// awaitBindingSymbols reads the binding of const x = await import(...):
// destructuring yields the member names, a plain identifier the whole
// namespace.
func awaitBindingSymbols(await *sitter.Node, src []byte) []string {
	decl := await.Parent()
	if decl == nil || decl.Type() != "variable_declarator" {
		return nil
	}
	return patternSymbols(decl.ChildByFieldName("name"), src)
}

// thenCallbackSymbols reads the callback parameter of import(...).then(cb).
func thenCallbackSymbols(thenCall *sitter.Node, src []byte) []string {
	args := childOfType(thenCall, "arguments")
	if args == nil {
		return nil
	}
	cb := args.NamedChild(0)
	if cb == nil {
		return nil
	}
	switch cb.Type() {
	case "arrow_function":
		if p := cb.ChildByFieldName("parameter"); p != nil {
			return patternSymbols(p, src)
		}
		if params := cb.ChildByFieldName("parameters"); params != nil {
			return patternSymbols(params.NamedChild(0), src)
		}
	case "function_expression", "function":
		if params := childOfType(cb, "formal_parameters"); params != nil {
			return patternSymbols(params.NamedChild(0), src)
		}
	}
	return nil
}

func patternSymbols(param *sitter.Node, src []byte) []string {
	if param == nil {
		return nil
	}
	switch param.Type() {
	case "object_pattern":
		return objectPatternNames(param, src)
	case "identifier":
		return []string{"*"}
	case "required_parameter", "optional_parameter":
		return patternSymbols(param.ChildByFieldName("pattern"), src)
	}
	return nil
}
