package detect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// CallDetector extracts call sites with their enclosing function/class
// context. Classification is purely syntactic: a bare identifier is a
// function call, an object-qualified callee a method call (static when the
// object is a single capitalized identifier), new-expressions constructor
// calls. No dataflow or type resolution is attempted.
type CallDetector struct {
	root  string
	cache map[string][]model.CallExpression
}

// NewCallDetector returns a detector reading files relative to root.
func NewCallDetector(root string) *CallDetector {
	return &CallDetector{root: root, cache: make(map[string][]model.CallExpression)}
}

// DetectCalls reads and analyzes one file, caching the result per path.
func (d *CallDetector) DetectCalls(ctx context.Context, path string) ([]model.CallExpression, error) {
	if cached, ok := d.cache[path]; ok {
		return cached, nil
	}
	content, err := os.ReadFile(filepath.Join(d.root, path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	calls, err := d.CallsFromSource(ctx, content, path)
	if err != nil {
		return nil, err
	}
	d.cache[path] = calls
	return calls, nil
}

// ClearCache drops all cached per-file results.
func (d *CallDetector) ClearCache() {
	d.cache = make(map[string][]model.CallExpression)
}

// CallsFromSource extracts call sites from content. Non-script files yield
// no records.
func (d *CallDetector) CallsFromSource(ctx context.Context, content []byte, path string) ([]model.CallExpression, error) {
	tree, ok, err := parseScript(ctx, content, path)
	if err != nil || !ok {
		return nil, err
	}
	defer tree.Close()

	var calls []model.CallExpression
	iter := sitter.NewIterator(tree.RootNode(), sitter.DFSMode)
	for {
		n, err := iter.Next()
		if err != nil || n == nil {
			break
		}
		var call *model.CallExpression
		switch n.Type() {
		case "call_expression":
			call = parseCallExpression(n, content)
		case "new_expression":
			call = parseNewExpression(n, content)
		}
		if call == nil {
			continue
		}
		call.CallerFunction, call.CallerClass = enclosingContext(n, content)
		call.IsAsync = underAwait(n)
		call.IsNested = insideArguments(n)
		calls = append(calls, *call)
	}
	return calls, nil
}

// parseCallExpression classifies a call_expression callee. Chained-call
// callees and module loaders (require, import()) are skipped: the former
// are tracked at the inner call, the latter belong to the import detectors.
func parseCallExpression(n *sitter.Node, src []byte) *model.CallExpression {
	callee := n.Child(0)
	if callee == nil {
		return nil
	}
	call := &model.CallExpression{Line: line(n), Column: column(n)}

	switch callee.Type() {
	case "identifier":
		name := callee.Content(src)
		if name == "require" {
			return nil
		}
		call.CalleeFunction = name
		call.CallType = model.CallFunction
	case "member_expression":
		obj := callee.ChildByFieldName("object")
		prop := callee.ChildByFieldName("property")
		if prop == nil {
			return nil
		}
		call.CalleeFunction = prop.Content(src)
		call.CallType = model.CallMethod
		if obj != nil {
			call.CalleeObject = obj.Content(src)
			if obj.Type() == "identifier" && isUpperInitial(call.CalleeObject) {
				call.CallType = model.CallStatic
			}
		}
	default:
		return nil
	}

	if call.CalleeFunction == "" {
		return nil
	}
	return call
}

func parseNewExpression(n *sitter.Node, src []byte) *model.CallExpression {
	ctor := n.ChildByFieldName("constructor")
	if ctor == nil {
		return nil
	}
	call := &model.CallExpression{
		CallType: model.CallConstructor,
		Line:     line(n),
		Column:   column(n),
	}
	switch ctor.Type() {
	case "identifier":
		call.CalleeFunction = ctor.Content(src)
	case "member_expression":
		if prop := ctor.ChildByFieldName("property"); prop != nil {
			call.CalleeFunction = prop.Content(src)
		}
		if obj := ctor.ChildByFieldName("object"); obj != nil {
			call.CalleeObject = obj.Content(src)
		}
	default:
		return nil
	}
	if call.CalleeFunction == "" {
		return nil
	}
	return call
}

func underAwait(n *sitter.Node) bool {
	p := n.Parent()
	return p != nil && p.Type() == "await_expression"
}

// insideArguments reports whether the node sits inside another call's
// argument list, without crossing a function boundary.
func insideArguments(n *sitter.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "arguments":
			return true
		case "function_declaration", "function_expression", "function", "generator_function", "arrow_function", "method_definition", "statement_block":
			return false
		}
	}
	return false
}
