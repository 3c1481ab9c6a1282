// Package detect extracts relationship records from source files: call
// sites, static and dynamic module imports, export surfaces, and entry-point
// heuristics. Detectors operate on the JS/TS family; each keeps an
// independently clearable per-path cache. Partial parse trees are walked
// as-is, so a file with localized syntax errors still yields the records
// that did parse.
package detect

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/srwlli/dashboard-sub004/internal/lang"
)

// parseScript parses script-family content. The bool is false when the path
// is not a JS/TS dialect, which callers treat as "no records", not an error.
func parseScript(ctx context.Context, content []byte, path string) (*sitter.Tree, bool, error) {
	language, ok := lang.ForFile(path)
	if !ok || !lang.IsScriptFamily(language) {
		return nil, false, nil
	}
	parser := sitter.NewParser()
	parser.SetLanguage(lang.GrammarForFile(path))
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return tree, true, nil
}

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

func column(n *sitter.Node) int {
	return int(n.StartPoint().Column)
}

// stringLiteral returns the text of a string node without quotes.
func stringLiteral(n *sitter.Node, src []byte) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == "string_fragment" {
			return c.Content(src)
		}
	}
	return strings.Trim(n.Content(src), "\"'`")
}

func childOfType(n *sitter.Node, nodeType string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == nodeType {
			return c
		}
	}
	return nil
}

func childText(n *sitter.Node, nodeType string, src []byte) string {
	c := childOfType(n, nodeType)
	if c == nil {
		return ""
	}
	return c.Content(src)
}

// enclosingContext walks up from a node to the nearest enclosing function
// and class names. Arrow functions take the name of the declarator they are
// assigned to; anonymous scopes leave the function name empty.
func enclosingContext(n *sitter.Node, src []byte) (fn, class string) {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "function_declaration", "generator_function_declaration", "function_expression", "function", "generator_function":
			if fn == "" {
				fn = childText(p, "identifier", src)
			}
		case "arrow_function":
			if fn == "" {
				if d := p.Parent(); d != nil && d.Type() == "variable_declarator" {
					fn = childText(d, "identifier", src)
				}
			}
		case "method_definition":
			if fn == "" {
				fn = childText(p, "property_identifier", src)
				if fn == "" {
					fn = childText(p, "private_property_identifier", src)
				}
			}
		case "class_declaration", "abstract_class_declaration", "class":
			if class == "" {
				class = childText(p, "type_identifier", src)
				if class == "" {
					class = childText(p, "identifier", src)
				}
			}
		}
		if fn != "" && class != "" {
			break
		}
	}
	return fn, class
}

// objectPatternNames lists the member names bound by a destructuring
// pattern: {a, b} and {a: localA} both contribute the source-side name.
func objectPatternNames(pattern *sitter.Node, src []byte) []string {
	if pattern == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(pattern.ChildCount()); i++ {
		child := pattern.Child(i)
		switch child.Type() {
		case "shorthand_property_identifier_pattern":
			names = append(names, child.Content(src))
		case "pair_pattern":
			if key := child.ChildByFieldName("key"); key != nil {
				names = append(names, key.Content(src))
			}
		}
	}
	return names
}

func isUpperInitial(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}
