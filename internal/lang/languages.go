// Package lang maps file extensions and CLI language selectors to the
// languages the scanners understand and to their tree-sitter grammars.
package lang

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language identifies one supported source language dialect.
type Language string

const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
	Python     Language = "python"
)

// extLanguage maps file extensions to languages. JSX shares the JavaScript
// grammar; TSX has its own dialect.
var extLanguage = map[string]Language{
	".js":  JavaScript,
	".jsx": JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
	".ts":  TypeScript,
	".tsx": TSX,
	".py":  Python,
}

// selectorExts maps CLI language selectors (as in "--languages py,ts,tsx")
// to the extensions they cover.
var selectorExts = map[string][]string{
	"js":         {".js", ".mjs", ".cjs"},
	"jsx":        {".jsx"},
	"javascript": {".js", ".jsx", ".mjs", ".cjs"},
	"ts":         {".ts"},
	"tsx":        {".tsx"},
	"typescript": {".ts", ".tsx"},
	"py":         {".py"},
	"python":     {".py"},
}

var (
	jsOnce  sync.Once
	tsOnce  sync.Once
	tsxOnce sync.Once
	pyOnce  sync.Once
	jsLang  *sitter.Language
	tsLang  *sitter.Language
	tsxLang *sitter.Language
	pyLang  *sitter.Language
)

// ForFile returns the language for a file path, based on its extension.
func ForFile(path string) (Language, bool) {
	l, ok := extLanguage[strings.ToLower(filepath.Ext(path))]
	return l, ok
}

// ForExtension returns the language for an extension (with leading dot).
func ForExtension(ext string) (Language, bool) {
	l, ok := extLanguage[strings.ToLower(ext)]
	return l, ok
}

// Grammar returns the tree-sitter grammar for a language.
func Grammar(l Language) *sitter.Language {
	switch l {
	case JavaScript:
		jsOnce.Do(func() { jsLang = javascript.GetLanguage() })
		return jsLang
	case TypeScript:
		tsOnce.Do(func() { tsLang = typescript.GetLanguage() })
		return tsLang
	case TSX:
		tsxOnce.Do(func() { tsxLang = tsx.GetLanguage() })
		return tsxLang
	case Python:
		pyOnce.Do(func() { pyLang = python.GetLanguage() })
		return pyLang
	default:
		return nil
	}
}

// GrammarForFile returns the grammar for a file path, or nil when the
// extension is not supported.
func GrammarForFile(path string) *sitter.Language {
	l, ok := ForFile(path)
	if !ok {
		return nil
	}
	return Grammar(l)
}

// AllExtensions returns every supported extension, sorted.
func AllExtensions() []string {
	out := make([]string, 0, len(extLanguage))
	for ext := range extLanguage {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// ExtensionsForSelectors expands language selectors into the set of file
// extensions to scan. Unknown selectors are ignored; an extension-looking
// selector (".vue") passes through so custom regex patterns can target it.
func ExtensionsForSelectors(selectors []string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(ext string) {
		if _, ok := seen[ext]; ok {
			return
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	for _, sel := range selectors {
		sel = strings.ToLower(strings.TrimSpace(sel))
		if sel == "" {
			continue
		}
		if exts, ok := selectorExts[sel]; ok {
			for _, e := range exts {
				add(e)
			}
			continue
		}
		if strings.HasPrefix(sel, ".") {
			add(sel)
		}
	}
	return out
}

// UsesHashComments reports whether a language uses # line comments.
func UsesHashComments(l Language) bool {
	return l == Python
}

// IsScriptFamily reports whether a language belongs to the JS/TS family,
// which shares import/export and call syntax.
func IsScriptFamily(l Language) bool {
	switch l {
	case JavaScript, TypeScript, TSX:
		return true
	}
	return false
}
