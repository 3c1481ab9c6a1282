// Package patterns holds the per-language regex pattern table the regex
// scanner matches declarations against. The registry is an explicit value
// injected into scanners, so sessions with custom patterns don't interfere.
package patterns

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/srwlli/dashboard-sub004/internal/lang"
	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// Pattern matches one element kind on a single source line. NameGroup is
// the capture group whose text becomes the element name.
type Pattern struct {
	Type      model.ElementType
	Expr      *regexp.Regexp
	NameGroup int
}

// Name extracts the element name from a FindStringSubmatch result.
func (p Pattern) Name(match []string) string {
	if p.NameGroup < 0 || p.NameGroup >= len(match) {
		return ""
	}
	return match[p.NameGroup]
}

// Registry maps languages to ordered pattern lists. Built-in defaults are
// loaded at construction; registered patterns append after them.
type Registry struct {
	byLanguage map[lang.Language][]Pattern
}

// NewRegistry returns a registry preloaded with the built-in patterns for
// JavaScript, TypeScript, TSX, and Python.
func NewRegistry() *Registry {
	r := &Registry{byLanguage: make(map[lang.Language][]Pattern)}

	script := []Pattern{
		{model.ElementTypeFunction, reFunction, 1},
		{model.ElementTypeFunction, reArrowFunction, 1},
		{model.ElementTypeHook, reHook, 1},
		{model.ElementTypeComponent, reComponent, 1},
		{model.ElementTypeClass, reClass, 1},
		{model.ElementTypeConstant, reConstant, 1},
	}
	typed := append(append([]Pattern{}, script...),
		Pattern{model.ElementTypeInterface, reInterface, 1},
		Pattern{model.ElementTypeType, reTypeAlias, 1},
		Pattern{model.ElementTypeType, reEnum, 1},
		Pattern{model.ElementTypeDecorator, reDecorator, 1},
	)

	r.byLanguage[lang.JavaScript] = script
	r.byLanguage[lang.TypeScript] = typed
	r.byLanguage[lang.TSX] = append([]Pattern{}, typed...)
	r.byLanguage[lang.Python] = []Pattern{
		{model.ElementTypeFunction, rePyFunction, 1},
		{model.ElementTypeClass, rePyClass, 1},
		{model.ElementTypeConstant, rePyConstant, 1},
		{model.ElementTypeDecorator, rePyDecorator, 1},
	}
	return r
}

// Register compiles and appends a custom pattern to a language's list.
// Later registrations match after the built-ins; duplicates are allowed.
func (r *Registry) Register(l lang.Language, typ model.ElementType, expr string, nameGroup int) error {
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("compile pattern for %s: %w", l, err)
	}
	if nameGroup < 1 {
		nameGroup = 1
	}
	r.byLanguage[l] = append(r.byLanguage[l], Pattern{Type: typ, Expr: re, NameGroup: nameGroup})
	return nil
}

// Patterns returns the ordered pattern list for a language. Unknown
// languages return an empty list.
func (r *Registry) Patterns(l lang.Language) []Pattern {
	return r.byLanguage[l]
}

// IsSupported reports whether any patterns exist for the language.
func (r *Registry) IsSupported(l lang.Language) bool {
	return len(r.byLanguage[l]) > 0
}

// Languages returns the supported languages in sorted order.
func (r *Registry) Languages() []lang.Language {
	out := make([]lang.Language, 0, len(r.byLanguage))
	for l := range r.byLanguage {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var (
	reFunction      = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)\s*\(`)
	reArrowFunction = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s+)?(?:\([^)]*\)|[A-Za-z_$][\w$]*)\s*=>`)
	reHook          = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?(?:function\s+|const\s+)(use[A-Z][\w$]*)`)
	reComponent     = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:function\s+|const\s+)([A-Z][\w$]*)\s*[=(]`)
	reClass         = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+([A-Za-z_$][\w$]*)`)
	reConstant      = regexp.MustCompile(`^\s*(?:export\s+)?const\s+([A-Z][A-Z0-9_]*)\s*=`)
	reInterface     = regexp.MustCompile(`^\s*(?:export\s+)?interface\s+([A-Za-z_$][\w$]*)`)
	reTypeAlias     = regexp.MustCompile(`^\s*(?:export\s+)?type\s+([A-Za-z_$][\w$]*)\s*(?:<[^>]*>)?\s*=`)
	reEnum          = regexp.MustCompile(`^\s*(?:export\s+)?(?:const\s+)?enum\s+([A-Za-z_$][\w$]*)`)
	reDecorator     = regexp.MustCompile(`^\s*@([A-Za-z_$][\w$]*)`)

	rePyFunction  = regexp.MustCompile(`^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(`)
	rePyClass     = regexp.MustCompile(`^\s*class\s+([A-Za-z_]\w*)\s*[:(]`)
	rePyConstant  = regexp.MustCompile(`^([A-Z][A-Z0-9_]*)\s*=`)
	rePyDecorator = regexp.MustCompile(`^\s*@([A-Za-z_]\w*)`)
)
