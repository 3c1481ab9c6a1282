package scanner

import (
	"regexp"
	"strings"

	"github.com/srwlli/dashboard-sub004/internal/classify"
	"github.com/srwlli/dashboard-sub004/internal/lang"
	"github.com/srwlli/dashboard-sub004/internal/patterns"
	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// RegexScanner is the line-oriented fallback scanner. It applies every
// registered pattern to every non-comment line and records all matches, so
// a line declaring both a function and a component yields both elements.
// Patterns can misfire on code that merely resembles a declaration; the
// AST scanner is authoritative when it can parse the file.
type RegexScanner struct {
	registry *patterns.Registry
	elements []model.ElementData
}

// NewRegexScanner returns a scanner matching against the given registry.
func NewRegexScanner(registry *patterns.Registry) *RegexScanner {
	return &RegexScanner{registry: registry}
}

var exportKeywordRe = regexp.MustCompile(`(?:^|\s)export\s`)

// ProcessFile scans one file's content line by line and accumulates the
// matched elements. Commented lines are skipped unless includeComments is
// set. The path is recorded as-is in each element.
func (s *RegexScanner) ProcessFile(path string, content []byte, language lang.Language, includeComments bool) {
	pats := s.registry.Patterns(language)
	if len(pats) == 0 {
		return
	}

	lines := strings.Split(string(content), "\n")
	var commented []bool
	if !includeComments {
		commented = classify.New(language).ClassifyAll(lines)
	}

	for i, line := range lines {
		if commented != nil && commented[i] {
			continue
		}
		for _, p := range pats {
			m := p.Expr.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := p.Name(m)
			if name == "" {
				continue
			}
			s.elements = append(s.elements, model.ElementData{
				Type:     p.Type,
				Name:     name,
				File:     path,
				Line:     i + 1,
				Exported: lineExports(language, line, name),
			})
		}
	}
}

// Elements returns everything accumulated so far, in scan order.
func (s *RegexScanner) Elements() []model.ElementData {
	return s.elements
}

// Reset drops the accumulated elements.
func (s *RegexScanner) Reset() {
	s.elements = nil
}

// lineExports decides export status from single-line evidence: an adjacent
// export keyword for the script languages, the underscore convention for
// Python.
func lineExports(language lang.Language, line, name string) bool {
	if language == lang.Python {
		return !strings.HasPrefix(name, "_")
	}
	return exportKeywordRe.MatchString(line)
}
