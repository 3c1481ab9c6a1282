// Package classify implements the line-level comment classifier the regex
// scanner uses to skip commented-out code. It distinguishes comment lines
// from code, string/template literals, and regex literals, carrying
// block-comment and multi-line-literal state across lines.
package classify

import (
	"strings"

	"github.com/srwlli/dashboard-sub004/internal/lang"
)

// Classifier decides whether a source line is a comment line. It never
// fails; ambiguous input classifies as code so that real elements are not
// silently dropped.
type Classifier struct {
	hashComments bool // '#' line comments, no block comments (Python)
}

// New returns a classifier for a language's comment syntax.
func New(l lang.Language) *Classifier {
	return &Classifier{hashComments: lang.UsesHashComments(l)}
}

// lineState is the multi-line lexical state at the start of a line.
type lineState struct {
	inBlock    bool // inside a /* */ block comment
	inTemplate bool // inside a backtick template literal
	inTriple   bool // inside a Python triple-quoted string
	tripleCh   byte // quote character that opened the triple
}

// IsLineCommented reports whether a line is a comment line. When allLines
// and a valid lineIndex are supplied, preceding lines are scanned so block
// comments and multi-line literals spanning the line are recognized; without
// context only single-line evidence is used.
//
// A line mixing real code with a trailing comment is not a comment line,
// and neither is a line whose comment marker sits inside a string, template,
// or regex literal.
func (c *Classifier) IsLineCommented(line string, lineIndex int, allLines []string) bool {
	var state lineState
	if lineIndex > 0 && lineIndex <= len(allLines) {
		for i := 0; i < lineIndex && i < len(allLines); i++ {
			state = c.scanLine(state, allLines[i])
		}
	}
	return c.classify(line, state)
}

// ClassifyAll classifies every line of a file in one pass, reusing the
// running state instead of rescanning the prefix per line.
func (c *Classifier) ClassifyAll(lines []string) []bool {
	out := make([]bool, len(lines))
	var state lineState
	for i, line := range lines {
		out[i] = c.classify(line, state)
		state = c.scanLine(state, line)
	}
	return out
}

// classify decides the current line given the lexical state at its start.
func (c *Classifier) classify(line string, state lineState) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if state.inTriple || state.inTemplate {
		// Literal content, not a comment.
		return false
	}
	if c.hashComments {
		return trimmed[0] == '#'
	}
	if state.inBlock {
		end := strings.Index(trimmed, "*/")
		if end < 0 {
			return true
		}
		rest := strings.TrimSpace(trimmed[end+2:])
		if rest == "" {
			return true
		}
		// The block ends here; whatever follows decides the line.
		return c.classify(rest, lineState{})
	}
	if strings.HasPrefix(trimmed, "//") {
		return true
	}
	if strings.HasPrefix(trimmed, "/*") {
		end := strings.Index(trimmed[2:], "*/")
		if end < 0 {
			return true
		}
		rest := strings.TrimSpace(trimmed[2+end+2:])
		if rest == "" {
			return true
		}
		return c.classify(rest, lineState{})
	}
	return false
}

// scanLine advances the lexical state across one full line.
func (c *Classifier) scanLine(state lineState, line string) lineState {
	if c.hashComments {
		return scanPythonLine(state, line)
	}
	return scanScriptLine(state, line)
}

// scanPythonLine tracks triple-quoted strings; '#' comments run to EOL and
// single-quoted strings cannot span lines.
func scanPythonLine(state lineState, line string) lineState {
	i := 0
	for i < len(line) {
		if state.inTriple {
			closer := strings.Repeat(string(state.tripleCh), 3)
			idx := strings.Index(line[i:], closer)
			if idx < 0 {
				return state
			}
			i += idx + 3
			state.inTriple = false
			continue
		}
		ch := line[i]
		switch {
		case ch == '#':
			return state
		case ch == '"' || ch == '\'':
			if i+2 < len(line) && line[i+1] == ch && line[i+2] == ch {
				state.inTriple = true
				state.tripleCh = ch
				i += 3
				continue
			}
			i = skipQuoted(line, i, ch)
		default:
			i++
		}
	}
	return state
}

// scanScriptLine tracks block comments, template literals, strings, and
// regex literals for the JS/TS family.
func scanScriptLine(state lineState, line string) lineState {
	i := 0
	var prev byte // last significant byte outside literals/comments
	for i < len(line) {
		if state.inBlock {
			idx := strings.Index(line[i:], "*/")
			if idx < 0 {
				return state
			}
			i += idx + 2
			state.inBlock = false
			continue
		}
		if state.inTemplate {
			idx := indexUnescaped(line[i:], '`')
			if idx < 0 {
				return state
			}
			i += idx + 1
			state.inTemplate = false
			continue
		}
		ch := line[i]
		switch {
		case ch == ' ' || ch == '\t':
			i++
		case ch == '"' || ch == '\'':
			i = skipQuoted(line, i, ch)
			prev = ch
		case ch == '`':
			state.inTemplate = true
			i++
		case ch == '/':
			if i+1 < len(line) && line[i+1] == '/' {
				return state // line comment to EOL
			}
			if i+1 < len(line) && line[i+1] == '*' {
				state.inBlock = true
				i += 2
				continue
			}
			if regexCanFollow(prev, line[:i]) {
				i = skipRegex(line, i+1)
				prev = '/'
				continue
			}
			prev = '/'
			i++
		default:
			prev = ch
			i++
		}
	}
	return state
}

// skipQuoted returns the index just past a single/double-quoted literal
// starting at i. Unterminated literals consume the rest of the line.
func skipQuoted(line string, i int, quote byte) int {
	i++
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1
		default:
			i++
		}
	}
	return i
}

// indexUnescaped finds ch outside backslash escapes.
func indexUnescaped(s string, ch byte) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case ch:
			return i
		}
	}
	return -1
}

// regexCanFollow applies the division-vs-regex heuristic: a slash starts a
// regex literal when the preceding token cannot end an expression.
func regexCanFollow(prev byte, before string) bool {
	if prev == 0 {
		return true // start of line
	}
	if strings.ContainsRune("([{=,:;!&|?+-*%<>~^", rune(prev)) {
		return true
	}
	// A closing identifier or bracket means division, unless the identifier
	// is a keyword like return.
	trimmed := strings.TrimRight(before, " \t")
	for _, kw := range []string{"return", "typeof", "case", "in", "of", "new", "delete", "void", "do", "else"} {
		if strings.HasSuffix(trimmed, kw) {
			boundary := len(trimmed) - len(kw) - 1
			if boundary < 0 || !isWordByte(trimmed[boundary]) {
				return true
			}
		}
	}
	return false
}

// skipRegex returns the index just past a regex literal body starting after
// the opening slash, honoring escapes and character classes.
func skipRegex(line string, i int) int {
	inClass := false
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '[':
			inClass = true
			i++
		case ']':
			inClass = false
			i++
		case '/':
			if !inClass {
				return i + 1
			}
			i++
		default:
			i++
		}
	}
	return i
}

func isWordByte(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
