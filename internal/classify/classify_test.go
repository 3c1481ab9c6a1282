package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srwlli/dashboard-sub004/internal/lang"
)

func TestIsLineCommented_SingleLine(t *testing.T) {
	c := New(lang.TypeScript)

	tests := []struct {
		name string
		line string
		want bool
	}{
		{"line comment", "// initialize the store", true},
		{"indented line comment", "    // TODO handle retries", true},
		{"block opener", "/* legacy path", true},
		{"one line block", "/* noop */", true},
		{"code line", "const total = a + b;", false},
		{"code with trailing comment", "const x = 1; // counter", false},
		{"url inside string", `const docs = "https://example.com/api";`, false},
		{"url inside template", "const docs = `https://example.com/${id}`;", false},
		{"division not comment", "const ratio = hits / total;", false},
		{"regex literal", "const re = /\\/\\//g;", false},
		{"empty line", "", false},
		{"whitespace only", "   \t  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsLineCommented(tt.line, -1, nil))
		})
	}
}

func TestIsLineCommented_BlockCommentSpansLines(t *testing.T) {
	c := New(lang.TypeScript)

	src := strings.Split(strings.TrimLeft(`
/**
 * Legacy login handler.
 * @deprecated use loginV2
 */
export function login() {}
`, "\n"), "\n")

	for i := 0; i < 4; i++ {
		assert.True(t, c.IsLineCommented(src[i], i, src), "line %d should be commented: %q", i, src[i])
	}
	assert.False(t, c.IsLineCommented(src[4], 4, src), "code after block end: %q", src[4])
}

func TestIsLineCommented_BlockEndWithTrailingCode(t *testing.T) {
	c := New(lang.JavaScript)

	src := []string{
		"/* disabled",
		"   old(); */ fresh();",
		"next();",
	}

	assert.True(t, c.IsLineCommented(src[0], 0, src))
	assert.False(t, c.IsLineCommented(src[1], 1, src), "real code after block close")
	assert.False(t, c.IsLineCommented(src[2], 2, src))
}

func TestIsLineCommented_TemplateLiteralShieldsMarkers(t *testing.T) {
	c := New(lang.TypeScript)

	src := []string{
		"const snippet = `",
		"// this is template content, not a comment",
		"`;",
		"// real comment",
	}

	assert.False(t, c.IsLineCommented(src[1], 1, src), "marker inside template literal")
	assert.True(t, c.IsLineCommented(src[3], 3, src))
}

func TestIsLineCommented_StringShieldsBlockOpener(t *testing.T) {
	c := New(lang.JavaScript)

	src := []string{
		`const glob = "src/*";`,
		"const next = run();",
	}

	assert.False(t, c.IsLineCommented(src[0], 0, src))
	assert.False(t, c.IsLineCommented(src[1], 1, src), "string content must not open a block comment")
}

func TestIsLineCommented_Python(t *testing.T) {
	c := New(lang.Python)

	tests := []struct {
		name string
		line string
		want bool
	}{
		{"hash comment", "# compute totals", true},
		{"indented hash", "    # guard clause", true},
		{"code line", "def handler(event):", false},
		{"code with trailing hash", "x = 1  # counter", false},
		{"slash comment is not python", "// not a python comment", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsLineCommented(tt.line, -1, nil))
		})
	}
}

func TestIsLineCommented_PythonDocstringState(t *testing.T) {
	c := New(lang.Python)

	src := []string{
		`def describe():`,
		`    """Summary line.`,
		`    # this is docstring content`,
		`    """`,
		`    return 1  # done`,
	}

	assert.False(t, c.IsLineCommented(src[2], 2, src), "hash inside docstring")
	assert.False(t, c.IsLineCommented(src[4], 4, src))
}

func TestClassifyAll_MatchesPerLineCalls(t *testing.T) {
	c := New(lang.TypeScript)

	src := []string{
		"// header",
		"import { api } from './api';",
		"/*",
		"const dead = 1;",
		"*/",
		"export const live = 2;",
	}

	got := c.ClassifyAll(src)
	assert.Equal(t, []bool{true, false, true, true, true, false}, got)

	for i, line := range src {
		assert.Equal(t, got[i], c.IsLineCommented(line, i, src), "line %d", i)
	}
}
