package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srwlli/dashboard-sub004/internal/lang"
	"github.com/srwlli/dashboard-sub004/pkg/model"
)

func TestNewRegistry_BuiltinLanguages(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.IsSupported(lang.JavaScript))
	assert.True(t, r.IsSupported(lang.TypeScript))
	assert.True(t, r.IsSupported(lang.TSX))
	assert.True(t, r.IsSupported(lang.Python))
	assert.False(t, r.IsSupported(lang.Language("ruby")))

	assert.Equal(t, []lang.Language{lang.JavaScript, lang.Python, lang.TSX, lang.TypeScript}, r.Languages())
}

func TestPatterns_UnknownLanguageIsEmpty(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Patterns(lang.Language("cobol")))
}

func TestPatterns_TypeScriptSupersetOfJavaScript(t *testing.T) {
	r := NewRegistry()
	js := r.Patterns(lang.JavaScript)
	ts := r.Patterns(lang.TypeScript)
	assert.Greater(t, len(ts), len(js))
}

func TestRegister_AppendsAfterBuiltins(t *testing.T) {
	r := NewRegistry()
	before := len(r.Patterns(lang.TypeScript))

	err := r.Register(lang.TypeScript, model.ElementTypeFunction, `^\s*macro\s+(\w+)`, 1)
	require.NoError(t, err)

	got := r.Patterns(lang.TypeScript)
	require.Len(t, got, before+1)
	assert.Equal(t, model.ElementTypeFunction, got[before].Type)
	assert.True(t, got[before].Expr.MatchString("macro expand"))
}

func TestRegister_InvalidPattern(t *testing.T) {
	r := NewRegistry()
	err := r.Register(lang.Python, model.ElementTypeFunction, `def [`, 1)
	assert.Error(t, err)
}

func TestRegister_NewLanguage(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(lang.Language("ruby"), model.ElementTypeFunction, `^\s*def\s+(\w+)`, 1))
	assert.True(t, r.IsSupported(lang.Language("ruby")))
	assert.Len(t, r.Patterns(lang.Language("ruby")), 1)
}

func TestBuiltinPatterns_MatchDeclarations(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name     string
		language lang.Language
		line     string
		wantType model.ElementType
		wantName string
	}{
		{"function", lang.JavaScript, "function getUser(id) {", model.ElementTypeFunction, "getUser"},
		{"async function", lang.JavaScript, "async function fetchAll() {", model.ElementTypeFunction, "fetchAll"},
		{"exported function", lang.TypeScript, "export function parse(input: string) {", model.ElementTypeFunction, "parse"},
		{"arrow function", lang.TypeScript, "const format = (value: number) => value.toFixed(2);", model.ElementTypeFunction, "format"},
		{"hook", lang.TSX, "export function useAuth() {", model.ElementTypeHook, "useAuth"},
		{"component", lang.TSX, "export const LoginForm = (props: Props) => {", model.ElementTypeComponent, "LoginForm"},
		{"class", lang.TypeScript, "export class AuthService {", model.ElementTypeClass, "AuthService"},
		{"constant", lang.TypeScript, "export const MAX_RETRIES = 3;", model.ElementTypeConstant, "MAX_RETRIES"},
		{"interface", lang.TypeScript, "export interface User {", model.ElementTypeInterface, "User"},
		{"type alias", lang.TypeScript, "type Result = 'ok' | 'error';", model.ElementTypeType, "Result"},
		{"enum", lang.TypeScript, "export enum Color {", model.ElementTypeType, "Color"},
		{"decorator", lang.TypeScript, "@Injectable()", model.ElementTypeDecorator, "Injectable"},
		{"python def", lang.Python, "def load_config(path):", model.ElementTypeFunction, "load_config"},
		{"python async def", lang.Python, "async def handle(event):", model.ElementTypeFunction, "handle"},
		{"python class", lang.Python, "class Repository:", model.ElementTypeClass, "Repository"},
		{"python constant", lang.Python, "DEFAULT_TIMEOUT = 30", model.ElementTypeConstant, "DEFAULT_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var found bool
			for _, p := range r.Patterns(tt.language) {
				m := p.Expr.FindStringSubmatch(tt.line)
				if m == nil || p.Type != tt.wantType {
					continue
				}
				if p.Name(m) == tt.wantName {
					found = true
					break
				}
			}
			assert.True(t, found, "no %s pattern matched %q as %s", tt.language, tt.line, tt.wantType)
		})
	}
}

func TestBuiltinPatterns_DoNotMatchControlFlow(t *testing.T) {
	r := NewRegistry()

	for _, line := range []string{
		"if (ready) {",
		"for (const item of items) {",
		"return value;",
	} {
		for _, p := range r.Patterns(lang.TypeScript) {
			if p.Type == model.ElementTypeComponent {
				// The component pattern is a capitalization heuristic and
				// intentionally loose.
				continue
			}
			assert.Nil(t, p.Expr.FindStringSubmatch(line), "pattern %v matched %q", p.Expr, line)
		}
	}
}
