package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveModulePath(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/util.ts":                 "export {}\n",
		"src/components/index.tsx":    "export {}\n",
		"src/shared/api.js":           "module.exports = {};\n",
		"src/deep/nested/consumer.ts": "export {}\n",
	})

	cases := []struct {
		from      string
		specifier string
		want      string
	}{
		{"src/a.ts", "lodash", "lodash"},
		{"src/a.ts", "@org/pkg", "@org/pkg"},
		{"src/a.ts", "./util.ts", "src/util.ts"},
		{"src/a.ts", "./util", "src/util.ts"},
		{"src/a.ts", "./components", "src/components/index.tsx"},
		{"src/deep/b.ts", "../shared/api", "src/shared/api.js"},
		{"src/deep/nested/consumer.ts", "../../util", "src/util.ts"},
		{"src/a.ts", "./ghost", "src/ghost"},
	}
	for _, tc := range cases {
		got := ResolveModulePath(root, tc.from, tc.specifier)
		assert.Equal(t, tc.want, got, "%s from %s", tc.specifier, tc.from)
	}
}

func TestPossibleFilePaths(t *testing.T) {
	assert.Equal(t, []string{"src/x.ts"}, PossibleFilePaths("src/x.ts"), "extensions short-circuit")

	candidates := PossibleFilePaths("src/x")
	assert.Len(t, candidates, 8)
	assert.Equal(t, "src/x.ts", candidates[0], "direct extensions probe before index files")
	assert.Contains(t, candidates, "src/x/index.tsx")
}
