package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// testGraph builds a graph with a call edge, an external module import, and
// a barrel re-export whose source file has no node of its own.
func testGraph() *model.DependencyGraph {
	b := model.NewGraphBuilder("/projects/demo")
	b.AddElements([]model.ElementData{
		{
			Type: model.ElementTypeFunction, Name: "login", File: "src/auth.ts", Line: 5, Exported: true,
			Calls: []string{"verify"},
			Imports: []model.ModuleImport{
				{Source: "lodash", ImportType: model.ImportESM, Specifiers: []string{"chunk"}, Line: 1},
			},
		},
		{Type: model.ElementTypeFunction, Name: "verify", File: "src/auth.ts", Line: 12},
	})
	b.AddFileExports("src/index.ts", []model.ModuleExport{
		{Source: "src/auth.ts", ExportType: model.ImportESM, Specifiers: []string{"*"}, IsBarrelExport: true, Line: 1},
	})
	return b.Build()
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	m, err := r.Get("mermaid")
	require.NoError(t, err)
	assert.Equal(t, ".mmd", m.FileExtension())

	d, err := r.Get("dot")
	require.NoError(t, err)
	assert.Equal(t, ".dot", d.FileExtension())

	_, err = r.Get("svg")
	assert.ErrorContains(t, err, "renderer not found")

	assert.Equal(t, []string{"dot", "mermaid"}, r.List())
}

func TestMermaid_Render(t *testing.T) {
	out, err := (&MermaidRenderer{}).Render(testGraph(), Options{Title: "demo"})
	require.NoError(t, err)

	assert.Contains(t, out, "title: demo")
	assert.Contains(t, out, "flowchart LR")

	// Shapes per node kind.
	assert.Contains(t, out, `(["login"]):::element`)
	assert.Contains(t, out, `["auth.ts"]:::file`)
	assert.Contains(t, out, `{{"lodash"}}:::external`, "dangling import target is drawn as external")
	assert.Contains(t, out, `{{"src/index.ts"}}:::external`, "barrel file without a node is drawn as external")

	assert.Contains(t, out, "-->|calls|")
	assert.Contains(t, out, "-.->|reexports|")
	assert.Contains(t, out, "classDef file")
}

func TestMermaid_EdgeFilter(t *testing.T) {
	out, err := (&MermaidRenderer{}).Render(testGraph(), Options{Edges: []model.EdgeType{model.EdgeCalls}})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "|calls|"))
	assert.NotContains(t, out, "reexports")
	assert.NotContains(t, out, "lodash", "filtered edges do not pull in their endpoints")
}

func TestMermaid_MaxNodes(t *testing.T) {
	out, err := (&MermaidRenderer{}).Render(testGraph(), Options{MaxNodes: 2})
	require.NoError(t, err)

	assert.Contains(t, out, "%% 3 nodes omitted")
	// The two element IDs sort first; only the call edge survives the cap.
	assert.Contains(t, out, `(["login"])`)
	assert.Contains(t, out, `(["verify"])`)
	assert.NotContains(t, out, "auth.ts")
	assert.Contains(t, out, "-->|calls|")
}

func TestMermaid_EscapesLabels(t *testing.T) {
	g := model.NewDependencyGraph()
	g.AddNode(model.GraphNode{ID: "file:a", Type: model.NodeFile, Label: `say "hi"`, Path: "a"})

	out, err := (&MermaidRenderer{}).Render(g, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, `["say #quot;hi#quot;"]`)
}

func TestDOT_Render(t *testing.T) {
	out, err := (&DOTRenderer{}).Render(testGraph(), Options{Title: "demo"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "digraph dependencies {\n"))
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, `label="demo";`)
	assert.Contains(t, out, "rankdir=LR;")

	assert.Contains(t, out, `"file:src/auth.ts" [label="auth.ts", shape=folder`)
	assert.Contains(t, out, `"element:src/auth.ts:login" [label="login", shape=box`)
	assert.Contains(t, out, `"file:lodash" [label="lodash", shape=ellipse, style=dashed`)

	assert.Contains(t, out, `"element:src/auth.ts:login" -> "element:src/auth.ts:verify" [label="calls", color=darkgreen];`)
	assert.Contains(t, out, `"file:src/index.ts" -> "file:src/auth.ts" [label="reexports", style=dashed];`)
}

func TestDOT_TopDownDirection(t *testing.T) {
	out, err := (&DOTRenderer{}).Render(testGraph(), Options{Direction: "TD"})
	require.NoError(t, err)
	assert.NotContains(t, out, "rankdir")
}

func TestRender_Deterministic(t *testing.T) {
	for _, name := range []string{"mermaid", "dot"} {
		re, err := NewRegistry().Get(name)
		require.NoError(t, err)
		a, err := re.Render(testGraph(), Options{})
		require.NoError(t, err)
		b, err := re.Render(testGraph(), Options{})
		require.NoError(t, err)
		assert.Equal(t, a, b, name)
	}
}
