package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

func issueCodes(r *ValidationReport) []string {
	codes := make([]string, 0, len(r.Issues))
	for _, is := range r.Issues {
		codes = append(codes, is.Code)
	}
	return codes
}

func TestValidate_CleanIndex(t *testing.T) {
	doc := testIndex()
	r := Validate(doc, nil, fixedTime)

	assert.True(t, r.Valid)
	assert.Zero(t, r.Errors)
	assert.Zero(t, r.Warnings, "issues: %v", r.Issues)
	assert.Equal(t, "2026-03-14T09:30:00Z", r.GeneratedAt)
	assert.Equal(t, "/projects/demo", r.ProjectPath)
}

func TestValidate_StructuralErrors(t *testing.T) {
	doc := testIndex()
	doc.Elements = append(doc.Elements,
		model.ElementData{Type: model.ElementTypeFunction, Name: "", File: "src/auth.ts", Line: 8},
		model.ElementData{Type: model.ElementTypeFunction, Name: "ghost", File: "", Line: 3},
		model.ElementData{Type: model.ElementTypeFunction, Name: "zero", File: "src/auth.ts", Line: 0},
	)

	r := Validate(doc, nil, fixedTime)

	assert.False(t, r.Valid)
	assert.Equal(t, 3, r.Errors)
	codes := issueCodes(r)
	assert.Contains(t, codes, "empty-name")
	assert.Contains(t, codes, "empty-file")
	assert.Contains(t, codes, "invalid-line")
}

func TestValidate_DuplicateElements(t *testing.T) {
	doc := testIndex()
	doc.Elements = append(doc.Elements,
		model.ElementData{Type: model.ElementTypeFunction, Name: "login", File: "src/auth.ts", Line: 40})

	r := Validate(doc, nil, fixedTime)

	assert.True(t, r.Valid, "duplicates are tolerated, not fatal")
	require.Equal(t, 1, r.Warnings)
	assert.Equal(t, "duplicate-element", r.Issues[0].Code)
	assert.Equal(t, model.ElementNodeID("src/auth.ts", "login"), r.Issues[0].NodeID)
}

func TestValidate_UnresolvedQualifiedCall(t *testing.T) {
	doc := testIndex()
	doc.Elements[1].Calls = []string{"Session.refresh", "console"}

	r := Validate(doc, nil, fixedTime)

	require.Equal(t, 1, r.Warnings, "bare names are expected to escape the file, qualified ones are not")
	assert.Equal(t, "unresolved-call", r.Issues[0].Code)
	assert.Contains(t, r.Issues[0].Message, "Session.refresh")
}

func TestValidate_MissingImportTarget(t *testing.T) {
	doc := testIndex()
	doc.Elements[0].Imports = append(doc.Elements[0].Imports,
		model.ModuleImport{Source: "src/deleted.ts", ImportType: model.ImportESM, Specifiers: []string{"x"}, Line: 2},
		model.ModuleImport{Source: "lodash", ImportType: model.ImportESM, Specifiers: []string{"chunk"}, Line: 3})

	r := Validate(doc, nil, fixedTime)

	require.Equal(t, 1, r.Warnings, "external specifiers never count as missing")
	assert.Equal(t, "missing-import-target", r.Issues[0].Code)
	assert.Contains(t, r.Issues[0].Message, "src/deleted.ts")
}

func TestValidate_UnresolvableDynamicImports(t *testing.T) {
	doc := testIndex()
	doc.DynamicImports["src/main.ts"] = append(doc.DynamicImports["src/main.ts"],
		model.DynamicImport{ModulePath: model.DynamicSentinel, Kind: model.DynamicBare, ContainingFunction: "main", Line: 9},
		model.DynamicImport{ModulePath: "./locales/...", Kind: model.DynamicAwait, ContainingFunction: "main", Line: 10})

	r := Validate(doc, nil, fixedTime)

	assert.True(t, r.Valid)
	assert.Equal(t, 2, r.Warnings)
	for _, is := range r.Issues {
		assert.Equal(t, "unresolved-dynamic-import", is.Code)
		assert.Equal(t, "src/main.ts", is.File)
	}
}

func TestValidate_DanglingDependsOnSource(t *testing.T) {
	doc := testIndex()
	g := doc.BuildGraph()
	g.AddEdge(model.GraphEdge{
		Type:   model.EdgeDependsOn,
		Source: model.ElementNodeID("src/phantom.ts", "run"),
		Target: model.FileNodeID("src/auth.ts"),
	})

	r := Validate(doc, g, fixedTime)

	require.Equal(t, 1, r.Warnings)
	assert.Equal(t, "dangling-source", r.Issues[0].Code)
	assert.Equal(t, model.ElementNodeID("src/phantom.ts", "run"), r.Issues[0].NodeID)
}

func TestValidationReport_Encode(t *testing.T) {
	doc := testIndex()
	doc.Elements = append(doc.Elements,
		model.ElementData{Type: model.ElementTypeFunction, Name: "", File: "src/auth.ts", Line: 8})

	data, err := Validate(doc, nil, fixedTime).Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"valid": false`)
	assert.Contains(t, string(data), `"code": "empty-name"`)
}
