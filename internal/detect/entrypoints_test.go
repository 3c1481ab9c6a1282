package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

func TestDetectEntryPoints(t *testing.T) {
	elements := []model.ElementData{
		{Type: model.ElementTypeFunction, Name: "handleSubmit", File: "src/forms.ts"},
		{Type: model.ElementTypeFunction, Name: "registerUser", File: "src/users.ts"},
		{Type: model.ElementTypeFunction, Name: "main", File: "src/start.ts"},
		{Type: model.ElementTypeMethod, Name: "App.run", File: "src/app_class.ts"},
		{Type: model.ElementTypeFunction, Name: "ServeCommand", File: "src/serve.ts"},
		{Type: model.ElementTypeComponent, Name: "Dashboard", File: "app.tsx"},
		{Type: model.ElementTypeHook, Name: "useData", File: "src/hooks.ts"},
		{Type: model.ElementTypeFunction, Name: "startWorker", File: "src/worker.ts"},
		{Type: model.ElementTypeConstant, Name: "API_URL", File: "index.ts"},
	}

	entries, stats := DetectEntryPoints(elements)
	require.Len(t, entries, 6)

	names := make(map[string]bool, len(entries))
	for _, el := range entries {
		names[el.Name] = true
	}
	for _, want := range []string{"handleSubmit", "registerUser", "main", "App.run", "ServeCommand", "Dashboard"} {
		assert.True(t, names[want], "expected entry point %s", want)
	}
	assert.False(t, names["useData"])
	assert.False(t, names["startWorker"])
	assert.False(t, names["API_URL"], "constants are not callable entry points")

	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 5, stats.ByMethod["name"])
	assert.Equal(t, 1, stats.ByMethod["file"])
	assert.Equal(t, 4, stats.ByType[model.ElementTypeFunction])
	assert.Equal(t, 1, stats.ByType[model.ElementTypeMethod])
	assert.Equal(t, 1, stats.ByType[model.ElementTypeComponent])
}

func TestDetectEntryPoints_Empty(t *testing.T) {
	entries, stats := DetectEntryPoints(nil)
	assert.Empty(t, entries)
	assert.Equal(t, 0, stats.Total)
}

func TestMatchesEntryName(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"handleClick", true},
		{"handler", false}, // no uppercase after the prefix
		{"registerRoutes", true},
		{"main", true},
		{"bootstrap", true},
		{"Server.init", true},
		{"DeployCommand", true},
		{"errorHandler", true},
		{"process", false},
		{"useHandle", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchesEntryName(tc.name), "name %s", tc.name)
	}
}
