package detect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

func TestDetectExports_ESMForms(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/api.ts": `export function createServer() {}
export const MAX_CONNECTIONS = 100;
export default createServer;
export { helperA, helperB as aliasB };
export * from './models';
export * as validators from './validators';
`,
		"src/models.ts":     "export {}\n",
		"src/validators.ts": "export {}\n",
	})

	d := NewExportDetector(root)
	exports, err := d.DetectExports(context.Background(), "src/api.ts")
	require.NoError(t, err)
	require.Len(t, exports, 6)

	assert.Equal(t, []string{"createServer"}, exports[0].Specifiers)
	assert.Equal(t, model.ImportESM, exports[0].ExportType)
	assert.Equal(t, 1, exports[0].Line)

	assert.Equal(t, []string{"MAX_CONNECTIONS"}, exports[1].Specifiers)

	assert.Equal(t, []string{"default"}, exports[2].Specifiers)

	assert.Equal(t, []string{"helperA", "aliasB"}, exports[3].Specifiers, "renames expose the public name")
	assert.Empty(t, exports[3].Source)

	barrel := exports[4]
	assert.Equal(t, []string{"*"}, barrel.Specifiers)
	assert.True(t, barrel.IsBarrelExport)
	assert.Equal(t, "src/models.ts", barrel.Source)

	ns := exports[5]
	assert.Equal(t, []string{"validators"}, ns.Specifiers)
	assert.True(t, ns.IsBarrelExport)
	assert.Equal(t, "src/validators.ts", ns.Source)
}

func TestDetectExports_CommonJS(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/legacy.js": `function a() {}
module.exports = { a, b: helper };
exports.extra = 1;
`,
	})

	d := NewExportDetector(root)
	exports, err := d.DetectExports(context.Background(), "src/legacy.js")
	require.NoError(t, err)
	require.Len(t, exports, 2)

	assert.Equal(t, model.ImportCommonJS, exports[0].ExportType)
	assert.Equal(t, []string{"a", "b"}, exports[0].Specifiers)

	assert.Equal(t, []string{"extra"}, exports[1].Specifiers)
	assert.Equal(t, 3, exports[1].Line)
}

func TestDetectExports_DefaultAssignment(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/single.js": "module.exports = buildServer;\n",
	})

	d := NewExportDetector(root)
	exports, err := d.DetectExports(context.Background(), "src/single.js")
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, []string{"default"}, exports[0].Specifiers)
}

func TestDetectExports_NonScriptFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/mod.py": "def f():\n    pass\n",
	})

	d := NewExportDetector(root)
	exports, err := d.DetectExports(context.Background(), "src/mod.py")
	require.NoError(t, err)
	assert.Empty(t, exports)
}
