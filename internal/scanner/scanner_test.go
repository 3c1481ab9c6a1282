package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree writes files (slash-separated relative paths) under a temp dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return dir
}

func TestScan_FindsExportedAndUnexported(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"util.ts": "export function parseConfig(raw: string) {\n  return JSON.parse(raw);\n}\n\nfunction helper() {\n  return 1;\n}\n",
	})

	s := New(nil)
	res, err := s.Scan(context.Background(), dir, []string{"ts"}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Elements, 2)

	parse := findElement(t, res.Elements, "parseConfig")
	assert.True(t, parse.Exported)
	assert.Equal(t, "util.ts", parse.File)
	assert.Equal(t, 1, parse.Line)

	helper := findElement(t, res.Elements, "helper")
	assert.False(t, helper.Exported)
	assert.Equal(t, 5, helper.Line)

	assert.Equal(t, 1, res.Stats.TotalFiles)
	assert.Equal(t, 1, res.Stats.ScannedFiles)
	assert.Equal(t, 0, res.Stats.FailedFiles)
	assert.Equal(t, 2, res.Stats.TotalElements)
	assert.Empty(t, res.Errors)
}

func TestScan_SkipsVirtualEnv(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"src/app.py":            "def main():\n    run()\n\nAPP_NAME = \"demo\"\n",
		".venv/lib/requests.py": "def get(url):\n    return None\n",
	})

	s := New(nil)
	res, err := s.Scan(context.Background(), dir, []string{"py"}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats.TotalFiles, ".venv must be pruned before enumeration")
	require.NotEmpty(t, res.Elements)
	for _, el := range res.Elements {
		assert.Equal(t, "src/app.py", el.File)
	}
	findElement(t, res.Elements, "main")
	findElement(t, res.Elements, "APP_NAME")
}

func TestScan_MissingRootFails(t *testing.T) {
	s := New(nil)
	_, err := s.Scan(context.Background(), filepath.Join(t.TempDir(), "absent"), nil, DefaultOptions())
	require.Error(t, err)
}

func TestScan_RegexFallbackOnBrokenFile(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"broken.js": "function ok() {\n  return 1;\n}\n\nfunction broken( {\n",
	})

	s := New(nil)
	res, err := s.Scan(context.Background(), dir, []string{"js"}, DefaultOptions())
	require.NoError(t, err)

	// The regex pass still finds both declarations.
	assert.Equal(t, 1, res.Stats.ScannedFiles)
	assert.Empty(t, res.Errors)
	findElement(t, res.Elements, "ok")
	findElement(t, res.Elements, "broken")
}

func TestScan_FallbackDisabledRecordsError(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"broken.js": "function broken( {\n",
		"fine.js":   "function fine() {}\n",
	})

	opts := DefaultOptions()
	opts.RegexFallback = false

	s := New(nil)
	res, err := s.Scan(context.Background(), dir, []string{"js"}, opts)
	require.NoError(t, err, "one bad file must not abort the scan")

	assert.Equal(t, 1, res.Stats.ScannedFiles)
	assert.Equal(t, 1, res.Stats.FailedFiles)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "broken.js", res.Errors[0].Path)
	require.Len(t, res.Elements, 1)
	assert.Equal(t, "fine", res.Elements[0].Name)
}

func TestScan_ExplicitEmptyExcludeList(t *testing.T) {
	files := map[string]string{
		"app.js":                    "function app() {}\n",
		"node_modules/pkg/index.js": "function vendored() {}\n",
	}

	dir := writeTree(t, files)
	s := New(nil)

	res, err := s.Scan(context.Background(), dir, []string{"js"}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.TotalFiles, "defaults exclude node_modules")

	opts := DefaultOptions()
	opts.Exclude = []string{} // non-nil empty list disables the defaults
	res, err = s.Scan(context.Background(), dir, []string{"js"}, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.TotalFiles)
	findElement(t, res.Elements, "vendored")
}

func TestScan_NonRecursive(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"top.js":        "function top() {}\n",
		"sub/nested.js": "function nested() {}\n",
	})

	opts := DefaultOptions()
	opts.Recursive = false

	res, err := New(nil).Scan(context.Background(), dir, []string{"js"}, opts)
	require.NoError(t, err)
	require.Len(t, res.Elements, 1)
	assert.Equal(t, "top", res.Elements[0].Name)
}

func TestScan_IncludePatterns(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.ts":          "function a() {}\n",
		"a.test.ts":     "function aTest() {}\n",
		"sub/b.test.ts": "function bTest() {}\n",
		"sub/b.ts":      "function b() {}\n",
	})

	opts := DefaultOptions()
	opts.Include = []string{"*.test.ts"}

	res, err := New(nil).Scan(context.Background(), dir, []string{"ts"}, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.TotalFiles)
	findElement(t, res.Elements, "aTest")
	findElement(t, res.Elements, "bTest")
}

func TestScan_RepeatUsesCache(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"consts.ts": "export const LIMIT_MAX = 9;\n",
	})

	s := New(nil)
	first, err := s.Scan(context.Background(), dir, []string{"ts"}, DefaultOptions())
	require.NoError(t, err)

	// Rewrite the file; the cached result must still be served.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "consts.ts"), []byte("export const OTHER_MAX = 1;\n"), 0o644))

	second, err := s.Scan(context.Background(), dir, []string{"ts"}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, first.Elements, second.Elements)

	s.ClearCache()
	third, err := s.Scan(context.Background(), dir, []string{"ts"}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, third.Elements, 1)
	assert.Equal(t, "OTHER_MAX", third.Elements[0].Name)
}

func manyFiles(n int) map[string]string {
	files := make(map[string]string, n)
	for i := 0; i < n; i++ {
		files[fmt.Sprintf("f%02d.js", i)] = fmt.Sprintf("export function handler%02d() {}\n", i)
	}
	return files
}

func scannedNames(t *testing.T, res *ScanResult) []string {
	t.Helper()
	names := elementNames(res.Elements)
	sort.Strings(names)
	return names
}

func TestScan_ParallelMatchesSequential(t *testing.T) {
	dir := writeTree(t, manyFiles(20))

	seq, err := New(nil).Scan(context.Background(), dir, []string{"js"}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, seq.Elements, 20)

	opts := DefaultOptions()
	opts.Parallel = true
	opts.Workers = 4

	par, err := New(nil).Scan(context.Background(), dir, []string{"js"}, opts)
	require.NoError(t, err)

	assert.Equal(t, scannedNames(t, seq), scannedNames(t, par))
	assert.Equal(t, 20, par.Stats.ScannedFiles)
	assert.Equal(t, 0, par.Stats.FailedFiles)
}

func TestScan_InvalidWorkerCountFallsBack(t *testing.T) {
	dir := writeTree(t, manyFiles(20))

	opts := DefaultOptions()
	opts.Parallel = true
	opts.Workers = 0

	res, err := New(nil).Scan(context.Background(), dir, []string{"js"}, opts)
	require.NoError(t, err)
	assert.Len(t, res.Elements, 20)
}

func TestScanBatch_CancelledContext(t *testing.T) {
	dir := writeTree(t, map[string]string{"x.js": "function x() {}\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(nil)
	br := s.scanBatch(ctx, dir, []string{"x.js"}, DefaultOptions())
	assert.Equal(t, 1, br.failed)
	assert.Empty(t, br.elements)
	require.Len(t, br.errors, 1)
	assert.Equal(t, "x.js", br.errors[0].Path)
}

func TestDemoteBatch(t *testing.T) {
	br := demoteBatch([]string{"a.js", "b.js"}, context.DeadlineExceeded)
	assert.Equal(t, 2, br.failed)
	assert.Equal(t, 0, br.scanned)
	assert.Empty(t, br.elements)
	require.Len(t, br.errors, 2)
	assert.Contains(t, br.errors[0].Message, "batch aborted")
}

func TestPartition(t *testing.T) {
	files := make([]string, 10)
	for i := range files {
		files[i] = fmt.Sprintf("f%d", i)
	}

	batches := partition(files, 3)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 4)
	assert.Len(t, batches[1], 4)
	assert.Len(t, batches[2], 2)

	var flat []string
	for _, b := range batches {
		flat = append(flat, b...)
	}
	assert.Equal(t, files, flat, "partition preserves order")

	assert.Len(t, partition(files, 1), 1)
	assert.Len(t, partition(files, 100), 10)
	assert.Len(t, partition(files, 0), 1)
}
