package detect

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveModulePath turns an import specifier into a root-relative file
// path. Non-relative specifiers (bare packages, scoped packages) pass
// through untouched. Relative specifiers resolve against the importing
// file's directory; extensionless results are probed against the candidate
// list under root, keeping the first file that exists. When no candidate
// exists the joined path is returned unverified, so external build setups
// still get a stable value.
func ResolveModulePath(root, fromFile, specifier string) string {
	if !strings.HasPrefix(specifier, ".") {
		return specifier
	}

	joined := filepath.ToSlash(filepath.Clean(filepath.Join(filepath.Dir(fromFile), specifier)))
	if hasScriptExtension(joined) {
		return joined
	}
	for _, candidate := range PossibleFilePaths(joined) {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(candidate)))
		if err == nil && !info.IsDir() {
			return candidate
		}
	}
	return joined
}

// PossibleFilePaths lists the files an extensionless module path may
// denote, in probe order: direct extensions first, then index files.
func PossibleFilePaths(modulePath string) []string {
	if hasScriptExtension(modulePath) {
		return []string{modulePath}
	}
	return []string{
		modulePath + ".ts",
		modulePath + ".tsx",
		modulePath + ".js",
		modulePath + ".jsx",
		modulePath + "/index.ts",
		modulePath + "/index.tsx",
		modulePath + "/index.js",
		modulePath + "/index.jsx",
	}
}

func hasScriptExtension(path string) bool {
	switch filepath.Ext(path) {
	case ".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs":
		return true
	}
	return false
}
