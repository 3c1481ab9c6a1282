package model

// DynamicSentinel is recorded as the module source when an import target is a
// non-literal expression that static analysis cannot resolve.
const DynamicSentinel = "<dynamic>"

// ImportType distinguishes module systems.
type ImportType string

const (
	ImportESM      ImportType = "esm"
	ImportCommonJS ImportType = "commonjs"
)

// ModuleImport is one static or dynamic module reference from a file.
type ModuleImport struct {
	// Source is the resolved relative path for internal modules, the raw
	// specifier for external packages, or DynamicSentinel.
	Source     string     `json:"source"`
	ImportType ImportType `json:"importType"`

	// Specifiers are the imported names in source order; "*" for a
	// namespace import, "default" for the default binding.
	Specifiers []string `json:"specifiers,omitempty"`

	Dynamic      bool `json:"dynamic,omitempty"`
	IsSideEffect bool `json:"isSideEffect,omitempty"`
	Line         int  `json:"line"`
}

// ModuleExport is one export declaration from a file.
type ModuleExport struct {
	// Source is set for re-exports (export ... from './x'), empty otherwise.
	Source     string     `json:"source,omitempty"`
	ExportType ImportType `json:"exportType"`

	// Specifiers are the exported names; "*" for barrel exports, "default"
	// for default exports.
	Specifiers []string `json:"specifiers,omitempty"`

	IsBarrelExport bool `json:"isBarrelExport,omitempty"`
	Line           int  `json:"line"`
}

// CallType classifies a call site.
type CallType string

const (
	CallFunction    CallType = "function"
	CallMethod      CallType = "method"
	CallConstructor CallType = "constructor"
	CallStatic      CallType = "static"
)

// CallExpression is one call site. Resolution to a declared element is
// best-effort name matching; the callee name is not guaranteed to map to a
// unique declaration.
type CallExpression struct {
	CallerFunction string `json:"callerFunction,omitempty"`
	CallerClass    string `json:"callerClass,omitempty"`

	CalleeFunction string `json:"calleeFunction"`
	CalleeObject   string `json:"calleeObject,omitempty"` // a.b.c() flattens to "a.b"

	CallType CallType `json:"callType"`
	IsAsync  bool     `json:"isAsync,omitempty"`
	IsNested bool     `json:"isNested,omitempty"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
}

// DynamicImportKind distinguishes how a dynamic import is consumed.
type DynamicImportKind string

const (
	DynamicAwait   DynamicImportKind = "await"   // await import(...)
	DynamicPromise DynamicImportKind = "promise" // import(...).then(...)
	DynamicBare    DynamicImportKind = "bare"    // import(...) used directly
)

// DynamicImport is one import() call site.
type DynamicImport struct {
	// ModulePath is the literal argument, a "prefix..." form for template
	// literals with a static prefix, or DynamicSentinel.
	ModulePath string            `json:"modulePath"`
	Kind       DynamicImportKind `json:"kind"`

	ContainingFunction string `json:"containingFunction,omitempty"`
	ContainingClass    string `json:"containingClass,omitempty"`

	// Symbols destructured from the resolved module; "*" when the whole
	// namespace is captured.
	Symbols []string `json:"symbols,omitempty"`

	Line int `json:"line"`
}
