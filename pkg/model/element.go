// Package model defines the code-reference data model - a language-agnostic
// representation of the elements, relationships, and dependency graph that the
// scanners and detectors produce. This is the stable surface the CLI, API, and
// report generators are built on.
package model

// ElementType classifies a discovered code construct.
type ElementType string

const (
	ElementTypeFunction  ElementType = "function"
	ElementTypeClass     ElementType = "class"
	ElementTypeComponent ElementType = "component"
	ElementTypeHook      ElementType = "hook"
	ElementTypeMethod    ElementType = "method"
	ElementTypeConstant  ElementType = "constant"
	ElementTypeInterface ElementType = "interface"
	ElementTypeType      ElementType = "type"
	ElementTypeDecorator ElementType = "decorator"
	ElementTypeProperty  ElementType = "property"
	ElementTypeUnknown   ElementType = "unknown"
)

// ElementData is one discovered code construct.
//
// (File, Name, Line) is not guaranteed globally unique - overloads and
// same-name nested scopes produce duplicates, and consumers must tolerate
// them. Records are immutable once a scan pass completes.
type ElementData struct {
	Type     ElementType `json:"type"`
	Name     string      `json:"name"` // methods are qualified as Class.method
	File     string      `json:"file"` // relative to the scan root
	Line     int         `json:"line"` // 1-indexed declaration line
	Exported bool        `json:"exported"`

	// Optional annotations filled by the detectors.
	Parameters []Parameter    `json:"parameters,omitempty"`
	Calls      []string       `json:"calls,omitempty"`
	Imports    []ModuleImport `json:"imports,omitempty"`
}

// Parameter describes one declared parameter.
type Parameter struct {
	Name           string `json:"name"`
	HasDefault     bool   `json:"hasDefault,omitempty"`
	IsRest         bool   `json:"isRest,omitempty"`
	IsDestructured bool   `json:"isDestructured,omitempty"`
}

// QualifiedMethodName returns the uniform method element name. Methods are
// always recorded class-qualified so that graph node IDs stay unambiguous.
func QualifiedMethodName(className, methodName string) string {
	if className == "" {
		return methodName
	}
	return className + "." + methodName
}
