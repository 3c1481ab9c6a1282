package model

import (
	"path/filepath"
	"sort"
)

// GraphBuilder assembles a DependencyGraph from scanned elements and the
// relationship records the detectors produce. Feed it with AddElements and
// the optional per-file relations, then call Build once; the result is a
// finished snapshot that is not mutated afterwards.
type GraphBuilder struct {
	projectPath string
	elements    []ElementData

	fileExports    map[string][]ModuleExport
	dynamicImports map[string][]DynamicImport
}

// NewGraphBuilder creates a builder for the given project root.
func NewGraphBuilder(projectPath string) *GraphBuilder {
	return &GraphBuilder{
		projectPath:    projectPath,
		fileExports:    make(map[string][]ModuleExport),
		dynamicImports: make(map[string][]DynamicImport),
	}
}

// ProjectPath returns the project root the builder was created for.
func (b *GraphBuilder) ProjectPath() string {
	return b.projectPath
}

// AddElements appends scanned elements. Element order is preserved into the
// node and edge construction order.
func (b *GraphBuilder) AddElements(elements []ElementData) {
	b.elements = append(b.elements, elements...)
}

// AddFileExports records a file's export declarations. Re-exports produce
// reexports edges; the flattened specifier list becomes the file node's
// export surface.
func (b *GraphBuilder) AddFileExports(file string, exports []ModuleExport) {
	b.fileExports[file] = append(b.fileExports[file], exports...)
}

// AddDynamicImports records a file's dynamic import sites. Each destructured
// symbol produces a depends-on edge from the importing element to the
// symbol's element node; a namespace capture produces one edge to the module
// file node instead.
func (b *GraphBuilder) AddDynamicImports(file string, imports []DynamicImport) {
	b.dynamicImports[file] = append(b.dynamicImports[file], imports...)
}

// Build assembles the graph:
//
//   - one file node per distinct element file,
//   - one element node per element (ID element:<file>:<name>),
//   - a containment edge (typed imports) from each file node to each of its
//     element nodes,
//   - an imports edge from each element carrying module imports to the
//     imported module's file node (dangling targets allowed for externals),
//   - reexports edges between file nodes for barrel re-exports,
//   - calls edges only where the same-file target element node exists;
//     unresolved call targets are dropped silently,
//   - depends-on edges for dynamically imported symbols.
func (b *GraphBuilder) Build() *DependencyGraph {
	g := NewDependencyGraph()

	// Nodes and containment edges first so call resolution sees every
	// element regardless of declaration order.
	for _, el := range b.elements {
		fileID := FileNodeID(el.File)
		if !g.HasNode(fileID) {
			g.AddNode(GraphNode{
				ID:    fileID,
				Type:  NodeFile,
				Label: filepath.Base(el.File),
				Path:  el.File,
				Metadata: NodeMetadata{
					Exports: flattenExports(b.fileExports[el.File]),
				},
			})
		}

		elID := ElementNodeID(el.File, el.Name)
		g.AddNode(GraphNode{
			ID:          elID,
			Type:        NodeElement,
			Label:       el.Name,
			Path:        el.File,
			ElementType: el.Type,
			Metadata: NodeMetadata{
				Line:     el.Line,
				Exported: el.Exported,
			},
		})

		g.AddEdge(GraphEdge{
			Type:   EdgeImports,
			Source: fileID,
			Target: elID,
		})
	}

	for _, el := range b.elements {
		elID := ElementNodeID(el.File, el.Name)

		for _, imp := range el.Imports {
			g.AddEdge(GraphEdge{
				Type:   EdgeImports,
				Source: elID,
				Target: FileNodeID(imp.Source),
				Metadata: EdgeMetadata{
					Source:     imp.Source,
					Specifiers: imp.Specifiers,
				},
			})
		}

		for _, callee := range el.Calls {
			targetID := ElementNodeID(el.File, callee)
			if targetID == elID || !g.HasNode(targetID) {
				continue
			}
			g.AddEdge(GraphEdge{
				Type:   EdgeCalls,
				Source: elID,
				Target: targetID,
			})
		}
	}

	// Barrel files may declare no elements of their own, so re-export edges
	// come from the recorded exports, not from the element list.
	for _, file := range sortedKeys(b.fileExports) {
		for _, ex := range b.fileExports[file] {
			if ex.Source == "" {
				continue
			}
			g.AddEdge(GraphEdge{
				Type:   EdgeReexports,
				Source: FileNodeID(file),
				Target: FileNodeID(ex.Source),
				Metadata: EdgeMetadata{
					Source:     ex.Source,
					Specifiers: ex.Specifiers,
				},
			})
		}
	}

	for _, file := range sortedKeys(b.dynamicImports) {
		for _, dyn := range b.dynamicImports[file] {
			if dyn.ContainingFunction == "" {
				continue
			}
			sourceID := ElementNodeID(file, QualifiedMethodName(dyn.ContainingClass, dyn.ContainingFunction))
			if !g.HasNode(sourceID) {
				// Fall back to the bare function name.
				sourceID = ElementNodeID(file, dyn.ContainingFunction)
			}
			if len(dyn.Symbols) == 0 || captureWholeNamespace(dyn.Symbols) {
				g.AddEdge(GraphEdge{
					Type:     EdgeDependsOn,
					Source:   sourceID,
					Target:   FileNodeID(dyn.ModulePath),
					Metadata: EdgeMetadata{Source: dyn.ModulePath},
				})
				continue
			}
			for _, sym := range dyn.Symbols {
				g.AddEdge(GraphEdge{
					Type:     EdgeDependsOn,
					Source:   sourceID,
					Target:   ElementNodeID(dyn.ModulePath, sym),
					Metadata: EdgeMetadata{Source: dyn.ModulePath},
				})
			}
		}
	}

	return g
}

// flattenExports collects the distinct specifier names across a file's
// export declarations, dropping empties.
func flattenExports(exports []ModuleExport) []string {
	if len(exports) == 0 {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, ex := range exports {
		for _, spec := range ex.Specifiers {
			if spec == "" {
				continue
			}
			if _, ok := seen[spec]; ok {
				continue
			}
			seen[spec] = struct{}{}
			out = append(out, spec)
		}
	}
	return out
}

func captureWholeNamespace(symbols []string) bool {
	for _, s := range symbols {
		if s == "*" {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
