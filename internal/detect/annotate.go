package detect

import (
	"context"

	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// Annotation carries the per-file relationship records gathered while
// annotating an element list: export declarations and dynamic-import sites
// keyed by file (the graph builder's inputs), plus the files whose
// detection failed. Failed files keep their scan-time elements untouched.
type Annotation struct {
	Exports        map[string][]model.ModuleExport  `json:"exports,omitempty"`
	DynamicImports map[string][]model.DynamicImport `json:"dynamicImports,omitempty"`
	Failed         map[string]string                `json:"failed,omitempty"`
}

// Annotator runs the relationship detectors over a scanned element list,
// filling each element's Calls and Imports and collecting the per-file
// records that do not belong to any single element. All four detectors
// share the annotator's lifetime, so repeated passes reuse their caches.
type Annotator struct {
	calls   *CallDetector
	imports *ImportDetector
	exports *ExportDetector
	dynamic *DynamicImportDetector
}

// NewAnnotator returns an annotator reading files relative to root.
func NewAnnotator(root string) *Annotator {
	return &Annotator{
		calls:   NewCallDetector(root),
		imports: NewImportDetector(root),
		exports: NewExportDetector(root),
		dynamic: NewDynamicImportDetector(root),
	}
}

// ClearCache drops all four detectors' per-file caches.
func (a *Annotator) ClearCache() {
	a.calls.ClearCache()
	a.imports.ClearCache()
	a.exports.ClearCache()
	a.dynamic.ClearCache()
}

// Annotate enriches elements in place and returns the file-level records.
// files is the full scanned file list; export-only files (barrels) declare
// no elements but still contribute re-export records, so callers should
// pass the scan's file list rather than nil. Files appearing only in
// elements are covered either way. One file failing never aborts the pass.
func (a *Annotator) Annotate(ctx context.Context, files []string, elements []model.ElementData) *Annotation {
	ann := &Annotation{
		Exports:        make(map[string][]model.ModuleExport),
		DynamicImports: make(map[string][]model.DynamicImport),
		Failed:         make(map[string]string),
	}

	byFile := make(map[string][]*model.ElementData)
	order := make([]string, 0, len(files))
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if !seen[f] {
			seen[f] = true
			order = append(order, f)
		}
	}
	for i := range elements {
		el := &elements[i]
		if !seen[el.File] {
			seen[el.File] = true
			order = append(order, el.File)
		}
		byFile[el.File] = append(byFile[el.File], el)
	}

	for _, file := range order {
		els := byFile[file]
		a.annotateCalls(ctx, file, els, ann)
		a.annotateImports(ctx, file, els, ann)

		if exports, err := a.exports.DetectExports(ctx, file); err != nil {
			ann.fail(file, err)
		} else if len(exports) > 0 {
			ann.Exports[file] = exports
		}
		if dynamics, err := a.dynamic.DetectDynamicImports(ctx, file); err != nil {
			ann.fail(file, err)
		} else if len(dynamics) > 0 {
			ann.DynamicImports[file] = dynamics
		}
	}
	return ann
}

// annotateCalls attributes call sites to their enclosing elements. Callers
// are matched under the qualified Class.method name first, the bare
// function name second; top-level call sites have no owning element and are
// skipped. this-calls and same-file static calls record the qualified
// callee so graph resolution can find the method element. Callees the scan
// pass already recorded on an element are kept, never appended twice.
func (a *Annotator) annotateCalls(ctx context.Context, file string, els []*model.ElementData, ann *Annotation) {
	calls, err := a.calls.DetectCalls(ctx, file)
	if err != nil {
		ann.fail(file, err)
		return
	}
	if len(calls) == 0 || len(els) == 0 {
		return
	}

	byName := make(map[string]*model.ElementData, len(els))
	classes := make(map[string]bool)
	for _, el := range els {
		if _, ok := byName[el.Name]; !ok {
			byName[el.Name] = el
		}
		if el.Type == model.ElementTypeClass {
			classes[el.Name] = true
		}
	}

	recorded := make(map[*model.ElementData]map[string]bool)
	for _, el := range els {
		if len(el.Calls) == 0 {
			continue
		}
		recorded[el] = make(map[string]bool, len(el.Calls))
		for _, callee := range el.Calls {
			recorded[el][callee] = true
		}
	}
	for _, call := range calls {
		if call.CallerFunction == "" || call.CalleeFunction == "" {
			continue
		}
		owner := byName[model.QualifiedMethodName(call.CallerClass, call.CallerFunction)]
		if owner == nil {
			owner = byName[call.CallerFunction]
		}
		if owner == nil {
			continue
		}

		callee := call.CalleeFunction
		switch {
		case call.CalleeObject == "this" && call.CallerClass != "":
			callee = model.QualifiedMethodName(call.CallerClass, callee)
		case classes[call.CalleeObject]:
			callee = model.QualifiedMethodName(call.CalleeObject, callee)
		}

		if recorded[owner] == nil {
			recorded[owner] = make(map[string]bool)
		}
		if recorded[owner][callee] {
			continue
		}
		recorded[owner][callee] = true
		owner.Calls = append(owner.Calls, callee)
	}
}

// annotateImports attaches a file's module imports to the elements that use
// them: an import goes to every element calling one of its named
// specifiers. Imports with no call-site evidence (defaults, namespaces,
// side effects, types) attach to the file's first element so the graph
// keeps the edge. Files without elements contribute nothing here; their
// exports still flow through the file-level records.
func (a *Annotator) annotateImports(ctx context.Context, file string, els []*model.ElementData, ann *Annotation) {
	imports, err := a.imports.DetectImports(ctx, file)
	if err != nil {
		ann.fail(file, err)
		return
	}
	if len(imports) == 0 || len(els) == 0 {
		return
	}

	callers := make(map[string][]*model.ElementData)
	for _, el := range els {
		for _, callee := range el.Calls {
			callers[callee] = append(callers[callee], el)
		}
	}

	for _, imp := range imports {
		var owners []*model.ElementData
		ownerSeen := make(map[*model.ElementData]bool)
		for _, spec := range imp.Specifiers {
			if spec == "default" || spec == "*" {
				continue
			}
			for _, el := range callers[spec] {
				if !ownerSeen[el] {
					ownerSeen[el] = true
					owners = append(owners, el)
				}
			}
		}
		if len(owners) == 0 {
			owners = els[:1]
		}
		for _, el := range owners {
			el.Imports = append(el.Imports, imp)
		}
	}
}

func (ann *Annotation) fail(file string, err error) {
	if _, ok := ann.Failed[file]; !ok {
		ann.Failed[file] = err.Error()
	}
}
