package scanner

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/srwlli/dashboard-sub004/internal/lang"
	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// ASTScanner extracts elements by parsing files into syntax trees and
// walking the declarations. It is more precise than pattern matching and is
// the primary mode; the regex scanner covers files it cannot parse.
//
// The per-path cache belongs to this instance. ScanFile returns the cached
// slice itself on a repeat call, so callers comparing results across calls
// see the same backing array. Not safe for concurrent use.
type ASTScanner struct {
	cache map[string][]model.ElementData
}

// NewASTScanner returns a scanner with an empty cache.
func NewASTScanner() *ASTScanner {
	return &ASTScanner{cache: make(map[string][]model.ElementData)}
}

// ScanFile reads and parses one file, returning its elements. Results are
// cached per path; the path is recorded as-is in each element.
func (s *ASTScanner) ScanFile(ctx context.Context, path string) ([]model.ElementData, error) {
	if cached, ok := s.cache[path]; ok {
		return cached, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	elements, err := s.ParseElements(ctx, content, path)
	if err != nil {
		return nil, err
	}
	s.cache[path] = elements
	return elements, nil
}

// ScanFiles scans a list of files, collecting per-file failures instead of
// stopping on them.
func (s *ASTScanner) ScanFiles(ctx context.Context, paths []string) *ScanResult {
	start := time.Now()
	result := &ScanResult{}
	result.Stats.TotalFiles = len(paths)

	for _, path := range paths {
		elements, err := s.ScanFile(ctx, path)
		if err != nil {
			result.Errors = append(result.Errors, FileError{Path: path, Message: err.Error()})
			result.Stats.FailedFiles++
			continue
		}
		result.Elements = append(result.Elements, elements...)
		result.Stats.ScannedFiles++
	}

	result.Stats.TotalElements = len(result.Elements)
	result.Stats.Duration = time.Since(start)
	return result
}

// ClearCache drops all cached per-file results.
func (s *ASTScanner) ClearCache() {
	s.cache = make(map[string][]model.ElementData)
}

// ParseElements parses source content and extracts its elements. The path
// selects the grammar dialect and is recorded in each element. A tree whose
// root contains syntax errors is reported as an error so the caller can
// fall back to regex scanning.
func (s *ASTScanner) ParseElements(ctx context.Context, content []byte, path string) ([]model.ElementData, error) {
	language, ok := lang.ForFile(path)
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang.GrammarForFile(path))
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return nil, fmt.Errorf("syntax errors in %s", path)
	}

	w := &walker{src: content, path: path, language: language}
	if language == lang.Python {
		w.walkModule(root)
	} else {
		w.exported = collectExportedNames(root, content)
		w.walkProgram(root)
	}
	return w.elements, nil
}

// walker accumulates elements during one file's tree walk.
type walker struct {
	src      []byte
	path     string
	language lang.Language
	exported map[string]bool
	elements []model.ElementData
}

func (w *walker) add(el model.ElementData) {
	w.elements = append(w.elements, el)
}

// collectExportedNames gathers every name reachable through the module's
// export surface: named-export lists, default-export identifiers, and
// CommonJS module.exports / exports.x assignments. Declarations exported
// inline are marked during the walk itself.
func collectExportedNames(root *sitter.Node, src []byte) map[string]bool {
	names := make(map[string]bool)
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "export_statement":
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "export_clause":
					for k := 0; k < int(gc.ChildCount()); k++ {
						if spec := gc.Child(k); spec.Type() == "export_specifier" {
							// First identifier is the local name.
							if id := firstChildOfType(spec, "identifier"); id != nil {
								names[id.Content(src)] = true
							}
						}
					}
				case "identifier":
					// export default foo
					names[gc.Content(src)] = true
				}
			}
		case "expression_statement":
			collectCommonJSExports(child, src, names)
		}
	}
	return names
}

// collectCommonJSExports handles module.exports = {...} and exports.x = y.
func collectCommonJSExports(stmt *sitter.Node, src []byte, names map[string]bool) {
	assign := firstChildOfType(stmt, "assignment_expression")
	if assign == nil {
		return
	}
	left := assign.ChildByFieldName("left")
	right := assign.ChildByFieldName("right")
	if left == nil || left.Type() != "member_expression" {
		return
	}
	target := left.Content(src)
	switch {
	case target == "module.exports":
		if right != nil && right.Type() == "object" {
			for i := 0; i < int(right.ChildCount()); i++ {
				c := right.Child(i)
				switch c.Type() {
				case "shorthand_property_identifier":
					names[c.Content(src)] = true
				case "pair":
					if key := c.ChildByFieldName("key"); key != nil {
						names[key.Content(src)] = true
					}
				}
			}
		} else if right != nil && right.Type() == "identifier" {
			names[right.Content(src)] = true
		}
	case strings.HasPrefix(target, "exports."):
		names[strings.TrimPrefix(target, "exports.")] = true
	}
}

// walkProgram visits top-level declarations of a JS/TS/TSX file.
func (w *walker) walkProgram(root *sitter.Node) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "export_statement":
			w.walkExport(child)
		case "function_declaration", "generator_function_declaration":
			w.addCallable(child, false)
		case "class_declaration", "abstract_class_declaration":
			w.addClass(child, false)
		case "interface_declaration":
			w.addNamed(child, model.ElementTypeInterface, "type_identifier", false)
		case "type_alias_declaration":
			w.addNamed(child, model.ElementTypeType, "type_identifier", false)
		case "enum_declaration":
			w.addNamed(child, model.ElementTypeType, "identifier", false)
		case "lexical_declaration", "variable_declaration":
			w.walkVariableDeclaration(child, false)
		case "decorator":
			w.addDecorator(child)
		}
	}
}

// walkExport visits the declaration carried by an export statement. Any
// decorators attached to the statement are recorded as their own elements.
func (w *walker) walkExport(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "decorator":
			w.addDecorator(child)
		case "function_declaration", "generator_function_declaration":
			w.addCallable(child, true)
		case "class_declaration", "abstract_class_declaration":
			w.addClass(child, true)
		case "interface_declaration":
			w.addNamed(child, model.ElementTypeInterface, "type_identifier", true)
		case "type_alias_declaration":
			w.addNamed(child, model.ElementTypeType, "type_identifier", true)
		case "enum_declaration":
			w.addNamed(child, model.ElementTypeType, "identifier", true)
		case "lexical_declaration", "variable_declaration":
			w.walkVariableDeclaration(child, true)
		}
	}
}

// addCallable records a function declaration, classifying it as a hook or
// component by the naming heuristics.
func (w *walker) addCallable(node *sitter.Node, exported bool) {
	name := textOfChild(node, "identifier", w.src)
	if name == "" {
		return
	}
	body := firstChildOfType(node, "statement_block")
	w.add(model.ElementData{
		Type:       classifyCallable(name, node),
		Name:       name,
		File:       w.path,
		Line:       lineOf(node),
		Exported:   exported || w.exported[name],
		Parameters: scriptParameters(firstChildOfType(node, "formal_parameters"), w.src),
		Calls:      collectScriptCalls(body, w.src, ""),
	})
}

// addClass records a class declaration and its members. The class itself
// becomes a component when its name is capitalized and the body produces
// JSX; methods are recorded under class-qualified names, properties under
// bare names, decorators as separate elements.
func (w *walker) addClass(node *sitter.Node, exported bool) {
	name := textOfChild(node, "type_identifier", w.src)
	if name == "" {
		// The JavaScript grammar names classes with a plain identifier.
		name = textOfChild(node, "identifier", w.src)
	}
	if name == "" {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); c.Type() == "decorator" {
			w.addDecorator(c)
		}
	}

	body := firstChildOfType(node, "class_body")
	classExported := exported || w.exported[name]

	classType := model.ElementTypeClass
	if isCapitalized(name) && containsJSX(body) {
		classType = model.ElementTypeComponent
	}
	w.add(model.ElementData{
		Type:     classType,
		Name:     name,
		File:     w.path,
		Line:     lineOf(node),
		Exported: classExported,
	})

	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		switch member.Type() {
		case "method_definition":
			w.addMethod(member, name, classExported)
		case "public_field_definition", "field_definition":
			w.addProperty(member, classExported)
		case "decorator":
			w.addDecorator(member)
		}
	}
}

func (w *walker) addMethod(node *sitter.Node, className string, classExported bool) {
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); c.Type() == "decorator" {
			w.addDecorator(c)
		}
	}
	name := textOfChild(node, "property_identifier", w.src)
	private := false
	if name == "" {
		// #name methods parse as private_property_identifier.
		name = textOfChild(node, "private_property_identifier", w.src)
		private = name != ""
	}
	if name == "" {
		return
	}
	if mod := firstChildOfType(node, "accessibility_modifier"); mod != nil && mod.Content(w.src) == "private" {
		private = true
	}
	body := firstChildOfType(node, "statement_block")
	w.add(model.ElementData{
		Type:       model.ElementTypeMethod,
		Name:       model.QualifiedMethodName(className, name),
		File:       w.path,
		Line:       lineOf(node),
		Exported:   classExported && !private,
		Parameters: scriptParameters(firstChildOfType(node, "formal_parameters"), w.src),
		Calls:      collectScriptCalls(body, w.src, className),
	})
}

func (w *walker) addProperty(node *sitter.Node, classExported bool) {
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(i); c.Type() == "decorator" {
			w.addDecorator(c)
		}
	}
	name := textOfChild(node, "property_identifier", w.src)
	if name == "" {
		return
	}
	private := false
	if mod := firstChildOfType(node, "accessibility_modifier"); mod != nil && mod.Content(w.src) == "private" {
		private = true
	}
	w.add(model.ElementData{
		Type:     model.ElementTypeProperty,
		Name:     name,
		File:     w.path,
		Line:     lineOf(node),
		Exported: classExported && !private,
	})
}

// addNamed records interface, type-alias, and enum declarations.
func (w *walker) addNamed(node *sitter.Node, typ model.ElementType, nameNodeType string, exported bool) {
	name := textOfChild(node, nameNodeType, w.src)
	if name == "" {
		return
	}
	w.add(model.ElementData{
		Type:     typ,
		Name:     name,
		File:     w.path,
		Line:     lineOf(node),
		Exported: exported || w.exported[name],
	})
}

// walkVariableDeclaration records const/let/var declarators whose
// initializer is a function, plus ALL_CAPS constants.
func (w *walker) walkVariableDeclaration(node *sitter.Node, exported bool) {
	for i := 0; i < int(node.ChildCount()); i++ {
		decl := node.Child(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		name := textOfChild(decl, "identifier", w.src)
		if name == "" {
			continue
		}
		init := decl.ChildByFieldName("value")
		isExported := exported || w.exported[name]

		switch {
		case init != nil && isFunctionNode(init):
			body := functionBody(init)
			w.add(model.ElementData{
				Type:       classifyCallable(name, init),
				Name:       name,
				File:       w.path,
				Line:       lineOf(decl),
				Exported:   isExported,
				Parameters: scriptParameters(firstChildOfType(init, "formal_parameters"), w.src),
				Calls:      collectScriptCalls(body, w.src, ""),
			})
		case constantNameRe.MatchString(name):
			w.add(model.ElementData{
				Type:     model.ElementTypeConstant,
				Name:     name,
				File:     w.path,
				Line:     lineOf(decl),
				Exported: isExported,
			})
		}
	}
}

func (w *walker) addDecorator(node *sitter.Node) {
	name := decoratorName(node, w.src)
	if name == "" {
		return
	}
	w.add(model.ElementData{
		Type: model.ElementTypeDecorator,
		Name: name,
		File: w.path,
		Line: lineOf(node),
	})
}

// ====== Python ======

// walkModule visits the top level of a Python module.
func (w *walker) walkModule(root *sitter.Node) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "function_definition":
			w.addPyFunction(child, "", true)
		case "class_definition":
			w.addPyClass(child)
		case "decorated_definition":
			w.walkPyDecorated(child, "", true)
		case "expression_statement":
			w.addPyConstant(child)
		}
	}
}

func (w *walker) walkPyDecorated(node *sitter.Node, className string, classExported bool) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "decorator":
			w.addPyDecorator(child)
		case "function_definition":
			w.addPyFunction(child, className, classExported)
		case "class_definition":
			w.addPyClass(child)
		}
	}
}

func (w *walker) addPyFunction(node *sitter.Node, className string, classExported bool) {
	name := nodeText(node.ChildByFieldName("name"), w.src)
	if name == "" {
		return
	}
	exported := classExported && !strings.HasPrefix(name, "_")
	typ := model.ElementTypeFunction
	recorded := name
	if className != "" {
		typ = model.ElementTypeMethod
		recorded = model.QualifiedMethodName(className, name)
	}
	w.add(model.ElementData{
		Type:       typ,
		Name:       recorded,
		File:       w.path,
		Line:       lineOf(node),
		Exported:   exported,
		Parameters: pythonParameters(node.ChildByFieldName("parameters"), w.src),
		Calls:      collectPythonCalls(node.ChildByFieldName("body"), w.src, className),
	})
}

func (w *walker) addPyClass(node *sitter.Node) {
	name := nodeText(node.ChildByFieldName("name"), w.src)
	if name == "" {
		return
	}
	exported := !strings.HasPrefix(name, "_")
	w.add(model.ElementData{
		Type:     model.ElementTypeClass,
		Name:     name,
		File:     w.path,
		Line:     lineOf(node),
		Exported: exported,
	})

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		switch member.Type() {
		case "function_definition":
			w.addPyFunction(member, name, exported)
		case "decorated_definition":
			w.walkPyDecorated(member, name, exported)
		case "expression_statement":
			w.addPyClassAttribute(member, exported)
		}
	}
}

// addPyClassAttribute records class-level assignments as properties.
func (w *walker) addPyClassAttribute(stmt *sitter.Node, classExported bool) {
	assign := firstChildOfType(stmt, "assignment")
	if assign == nil {
		return
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return
	}
	name := left.Content(w.src)
	w.add(model.ElementData{
		Type:     model.ElementTypeProperty,
		Name:     name,
		File:     w.path,
		Line:     lineOf(assign),
		Exported: classExported && !strings.HasPrefix(name, "_"),
	})
}

// addPyConstant records module-level ALL_CAPS assignments.
func (w *walker) addPyConstant(stmt *sitter.Node) {
	assign := firstChildOfType(stmt, "assignment")
	if assign == nil {
		return
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return
	}
	name := left.Content(w.src)
	if !constantNameRe.MatchString(name) {
		return
	}
	w.add(model.ElementData{
		Type:     model.ElementTypeConstant,
		Name:     name,
		File:     w.path,
		Line:     lineOf(assign),
		Exported: true,
	})
}

func (w *walker) addPyDecorator(node *sitter.Node) {
	var name string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier", "attribute":
			name = child.Content(w.src)
		case "call":
			name = nodeText(child.ChildByFieldName("function"), w.src)
		}
	}
	if name == "" {
		return
	}
	w.add(model.ElementData{
		Type: model.ElementTypeDecorator,
		Name: name,
		File: w.path,
		Line: lineOf(node),
	})
}

// ====== node helpers ======

var constantNameRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

func lineOf(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

func nodeText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(src)
}

func firstChildOfType(n *sitter.Node, nodeType string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == nodeType {
			return c
		}
	}
	return nil
}

func textOfChild(n *sitter.Node, nodeType string, src []byte) string {
	return nodeText(firstChildOfType(n, nodeType), src)
}

func isCapitalized(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

// isHookName applies the use-prefix heuristic: "use" followed by an
// uppercase fourth character.
func isHookName(name string) bool {
	return len(name) > 3 && strings.HasPrefix(name, "use") && name[3] >= 'A' && name[3] <= 'Z'
}

// classifyCallable names a callable: hooks by the use-prefix rule,
// components by capitalization plus JSX in the body, functions otherwise.
func classifyCallable(name string, node *sitter.Node) model.ElementType {
	if isHookName(name) {
		return model.ElementTypeHook
	}
	if isCapitalized(name) && containsJSX(node) {
		return model.ElementTypeComponent
	}
	return model.ElementTypeFunction
}

func isFunctionNode(n *sitter.Node) bool {
	switch n.Type() {
	case "arrow_function", "function_expression", "function", "generator_function":
		return true
	}
	return false
}

func functionBody(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if body := n.ChildByFieldName("body"); body != nil {
		return body
	}
	return firstChildOfType(n, "statement_block")
}

// containsJSX reports whether any descendant produces JSX.
func containsJSX(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return true
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if containsJSX(n.Child(i)) {
			return true
		}
	}
	return false
}

func decoratorName(node *sitter.Node, src []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			return child.Content(src)
		case "member_expression":
			return child.Content(src)
		case "call_expression":
			if fn := child.ChildByFieldName("function"); fn != nil {
				return fn.Content(src)
			}
		}
	}
	return ""
}

// scriptParameters extracts parameter descriptors from formal_parameters.
func scriptParameters(params *sitter.Node, src []byte) []model.Parameter {
	if params == nil {
		return nil
	}
	var out []model.Parameter
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(i)
		switch child.Type() {
		case "identifier":
			out = append(out, model.Parameter{Name: child.Content(src)})
		case "required_parameter", "optional_parameter":
			out = append(out, scriptParameterDetail(child, src))
		case "assignment_pattern":
			p := model.Parameter{HasDefault: true}
			fillPatternName(child.ChildByFieldName("left"), src, &p)
			out = append(out, p)
		case "rest_pattern":
			out = append(out, model.Parameter{Name: textOfChild(child, "identifier", src), IsRest: true})
		case "object_pattern", "array_pattern":
			out = append(out, model.Parameter{Name: child.Content(src), IsDestructured: true})
		}
	}
	return out
}

// scriptParameterDetail unpacks the TypeScript parameter wrapper nodes.
func scriptParameterDetail(node *sitter.Node, src []byte) model.Parameter {
	p := model.Parameter{HasDefault: node.ChildByFieldName("value") != nil}
	pattern := node.ChildByFieldName("pattern")
	if pattern == nil {
		pattern = firstChildOfType(node, "identifier")
	}
	fillPatternName(pattern, src, &p)
	return p
}

func fillPatternName(pattern *sitter.Node, src []byte, p *model.Parameter) {
	if pattern == nil {
		return
	}
	switch pattern.Type() {
	case "identifier":
		p.Name = pattern.Content(src)
	case "rest_pattern":
		p.Name = textOfChild(pattern, "identifier", src)
		p.IsRest = true
	case "object_pattern", "array_pattern":
		p.Name = pattern.Content(src)
		p.IsDestructured = true
	default:
		p.Name = pattern.Content(src)
	}
}

// pythonParameters extracts parameter descriptors from a def's parameters.
func pythonParameters(params *sitter.Node, src []byte) []model.Parameter {
	if params == nil {
		return nil
	}
	var out []model.Parameter
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(i)
		switch child.Type() {
		case "identifier":
			out = append(out, model.Parameter{Name: child.Content(src)})
		case "typed_parameter":
			out = append(out, model.Parameter{Name: textOfChild(child, "identifier", src)})
		case "default_parameter", "typed_default_parameter":
			out = append(out, model.Parameter{
				Name:       nodeText(child.ChildByFieldName("name"), src),
				HasDefault: true,
			})
		case "list_splat_pattern", "dictionary_splat_pattern":
			out = append(out, model.Parameter{Name: textOfChild(child, "identifier", src), IsRest: true})
		case "tuple_pattern":
			out = append(out, model.Parameter{Name: child.Content(src), IsDestructured: true})
		}
	}
	return out
}

// collectScriptCalls gathers callee names inside a body: bare identifier
// calls, this-qualified method calls (qualified with the enclosing class),
// and constructor calls. Used for same-file call edges.
func collectScriptCalls(body *sitter.Node, src []byte, className string) []string {
	if body == nil {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	var visit func(n *sitter.Node)
	record := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	visit = func(n *sitter.Node) {
		switch n.Type() {
		case "call_expression":
			if callee := n.Child(0); callee != nil {
				switch callee.Type() {
				case "identifier":
					record(callee.Content(src))
				case "member_expression":
					obj := callee.ChildByFieldName("object")
					prop := callee.ChildByFieldName("property")
					if obj != nil && obj.Type() == "this" && className != "" && prop != nil {
						record(model.QualifiedMethodName(className, prop.Content(src)))
					}
				}
			}
		case "new_expression":
			if ctor := n.ChildByFieldName("constructor"); ctor != nil && ctor.Type() == "identifier" {
				record(ctor.Content(src))
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(body)
	return out
}

// collectPythonCalls mirrors collectScriptCalls for Python bodies, with
// self-qualified calls recorded under the enclosing class.
func collectPythonCalls(body *sitter.Node, src []byte, className string) []string {
	if body == nil {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	record := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n.Type() == "call" {
			if fn := n.ChildByFieldName("function"); fn != nil {
				switch fn.Type() {
				case "identifier":
					record(fn.Content(src))
				case "attribute":
					obj := fn.ChildByFieldName("object")
					attr := fn.ChildByFieldName("attribute")
					if obj != nil && obj.Content(src) == "self" && className != "" && attr != nil {
						record(model.QualifiedMethodName(className, attr.Content(src)))
					}
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(body)
	return out
}
