package cellanalysis

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/reactive-notebook/nbcore/api"
)

// bindingEvent records one binding site encountered while walking a cell's
// statements, in textual order. analyzer.go turns these into
// api.VariableData entries.
type bindingEvent struct {
	name api.Name
	kind api.VariableKind
}

// scopeResult is the module-scope-visible output of walking one cell body:
// the names it binds, the names it reads free, the names it deletes, and
// the ordered binding events used to build variable_data.
type scopeResult struct {
	defs        map[api.Name]bool
	refs        map[api.Name]bool
	deletedRefs map[api.Name]bool
	bindings    []bindingEvent

	imports            []api.ImportData
	importedNamespaces map[api.Name]bool
}

func newScopeResult() *scopeResult {
	return &scopeResult{
		defs:               map[api.Name]bool{},
		refs:               map[api.Name]bool{},
		deletedRefs:        map[api.Name]bool{},
		importedNamespaces: map[api.Name]bool{},
	}
}

func (r *scopeResult) addDef(name string, kind api.VariableKind) {
	if name == "" {
		return
	}
	n := api.Name(name)
	r.bindings = append(r.bindings, bindingEvent{name: n, kind: kind})
	if !isCellLocal(name) {
		r.defs[n] = true
	}
}

func (r *scopeResult) addRef(name string) {
	if name == "" || isBuiltin(name) || isCellLocal(name) {
		return
	}
	r.refs[api.Name(name)] = true
}

func (r *scopeResult) addDeleted(name string) {
	if name == "" || isCellLocal(name) {
		return
	}
	r.deletedRefs[api.Name(name)] = true
}

// analyzeStatements walks the top-level statements of a cell body and
// produces defs/refs/deleted_refs per spec.md §4.3's scope rules: module
// scope, nested function/class/lambda/comprehension scopes, `global`
// forcing a module-level binding, default-argument expressions evaluated
// at module scope, and order-sensitive ref detection at the cell's own
// scope level.
func analyzeStatements(stmts []*sitter.Node, source []byte) *scopeResult {
	result := newScopeResult()

	// Pass 1: collect every name bound anywhere at this cell's own scope,
	// ignoring order, so that free names in nested function/lambda bodies
	// (which execute later, and so are not subject to textual ordering)
	// can be resolved regardless of position.
	fullBound := map[string]bool{}
	for _, s := range stmts {
		collectOwnScopeBindings(s, source, fullBound)
	}

	// Pass 2: order-sensitive walk of the direct statement stream.
	boundSoFar := map[string]bool{}
	w := &walker{source: source, result: result, fullBound: fullBound}
	for _, s := range stmts {
		w.walkTopLevelStatement(s, boundSoFar)
	}
	return result
}

type walker struct {
	source    []byte
	result    *scopeResult
	fullBound map[string]bool
}

func text(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(source)
}

// collectOwnScopeBindings recursively records every name bound directly in
// the current scope (not descending into nested function/class/lambda/
// comprehension bodies, whose own locals are a separate scope), but DOES
// cross into nested scopes to find `global` declarations, whose targets
// are bound at THIS (module) scope even though assigned from inside a
// nested function.
func collectOwnScopeBindings(n *sitter.Node, source []byte, bound map[string]bool) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "function_definition", "class_definition":
		name := n.ChildByFieldName("name")
		if name != nil {
			bound[text(name, source)] = true
		}
		// Do not descend into the body: separate scope. But do look for
		// `global` statements nested arbitrarily deep inside, since those
		// bind names at module scope from within a nested function.
		body := n.ChildByFieldName("body")
		collectGlobalDeclarations(body, source, bound)
		return
	case "lambda":
		// Lambdas can't contain statements, so no global declarations to
		// find; nothing at this scope to record from a lambda itself.
		return
	case "assignment":
		left := n.ChildByFieldName("left")
		collectTargets(left, source, bound)
	case "augmented_assignment":
		left := n.ChildByFieldName("left")
		collectTargets(left, source, bound)
	case "for_statement":
		left := n.ChildByFieldName("left")
		collectTargets(left, source, bound)
	case "with_statement":
		for _, clause := range namedChildrenOfType(n, "with_clause") {
			for _, item := range namedChildrenOfType(clause, "with_item") {
				if alias := item.ChildByFieldName("alias"); alias != nil {
					collectTargets(alias, source, bound)
				}
			}
		}
	case "except_clause":
		// except E as name:
		children := namedChildren(n)
		if len(children) >= 2 && children[len(children)-1].Type() == "identifier" {
			bound[text(children[len(children)-1], source)] = true
		}
	case "import_statement", "import_from_statement":
		for _, imp := range parseImportBindings(n, source) {
			bound[string(imp.Definition)] = true
		}
	case "global_statement":
		for _, id := range namedChildrenOfType(n, "identifier") {
			bound[text(id, source)] = true
		}
	}

	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		collectOwnScopeBindings(n.NamedChild(i), source, bound)
	}
}

// collectGlobalDeclarations finds `global x, y` statements anywhere inside
// a subtree (descending into further nested scopes too) and records their
// names as bound at the scope collectOwnScopeBindings was called from.
func collectGlobalDeclarations(n *sitter.Node, source []byte, bound map[string]bool) {
	if n == nil {
		return
	}
	if n.Type() == "global_statement" {
		for _, id := range namedChildrenOfType(n, "identifier") {
			bound[text(id, source)] = true
		}
	}
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		collectGlobalDeclarations(n.NamedChild(i), source, bound)
	}
}

// collectTargets records every identifier bound by an assignment-like
// target expression: plain names, tuple/list unpacking, starred targets.
// Attribute and subscript targets (`obj.attr = 1`, `d[k] = 1`) don't bind a
// new name and are skipped.
func collectTargets(n *sitter.Node, source []byte, bound map[string]bool) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		bound[text(n, source)] = true
	case "pattern_list", "tuple_pattern", "list_pattern", "tuple", "list":
		for _, c := range namedChildren(n) {
			collectTargets(c, source, bound)
		}
	case "list_splat_pattern":
		for _, c := range namedChildren(n) {
			collectTargets(c, source, bound)
		}
	case "attribute", "subscript":
		// not a name binding
	default:
		for _, c := range namedChildren(n) {
			collectTargets(c, source, bound)
		}
	}
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

func namedChildrenOfType(n *sitter.Node, typ string) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range namedChildren(n) {
		if c.Type() == typ {
			out = append(out, c)
		}
	}
	return out
}
