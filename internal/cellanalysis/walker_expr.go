package cellanalysis

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/reactive-notebook/nbcore/api"
)

// walkDirectExpr walks an expression evaluated in the current (direct)
// scope, recording order-sensitive reads: a name is a ref only if it has
// not yet been bound in `bound`. Scope-introducing sub-expressions (lambda,
// comprehensions) are delegated to nested-scope resolution, which uses the
// full (position-independent) bound set instead.
func (w *walker) walkDirectExpr(n *sitter.Node, bound map[string]bool) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		name := text(n, w.source)
		if !bound[name] {
			w.result.addRef(name)
		}
		return

	case "attribute":
		// Only the base object is a read; `.attr` is not a name lookup.
		w.walkDirectExpr(n.ChildByFieldName("object"), bound)
		return

	case "keyword_argument":
		w.walkDirectExpr(n.ChildByFieldName("value"), bound)
		return

	case "lambda":
		w.handleLambda(n, bound)
		return

	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		w.handleComprehension(n, bound)
		return

	case "string":
		for _, c := range namedChildren(n) {
			if c.Type() == "interpolation" {
				w.walkDirectExpr(firstNamedChild(c), bound)
			}
		}
		return

	case "type", "typed_default_parameter", "typed_parameter":
		for _, c := range namedChildren(n) {
			w.walkDirectExpr(c, bound)
		}
		return
	}

	for _, c := range namedChildren(n) {
		w.walkDirectExpr(c, bound)
	}
}

// handleFunctionDef records the function name as a direct-scope binding and
// resolves the function's own body (plus its default-argument/annotation
// expressions, which are evaluated at definition time, i.e. in the
// enclosing direct scope) as a nested scope.
func (w *walker) handleFunctionDef(n *sitter.Node, bound map[string]bool) {
	name := n.ChildByFieldName("name")
	nameStr := text(name, w.source)

	params := n.ChildByFieldName("parameters")
	// Default values and annotations are evaluated at definition time, in
	// the enclosing (direct) scope.
	for _, p := range namedChildren(params) {
		switch p.Type() {
		case "default_parameter", "typed_default_parameter":
			w.walkDirectExpr(p.ChildByFieldName("value"), bound)
			if ann := p.ChildByFieldName("type"); ann != nil {
				w.walkDirectExpr(ann, bound)
			}
		case "typed_parameter":
			if ann := p.ChildByFieldName("type"); ann != nil {
				w.walkDirectExpr(ann, bound)
			}
		}
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		w.walkDirectExpr(ret, bound)
	}

	w.result.addDef(nameStr, api.KindFunction)
	bound[nameStr] = true

	local := map[string]bool{}
	collectParamNames(params, w.source, local)
	w.resolveNestedScope(n.ChildByFieldName("body"), local)
}

// handleClassDef records the class name as a direct-scope binding and
// resolves the class body (base-class expressions are direct-scope reads;
// the body itself is its own namespace) as a nested scope.
func (w *walker) handleClassDef(n *sitter.Node, bound map[string]bool) {
	name := n.ChildByFieldName("name")
	nameStr := text(name, w.source)

	if bases := n.ChildByFieldName("superclasses"); bases != nil {
		w.walkDirectExpr(bases, bound)
	}

	w.result.addDef(nameStr, api.KindClass)
	bound[nameStr] = true

	w.resolveNestedScope(n.ChildByFieldName("body"), map[string]bool{})
}

func (w *walker) handleLambda(n *sitter.Node, bound map[string]bool) {
	params := n.ChildByFieldName("parameters")
	for _, p := range namedChildren(params) {
		if p.Type() == "default_parameter" {
			w.walkDirectExpr(p.ChildByFieldName("value"), bound)
		}
	}
	local := map[string]bool{}
	collectParamNames(params, w.source, local)
	body := n.ChildByFieldName("body")
	w.resolveNestedExpr(body, local)
}

func (w *walker) handleComprehension(n *sitter.Node, bound map[string]bool) {
	// The first for-in clause's iterable is evaluated in the enclosing
	// scope; everything else (the body expression, further clauses, and
	// the loop variable) lives in the comprehension's own scope.
	clauses := namedChildrenOfType(n, "for_in_clause")
	if len(clauses) > 0 {
		if iter := clauses[0].ChildByFieldName("right"); iter != nil {
			w.walkDirectExpr(iter, bound)
		} else if it := firstNamedChild(clauses[0]); it != nil {
			w.walkDirectExpr(it, bound)
		}
	}

	local := map[string]bool{}
	for i, clause := range clauses {
		left := clause.ChildByFieldName("left")
		collectTargets(left, w.source, local)
		if i > 0 {
			if iter := clause.ChildByFieldName("right"); iter != nil {
				w.resolveNestedExpr(iter, local)
			}
		}
	}
	for _, cond := range namedChildrenOfType(n, "if_clause") {
		w.resolveNestedExpr(cond, local)
	}
	body := firstNamedChild(n)
	w.resolveNestedExpr(body, local)
}

func collectParamNames(params *sitter.Node, source []byte, into map[string]bool) {
	if params == nil {
		return
	}
	for _, p := range namedChildren(params) {
		switch p.Type() {
		case "identifier":
			into[text(p, source)] = true
		case "default_parameter", "typed_default_parameter", "typed_parameter":
			if n := p.ChildByFieldName("name"); n != nil {
				into[text(n, source)] = true
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			for _, c := range namedChildren(p) {
				if c.Type() == "identifier" {
					into[text(c, source)] = true
				}
			}
		}
	}
}

// resolveNestedScope walks a nested scope's statement block, resolving its
// free names (those not in localBound and not bound anywhere else in the
// whole cell) into the enclosing result's refs.
func (w *walker) resolveNestedScope(block *sitter.Node, localBound map[string]bool) {
	if block == nil {
		return
	}
	for _, s := range namedChildren(block) {
		collectOwnScopeBindings(s, w.source, localBound)
	}
	for _, s := range namedChildren(block) {
		w.resolveNestedStatement(s, localBound)
	}
}

func (w *walker) resolveNestedStatement(n *sitter.Node, localBound map[string]bool) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "function_definition":
		name := n.ChildByFieldName("name")
		localBound[text(name, w.source)] = true
		params := n.ChildByFieldName("parameters")
		for _, p := range namedChildren(params) {
			if p.Type() == "default_parameter" {
				w.resolveNestedExpr(p.ChildByFieldName("value"), localBound)
			}
		}
		inner := map[string]bool{}
		collectParamNames(params, w.source, inner)
		w.resolveNestedScope(n.ChildByFieldName("body"), inner)
	case "class_definition":
		name := n.ChildByFieldName("name")
		localBound[text(name, w.source)] = true
		if bases := n.ChildByFieldName("superclasses"); bases != nil {
			w.resolveNestedExpr(bases, localBound)
		}
		w.resolveNestedScope(n.ChildByFieldName("body"), map[string]bool{})
	case "global_statement", "nonlocal_statement", "pass_statement", "comment":
		// no-op for free-name purposes
	case "import_statement", "import_from_statement":
		for _, imp := range parseImportBindings(n, w.source) {
			localBound[string(imp.Definition)] = true
		}
	case "delete_statement":
		for _, c := range namedChildren(n) {
			if c.Type() == "identifier" {
				w.result.addDeleted(text(c, w.source))
			}
		}
	default:
		for _, c := range namedChildren(n) {
			w.resolveNestedExpr(c, localBound)
		}
	}
}

// resolveNestedExpr walks an expression inside a nested scope, recording a
// free-name ref when an identifier is neither locally bound nor bound
// anywhere in the whole cell (the latter check uses w.fullBound, since
// nested scopes execute later and aren't subject to the enclosing scope's
// textual ordering).
func (w *walker) resolveNestedExpr(n *sitter.Node, localBound map[string]bool) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		name := text(n, w.source)
		if localBound[name] {
			return
		}
		if w.fullBound[name] {
			return
		}
		w.result.addRef(name)
		return
	case "attribute":
		w.resolveNestedExpr(n.ChildByFieldName("object"), localBound)
		return
	case "keyword_argument":
		w.resolveNestedExpr(n.ChildByFieldName("value"), localBound)
		return
	case "lambda":
		params := n.ChildByFieldName("parameters")
		for _, p := range namedChildren(params) {
			if p.Type() == "default_parameter" {
				w.resolveNestedExpr(p.ChildByFieldName("value"), localBound)
			}
		}
		inner := map[string]bool{}
		for k := range localBound {
			inner[k] = true
		}
		collectParamNames(params, w.source, inner)
		w.resolveNestedExpr(n.ChildByFieldName("body"), inner)
		return
	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		clauses := namedChildrenOfType(n, "for_in_clause")
		inner := map[string]bool{}
		for k := range localBound {
			inner[k] = true
		}
		if len(clauses) > 0 {
			if iter := clauses[0].ChildByFieldName("right"); iter != nil {
				w.resolveNestedExpr(iter, localBound)
			}
		}
		for i, clause := range clauses {
			left := clause.ChildByFieldName("left")
			collectTargets(left, w.source, inner)
			if i > 0 {
				if iter := clause.ChildByFieldName("right"); iter != nil {
					w.resolveNestedExpr(iter, inner)
				}
			}
		}
		for _, cond := range namedChildrenOfType(n, "if_clause") {
			w.resolveNestedExpr(cond, inner)
		}
		w.resolveNestedExpr(firstNamedChild(n), inner)
		return
	case "string":
		for _, c := range namedChildren(n) {
			if c.Type() == "interpolation" {
				w.resolveNestedExpr(firstNamedChild(c), localBound)
			}
		}
		return
	}
	for _, c := range namedChildren(n) {
		w.resolveNestedExpr(c, localBound)
	}
}
