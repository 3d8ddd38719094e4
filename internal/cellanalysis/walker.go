package cellanalysis

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/reactive-notebook/nbcore/api"
)

const kindVariable = api.KindVariable

// walkTopLevelStatement dispatches a statement for order-sensitive, direct-
// scope processing. Control-flow constructs (if/for/while/with/try) don't
// introduce a new Python scope, so their bodies are walked with the same
// `bound` set; function/class/lambda/comprehension bodies do introduce a
// new scope and are handled via nested-scope free-name resolution instead.
func (w *walker) walkTopLevelStatement(n *sitter.Node, bound map[string]bool) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "expression_statement":
		for _, c := range namedChildren(n) {
			w.walkTopLevelStatement(c, bound)
		}

	case "assignment":
		w.handleAssignment(n, bound, false)
	case "augmented_assignment":
		w.handleAssignment(n, bound, true)

	case "for_statement":
		right := n.ChildByFieldName("right")
		w.walkDirectExpr(right, bound)
		left := n.ChildByFieldName("left")
		w.bindTargets(left, bound)
		w.walkBlock(n.ChildByFieldName("body"), bound)
		w.walkBlock(n.ChildByFieldName("alternative"), bound)

	case "while_statement":
		w.walkDirectExpr(n.ChildByFieldName("condition"), bound)
		w.walkBlock(n.ChildByFieldName("body"), bound)
		w.walkBlock(n.ChildByFieldName("alternative"), bound)

	case "if_statement":
		w.walkDirectExpr(n.ChildByFieldName("condition"), bound)
		w.walkBlock(n.ChildByFieldName("consequence"), bound)
		for _, c := range namedChildren(n) {
			switch c.Type() {
			case "elif_clause":
				w.walkDirectExpr(c.ChildByFieldName("condition"), bound)
				w.walkBlock(c.ChildByFieldName("consequence"), bound)
			case "else_clause":
				w.walkBlock(c.ChildByFieldName("body"), bound)
			}
		}

	case "with_statement":
		for _, clause := range namedChildrenOfType(n, "with_clause") {
			for _, item := range namedChildrenOfType(clause, "with_item") {
				value := item.ChildByFieldName("value")
				if value == nil {
					value = firstNamedChild(item)
				}
				w.walkDirectExpr(value, bound)
				if alias := item.ChildByFieldName("alias"); alias != nil {
					w.bindTargets(alias, bound)
				}
			}
		}
		w.walkBlock(n.ChildByFieldName("body"), bound)

	case "try_statement":
		w.walkBlock(n.ChildByFieldName("body"), bound)
		for _, c := range namedChildren(n) {
			switch c.Type() {
			case "except_clause":
				children := namedChildren(c)
				for i, ch := range children {
					if i == len(children)-1 {
						break
					}
					if ch.Type() == "identifier" && i < len(children)-1 && children[i+1].Type() == "identifier" {
						continue
					}
					w.walkDirectExpr(ch, bound)
				}
				if len(children) >= 2 && children[len(children)-1].Type() == "identifier" {
					w.result.addDef(text(children[len(children)-1], w.source), kindVariable)
					bound[text(children[len(children)-1], w.source)] = true
				}
				// except clause body is the last block child
				for _, ch := range children {
					if ch.Type() == "block" {
						w.walkBlock(ch, bound)
					}
				}
			case "else_clause":
				w.walkBlock(c.ChildByFieldName("body"), bound)
			case "finally_clause":
				w.walkBlock(c.ChildByFieldName("body"), bound)
			}
		}

	case "return_statement":
		for _, c := range namedChildren(n) {
			w.walkDirectExpr(c, bound)
		}

	case "delete_statement":
		for _, c := range namedChildren(n) {
			w.handleDeleteTarget(c, bound)
		}

	case "global_statement":
		for _, id := range namedChildrenOfType(n, "identifier") {
			name := text(id, w.source)
			bound[name] = true
		}

	case "nonlocal_statement":
		// nonlocal has no effect on module-scope defs/refs.

	case "import_statement", "import_from_statement":
		w.handleImport(n, bound)

	case "function_definition":
		w.handleFunctionDef(n, bound)
	case "class_definition":
		w.handleClassDef(n, bound)

	case "decorated_definition":
		for _, c := range namedChildren(n) {
			switch c.Type() {
			case "decorator":
				w.walkDirectExpr(firstNamedChild(c), bound)
			case "function_definition":
				w.handleFunctionDef(c, bound)
			case "class_definition":
				w.handleClassDef(c, bound)
			}
		}

	case "assert_statement", "raise_statement", "pass_statement", "break_statement", "continue_statement":
		for _, c := range namedChildren(n) {
			w.walkDirectExpr(c, bound)
		}

	case "comment":
		// no-op

	default:
		// Fallback: treat as a bare expression for reads.
		w.walkDirectExpr(n, bound)
	}
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	if n == nil || n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}

func (w *walker) walkBlock(block *sitter.Node, bound map[string]bool) {
	if block == nil {
		return
	}
	for _, s := range namedChildren(block) {
		w.walkTopLevelStatement(s, bound)
	}
}

func (w *walker) handleAssignment(n *sitter.Node, bound map[string]bool, augmented bool) {
	right := n.ChildByFieldName("right")
	left := n.ChildByFieldName("left")
	typeNode := n.ChildByFieldName("type")

	if augmented {
		// `x += 1`: x is read, then rebound.
		w.walkDirectExpr(left, bound)
	}
	w.walkDirectExpr(right, bound)
	if typeNode != nil {
		w.walkDirectExpr(typeNode, bound)
	}
	w.bindTargets(left, bound)
}

// bindTargets records bindings for an assignment-like target expression and
// marks them bound-so-far for order-sensitive ref detection.
func (w *walker) bindTargets(n *sitter.Node, bound map[string]bool) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		name := text(n, w.source)
		w.result.addDef(name, kindVariable)
		bound[name] = true
	case "pattern_list", "tuple_pattern", "list_pattern", "tuple", "list", "list_splat_pattern":
		for _, c := range namedChildren(n) {
			w.bindTargets(c, bound)
		}
	case "attribute", "subscript":
		// Not a name binding; but the base object is a read.
		w.walkDirectExpr(n, bound)
	default:
		for _, c := range namedChildren(n) {
			w.bindTargets(c, bound)
		}
	}
}

func (w *walker) handleDeleteTarget(n *sitter.Node, bound map[string]bool) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		w.result.addDeleted(text(n, w.source))
	case "pattern_list", "tuple", "list":
		for _, c := range namedChildren(n) {
			w.handleDeleteTarget(c, bound)
		}
	default:
		w.walkDirectExpr(n, bound)
	}
}
