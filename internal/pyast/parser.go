// Package pyast narrows the general-purpose tree-sitter Python grammar down
// to the tagged-variant view the rest of the engine needs: a parse entry
// point, source-span extraction, and small helpers for walking named
// children (spec.md §9, "Dynamic attribute dispatch on AST nodes").
// Consumers still compare `node.Type()` against grammar node names
// themselves.
package pyast

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Language returns the shared tree-sitter Python grammar, mirroring the
// teacher's internal/ingest/language.go extension-to-grammar table.
func Language() *sitter.Language {
	return python.GetLanguage()
}

// Parse parses Python source into a tree-sitter tree. The caller owns the
// returned tree and must call Close when done with it.
func Parse(ctx context.Context, source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(Language())
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("pyast: parse: %w", err)
	}
	return tree, nil
}

// HasError reports whether the tree contains any ERROR or MISSING nodes,
// i.e. whether the source failed to parse cleanly.
func HasError(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	if n.IsError() || n.IsMissing() {
		return true
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if HasError(n.Child(i)) {
			return true
		}
	}
	return false
}

// Text returns the verbatim source text spanned by a node.
func Text(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(source)
}

// NamedChildren returns a node's named children as a slice, skipping
// anonymous tokens (punctuation, keywords) the grammar doesn't tag.
func NamedChildren(n *sitter.Node) []*sitter.Node {
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

// ChildByField is a nil-safe wrapper around Node.ChildByFieldName.
func ChildByField(n *sitter.Node, field string) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(field)
}

// Pos is a 0-indexed (line, column) source position, mirroring the
// (lineno, col_offset) pairs spec.md's AST-shape validator reports.
type Pos struct {
	Line int
	Col  int
}

// StartPos returns a node's starting position.
func StartPos(n *sitter.Node) Pos {
	p := n.StartPoint()
	return Pos{Line: int(p.Row), Col: int(p.Column)}
}

// EndPos returns a node's ending position.
func EndPos(n *sitter.Node) Pos {
	p := n.EndPoint()
	return Pos{Line: int(p.Row), Col: int(p.Column)}
}
