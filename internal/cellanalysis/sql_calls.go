package cellanalysis

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/reactive-notebook/nbcore/api"
)

// sqlCallSite is one `.sql(...)` / `.execute(...)` call found in a cell,
// with its argument normalized to a literal SQL string (spec.md §4.3).
type sqlCallSite struct {
	Text string
}

// findSQLCalls walks the whole cell body for call expressions whose callee
// is an attribute named "sql" or "execute", capturing the first argument
// when it is a plain string or an f-string (f-string interpolations are
// rendered as a single-quoted placeholder so the SQL tokenizer sees valid,
// if opaque, syntax — mirrors original_source's normalize_sql_f_string).
func findSQLCalls(stmts []*sitter.Node, source []byte) []sqlCallSite {
	var out []sqlCallSite
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "call" {
			if sql, ok := sqlCallArgument(n, source); ok {
				out = append(out, sqlCallSite{Text: sql})
			}
		}
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			walk(n.NamedChild(i))
		}
	}
	for _, s := range stmts {
		walk(s)
	}
	return out
}

func sqlCallArgument(call *sitter.Node, source []byte) (string, bool) {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "attribute" {
		return "", false
	}
	attr := fn.ChildByFieldName("attribute")
	if attr == nil {
		return "", false
	}
	name := text(attr, source)
	if name != "sql" && name != "execute" {
		return "", false
	}
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return "", false
	}
	first := args.NamedChild(0)
	return stringLiteralAsSQL(first, source)
}

// stringLiteralAsSQL renders a string/f-string AST node as a literal SQL
// source text, replacing each `{...}` interpolation with `'_'` so the
// tokenizer sees a syntactically plausible placeholder instead of Python
// expression text.
func stringLiteralAsSQL(n *sitter.Node, source []byte) (string, bool) {
	if n == nil || n.Type() != "string" {
		return "", false
	}
	var b []byte
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		c := n.Child(i)
		switch c.Type() {
		case "string_start", "string_end":
			// quote delimiters, not part of the SQL text
		case "interpolation":
			b = append(b, []byte("'_'")...)
		case "string_content", "escape_sequence":
			b = append(b, []byte(text(c, source))...)
		default:
			b = append(b, []byte(text(c, source))...)
		}
	}
	return string(b), true
}
