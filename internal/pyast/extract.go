package pyast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// TrailingStrip selects which trailing statement kind ExtractBody should
// drop from a cell body before emitting it, per spec.md §4.1.
type TrailingStrip int

const (
	StripNone TrailingStrip = iota
	StripReturn
	StripPass
)

// ExtractBody slices a function/`with` block's body out of the original
// source and returns it dedented and with its trailing marker statement
// removed. bodyNode must be the grammar's "block" node (the `body` field of
// a function_definition or the body of a `with` statement).
//
// Tree-sitter's block node already spans exactly the body — unlike a
// generic Python AST, there is no need to seek past the decorator list or
// the signature's closing "):" by hand; that's the whole reason this
// package consumes tree-sitter rather than a line/column AST.
func ExtractBody(bodyNode *sitter.Node, source []byte, strip TrailingStrip) string {
	if bodyNode == nil {
		return ""
	}

	stmts := NamedChildren(bodyNode)
	// Drop the single trailing marker statement, if it matches.
	if len(stmts) > 0 {
		last := stmts[len(stmts)-1]
		switch strip {
		case StripReturn:
			if last.Type() == "return_statement" {
				stmts = stmts[:len(stmts)-1]
			}
		case StripPass:
			if last.Type() == "pass_statement" {
				stmts = stmts[:len(stmts)-1]
			}
		}
	}

	// Comments at either end of the body stay in the span, like interior
	// ones (they're real body content). If nothing but comments remain, the
	// body is empty.
	content := stmts
	allComments := true
	for _, s := range content {
		if s.Type() != "comment" {
			allComments = false
			break
		}
	}
	if len(content) == 0 || allComments {
		return ""
	}

	start := content[0]
	end := content[len(content)-1]

	// Widen the span back over the first statement's own indentation so its
	// line dedents together with the rest of the body.
	from := start.StartByte()
	for from > 0 && (source[from-1] == ' ' || source[from-1] == '\t') {
		from--
	}
	raw := source[from:end.EndByte()]
	return dedent(string(raw))
}

// dedent strips the minimum common leading whitespace from every non-blank
// line and trims trailing newlines.
func dedent(s string) string {
	lines := strings.Split(s, "\n")

	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return strings.TrimRight(s, "\n")
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			out[i] = ""
			continue
		}
		if len(line) >= minIndent {
			out[i] = line[minIndent:]
		} else {
			out[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}

// ExtractFullSpan returns the verbatim source text of a node, used for cell
// kinds (function/class cells, unparsable cells) whose "code" is the whole
// definition rather than just its body.
func ExtractFullSpan(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}
