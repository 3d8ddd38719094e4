// Package sqlref implements the SQL Reference Analyzer (spec.md §4.4): it
// extracts CREATE TABLE/VIEW/SCHEMA definitions and FROM/JOIN references out
// of a captured SQL statement string, and exposes the hierarchical matching
// contract (api.SQLRef) the dependency graph's edge computer relies on for
// catalog.schema.table resolution.
package sqlref

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	sqllang "github.com/smacker/go-tree-sitter/sql"
)

// Token is one lexical unit of a SQL statement: its literal text and byte
// offset in the source string.
type Token struct {
	Text       string
	Lower      string
	StartByte  int
}

// Tokenize lexes a SQL statement using the tree-sitter SQL grammar and
// flattens its leaves into a token stream, the same shape the original
// implementation built from DuckDB's tokenizer (original_source
// marimo/_ast/sql_visitor.py find_created_tables). Tree-sitter's grammar
// coverage of arbitrary SQL dialects is uneven, so rather than pattern-
// matching on specific (and dialect-dependent) node type names, we only
// rely on it for robust lexing — splitting the text into keyword/
// identifier/punctuation leaves, including inside malformed or
// placeholder-bearing statements (f-string interpolations are rendered as
// `'_'` by the cell analyzer before reaching here) — and do the CREATE/FROM
// state-machine matching ourselves over that flat stream, exactly like the
// original's token-index walk.
func Tokenize(sql string) []Token {
	parser := sitter.NewParser()
	parser.SetLanguage(sqllang.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(sql))
	if err != nil || tree == nil {
		return fallbackTokenize(sql)
	}
	var toks []Token
	collectLeaves(tree.RootNode(), []byte(sql), &toks)
	if len(toks) == 0 {
		return fallbackTokenize(sql)
	}
	return toks
}

func collectLeaves(n *sitter.Node, source []byte, out *[]Token) {
	if n == nil {
		return
	}
	if n.ChildCount() == 0 {
		txt := n.Content(source)
		if strings.TrimSpace(txt) == "" {
			return
		}
		*out = append(*out, Token{Text: txt, Lower: strings.ToLower(txt), StartByte: int(n.StartByte())})
		return
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		collectLeaves(n.Child(i), source, out)
	}
}

// fallbackTokenize is a whitespace/punctuation splitter used when the
// tree-sitter SQL grammar fails outright on pathological input (e.g. a
// statement that's mostly f-string placeholders).
func fallbackTokenize(sql string) []Token {
	var toks []Token
	i := 0
	n := len(sql)
	isSep := func(b byte) bool {
		return b == ' ' || b == '\t' || b == '\n' || b == '\r' ||
			b == '(' || b == ')' || b == ',' || b == ';'
	}
	for i < n {
		for i < n && isSep(sql[i]) {
			i++
		}
		if i >= n {
			break
		}
		start := i
		switch {
		case sql[i] == '"' || sql[i] == '`' || sql[i] == '\'':
			quote := sql[i]
			i++
			for i < n && sql[i] != quote {
				i++
			}
			if i < n {
				i++
			}
		case sql[i] == '.':
			i++
		default:
			for i < n && !isSep(sql[i]) && sql[i] != '.' {
				i++
			}
		}
		text := sql[start:i]
		toks = append(toks, Token{Text: text, Lower: strings.ToLower(text), StartByte: start})
	}
	return toks
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '`' && last == '`') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
