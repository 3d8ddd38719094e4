package sqlref

import (
	"github.com/reactive-notebook/nbcore/api"
)

// Created describes one CREATE TABLE/VIEW/SCHEMA definition found in a SQL
// statement (spec.md §4.3).
type Created struct {
	Name      string // unqualified last component
	Qualified string // full dotted form with per-component quotes removed, if dotted
	Kind      api.VariableKind
}

// ExtractCreated finds CREATE [OR REPLACE] [TEMP|TEMPORARY] TABLE|VIEW
// [IF NOT EXISTS] <name> and CREATE SCHEMA [IF NOT EXISTS] <name>
// definitions in a SQL statement, following the state machine described in
// spec.md §4.3 (grounded on original_source's find_created_tables token
// walk, extended to VIEW/SCHEMA per spec.md §9's symmetric-treatment
// assumption).
func ExtractCreated(sql string) []Created {
	toks := Tokenize(sql)
	var out []Created

	isKw := func(i int, kw string) bool {
		return i < len(toks) && toks[i].Lower == kw
	}

	for i := 0; i < len(toks); i++ {
		if !isKw(i, "create") {
			continue
		}
		j := i + 1
		if isKw(j, "or") {
			j += 2 // OR REPLACE
		}
		if isKw(j, "temp") || isKw(j, "temporary") {
			j++
		}

		var kind api.VariableKind
		switch {
		case isKw(j, "table"):
			kind = api.KindTable
			j++
		case isKw(j, "view"):
			kind = api.KindView
			j++
		case isKw(j, "schema"):
			kind = api.KindSchema
			j++
		default:
			continue
		}

		if isKw(j, "if") {
			j += 3 // IF NOT EXISTS
		}
		if j >= len(toks) {
			continue
		}

		name, qualified := readDottedName(toks, j)
		if name == "" {
			continue
		}
		out = append(out, Created{Name: name, Qualified: qualified, Kind: kind})
	}
	return out
}

// readDottedName reads a possibly-dotted identifier starting at index j:
// `name`, `"name"`, or `a.b.c` (with optional quoting per component).
// Returns the unqualified last component and, if dotted, the full
// qualified form. Handles both lexer shapes a SQL grammar might produce for
// a dotted path: `.` as its own token between identifiers, or the whole
// path folded into one token's text.
func readDottedName(toks []Token, j int) (name, qualified string) {
	if j >= len(toks) {
		return "", ""
	}
	parts := splitDotted(unquote(toks[j].Text))
	k := j + 1
	for k+1 < len(toks) && toks[k].Text == "." {
		parts = append(parts, splitDotted(unquote(toks[k+1].Text))...)
		k += 2
	}
	if len(parts) == 0 {
		return "", ""
	}
	last := parts[len(parts)-1]
	if len(parts) == 1 {
		return last, ""
	}
	q := parts[0]
	for _, p := range parts[1:] {
		q += "." + p
	}
	return last, q
}

// splitDotted splits a token's text on literal '.' separators, in case the
// lexer folded a dotted path into a single token instead of emitting '.' as
// its own token.
func splitDotted(s string) []string {
	var parts []string
	cur := ""
	for _, r := range s {
		if r == '.' {
			parts = append(parts, cur)
			cur = ""
			continue
		}
		cur += string(r)
	}
	parts = append(parts, cur)
	return parts
}

// ExtractReferences finds table/view references following FROM and JOIN
// keywords (spec.md §4.3). Each returned string is the reference as written
// (possibly dotted) with quotes removed from each component; the caller is
// responsible for deciding whether
// it resolves to a local def or an external ref.
func ExtractReferences(sql string) []string {
	toks := Tokenize(sql)
	var out []string
	seen := map[string]bool{}

	for i := 0; i < len(toks); i++ {
		if toks[i].Lower != "from" && toks[i].Lower != "join" {
			continue
		}
		j := i + 1
		if j >= len(toks) {
			continue
		}
		// Skip a leading subquery `(` — not a name reference.
		if toks[j].Text == "(" {
			continue
		}
		name, qualified := readDottedName(toks, j)
		ref := qualified
		if ref == "" {
			ref = name
		}
		if ref == "" || isSQLKeyword(ref) {
			continue
		}
		if !seen[ref] {
			seen[ref] = true
			out = append(out, ref)
		}
	}
	return out
}

var sqlKeywords = map[string]bool{
	"select": true, "where": true, "group": true, "order": true,
	"having": true, "limit": true, "as": true, "on": true,
}

func isSQLKeyword(s string) bool {
	return sqlKeywords[s]
}
