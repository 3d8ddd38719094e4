// Package notebook implements the AST-shape Validator and notebook parser
// of spec.md §4.2: recognizing a notebook's strict top-level shape over
// general Python source, with error recovery and a tokenizer-based
// fallback scanner, plus round-trip file generation (spec.md §6 writer
// side, SUPPLEMENTED FEATURES).
package notebook

import "github.com/reactive-notebook/nbcore/api"

// Header is the notebook's leading preamble: comments/docstrings before the
// `import marimo` statement.
type Header struct {
	Text string
}

// CellDef is one recognized cell in a notebook's body.
type CellDef struct {
	CellId  api.CellId
	Name    string
	Code    string
	Options api.CellOptions
	Kind    CellKind
}

// CellKind distinguishes the four cell syntaxes spec.md §4.2 recognizes.
type CellKind string

const (
	KindOrdinaryCell CellKind = "cell"
	KindFunctionCell CellKind = "function"
	KindClassCell    CellKind = "class"
	KindUnparsable   CellKind = "unparsable"
)

// UnparsableCell carries a cell's literal source text verbatim when it
// could not be parsed as a `def`/`class`, round-tripped via
// `app._unparsable_cell("...", name=...)`.
type UnparsableCell struct {
	CellId api.CellId
	Name   string
	Source string
}

// AppOptions are the recognized `marimo.App(...)` kwargs.
type AppOptions struct {
	Width       string
	LayoutFile  string
	CSSFile     string
	Extras      []api.KV
}

// Serialization is the file's parsed form (spec.md §3's "Notebook
// Serialization IR"): header, version, app options, optional setup cell,
// ordered cell defs, accumulated violations, and a validity flag.
type Serialization struct {
	Header     Header
	Version    string
	HasVersion bool
	App        AppOptions
	Setup      *CellDef
	Cells      []CellDef
	Violations []api.Violation
	Valid      bool
	UsedScanner bool
}
