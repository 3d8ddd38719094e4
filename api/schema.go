// Package api defines the wire vocabulary shared between the notebook
// parser, the semantic analyzer and the dependency graph: cell identity,
// variable classification, import metadata and the structural error
// taxonomy the runtime surfaces to users.
package api

import "fmt"

// CellId is an opaque, stable identifier for a cell within a notebook.
// Assigned at registration time; never reused for the lifetime of a graph.
type CellId string

// SetupCellName is the reserved identifier assigned to a notebook's
// `with app.setup:` block, if present.
const SetupCellName CellId = "setup"

// String implements fmt.Stringer so CellId reads cleanly in error messages.
func (c CellId) String() string { return string(c) }

// VariableKind classifies a binding produced by a cell.
type VariableKind string

const (
	KindVariable VariableKind = "variable"
	KindFunction VariableKind = "function"
	KindClass    VariableKind = "class"
	KindImport   VariableKind = "import"
	KindTable    VariableKind = "table"
	KindView     VariableKind = "view"
	KindSchema   VariableKind = "schema"
	KindCatalog  VariableKind = "catalog"
)

// IsSQL reports whether the kind is one of the SQL-specific variants.
func (k VariableKind) IsSQL() bool {
	switch k {
	case KindTable, KindView, KindSchema, KindCatalog:
		return true
	default:
		return false
	}
}

// Language identifies the dialect that produced a binding.
type Language string

const (
	LangPython Language = "python"
	LangSQL    Language = "sql"
)

// Name is a bound or referenced identifier.
type Name string

// ImportData describes one import statement. Two ImportData values are
// equal iff all four fields are equal; this identity drives the import-block
// carry-over optimization (spec.md §3, §4.3).
type ImportData struct {
	Definition     Name
	ImportedSymbol Name // empty for `import a.b.c`
	Module         Name
	ImportLevel    int // number of leading dots for `from . import x`; 0 otherwise
}

// Equal reports field-wise equality, the identity relation used for
// import-block carry-over.
func (d ImportData) Equal(other ImportData) bool {
	return d.Definition == other.Definition &&
		d.ImportedSymbol == other.ImportedSymbol &&
		d.Module == other.Module &&
		d.ImportLevel == other.ImportLevel
}

// AnnotationData holds the names referenced by a type annotation, tracked
// separately from runtime refs for code-gen purposes even though they count
// as refs for dependency purposes (spec.md §4.3).
type AnnotationData struct {
	Refs []Name
}

// VariableData is per-binding metadata for one definition of a name within
// a cell. A cell may rebind a name multiple times; CellImpl keeps the full
// list per name and treats the last entry as canonical.
type VariableData struct {
	Kind           VariableKind
	Language       Language
	RequiredRefs   []Name // names the binding's body depends on
	UnboundedRefs  []Name // references that escape to closure scope
	Annotation     *AnnotationData
	Import         *ImportData
	QualifiedName  Name // dotted SQL form, e.g. "catalog.schema.table"
}

// CellOptions are the recognized `@app.cell(...)` kwargs plus a
// forward-compatible bag for anything else, per spec.md §4.2 / §9.
type CellOptions struct {
	Disabled bool
	HideCode bool
	Column   *int
	// Extras preserves unknown kwargs verbatim for round-trip without
	// infecting the type of the known ones.
	Extras []KV
}

// KV is a literal keyword argument captured verbatim for round-trip.
type KV struct {
	Key   string
	Value Literal
}

// Literal is a Python literal constant value recognized by the AST-shape
// validator: string, number, bool, or None.
type Literal struct {
	Kind  LiteralKind
	Str   string
	Num   float64
	Bool  bool
}

type LiteralKind int

const (
	LiteralNone LiteralKind = iota
	LiteralString
	LiteralNumber
	LiteralBool
)

// Violation is a non-fatal, file-level shape mismatch accumulated while
// parsing a notebook (spec.md §4.2, §7).
type Violation struct {
	Description string
	Lineno      int
	ColOffset   int
}

func (v Violation) String() string {
	return fmt.Sprintf("%d:%d: %s", v.Lineno, v.ColOffset, v.Description)
}

// --- Structural error taxonomy (spec.md §7) -------------------------------

// Error is the common interface implemented by every structural error the
// Validator produces. Errors are values, never exceptions.
type Error interface {
	error
	ErrorKind() string
}

// MultipleDefinitionError reports that `Name` is bound by more than one
// cell; OtherCells lists the other definers (excluding the cell this error
// is attached to).
type MultipleDefinitionError struct {
	Name       Name
	OtherCells []CellId
}

func (e MultipleDefinitionError) Error() string {
	return fmt.Sprintf("variable %q is defined by multiple cells: %v", e.Name, e.OtherCells)
}
func (e MultipleDefinitionError) ErrorKind() string { return "multiple-definition" }

// DeleteNonlocalError reports that a cell deleted a name with a definer
// elsewhere in the graph.
type DeleteNonlocalError struct {
	Name         Name
	DefiningCells []CellId
}

func (e DeleteNonlocalError) Error() string {
	return fmt.Sprintf("cannot delete %q: defined in another cell %v", e.Name, e.DefiningCells)
}
func (e DeleteNonlocalError) ErrorKind() string { return "delete-nonlocal" }

// EdgeWithVars annotates one edge of a cycle (or invalid-root violation)
// with the set of names that realized it.
type EdgeWithVars struct {
	Parent CellId
	Vars   []Name
	Child  CellId
}

// CycleError reports a cycle among cells, with each edge annotated by the
// variable names that created it.
type CycleError struct {
	Edges []EdgeWithVars
}

func (e CycleError) Error() string {
	return fmt.Sprintf("cycle among %d edge(s)", len(e.Edges))
}
func (e CycleError) ErrorKind() string { return "cycle" }

// SetupRootError reports that the setup cell has ancestors, violating its
// requirement to be a source of the DAG.
type SetupRootError struct {
	Edges []EdgeWithVars
}

func (e SetupRootError) Error() string { return "setup cell must not have dependencies" }
func (e SetupRootError) ErrorKind() string { return "setup-root" }

// IncompleteRefsError is raised by override-driven pruning when the
// supplied overrides do not cover every def of a pruned cell.
type IncompleteRefsError struct {
	Missing []Name
}

func (e IncompleteRefsError) Error() string {
	return fmt.Sprintf("overrides missing required refs: %v", e.Missing)
}

// MarimoFileError indicates the file is not recognizable as a notebook at
// all (no app instantiation found).
type MarimoFileError struct {
	Reason string
}

func (e MarimoFileError) Error() string { return "not a marimo notebook: " + e.Reason }

// UnparsableError is raised when attempting to run a notebook containing at
// least one unparsable cell.
type UnparsableError struct {
	Cells []UnparsableCellError
}

// UnparsableCellError reports the syntax error for a single unparsable
// cell.
type UnparsableCellError struct {
	CellId  CellId
	Message string
	Lineno  int
	Offset  int
}

func (e UnparsableError) Error() string {
	return fmt.Sprintf("%d unparsable cell(s)", len(e.Cells))
}
