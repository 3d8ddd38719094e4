package api

import "sync/atomic"

// RuntimeState is the scheduler-owned status of a cell. The core only
// exposes opaque getters/setters for it (spec.md §3).
type RuntimeState string

const (
	StateIdle               RuntimeState = "idle"
	StateQueued             RuntimeState = "queued"
	StateRunning             RuntimeState = "running"
	StateDisabledTransitively RuntimeState = "disabled-transitively"
	StateInterrupted         RuntimeState = "interrupted"
)

// ImportWorkspace tracks whether a cell is an import block, and which of
// its imports have already been satisfied by a prior run (spec.md §3,
// §4.3). Eligible for the carry-over optimization on re-registration.
type ImportWorkspace struct {
	IsImportBlock bool
	ImportedDefs  map[Name]bool
}

// SQLRef is a hierarchical name parsed from a SQL string: `a`, `a.b` or
// `a.b.c`. The full dotted text is the registry key used in CellImpl.SQLRefs.
type SQLRef struct {
	Full []Name // 1..3 path components, outermost first (catalog, schema, table)
}

// String renders the ref in dotted form.
func (r SQLRef) String() string {
	s := ""
	for i, p := range r.Full {
		if i > 0 {
			s += "."
		}
		s += string(p)
	}
	return s
}

// componentForKind returns the path component a definition of the given
// kind would resolve against, per spec.md §4.4's length-dependent table.
// ok is false when the ref is too short to have a component for that kind.
func (r SQLRef) componentForKind(kind VariableKind) (Name, bool) {
	n := len(r.Full)
	if n == 0 {
		return "", false
	}
	if n == 1 {
		// A bare name matches a def of any kind.
		return r.Full[0], true
	}
	switch kind {
	case KindTable, KindView:
		return r.Full[n-1], true
	case KindSchema:
		if n >= 2 {
			return r.Full[n-2], true
		}
	case KindCatalog:
		if n >= 3 {
			return r.Full[n-3], true
		}
	}
	return "", false
}

// MatchesHierarchicalRef reports whether this ref resolves to a definition
// named otherName of kind otherKind, considering that definition's own
// qualified name so that e.g. `FROM s.t` does not match a table `t` that
// was actually created as `s2.t` (spec.md §4.4).
func (r SQLRef) MatchesHierarchicalRef(otherName Name, otherQualifiedName Name, otherKind VariableKind) bool {
	comp, ok := r.componentForKind(otherKind)
	if !ok || comp != otherName {
		return false
	}
	if otherQualifiedName == "" || otherQualifiedName == otherName {
		return true
	}
	// The other def has a qualified name of its own (e.g. "s2.t"): the
	// ref's own qualifying prefix must agree with it.
	return r.String() == string(otherQualifiedName) || hasSuffixPath(string(otherQualifiedName), r.String())
}

func hasSuffixPath(qualified, ref string) bool {
	if len(qualified) < len(ref) {
		return false
	}
	suffix := qualified[len(qualified)-len(ref):]
	return suffix == ref && (len(qualified) == len(ref) || qualified[len(qualified)-len(ref)-1] == '.')
}

// ContainsHierarchicalRef reports whether a definition named defName of
// kind defKind appears as a path component of this ref at the position its
// kind implies. This is the reverse query used by the registry during edge
// computation (spec.md §4.4, §4.6 find_sql_hierarchical_matches).
func (r SQLRef) ContainsHierarchicalRef(defName Name, defKind VariableKind) bool {
	comp, ok := r.componentForKind(defKind)
	return ok && comp == defName
}

// ParseSQLRef parses a dotted hierarchical name into a SQLRef. Each
// component is trimmed of SQL quoting (" or `).
func ParseSQLRef(dotted string) SQLRef {
	var parts []Name
	cur := ""
	for _, r := range dotted {
		if r == '.' {
			parts = append(parts, Name(unquoteIdent(cur)))
			cur = ""
			continue
		}
		cur += string(r)
	}
	parts = append(parts, Name(unquoteIdent(cur)))
	return SQLRef{Full: parts}
}

func unquoteIdent(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '`' && s[len(s)-1] == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// CellConfig is the decorator-derived subset of CellOptions relevant to
// scheduling: disabled / hide-code flags.
type CellConfig struct {
	Disabled bool
	HideCode bool
}

// CellImpl is the analyzed form of one cell (spec.md §3).
type CellImpl struct {
	CellId      CellId
	Code        string
	Key         string // content hash, used for cache identity
	Language    Language
	Config      CellConfig
	IsCoroutine bool
	Name        string

	Defs         map[Name]bool
	Refs         map[Name]bool
	DeletedRefs  map[Name]bool
	VariableData map[Name][]VariableData
	Imports      map[ImportData]bool
	ImportedNamespaces map[Name]bool
	SQLRefs      map[Name]SQLRef
	SQLs         []string
	ImportWorkspace ImportWorkspace

	stale           atomic.Bool
	runtimeState    atomic.Value // RuntimeState
}

// NewCellImpl allocates a CellImpl with initialized collections.
func NewCellImpl(id CellId, code, key string, lang Language) *CellImpl {
	c := &CellImpl{
		CellId:             id,
		Code:               code,
		Key:                key,
		Language:           lang,
		Defs:               map[Name]bool{},
		Refs:               map[Name]bool{},
		DeletedRefs:        map[Name]bool{},
		VariableData:       map[Name][]VariableData{},
		Imports:            map[ImportData]bool{},
		ImportedNamespaces: map[Name]bool{},
		SQLRefs:            map[Name]SQLRef{},
	}
	c.runtimeState.Store(StateIdle)
	return c
}

// Stale reports the scheduler-owned staleness flag.
func (c *CellImpl) Stale() bool { return c.stale.Load() }

// SetStale sets the scheduler-owned staleness flag.
func (c *CellImpl) SetStale(v bool) { c.stale.Store(v) }

// RuntimeStateValue returns the scheduler-owned runtime state.
func (c *CellImpl) RuntimeStateValue() RuntimeState {
	if v, ok := c.runtimeState.Load().(RuntimeState); ok {
		return v
	}
	return StateIdle
}

// SetRuntimeState sets the scheduler-owned runtime state.
func (c *CellImpl) SetRuntimeState(s RuntimeState) { c.runtimeState.Store(s) }

// DisabledTransitively reports whether the cell's runtime state reflects an
// ancestor being disabled.
func (c *CellImpl) DisabledTransitively() bool {
	return c.RuntimeStateValue() == StateDisabledTransitively
}

// CanonicalVariableData returns the last (canonical) VariableData recorded
// for a name, and whether the name has any recorded data at all.
func (c *CellImpl) CanonicalVariableData(name Name) (VariableData, bool) {
	list := c.VariableData[name]
	if len(list) == 0 {
		return VariableData{}, false
	}
	return list[len(list)-1], true
}
