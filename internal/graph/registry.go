package graph

import "github.com/reactive-notebook/nbcore/api"

// DefinitionRegistry maps a name to the set of cells that define it, plus a
// kind-tagged variant so a Python name and a same-named SQL table live in
// separate namespaces (spec.md §4.6).
type DefinitionRegistry struct {
	definitions     map[api.Name]map[api.CellId]bool
	typedDefs       map[typedKey]map[api.CellId]bool
	definitionTypes map[api.Name]map[api.VariableKind]bool

	// canonical records the last-registered canonical VariableData per
	// (cell, name), needed by find_sql_hierarchical_matches and by the
	// cross-language edge rule in the edge computer.
	canonical map[api.CellId]map[api.Name]api.VariableData
}

type typedKey struct {
	name api.Name
	kind api.VariableKind
}

// NewDefinitionRegistry returns an empty registry.
func NewDefinitionRegistry() *DefinitionRegistry {
	return &DefinitionRegistry{
		definitions:     map[api.Name]map[api.CellId]bool{},
		typedDefs:       map[typedKey]map[api.CellId]bool{},
		definitionTypes: map[api.Name]map[api.VariableKind]bool{},
		canonical:       map[api.CellId]map[api.Name]api.VariableData{},
	}
}

// RegisterDefinition records that cellId defines name, using the last entry
// of variableDataList as canonical. Returns the set of sibling cells
// already defining name (excluding cellId); the coordinator does not act on
// them directly, the validator turns them into a structural error.
func (r *DefinitionRegistry) RegisterDefinition(cellID api.CellId, name api.Name, variableDataList []api.VariableData) []api.CellId {
	if len(variableDataList) == 0 {
		return nil
	}
	canon := variableDataList[len(variableDataList)-1]

	if r.canonical[cellID] == nil {
		r.canonical[cellID] = map[api.Name]api.VariableData{}
	}
	r.canonical[cellID][name] = canon

	siblings := r.siblings(cellID, name)

	allowed := true
	existing := len(r.definitions[name]) > 0
	sameKindExists := r.hasTypedDefiners(name, canon.Kind)
	if existing && !sameKindExists {
		// A same-named def of a different kind already exists (e.g. a
		// Python variable `df` and a SQL table `df`). Keep the namespaces
		// separate unless this entry shares its qualified name with an
		// existing one, or isn't SQL at all.
		if canon.Language == api.LangSQL {
			allowed = r.sharesQualifiedName(name, canon)
		}
	}

	if allowed {
		if r.definitions[name] == nil {
			r.definitions[name] = map[api.CellId]bool{}
		}
		r.definitions[name][cellID] = true
	}

	key := typedKey{name: name, kind: canon.Kind}
	if r.typedDefs[key] == nil {
		r.typedDefs[key] = map[api.CellId]bool{}
	}
	r.typedDefs[key][cellID] = true

	if r.definitionTypes[name] == nil {
		r.definitionTypes[name] = map[api.VariableKind]bool{}
	}
	r.definitionTypes[name][canon.Kind] = true

	return siblings
}

func (r *DefinitionRegistry) siblings(cellID api.CellId, name api.Name) []api.CellId {
	var out []api.CellId
	for id := range r.definitions[name] {
		if id != cellID {
			out = append(out, id)
		}
	}
	return out
}

func (r *DefinitionRegistry) hasTypedDefiners(name api.Name, kind api.VariableKind) bool {
	return len(r.typedDefs[typedKey{name: name, kind: kind}]) > 0
}

func (r *DefinitionRegistry) sharesQualifiedName(name api.Name, canon api.VariableData) bool {
	for id := range r.definitions[name] {
		if other, ok := r.canonical[id][name]; ok {
			if other.QualifiedName == canon.QualifiedName {
				return true
			}
		}
	}
	return false
}

// UnregisterDefinitions removes cellID from each name's definer set. When
// the last definer of a name goes away, its typed entries and
// definition_types record are dropped too.
func (r *DefinitionRegistry) UnregisterDefinitions(cellID api.CellId, defs map[api.Name]bool) {
	for name := range defs {
		canon, hasCanon := r.canonical[cellID][name]

		if set := r.definitions[name]; set != nil {
			delete(set, cellID)
			if len(set) == 0 {
				delete(r.definitions, name)
			}
		}
		if hasCanon {
			key := typedKey{name: name, kind: canon.Kind}
			if set := r.typedDefs[key]; set != nil {
				delete(set, cellID)
				if len(set) == 0 {
					delete(r.typedDefs, key)
				}
			}
		}
		if _, stillDefined := r.definitions[name]; !stillDefined {
			delete(r.definitionTypes, name)
			for k := range r.typedDefs {
				if k.name == name {
					delete(r.typedDefs, k)
				}
			}
		}
	}
	delete(r.canonical, cellID)
}

// Definers returns the cells that define name, excluding excluded.
func (r *DefinitionRegistry) Definers(name api.Name, excluded api.CellId) []api.CellId {
	var out []api.CellId
	for id := range r.definitions[name] {
		if id != excluded {
			out = append(out, id)
		}
	}
	return out
}

// AllDefiners returns every definer of name, unfiltered.
func (r *DefinitionRegistry) AllDefiners(name api.Name) []api.CellId {
	out := make([]api.CellId, 0, len(r.definitions[name]))
	for id := range r.definitions[name] {
		out = append(out, id)
	}
	return out
}

// Canonical returns the canonical VariableData for a (cell, name) pair.
func (r *DefinitionRegistry) Canonical(cellID api.CellId, name api.Name) (api.VariableData, bool) {
	vd, ok := r.canonical[cellID][name]
	return vd, ok
}

// DefinitionNames returns every name with at least one definer.
func (r *DefinitionRegistry) DefinitionNames() []api.Name {
	out := make([]api.Name, 0, len(r.definitions))
	for name := range r.definitions {
		out = append(out, name)
	}
	return out
}

// FindSQLHierarchicalMatches scans typedDefs for every (cellIDs, name) pair
// where ref contains a hierarchical match against that name/kind
// (spec.md §4.6). Skips defs with no sibling resolution details needed
// beyond name/kind since qualified-name filtering happens in the edge
// computer via Canonical.
func (r *DefinitionRegistry) FindSQLHierarchicalMatches(ref api.SQLRef) []HierarchicalMatch {
	var out []HierarchicalMatch
	for key, cells := range r.typedDefs {
		if !ref.ContainsHierarchicalRef(key.name, key.kind) {
			continue
		}
		ids := make([]api.CellId, 0, len(cells))
		for id := range cells {
			ids = append(ids, id)
		}
		out = append(out, HierarchicalMatch{Name: key.name, Kind: key.kind, Cells: ids})
	}
	return out
}

// HierarchicalMatch is one (name, kind) bucket whose definers are reachable
// via a hierarchical SQL ref's path components.
type HierarchicalMatch struct {
	Name  api.Name
	Kind  api.VariableKind
	Cells []api.CellId
}
