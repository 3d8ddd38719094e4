package graph

import "github.com/reactive-notebook/nbcore/api"

// EdgeComputer derives parent/child edges for a newly-built cell against
// the current topology and definition registry (spec.md §4.8).
type EdgeComputer struct {
	topology *Topology
	registry *DefinitionRegistry
}

// NewEdgeComputer returns an edge computer bound to a topology/registry
// pair.
func NewEdgeComputer(t *Topology, r *DefinitionRegistry) *EdgeComputer {
	return &EdgeComputer{topology: t, registry: r}
}

// ComputeEdgesForCell returns the parents and children of cell c, given
// that c.variable_data has already been registered with the registry and
// c has NOT yet been inserted as a topology node's edges (the node itself
// must already exist so registry/topology queries about other cells are
// unaffected by c).
func (e *EdgeComputer) ComputeEdgesForCell(cid api.CellId, c *api.CellImpl) (parents, children []Edge) {
	children = e.childrenViaDefs(cid, c)
	parents = e.parentsViaRefs(cid, c)

	delParents, delChildren := e.deleteSemantics(cid, c)
	parents = append(parents, delParents...)
	children = append(children, delChildren...)

	return dedupeEdges(parents), dedupeEdges(children)
}

// childrenViaDefs implements spec.md §4.8 step 1: for each name c defines,
// every other registered cell whose refs contain that name (subject to the
// language/hierarchical rules) becomes c's child.
func (e *EdgeComputer) childrenViaDefs(cid api.CellId, c *api.CellImpl) []Edge {
	var out []Edge
	for name := range c.Defs {
		canon, ok := e.registry.Canonical(cid, name)
		if !ok {
			continue
		}
		for _, other := range e.topology.AllCellIDs() {
			if other == cid {
				continue
			}
			oc, ok := e.topology.Cell(other)
			if !ok || !oc.Refs[name] {
				continue
			}
			if e.edgeAllowed(canon, oc, name) {
				out = append(out, Edge{Parent: cid, Child: other})
			}
		}
	}
	return out
}

// parentsViaRefs implements spec.md §4.8 step 2.
func (e *EdgeComputer) parentsViaRefs(cid api.CellId, c *api.CellImpl) []Edge {
	var out []Edge
	seen := map[api.CellId]bool{}
	addParent := func(p api.CellId) {
		if p == cid || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, Edge{Parent: p, Child: cid})
	}

	for name := range c.Refs {
		for _, p := range e.registry.Definers(name, cid) {
			if !e.topology.Has(p) {
				continue
			}
			canon, ok := e.registry.Canonical(p, name)
			if !ok {
				continue
			}
			if e.edgeAllowed(canon, c, name) {
				addParent(p)
			}
		}

		if ref, isSQLRef := c.SQLRefs[name]; isSQLRef {
			for _, match := range e.registry.FindSQLHierarchicalMatches(ref) {
				for _, p := range match.Cells {
					if p == cid {
						continue
					}
					canon, ok := e.registry.Canonical(p, match.Name)
					if !ok {
						continue
					}
					if !canon.Kind.IsSQL() {
						continue
					}
					if !ref.MatchesHierarchicalRef(match.Name, canon.QualifiedName, match.Kind) {
						continue
					}
					if e.edgeAllowed(canon, c, match.Name) {
						addParent(p)
					}
				}
			}
		}
	}
	return out
}

// edgeAllowed applies the cross-language opacity rule: a SQL-kind def never
// produces an edge to a Python-kind ref (the SQL namespace doesn't leak); a
// Python-kind def may produce an edge to a SQL-kind ref. When both sides are
// SQL and the def's kind is hierarchical, the ref must confirm the
// hierarchy via MatchesHierarchicalRef.
func (e *EdgeComputer) edgeAllowed(defCanon api.VariableData, readerCell *api.CellImpl, name api.Name) bool {
	readerIsSQL := readerCell.Language == api.LangSQL
	if defCanon.Language == api.LangSQL && !readerIsSQL {
		return false
	}
	if defCanon.Language == api.LangSQL && readerIsSQL {
		if ref, ok := readerCell.SQLRefs[name]; ok {
			return ref.MatchesHierarchicalRef(name, defCanon.QualifiedName, defCanon.Kind)
		}
	}
	return true
}

// deleteSemantics implements spec.md §4.8 step 3: if another cell deletes a
// name c refers to, that deleter becomes a child of c; if c deletes a name,
// every other cell referring to that name becomes a parent of c.
func (e *EdgeComputer) deleteSemantics(cid api.CellId, c *api.CellImpl) (parents, children []Edge) {
	for name := range c.Refs {
		for _, other := range e.topology.AllCellIDs() {
			if other == cid {
				continue
			}
			oc, ok := e.topology.Cell(other)
			if ok && oc.DeletedRefs[name] {
				children = append(children, Edge{Parent: cid, Child: other})
			}
		}
	}
	for name := range c.DeletedRefs {
		for _, other := range e.topology.AllCellIDs() {
			if other == cid {
				continue
			}
			oc, ok := e.topology.Cell(other)
			if ok && oc.Refs[name] {
				parents = append(parents, Edge{Parent: other, Child: cid})
			}
		}
	}
	return parents, children
}

func dedupeEdges(edges []Edge) []Edge {
	seen := map[Edge]bool{}
	var out []Edge
	for _, e := range edges {
		if e.Parent == e.Child {
			continue // self-edges are never produced
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
