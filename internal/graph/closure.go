package graph

import "github.com/reactive-notebook/nbcore/api"

// TransitiveReferences walks the transitive closure of cids over children
// (or parents, when children is false), stopping descent past any cell for
// which predicate returns false. inclusive controls whether cids themselves
// are included in the result. A nil predicate always continues.
func GetTransitiveReferences(co *Coordinator, cids []api.CellId, children, inclusive bool, predicate func(api.CellId) bool) []api.CellId {
	var out []api.CellId
	co.WithLock(func() {
		step := co.topology.ChildrenOf
		if !children {
			step = co.topology.ParentsOf
		}
		seen := map[api.CellId]bool{}
		var visit func(cid api.CellId, root bool)
		visit = func(cid api.CellId, root bool) {
			if seen[cid] {
				return
			}
			seen[cid] = true
			if !root || inclusive {
				out = append(out, cid)
			}
			if predicate != nil && !predicate(cid) {
				return
			}
			for _, next := range step(cid) {
				visit(next, false)
			}
		}
		for _, cid := range cids {
			visit(cid, true)
		}
	})
	return out
}

// PruneCellsForOverrides returns the subset of currently-registered cells
// that do not themselves define an overridden name, i.e. the cells that
// would still need to run once those names are supplied externally rather
// than computed (spec.md §4.11, §8 S8: a consumer of an overridden name is
// not pruned, only its definer is). predicate, when non-nil, is consulted
// per candidate definer and may veto pruning it — the generalized form of
// `prune_cells_for_overrides`'s `excluded` cell id.
func PruneCellsForOverrides(co *Coordinator, overrides map[api.Name]bool, predicate func(api.CellId) bool) []api.CellId {
	pruned := map[api.CellId]bool{}
	co.WithLock(func() {
		for name := range overrides {
			for _, cid := range co.registry.AllDefiners(name) {
				if predicate == nil || predicate(cid) {
					pruned[cid] = true
				}
			}
		}
	})

	var out []api.CellId
	co.WithLock(func() {
		for _, cid := range co.topology.AllCellIDs() {
			if !pruned[cid] {
				out = append(out, cid)
			}
		}
	})
	return out
}
