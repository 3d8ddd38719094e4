package graph

import (
	"container/heap"

	"github.com/reactive-notebook/nbcore/api"
)

// regHeap is a min-heap of cell ids ordered by registration index, used to
// make source-removal order deterministic (spec.md §4.11).
type regHeap struct {
	ids []api.CellId
	idx func(api.CellId) int
}

func (h regHeap) Len() int { return len(h.ids) }
func (h regHeap) Less(i, j int) bool {
	return h.idx(h.ids[i]) < h.idx(h.ids[j])
}
func (h regHeap) Swap(i, j int) { h.ids[i], h.ids[j] = h.ids[j], h.ids[i] }
func (h *regHeap) Push(x any)   { h.ids = append(h.ids, x.(api.CellId)) }
func (h *regHeap) Pop() any {
	old := h.ids
	n := len(old)
	v := old[n-1]
	h.ids = old[:n-1]
	return v
}

// TopologicalSort orders the currently-registered cells by repeatedly
// removing sources (in-degree 0), breaking ties by registration index. A
// cell on a cycle never reaches in-degree 0, so it and every cell downstream
// of it are absent from the returned order.
func TopologicalSort(co *Coordinator) []api.CellId {
	return sortWithOverrides(co, nil)
}

// SortWithOverrides implements the override-driven pruning of spec.md
// §4.11: every cell defining an overridden name is removed from the
// execution order; if a pruned cell has any def not covered by overrides,
// IncompleteRefsError is returned instead of an order.
func SortWithOverrides(co *Coordinator, overrides map[api.Name]bool) ([]api.CellId, error) {
	var missing []api.Name

	co.WithLock(func() {
		for name := range overrides {
			for _, cid := range co.registry.AllDefiners(name) {
				cell, ok := co.topology.Cell(cid)
				if !ok {
					continue
				}
				for def := range cell.Defs {
					if !overrides[def] {
						missing = append(missing, def)
					}
				}
			}
		}
	})
	if len(missing) > 0 {
		return nil, api.IncompleteRefsError{Missing: missing}
	}

	pruned := map[api.CellId]bool{}
	co.WithLock(func() {
		for name := range overrides {
			for _, cid := range co.registry.AllDefiners(name) {
				pruned[cid] = true
			}
		}
	})
	return sortWithOverrides(co, pruned), nil
}

func sortWithOverrides(co *Coordinator, pruned map[api.CellId]bool) []api.CellId {
	var order []api.CellId
	co.WithLock(func() {
		t := co.topology
		inDegree := map[api.CellId]int{}
		for _, cid := range t.AllCellIDs() {
			if pruned[cid] {
				continue
			}
			inDegree[cid] = 0
		}
		for cid := range inDegree {
			for _, p := range t.ParentsOf(cid) {
				if !pruned[p] {
					inDegree[cid]++
				}
			}
		}

		h := &regHeap{idx: t.RegistrationIndex}
		for cid, deg := range inDegree {
			if deg == 0 {
				h.ids = append(h.ids, cid)
			}
		}
		heap.Init(h)

		visited := map[api.CellId]bool{}
		for h.Len() > 0 {
			cid := heap.Pop(h).(api.CellId)
			if visited[cid] {
				continue
			}
			visited[cid] = true
			order = append(order, cid)
			for _, child := range t.ChildrenOf(cid) {
				if pruned[child] {
					continue
				}
				inDegree[child]--
				if inDegree[child] == 0 {
					heap.Push(h, child)
				}
			}
		}
	})
	return order
}

// ImportCarryoverDefs substitutes defs − import_workspace.imported_defs for
// a cell's defs when it is an import block, the relative generator of
// spec.md §4.11 used by staleness propagation so re-running an import block
// only invalidates descendants of names that actually changed.
func ImportCarryoverDefs(cell *api.CellImpl) map[api.Name]bool {
	if !cell.ImportWorkspace.IsImportBlock {
		return cell.Defs
	}
	out := map[api.Name]bool{}
	for name := range cell.Defs {
		if !cell.ImportWorkspace.ImportedDefs[name] {
			out[name] = true
		}
	}
	return out
}
