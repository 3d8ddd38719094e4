// Package graph implements the dependency graph: topology storage, the
// definition registry, cycle tracking, edge computation, the mutex-guarded
// coordinator, structural-error validation and topological sort (spec.md
// §4.5-§4.12).
package graph

import "github.com/reactive-notebook/nbcore/api"

// arena maps CellId values to small dense integers so that parent/child/
// ancestor sets can be stored as roaring bitmaps instead of string-keyed
// sets, mirroring the teacher's nodeIntID/intToNodeID bitmap-index pattern.
// Ids are never reused within one arena's lifetime even after a cell is
// removed, so a stale bitmap entry from a half-finished operation can never
// silently alias a newer cell.
type arena struct {
	idOf   map[api.CellId]uint32
	cellOf []api.CellId
}

func newArena() *arena {
	return &arena{idOf: map[api.CellId]uint32{}}
}

// intern returns the dense id for a CellId, assigning a new one if unseen.
func (a *arena) intern(id api.CellId) uint32 {
	if n, ok := a.idOf[id]; ok {
		return n
	}
	n := uint32(len(a.cellOf))
	a.idOf[id] = n
	a.cellOf = append(a.cellOf, id)
	return n
}

// lookup returns the dense id for a known CellId, ok=false if never interned.
func (a *arena) lookup(id api.CellId) (uint32, bool) {
	n, ok := a.idOf[id]
	return n, ok
}

func (a *arena) cellID(n uint32) api.CellId {
	return a.cellOf[n]
}
