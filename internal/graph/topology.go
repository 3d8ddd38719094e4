package graph

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring"

	"github.com/reactive-notebook/nbcore/api"
)

// Topology is the pure-data container of spec.md §4.5: cells plus their
// parent/child edge sets, with path and transitive-closure queries.
// Children/parents are stored as roaring bitmaps over the arena's dense
// integer ids rather than string sets, grounded on the teacher's
// fileToNodes bitmap-index pattern in internal/graph/graph.go.
type Topology struct {
	arena    *arena
	cells    map[api.CellId]*api.CellImpl
	children map[uint32]*roaring.Bitmap
	parents  map[uint32]*roaring.Bitmap

	// regIndex records each cell's first-registration order, used by
	// topological sort tie-breaking (spec.md §4.11). Never reassigned, even
	// across delete+re-register of the same CellId.
	regIndex map[api.CellId]int
	nextReg  int
}

// NewTopology returns an empty topology.
func NewTopology() *Topology {
	return &Topology{
		arena:    newArena(),
		cells:    map[api.CellId]*api.CellImpl{},
		children: map[uint32]*roaring.Bitmap{},
		parents:  map[uint32]*roaring.Bitmap{},
		regIndex: map[api.CellId]int{},
	}
}

// AddNode inserts a cell with empty parent/child sets. Errors if cell_id is
// already known.
func (t *Topology) AddNode(id api.CellId, cell *api.CellImpl) error {
	if _, ok := t.cells[id]; ok {
		return fmt.Errorf("graph: cell %q already registered", id)
	}
	t.cells[id] = cell
	n := t.arena.intern(id)
	t.children[n] = roaring.New()
	t.parents[n] = roaring.New()
	if _, seen := t.regIndex[id]; !seen {
		t.regIndex[id] = t.nextReg
		t.nextReg++
	}
	return nil
}

// RemoveNode removes a cell and scrubs it from every other node's parent
// and child sets.
func (t *Topology) RemoveNode(id api.CellId) {
	n, ok := t.arena.lookup(id)
	if !ok {
		return
	}
	for _, p := range t.ParentsOf(id) {
		if pn, ok := t.arena.lookup(p); ok {
			t.children[pn].Remove(n)
		}
	}
	for _, c := range t.ChildrenOf(id) {
		if cn, ok := t.arena.lookup(c); ok {
			t.parents[cn].Remove(n)
		}
	}
	delete(t.cells, id)
	delete(t.children, n)
	delete(t.parents, n)
}

// Has reports whether a cell is currently registered.
func (t *Topology) Has(id api.CellId) bool {
	_, ok := t.cells[id]
	return ok
}

// Cell returns the registered CellImpl for id, if any.
func (t *Topology) Cell(id api.CellId) (*api.CellImpl, bool) {
	c, ok := t.cells[id]
	return c, ok
}

// RegistrationIndex returns the order in which id was first added to the
// topology (spec.md §4.11's tie-breaking key).
func (t *Topology) RegistrationIndex(id api.CellId) int {
	return t.regIndex[id]
}

// AddEdge records u → v, maintaining children[u] and parents[v] in lockstep.
func (t *Topology) AddEdge(u, v api.CellId) {
	un := t.arena.intern(u)
	vn := t.arena.intern(v)
	t.ensure(un)
	t.ensure(vn)
	t.children[un].Add(vn)
	t.parents[vn].Add(un)
}

// RemoveEdge removes u → v.
func (t *Topology) RemoveEdge(u, v api.CellId) {
	un, uok := t.arena.lookup(u)
	vn, vok := t.arena.lookup(v)
	if !uok || !vok {
		return
	}
	if b, ok := t.children[un]; ok {
		b.Remove(vn)
	}
	if b, ok := t.parents[vn]; ok {
		b.Remove(un)
	}
}

func (t *Topology) ensure(n uint32) {
	if _, ok := t.children[n]; !ok {
		t.children[n] = roaring.New()
	}
	if _, ok := t.parents[n]; !ok {
		t.parents[n] = roaring.New()
	}
}

// ChildrenOf returns the direct children of id.
func (t *Topology) ChildrenOf(id api.CellId) []api.CellId {
	n, ok := t.arena.lookup(id)
	if !ok {
		return nil
	}
	return t.materialize(t.children[n])
}

// ParentsOf returns the direct parents of id.
func (t *Topology) ParentsOf(id api.CellId) []api.CellId {
	n, ok := t.arena.lookup(id)
	if !ok {
		return nil
	}
	return t.materialize(t.parents[n])
}

func (t *Topology) materialize(b *roaring.Bitmap) []api.CellId {
	if b == nil {
		return nil
	}
	out := make([]api.CellId, 0, b.GetCardinality())
	it := b.Iterator()
	for it.HasNext() {
		n := it.Next()
		id := t.arena.cellID(n)
		if t.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// GetPath returns a BFS shortest path of cell ids from src to dst
// (inclusive), or nil if src == dst or no path exists.
func (t *Topology) GetPath(src, dst api.CellId) []api.CellId {
	if src == dst {
		return nil
	}
	if !t.Has(src) || !t.Has(dst) {
		return nil
	}
	visited := map[api.CellId]bool{src: true}
	prev := map[api.CellId]api.CellId{}
	queue := []api.CellId{src}
	found := false
	for len(queue) > 0 && !found {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range t.ChildrenOf(cur) {
			if visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = cur
			if next == dst {
				found = true
				break
			}
			queue = append(queue, next)
		}
	}
	if !found {
		return nil
	}
	var path []api.CellId
	for at := dst; ; {
		path = append([]api.CellId{at}, path...)
		if at == src {
			break
		}
		at = prev[at]
	}
	return path
}

// Ancestors returns the transitive closure over parents, excluding cid.
func (t *Topology) Ancestors(cid api.CellId) []api.CellId {
	return t.closure(cid, t.ParentsOf)
}

// Descendants returns the transitive closure over children, excluding cid.
func (t *Topology) Descendants(cid api.CellId) []api.CellId {
	return t.closure(cid, t.ChildrenOf)
}

func (t *Topology) closure(cid api.CellId, step func(api.CellId) []api.CellId) []api.CellId {
	seen := map[api.CellId]bool{cid: true}
	var out []api.CellId
	queue := step(cid)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
		queue = append(queue, step(cur)...)
	}
	return out
}

// AllCellIDs returns every currently-registered cell id, in registration
// order.
func (t *Topology) AllCellIDs() []api.CellId {
	out := make([]api.CellId, 0, len(t.cells))
	for id := range t.cells {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return t.regIndex[out[i]] < t.regIndex[out[j]] })
	return out
}
