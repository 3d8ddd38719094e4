package graph

import "github.com/reactive-notebook/nbcore/api"

// Edge is one directed dependency-graph edge.
type Edge struct {
	Parent api.CellId
	Child  api.CellId
}

// CycleTracker incrementally maintains the set of cycles in the graph
// (spec.md §4.7). Each detected cycle is stored as an ordered tuple of
// edges, not a set, so it can be reported in traversal order; no attempt is
// made to de-duplicate cycles sharing edges with others.
type CycleTracker struct {
	topology *Topology
	cycles   []Cycle
}

// Cycle is one closed path of edges, in traversal order.
type Cycle struct {
	Edges []Edge
}

// NewCycleTracker returns a tracker bound to a topology it queries for
// paths.
func NewCycleTracker(t *Topology) *CycleTracker {
	return &CycleTracker{topology: t}
}

// DetectCycleForEdge checks, after (u, v) has just been added to the
// topology, whether a path from v back to u existed already. If so, the
// edge plus that path form a new cycle, recorded independently of any
// existing cycle.
func (c *CycleTracker) DetectCycleForEdge(u, v api.CellId) {
	path := c.topology.GetPath(v, u)
	if path == nil {
		return
	}
	edges := make([]Edge, 0, len(path))
	for i := 0; i+1 < len(path); i++ {
		edges = append(edges, Edge{Parent: path[i], Child: path[i+1]})
	}
	edges = append(edges, Edge{Parent: u, Child: v})
	c.cycles = append(c.cycles, Cycle{Edges: edges})
}

// RemoveEdge drops every stored cycle containing the edge (u, v).
func (c *CycleTracker) RemoveEdge(u, v api.CellId) {
	kept := c.cycles[:0]
	for _, cyc := range c.cycles {
		if !cycleContainsEdge(cyc, u, v) {
			kept = append(kept, cyc)
		}
	}
	c.cycles = kept
}

func cycleContainsEdge(cyc Cycle, u, v api.CellId) bool {
	for _, e := range cyc.Edges {
		if e.Parent == u && e.Child == v {
			return true
		}
	}
	return false
}

// RemoveCellEdges drops every cycle that touches any edge incident to cid
// (used when the cell itself is being deleted).
func (c *CycleTracker) RemoveCellEdges(cid api.CellId) {
	kept := c.cycles[:0]
	for _, cyc := range c.cycles {
		touches := false
		for _, e := range cyc.Edges {
			if e.Parent == cid || e.Child == cid {
				touches = true
				break
			}
		}
		if !touches {
			kept = append(kept, cyc)
		}
	}
	c.cycles = kept
}

// All returns every currently-tracked cycle.
func (c *CycleTracker) All() []Cycle {
	return c.cycles
}

// ForCells projects the tracked cycles onto the induced subgraph of the
// given cell set: a cycle survives the projection only if every one of its
// edges has both endpoints in cids.
func (c *CycleTracker) ForCells(cids map[api.CellId]bool) []Cycle {
	var out []Cycle
	for _, cyc := range c.cycles {
		ok := true
		for _, e := range cyc.Edges {
			if !cids[e.Parent] || !cids[e.Child] {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, cyc)
		}
	}
	return out
}
