package graph

import "github.com/reactive-notebook/nbcore/api"

// DisableCell marks cid's descendants disabled-transitively (spec.md
// §4.12). The cell's own `disabled` flag is a CellConfig concern the caller
// sets directly; this only propagates the transitive consequence.
func DisableCell(co *Coordinator, cid api.CellId) {
	co.WithLock(func() {
		for _, d := range co.topology.Descendants(cid) {
			cell, ok := co.topology.Cell(d)
			if !ok {
				continue
			}
			cell.SetRuntimeState(api.StateDisabledTransitively)
		}
	})
}

// EnableCell walks cid's descendants and returns those that are stale and
// no longer transitively disabled by any other ancestor, so the scheduler
// knows to rerun them.
func EnableCell(co *Coordinator, cid api.CellId) []api.CellId {
	var toRerun []api.CellId
	co.WithLock(func() {
		for _, d := range co.topology.Descendants(cid) {
			cell, ok := co.topology.Cell(d)
			if !ok {
				continue
			}
			if !stillTransitivelyDisabled(co, d, cid) {
				if cell.RuntimeStateValue() == api.StateDisabledTransitively {
					cell.SetRuntimeState(api.StateIdle)
				}
				if cell.Stale() {
					toRerun = append(toRerun, d)
				}
			}
		}
	})
	return toRerun
}

// stillTransitivelyDisabled reports whether d has some other ancestor
// (besides enabling) whose own `disabled` config flag is set.
func stillTransitivelyDisabled(co *Coordinator, d, excludeSubtreeRoot api.CellId) bool {
	for _, a := range co.topology.Ancestors(d) {
		if a == excludeSubtreeRoot {
			continue
		}
		cell, ok := co.topology.Cell(a)
		if ok && cell.Config.Disabled {
			return true
		}
	}
	return false
}

// SetStale takes the transitive closure of cids (using the import-block
// relative generator when pruneImports is set) and marks each cell stale.
// With import pruning, a child whose runtime state is interrupted is marked
// whether or not it reads any of the parent's carried-over defs, since a
// failed previous run means its output can't be trusted to be unchanged.
func SetStale(co *Coordinator, cids []api.CellId, pruneImports bool) {
	co.WithLock(func() {
		seen := map[api.CellId]bool{}
		var mark func(cid api.CellId)
		mark = func(cid api.CellId) {
			if seen[cid] {
				return
			}
			seen[cid] = true
			cell, ok := co.topology.Cell(cid)
			if !ok {
				return
			}
			cell.SetStale(true)

			if !pruneImports {
				for _, child := range co.topology.ChildrenOf(cid) {
					mark(child)
				}
				return
			}

			defs := ImportCarryoverDefs(cell)
			for _, child := range co.topology.ChildrenOf(cid) {
				childCell, ok := co.topology.Cell(child)
				if !ok {
					continue
				}
				if childCell.RuntimeStateValue() == api.StateInterrupted {
					mark(child)
					continue
				}
				if sharesAnyDef(co, cid, defs, child) {
					mark(child)
				}
			}
		}
		for _, cid := range cids {
			mark(cid)
		}
	})
}

// sharesAnyDef reports whether child reads any name in defs (the edge that
// justifies propagating staleness from parent to child).
func sharesAnyDef(co *Coordinator, parent api.CellId, defs map[api.Name]bool, child api.CellId) bool {
	childCell, ok := co.topology.Cell(child)
	if !ok {
		return false
	}
	for name := range defs {
		if childCell.Refs[name] {
			return true
		}
	}
	return false
}
