package graph

import "github.com/reactive-notebook/nbcore/api"

// ImportCarryOver compares an import-block cell's previous and next analysis
// and returns the defs whose ImportData is unchanged between runs — these
// don't need to be treated as newly-changed for staleness propagation
// purposes, the "relative generator" of spec.md §4.11. Only meaningful when
// both prev and next are import blocks; returns nil otherwise.
func ImportCarryOver(prev, next *api.CellImpl) map[api.Name]bool {
	if prev == nil || next == nil {
		return nil
	}
	if !prev.ImportWorkspace.IsImportBlock || !next.ImportWorkspace.IsImportBlock {
		return nil
	}

	prevByDef := map[api.Name]api.ImportData{}
	for imp := range prev.Imports {
		prevByDef[imp.Definition] = imp
	}

	carried := map[api.Name]bool{}
	for imp := range next.Imports {
		if old, ok := prevByDef[imp.Definition]; ok && old.Equal(imp) {
			carried[imp.Definition] = true
		}
	}
	return carried
}

// ReregisterCell replaces a previously-registered cell's analysis, carrying
// forward import-def equality into the new cell's ImportWorkspace before
// deleting the old registration and adding the new one.
func (co *Coordinator) ReregisterCell(cid api.CellId, next *api.CellImpl) (RegisterResult, error) {
	co.mu.Lock()
	prev, hadPrev := co.topology.Cell(cid)
	co.mu.Unlock()

	if hadPrev {
		carried := ImportCarryOver(prev, next)
		for name := range carried {
			if next.ImportWorkspace.ImportedDefs == nil {
				next.ImportWorkspace.ImportedDefs = map[api.Name]bool{}
			}
			next.ImportWorkspace.ImportedDefs[name] = true
		}
		if _, err := co.DeleteCell(cid); err != nil {
			return RegisterResult{}, err
		}
	}
	return co.RegisterCell(cid, next)
}
