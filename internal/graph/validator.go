package graph

import "github.com/reactive-notebook/nbcore/api"

// CheckForErrors produces the structural-error taxonomy of spec.md §4.10
// for the coordinator's current graph state. A cell may appear in more than
// one returned error's cell set simultaneously.
func CheckForErrors(co *Coordinator) []api.Error {
	var errs []api.Error

	co.WithLock(func() {
		errs = append(errs, multipleDefinitionErrors(co)...)
		errs = append(errs, deleteNonlocalErrors(co)...)
		errs = append(errs, cycleErrors(co)...)
		if err, ok := setupRootError(co); ok {
			errs = append(errs, err)
		}
	})
	return errs
}

func multipleDefinitionErrors(co *Coordinator) []api.Error {
	var out []api.Error
	for _, name := range co.registry.DefinitionNames() {
		definers := co.registry.AllDefiners(name)
		if len(definers) <= 1 {
			continue
		}
		for _, self := range definers {
			var others []api.CellId
			for _, d := range definers {
				if d != self {
					others = append(others, d)
				}
			}
			out = append(out, api.MultipleDefinitionError{Name: name, OtherCells: others})
		}
	}
	return out
}

func deleteNonlocalErrors(co *Coordinator) []api.Error {
	var out []api.Error
	for _, cid := range co.topology.AllCellIDs() {
		cell, ok := co.topology.Cell(cid)
		if !ok {
			continue
		}
		for name := range cell.DeletedRefs {
			definers := co.registry.AllDefiners(name)
			if len(definers) == 0 {
				continue
			}
			out = append(out, api.DeleteNonlocalError{Name: name, DefiningCells: definers})
		}
	}
	return out
}

func cycleErrors(co *Coordinator) []api.Error {
	var out []api.Error
	for _, cyc := range co.cycles.All() {
		edges := make([]api.EdgeWithVars, 0, len(cyc.Edges))
		for _, e := range cyc.Edges {
			edges = append(edges, api.EdgeWithVars{
				Parent: e.Parent,
				Child:  e.Child,
				Vars:   sharedVars(co, e.Parent, e.Child),
			})
		}
		out = append(out, api.CycleError{Edges: edges})
	}
	return out
}

// sharedVars returns defs(parent) ∩ refs(child), the set of names that
// realized one edge of a cycle.
func sharedVars(co *Coordinator, parent, child api.CellId) []api.Name {
	p, pok := co.topology.Cell(parent)
	c, cok := co.topology.Cell(child)
	if !pok || !cok {
		return nil
	}
	var out []api.Name
	for name := range p.Defs {
		if c.Refs[name] {
			out = append(out, name)
		}
	}
	return out
}

func setupRootError(co *Coordinator) (api.Error, bool) {
	if !co.topology.Has(api.SetupCellName) {
		return nil, false
	}
	ancestors := co.topology.Ancestors(api.SetupCellName)
	if len(ancestors) == 0 {
		return nil, false
	}
	var edges []api.EdgeWithVars
	for _, a := range co.topology.ParentsOf(api.SetupCellName) {
		edges = append(edges, api.EdgeWithVars{
			Parent: a,
			Child:  api.SetupCellName,
			Vars:   sharedVars(co, a, api.SetupCellName),
		})
	}
	return api.SetupRootError{Edges: edges}, true
}
