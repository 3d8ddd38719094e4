package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactive-notebook/nbcore/api"
)

func pyCell(id api.CellId, defs, refs []api.Name) *api.CellImpl {
	c := api.NewCellImpl(id, "", "key-"+string(id), api.LangPython)
	for _, d := range defs {
		c.Defs[d] = true
		c.VariableData[d] = []api.VariableData{{Kind: api.KindVariable, Language: api.LangPython}}
	}
	for _, r := range refs {
		c.Refs[r] = true
	}
	return c
}

func TestCoordinator_RegisterCell_SimpleChain(t *testing.T) {
	co := NewCoordinator()

	_, err := co.RegisterCell("a", pyCell("a", []api.Name{"x"}, nil))
	require.NoError(t, err)

	result, err := co.RegisterCell("b", pyCell("b", nil, []api.Name{"x"}))
	require.NoError(t, err)

	assert.Equal(t, []api.CellId{"a"}, result.Parents)
	assert.Equal(t, []api.CellId{"b"}, co.Topology().ChildrenOf("a"))
	assert.Equal(t, []api.CellId{"a"}, co.Topology().ParentsOf("b"))
}

func TestCoordinator_RegisterCell_DetectsCycle(t *testing.T) {
	co := NewCoordinator()
	_, err := co.RegisterCell("a", pyCell("a", []api.Name{"x"}, []api.Name{"y"}))
	require.NoError(t, err)
	_, err = co.RegisterCell("b", pyCell("b", []api.Name{"y"}, []api.Name{"x"}))
	require.NoError(t, err)

	cycles := co.Cycles().All()
	require.Len(t, cycles, 1)
}

func TestCoordinator_DeleteCell_RemovesEdgesAndDefs(t *testing.T) {
	co := NewCoordinator()
	_, err := co.RegisterCell("a", pyCell("a", []api.Name{"x"}, nil))
	require.NoError(t, err)
	_, err = co.RegisterCell("b", pyCell("b", nil, []api.Name{"x"}))
	require.NoError(t, err)

	children, err := co.DeleteCell("a")
	require.NoError(t, err)
	assert.Equal(t, []api.CellId{"b"}, children)
	assert.False(t, co.Topology().Has("a"))
	assert.Empty(t, co.Registry().AllDefiners("x"))
}

func TestCoordinator_IsCellCached(t *testing.T) {
	co := NewCoordinator()
	cell := api.NewCellImpl("a", "x = 1", contentKey("x = 1"), api.LangPython)
	_, err := co.RegisterCell("a", cell)
	require.NoError(t, err)

	assert.True(t, co.IsCellCached("a", "x = 1"))
	assert.False(t, co.IsCellCached("a", "x = 2"))
	assert.False(t, co.IsCellCached("unknown", "x = 1"))
}

func TestCheckForErrors_MultipleDefinition(t *testing.T) {
	co := NewCoordinator()
	_, err := co.RegisterCell("a", pyCell("a", []api.Name{"x"}, nil))
	require.NoError(t, err)
	_, err = co.RegisterCell("b", pyCell("b", []api.Name{"x"}, nil))
	require.NoError(t, err)

	errs := CheckForErrors(co)
	require.Len(t, errs, 2)
	for _, e := range errs {
		_, ok := e.(api.MultipleDefinitionError)
		assert.True(t, ok)
	}
}

func TestCheckForErrors_DeleteNonlocal(t *testing.T) {
	co := NewCoordinator()
	_, err := co.RegisterCell("a", pyCell("a", []api.Name{"x"}, nil))
	require.NoError(t, err)

	b := api.NewCellImpl("b", "", "key-b", api.LangPython)
	b.DeletedRefs["x"] = true
	_, err = co.RegisterCell("b", b)
	require.NoError(t, err)

	errs := CheckForErrors(co)
	require.Len(t, errs, 1)
	delErr, ok := errs[0].(api.DeleteNonlocalError)
	require.True(t, ok)
	assert.Equal(t, api.Name("x"), delErr.Name)
}

func TestTopologicalSort_OrdersByDependency(t *testing.T) {
	co := NewCoordinator()
	_, err := co.RegisterCell("a", pyCell("a", []api.Name{"x"}, nil))
	require.NoError(t, err)
	_, err = co.RegisterCell("b", pyCell("b", []api.Name{"y"}, []api.Name{"x"}))
	require.NoError(t, err)
	_, err = co.RegisterCell("c", pyCell("c", nil, []api.Name{"y"}))
	require.NoError(t, err)

	order := TopologicalSort(co)
	require.Equal(t, []api.CellId{"a", "b", "c"}, order)
}

func TestSortWithOverrides_IncompleteRefsError(t *testing.T) {
	co := NewCoordinator()
	_, err := co.RegisterCell("a", pyCell("a", []api.Name{"x", "y"}, nil))
	require.NoError(t, err)

	_, err = SortWithOverrides(co, map[api.Name]bool{"x": true})
	require.Error(t, err)
	incomplete, ok := err.(api.IncompleteRefsError)
	require.True(t, ok)
	assert.Contains(t, incomplete.Missing, api.Name("y"))
}

func TestSortWithOverrides_PrunesCoveredCell(t *testing.T) {
	co := NewCoordinator()
	_, err := co.RegisterCell("a", pyCell("a", []api.Name{"x"}, nil))
	require.NoError(t, err)
	_, err = co.RegisterCell("b", pyCell("b", nil, []api.Name{"x"}))
	require.NoError(t, err)

	order, err := SortWithOverrides(co, map[api.Name]bool{"x": true})
	require.NoError(t, err)
	assert.Equal(t, []api.CellId{"b"}, order)
}

func TestSetStale_PropagatesTransitively(t *testing.T) {
	co := NewCoordinator()
	_, err := co.RegisterCell("a", pyCell("a", []api.Name{"x"}, nil))
	require.NoError(t, err)
	_, err = co.RegisterCell("b", pyCell("b", []api.Name{"y"}, []api.Name{"x"}))
	require.NoError(t, err)
	_, err = co.RegisterCell("c", pyCell("c", nil, []api.Name{"y"}))
	require.NoError(t, err)

	SetStale(co, []api.CellId{"a"}, false)

	for _, id := range []api.CellId{"a", "b", "c"} {
		cell, _ := co.Topology().Cell(id)
		assert.True(t, cell.Stale(), "cell %s should be stale", id)
	}
}

func TestDisableAndEnableCell(t *testing.T) {
	co := NewCoordinator()
	_, err := co.RegisterCell("a", pyCell("a", []api.Name{"x"}, nil))
	require.NoError(t, err)
	_, err = co.RegisterCell("b", pyCell("b", nil, []api.Name{"x"}))
	require.NoError(t, err)

	DisableCell(co, "a")
	bCell, _ := co.Topology().Cell("b")
	assert.Equal(t, api.StateDisabledTransitively, bCell.RuntimeStateValue())

	bCell.SetStale(true)
	rerun := EnableCell(co, "a")
	assert.Equal(t, []api.CellId{"b"}, rerun)
	assert.Equal(t, api.StateIdle, bCell.RuntimeStateValue())
}

func TestGetTransitiveReferences_Inclusive(t *testing.T) {
	co := NewCoordinator()
	_, err := co.RegisterCell("a", pyCell("a", []api.Name{"x"}, nil))
	require.NoError(t, err)
	_, err = co.RegisterCell("b", pyCell("b", nil, []api.Name{"x"}))
	require.NoError(t, err)

	out := GetTransitiveReferences(co, []api.CellId{"a"}, true, true, nil)
	assert.ElementsMatch(t, []api.CellId{"a", "b"}, out)
}

func TestPruneCellsForOverrides(t *testing.T) {
	co := NewCoordinator()
	_, err := co.RegisterCell("a", pyCell("a", []api.Name{"x"}, nil))
	require.NoError(t, err)
	_, err = co.RegisterCell("b", pyCell("b", nil, []api.Name{"x"}))
	require.NoError(t, err)
	_, err = co.RegisterCell("c", pyCell("c", []api.Name{"z"}, nil))
	require.NoError(t, err)

	remaining := PruneCellsForOverrides(co, map[api.Name]bool{"x": true}, nil)
	assert.ElementsMatch(t, []api.CellId{"b", "c"}, remaining)
}
