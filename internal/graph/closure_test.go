package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactive-notebook/nbcore/api"
)

// a -> b -> c, a predicate that refuses to descend past b should surface b
// (since visiting marks it before consulting the predicate) but stop short of c.
func TestGetTransitiveReferences_PredicateStopsDescent(t *testing.T) {
	co := NewCoordinator()
	_, err := co.RegisterCell("a", pyCell("a", []api.Name{"x"}, nil))
	require.NoError(t, err)
	_, err = co.RegisterCell("b", pyCell("b", []api.Name{"y"}, []api.Name{"x"}))
	require.NoError(t, err)
	_, err = co.RegisterCell("c", pyCell("c", nil, []api.Name{"y"}))
	require.NoError(t, err)

	stopAtB := func(cid api.CellId) bool { return cid != "b" }
	out := GetTransitiveReferences(co, []api.CellId{"a"}, true, true, stopAtB)
	assert.ElementsMatch(t, []api.CellId{"a", "b"}, out)
}

func TestGetTransitiveReferences_NonInclusiveExcludesRoots(t *testing.T) {
	co := NewCoordinator()
	_, err := co.RegisterCell("a", pyCell("a", []api.Name{"x"}, nil))
	require.NoError(t, err)
	_, err = co.RegisterCell("b", pyCell("b", nil, []api.Name{"x"}))
	require.NoError(t, err)

	out := GetTransitiveReferences(co, []api.CellId{"a"}, true, false, nil)
	assert.ElementsMatch(t, []api.CellId{"b"}, out)
}

func TestGetTransitiveReferences_ParentsDirection(t *testing.T) {
	co := NewCoordinator()
	_, err := co.RegisterCell("a", pyCell("a", []api.Name{"x"}, nil))
	require.NoError(t, err)
	_, err = co.RegisterCell("b", pyCell("b", nil, []api.Name{"x"}))
	require.NoError(t, err)

	out := GetTransitiveReferences(co, []api.CellId{"b"}, false, true, nil)
	assert.ElementsMatch(t, []api.CellId{"a", "b"}, out)
}

// prune_cells_for_overrides([cfg, use], {batch_size: 64, learning_rate: 0.001})
// must return [use], not [] — a consumer is not pruned alongside its definer.
func TestPruneCellsForOverrides_S8ConsumerSurvivesOverride(t *testing.T) {
	co := NewCoordinator()
	_, err := co.RegisterCell("cfg", pyCell("cfg", []api.Name{"batch_size", "learning_rate"}, nil))
	require.NoError(t, err)
	_, err = co.RegisterCell("use", pyCell("use", nil, []api.Name{"batch_size", "learning_rate"}))
	require.NoError(t, err)

	remaining := PruneCellsForOverrides(co, map[api.Name]bool{"batch_size": true, "learning_rate": true}, nil)
	assert.ElementsMatch(t, []api.CellId{"use"}, remaining)
}

func TestPruneCellsForOverrides_OnlyDirectDefinersArePruned(t *testing.T) {
	co := NewCoordinator()
	_, err := co.RegisterCell("a", pyCell("a", []api.Name{"x"}, nil))
	require.NoError(t, err)
	_, err = co.RegisterCell("b", pyCell("b", []api.Name{"y"}, []api.Name{"x"}))
	require.NoError(t, err)
	_, err = co.RegisterCell("c", pyCell("c", nil, []api.Name{"y"}))
	require.NoError(t, err)

	remaining := PruneCellsForOverrides(co, map[api.Name]bool{"x": true}, nil)
	assert.ElementsMatch(t, []api.CellId{"b", "c"}, remaining)
}

func TestPruneCellsForOverrides_PredicateCanVetoPruning(t *testing.T) {
	co := NewCoordinator()
	_, err := co.RegisterCell("a", pyCell("a", []api.Name{"x"}, nil))
	require.NoError(t, err)
	_, err = co.RegisterCell("b", pyCell("b", []api.Name{"y"}, []api.Name{"x"}))
	require.NoError(t, err)
	_, err = co.RegisterCell("c", pyCell("c", nil, []api.Name{"y"}))
	require.NoError(t, err)

	exclude := func(cid api.CellId) bool { return cid != "a" }
	remaining := PruneCellsForOverrides(co, map[api.Name]bool{"x": true}, exclude)
	assert.ElementsMatch(t, []api.CellId{"a", "b", "c"}, remaining)
}
