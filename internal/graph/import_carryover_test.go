package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactive-notebook/nbcore/api"
)

func importCell(id api.CellId, imports ...api.ImportData) *api.CellImpl {
	c := api.NewCellImpl(id, "", "key-"+string(id), api.LangPython)
	c.ImportWorkspace.IsImportBlock = true
	for _, imp := range imports {
		c.Imports[imp] = true
		c.Defs[imp.Definition] = true
		c.VariableData[imp.Definition] = []api.VariableData{{Kind: api.KindImport, Language: api.LangPython}}
	}
	return c
}

func TestImportCarryOver_UnchangedImportIsCarried(t *testing.T) {
	np := api.ImportData{Definition: "np", Module: "numpy"}
	prev := importCell("a", np)
	next := importCell("a", np)

	carried := ImportCarryOver(prev, next)
	assert.True(t, carried["np"])
}

func TestImportCarryOver_ChangedModuleIsNotCarried(t *testing.T) {
	prev := importCell("a", api.ImportData{Definition: "np", Module: "numpy"})
	next := importCell("a", api.ImportData{Definition: "np", Module: "numpy2"})

	carried := ImportCarryOver(prev, next)
	assert.False(t, carried["np"])
}

func TestImportCarryOver_NonImportBlockReturnsNil(t *testing.T) {
	prev := pyCell("a", []api.Name{"x"}, nil)
	next := pyCell("a", []api.Name{"x"}, nil)
	assert.Nil(t, ImportCarryOver(prev, next))
}

func TestReregisterCell_CarriesImportedDefsForward(t *testing.T) {
	co := NewCoordinator()
	np := api.ImportData{Definition: "np", Module: "numpy"}

	_, err := co.RegisterCell("a", importCell("a", np))
	require.NoError(t, err)

	next := importCell("a", np)
	result, err := co.ReregisterCell("a", next)
	require.NoError(t, err)
	assert.NotNil(t, result)

	cell, ok := co.Topology().Cell("a")
	require.True(t, ok)
	assert.True(t, cell.ImportWorkspace.ImportedDefs["np"])
}

func TestReregisterCell_NoPriorCellRegistersFresh(t *testing.T) {
	co := NewCoordinator()
	np := api.ImportData{Definition: "np", Module: "numpy"}

	_, err := co.ReregisterCell("a", importCell("a", np))
	require.NoError(t, err)

	cell, ok := co.Topology().Cell("a")
	require.True(t, ok)
	assert.Empty(t, cell.ImportWorkspace.ImportedDefs)
}
