package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactive-notebook/nbcore/api"
	"github.com/reactive-notebook/nbcore/internal/cellanalysis"
)

func analyzeAndRegister(t *testing.T, co *Coordinator, id api.CellId, code string) *api.CellImpl {
	t.Helper()
	cell, _, err := cellanalysis.Analyze(context.Background(), id, code, api.CellConfig{})
	require.NoError(t, err)
	_, err = co.RegisterCell(id, cell)
	require.NoError(t, err)
	return cell
}

// c0 creates table s.t, c1 creates schema s, c2 selects from s.t — both the
// table and the enclosing schema must resolve as parents of c2.
func TestSQLHierarchical_DottedRefResolvesTableAndSchema(t *testing.T) {
	co := NewCoordinator()
	analyzeAndRegister(t, co, "c0", `db.sql("CREATE TABLE s.t (id int)")`)
	analyzeAndRegister(t, co, "c1", `db.sql("CREATE SCHEMA s")`)
	c2 := analyzeAndRegister(t, co, "c2", `db.sql("SELECT * FROM s.t")`)

	assert.True(t, c2.Refs["s.t"])
	assert.ElementsMatch(t, []api.CellId{"c0", "c1"}, co.Topology().ParentsOf("c2"))
}

// SQL defs never leak into Python refs — c0 creates a SQL table,
// c1 references the same name from Python; no edge should form.
func TestSQLHierarchical_OpacityToPython(t *testing.T) {
	co := NewCoordinator()
	analyzeAndRegister(t, co, "c0", `db.sql("CREATE TABLE my_table AS SELECT 1")`)
	analyzeAndRegister(t, co, "c1", "print(my_table)\n")

	assert.NotContains(t, co.Topology().ParentsOf("c1"), api.CellId("c0"))
}
