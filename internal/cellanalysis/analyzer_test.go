package cellanalysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactive-notebook/nbcore/api"
)

func analyze(t *testing.T, code string) *api.CellImpl {
	t.Helper()
	cell, _, err := Analyze(context.Background(), api.CellId("c1"), code, api.CellConfig{})
	require.NoError(t, err)
	return cell
}

func TestAnalyze_SimpleAssignmentIsDef(t *testing.T) {
	cell := analyze(t, "x = 1\ny = x + 1\n")
	assert.True(t, cell.Defs["x"])
	assert.True(t, cell.Defs["y"])
	assert.Empty(t, cell.Refs)
}

func TestAnalyze_ReadBeforeBoundIsRef(t *testing.T) {
	cell := analyze(t, "y = x\nx = 1\n")
	assert.True(t, cell.Refs["x"])
	assert.True(t, cell.Defs["x"])
	assert.True(t, cell.Defs["y"])
}

func TestAnalyze_ConditionalBindingCountsAsDef(t *testing.T) {
	cell := analyze(t, "if cond:\n    z = 1\n")
	assert.True(t, cell.Defs["z"])
	assert.True(t, cell.Refs["cond"])
}

func TestAnalyze_CellLocalNamesExcluded(t *testing.T) {
	cell := analyze(t, "_tmp = 1\nx = _tmp + 1\n")
	assert.False(t, cell.Defs["_tmp"])
	assert.False(t, cell.Refs["_tmp"])
	assert.True(t, cell.Defs["x"])
}

func TestAnalyze_DunderNamesNotLocal(t *testing.T) {
	cell := analyze(t, "__version__ = '1'\n")
	assert.True(t, cell.Defs["__version__"])
}

func TestAnalyze_DeleteNonlocalProducesDeletedRef(t *testing.T) {
	cell := analyze(t, "del shared\n")
	assert.True(t, cell.DeletedRefs["shared"])
	assert.False(t, cell.Defs["shared"])
}

func TestAnalyze_FunctionParamsScopedToFunction(t *testing.T) {
	cell := analyze(t, "def f(a, b):\n    return a + b\n")
	assert.True(t, cell.Defs["f"])
	assert.False(t, cell.Refs["a"])
	assert.False(t, cell.Refs["b"])
}

func TestAnalyze_FunctionBodyFreeNameIsRef(t *testing.T) {
	cell := analyze(t, "def f():\n    return shared_total\n")
	assert.True(t, cell.Refs["shared_total"])
}

func TestAnalyze_FunctionDefaultEvaluatedAtModuleScope(t *testing.T) {
	cell := analyze(t, "def f(a=config_default):\n    return a\n")
	assert.True(t, cell.Refs["config_default"])
}

func TestAnalyze_GlobalInsideFunctionBindsModuleScope(t *testing.T) {
	cell := analyze(t, "counter = 0\n\ndef bump():\n    global counter\n    counter += 1\n")
	assert.True(t, cell.Defs["counter"])
	assert.True(t, cell.Defs["bump"])
}

func TestAnalyze_BuiltinsNeverBecomeRefs(t *testing.T) {
	cell := analyze(t, "x = len([1, 2, 3])\n")
	assert.False(t, cell.Refs["len"])
	assert.True(t, cell.Defs["x"])
}

func TestAnalyze_ImportBindsTopLevelToken(t *testing.T) {
	cell := analyze(t, "import numpy as np\n")
	assert.True(t, cell.Defs["np"])
	assert.True(t, cell.ImportedNamespaces["numpy"])
	assert.True(t, cell.ImportWorkspace.IsImportBlock)
}

func TestAnalyze_FromImportRecordsModuleAndSymbol(t *testing.T) {
	cell := analyze(t, "from pkg.sub import thing\n")
	assert.True(t, cell.Defs["thing"])
	assert.True(t, cell.ImportedNamespaces["pkg"])
	found := false
	for imp := range cell.Imports {
		if imp.Definition == "thing" && imp.Module == "pkg.sub" && imp.ImportedSymbol == "thing" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyze_MixedImportAndCodeIsNotImportBlock(t *testing.T) {
	cell := analyze(t, "import os\nx = 1\n")
	assert.False(t, cell.ImportWorkspace.IsImportBlock)
}

func TestAnalyze_ComprehensionVariableDoesNotLeak(t *testing.T) {
	cell := analyze(t, "xs = [v * 2 for v in source_values]\n")
	assert.True(t, cell.Defs["xs"])
	assert.True(t, cell.Refs["source_values"])
	assert.False(t, cell.Refs["v"])
}

func TestAnalyze_SQLCallProducesTableDefAndRef(t *testing.T) {
	cell := analyze(t, "result = db.sql(\"CREATE TABLE orders AS SELECT * FROM raw_events\")\n")
	assert.True(t, cell.Defs["orders"])
	assert.True(t, cell.Refs["raw_events"])
	assert.True(t, cell.Defs["result"])
}

func TestAnalyze_AllSQLCellIsSQLLanguage(t *testing.T) {
	cell := analyze(t, "t = db.sql(\"CREATE TABLE t AS SELECT 1\")\n")
	assert.Equal(t, api.LangSQL, cell.Language)
}

func TestAnalyze_MixedSQLAndPythonIsPythonLanguage(t *testing.T) {
	cell := analyze(t, "t = db.sql(\"CREATE TABLE t AS SELECT 1\")\nprint(t)\n")
	assert.Equal(t, api.LangPython, cell.Language)
}

func TestAnalyze_DottedSQLRefIsRecordedInFullAndByLastComponent(t *testing.T) {
	cell := analyze(t, "result = db.sql(\"SELECT * FROM s.t\")\n")
	assert.True(t, cell.Refs["t"], "last path component must still be a ref for unqualified matches")
	assert.True(t, cell.Refs["s.t"], "the full dotted ref must be a ref so hierarchical schema/catalog matching can find it")
	_, ok := cell.SQLRefs["s.t"]
	assert.True(t, ok)
}
