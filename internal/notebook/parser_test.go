package notebook

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactive-notebook/nbcore/api"
)

func parse(t *testing.T, src string) *Serialization {
	t.Helper()
	s, err := Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	return s
}

func TestParse_MinimalNotebook(t *testing.T) {
	src := `import marimo

__generated_with = "0.1.0"

app = marimo.App()


@app.cell
def _():
    x = 1
    return


if __name__ == "__main__":
    app.run()
`
	s := parse(t, src)
	assert.True(t, s.Valid)
	assert.Equal(t, "0.1.0", s.Version)
	assert.True(t, s.HasVersion)
	assert.Empty(t, s.Violations)
	require.Len(t, s.Cells, 1)
	assert.Equal(t, KindOrdinaryCell, s.Cells[0].Kind)
	assert.Contains(t, s.Cells[0].Code, "x = 1")
}

func TestParse_MissingVersionIsViolationNotFatal(t *testing.T) {
	src := `import marimo

app = marimo.App()


@app.cell
def _():
    return


if __name__ == "__main__":
    app.run()
`
	s := parse(t, src)
	assert.True(t, s.Valid)
	assert.False(t, s.HasVersion)
	require.Len(t, s.Violations, 1)
	assert.Contains(t, s.Violations[0].Description, "__generated_with")
}

func TestParse_NoMarimoImportIsFatal(t *testing.T) {
	_, err := Parse(context.Background(), []byte("x = 1\n"))
	require.Error(t, err)
	_, ok := err.(api.MarimoFileError)
	assert.True(t, ok)
}

func TestParse_HeaderCapturesLeadingComments(t *testing.T) {
	src := `# a notebook about things
import marimo

__generated_with = "0.1.0"

app = marimo.App()


if __name__ == "__main__":
    app.run()
`
	s := parse(t, src)
	assert.Contains(t, s.Header.Text, "a notebook about things")
}

func TestParse_AppOptionsLiteralKwargs(t *testing.T) {
	src := `import marimo

__generated_with = "0.1.0"

app = marimo.App(width="full", layout_file="layout.json")


if __name__ == "__main__":
    app.run()
`
	s := parse(t, src)
	assert.Equal(t, "full", s.App.Width)
	assert.Equal(t, "layout.json", s.App.LayoutFile)
}

func TestParse_AppNonLiteralKwargIsViolation(t *testing.T) {
	src := `import marimo

__generated_with = "0.1.0"

app = marimo.App(width=compute_width())


if __name__ == "__main__":
    app.run()
`
	s := parse(t, src)
	require.NotEmpty(t, s.Violations)
	found := false
	for _, v := range s.Violations {
		if strings.Contains(v.Description, "width") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParse_SetupCell(t *testing.T) {
	src := `import marimo

__generated_with = "0.1.0"

app = marimo.App()

with app.setup:
    import pandas as pd


if __name__ == "__main__":
    app.run()
`
	s := parse(t, src)
	require.NotNil(t, s.Setup)
	assert.Equal(t, api.SetupCellName, s.Setup.CellId)
	assert.Contains(t, s.Setup.Code, "import pandas as pd")
}

func TestParse_FunctionAndClassCells(t *testing.T) {
	src := `import marimo

__generated_with = "0.1.0"

app = marimo.App()


@app.function
def helper(x):
    return x + 1


@app.class_definition
class Thing:
    pass


if __name__ == "__main__":
    app.run()
`
	s := parse(t, src)
	require.Len(t, s.Cells, 2)
	assert.Equal(t, KindFunctionCell, s.Cells[0].Kind)
	assert.Equal(t, "helper", s.Cells[0].Name)
	assert.Equal(t, KindClassCell, s.Cells[1].Kind)
	assert.Equal(t, "Thing", s.Cells[1].Name)
}

func TestParse_UnparsableCell(t *testing.T) {
	src := `import marimo

__generated_with = "0.1.0"

app = marimo.App()

app._unparsable_cell(
    "def broken(:\n    pass",
    name="broken",
)


if __name__ == "__main__":
    app.run()
`
	s := parse(t, src)
	require.Len(t, s.Cells, 1)
	assert.Equal(t, KindUnparsable, s.Cells[0].Kind)
	assert.Equal(t, "broken", s.Cells[0].Name)
}

func TestParse_MissingRunGuardIsViolation(t *testing.T) {
	src := `import marimo

__generated_with = "0.1.0"

app = marimo.App()


@app.cell
def _():
    return
`
	s := parse(t, src)
	assert.True(t, s.Valid)
	found := false
	for _, v := range s.Violations {
		if strings.Contains(v.Description, "run guard") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParse_UnrecognizedStatementIsViolationAndSkipped(t *testing.T) {
	src := `import marimo

__generated_with = "0.1.0"

app = marimo.App()

some_module_level_statement = 1


@app.cell
def _():
    return


if __name__ == "__main__":
    app.run()
`
	s := parse(t, src)
	require.Len(t, s.Cells, 1)
	found := false
	for _, v := range s.Violations {
		if strings.Contains(v.Description, "does not match any recognized cell shape") {
			found = true
		}
	}
	assert.True(t, found)
}
