package notebook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FallsBackToScannerOnSyntaxError(t *testing.T) {
	src := `import marimo

__generated_with = "0.1.0"

app = marimo.App()


@app.cell
def _():
    x = 1
    return


@app.cell
def _():
    y = "unterminated
    return


if __name__ == "__main__":
    app.run()
`
	s, err := Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	assert.True(t, s.UsedScanner)
	assert.Equal(t, "0.1.0", s.Version)
	require.Len(t, s.Cells, 2)
	assert.Equal(t, KindOrdinaryCell, s.Cells[0].Kind)
	assert.Contains(t, s.Cells[0].Code, "x = 1")
	assert.Equal(t, KindUnparsable, s.Cells[1].Kind)
	assert.Contains(t, s.Cells[1].Code, "unterminated")
}

func TestScanBoundaries_IgnoresDecoratorLookingTextInsideComment(t *testing.T) {
	lines := []string{
		"# @app.cell not a real boundary",
		"@app.cell",
		"def _():",
		"    pass",
	}
	boundaries, _ := scanBoundaries(lines)
	require.Len(t, boundaries, 1)
	assert.Equal(t, 1, boundaries[0].startLine)
}

func TestScanBoundaries_IgnoresDecoratorLookingTextInsideTripleQuotedString(t *testing.T) {
	lines := []string{
		`x = """`,
		"@app.cell",
		`"""`,
		"@app.cell",
		"def _():",
		"    pass",
	}
	boundaries, _ := scanBoundaries(lines)
	require.Len(t, boundaries, 1)
	assert.Equal(t, 3, boundaries[0].startLine)
}
