package notebook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFileContents_RoundTripsThroughParse(t *testing.T) {
	src := `import marimo

__generated_with = "0.1.0"

app = marimo.App(width="full")


@app.cell
def _():
    x = 1
    return


if __name__ == "__main__":
    app.run()
`
	s := parse(t, src)
	regenerated := GenerateFileContents(s)

	s2, err := Parse(context.Background(), []byte(regenerated))
	require.NoError(t, err)
	assert.Equal(t, s.Version, s2.Version)
	assert.Equal(t, s.App.Width, s2.App.Width)
	require.Len(t, s2.Cells, 1)
	assert.Contains(t, s2.Cells[0].Code, "x = 1")
}
