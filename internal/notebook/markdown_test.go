package notebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkdown_SimpleCell(t *testing.T) {
	src := `# My Notebook

Some prose here.

` + "```python {.marimo}" + `
x = 1
` + "```" + `
`
	s := ParseMarkdown([]byte(src))
	assert.True(t, s.Valid)
	assert.Contains(t, s.Header.Text, "My Notebook")
	require.Len(t, s.Cells, 1)
	assert.Contains(t, s.Cells[0].Code, "x = 1")
}

func TestParseMarkdown_FenceAttributes(t *testing.T) {
	src := "```python {.marimo disabled=\"true\" column=\"2\"}\ny = 2\n```\n"
	s := ParseMarkdown([]byte(src))
	require.Len(t, s.Cells, 1)
	assert.True(t, s.Cells[0].Options.Disabled)
	require.NotNil(t, s.Cells[0].Options.Column)
	assert.Equal(t, 2, *s.Cells[0].Options.Column)
}

func TestParseMarkdown_UnclosedFenceIsViolation(t *testing.T) {
	src := "```python {.marimo}\nx = 1\n"
	s := ParseMarkdown([]byte(src))
	require.NotEmpty(t, s.Violations)
}

func TestParseMarkdown_MultipleCells(t *testing.T) {
	src := "```python {.marimo}\na = 1\n```\n\ntext\n\n```python {.marimo}\nb = 2\n```\n"
	s := ParseMarkdown([]byte(src))
	require.Len(t, s.Cells, 2)
	assert.Equal(t, "0", string(s.Cells[0].CellId))
	assert.Equal(t, "1", string(s.Cells[1].CellId))
}
