package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiffCommand_Shape(t *testing.T) {
	t.Parallel()

	cmd := NewDiffCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "diff <golden> <candidate>", cmd.Use)
}

func TestRunDiff_RenderedIdentical(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := dir + "/a.ps"
	b := dir + "/b.ps"

	writeTestFile(t, a, "same content\n")
	writeTestFile(t, b, "same content\n")

	err := runDiff(a, b, "ps", true)
	require.NoError(t, err)
}

func TestRunDiff_RenderedDifferent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := dir + "/a.ps"
	b := dir + "/b.ps"

	writeTestFile(t, a, "line one\nline two\n")
	writeTestFile(t, b, "line one\nline THREE\n")

	err := runDiff(a, b, "ps", true)
	require.ErrorIs(t, err, ErrDiffFound)
}

func TestRunDiff_RenderedFromSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := dir + "/plot.fpdf"

	writeTestFile(t, src, "@version { svgmet_1.1 }\n@initialize_display{}\n@write_comment{text=hi}\n@close_file{}\n")

	err := runDiff(src, src, "svg", false)
	require.NoError(t, err)
}
