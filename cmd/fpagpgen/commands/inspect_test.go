package commands

import (
	"testing"

	"github.com/fpasys/fpagpgen/internal/gpg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInspectCommand_Shape(t *testing.T) {
	t.Parallel()

	cmd := NewInspectCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "inspect", cmd.Use)
}

func TestRenderDirectiveTable_TracksLoopDepth(t *testing.T) {
	t.Parallel()

	source := "@loop_begin{iterations=2}\n@write_comment{text=inside}\n@loop_end{}\n@close_file{}\n"

	directives, err := gpg.ParseDirectives(gpg.Tokenize(source, nil))
	require.NoError(t, err)

	out := renderDirectiveTable(directives)
	assert.Contains(t, out, "loop_begin")
	assert.Contains(t, out, "loop_end")
	assert.Contains(t, out, "4 directives")
}

func TestFormatBody(t *testing.T) {
	t.Parallel()

	body := []gpg.KV{{Key: "", Value: "bare"}, {Key: "text", Value: "hi"}}
	assert.Equal(t, "bare, text=hi", formatBody(body))
	assert.Equal(t, "", formatBody(nil))
}

func TestRunInspect_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := dir + "/plot.fpdf"
	writeTestFile(t, input, "@close_file{}\n")

	err := runInspect(input)
	require.NoError(t, err)
}

func TestRunInspect_ParseError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := dir + "/plot.fpdf"
	writeTestFile(t, input, "@unterminated{")

	err := runInspect(input)
	require.Error(t, err)
}
