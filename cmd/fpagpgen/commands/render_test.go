package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderCommand_Shape(t *testing.T) {
	t.Parallel()

	cmd := NewRenderCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "render", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	backendFlag := cmd.Flags().Lookup("backend")
	require.NotNil(t, backendFlag)
	assert.Equal(t, "ps", backendFlag.DefValue)
}

func TestRunRender_SVGBackend(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "plot.fpdf")
	output := filepath.Join(dir, "plot.svg")

	source := `@version { svgmet_1.1 }
@initialize_display{}
@write_comment{text=hello}
@close_file{}
`
	require.NoError(t, os.WriteFile(input, []byte(source), 0o600))

	err := runRender(renderOptions{
		backend: "svg",
		input:   input,
		output:  output,
		noColor: true,
	})
	require.NoError(t, err)

	data, readErr := os.ReadFile(output) //nolint:gosec // test-owned temp path
	require.NoError(t, readErr)
	assert.NotEmpty(t, data)
}

func TestRunRender_UnknownBackend(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "plot.fpdf")
	require.NoError(t, os.WriteFile(input, []byte("@close_file{}\n"), 0o600))

	err := runRender(renderOptions{backend: "bogus", input: input, noColor: true})
	require.Error(t, err)
}
