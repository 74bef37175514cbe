package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpasys/fpagpgen/internal/config"
)

func TestLoadSetupFileParsesDirectoryMap(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "setup.yaml")
	content := `setup:
  home: "/data/fpa"
  psout: "<home>/ps"
  include_paths:
    - "<home>/include"
  extra:
    iteration: "2"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	setup, err := config.LoadSetupFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/fpa", setup.Home)
	assert.Equal(t, "<home>/ps", setup.PSOut)
	assert.Equal(t, []string{"<home>/include"}, setup.IncludePaths)
	assert.Equal(t, "2", setup.Extra["iteration"])
}

func TestLoadSetupFileParsesNumericExtra(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "setup.yaml")
	content := `setup:
  home: "/data/fpa"
  extra:
    year: 2026
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	setup, err := config.LoadSetupFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2026, setup.Extra["year"])
	assert.Equal(t, "2026", setup.CodewordValues()["year"])
}

func TestLoadSetupFileRejectsMissingHome(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "setup.yaml")
	require.NoError(t, os.WriteFile(path, []byte("setup:\n  psout: \"/ps\"\n"), 0o600))

	_, err := config.LoadSetupFile(path)
	require.Error(t, err)
}

func TestLoadSetupFileMissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadSetupFile("/nonexistent/setup.yaml")
	require.Error(t, err)
}
