package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpasys/fpagpgen/internal/config"
)

func TestLoadConfig_NoFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	emptyPath := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(emptyPath, []byte(""), 0o600))

	cfg, err := config.LoadConfig(emptyPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, ".", cfg.Setup.Home)
	assert.Equal(t, config.DefaultCheckpointEnabled, cfg.Checkpoint.Enabled)
	assert.Equal(t, config.DefaultCheckpointResume, cfg.Checkpoint.Resume)
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".fpagpgen.yaml")
	content := `setup:
  home: "/data/fpa"
  psout: "/data/fpa/ps"
  svgout: "/data/fpa/svg"
  include_paths:
    - "/data/fpa/include"
  extra:
    iteration: "5"

cache:
  directory: "/tmp/ckpt-cache"
  compress: true

checkpoint:
  enabled: false
  dir: "/tmp/ckpt"
  resume: false
  clear_prev: true
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/data/fpa", cfg.Setup.Home)
	assert.Equal(t, "/data/fpa/ps", cfg.Setup.PSOut)
	assert.Equal(t, "/data/fpa/svg", cfg.Setup.SVGOut)
	assert.Equal(t, []string{"/data/fpa/include"}, cfg.Setup.IncludePaths)
	assert.Equal(t, "5", cfg.Setup.Extra["iteration"])

	assert.Equal(t, "/tmp/ckpt-cache", cfg.Cache.Directory)
	assert.True(t, cfg.Cache.Compress)

	assert.False(t, cfg.Checkpoint.Enabled)
	assert.Equal(t, "/tmp/ckpt", cfg.Checkpoint.Dir)
	assert.False(t, cfg.Checkpoint.Resume)
	assert.True(t, cfg.Checkpoint.ClearPrev)
}

func TestLoadConfig_ExplicitPath_Overrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "custom-config.yaml")
	content := `setup:
  home: "/custom/home"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "/custom/home", cfg.Setup.Home)
}

func TestLoadConfig_MalformedYAML_ReturnsError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	content := `setup:
  home: [invalid yaml
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.LoadConfig(cfgPath)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadConfig_UnknownKeys_NoError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".fpagpgen.yaml")
	content := `unknown_section:
  unknown_key: "value"
setup:
  home: "/data/fpa"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "/data/fpa", cfg.Setup.Home)
}

func TestLoadConfig_PartialConfig_MergesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".fpagpgen.yaml")
	content := `setup:
  home: "/data/fpa"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "/data/fpa", cfg.Setup.Home)
	assert.Equal(t, "<home>/psout", cfg.Setup.PSOut)
	assert.Equal(t, config.DefaultCheckpointResume, cfg.Checkpoint.Resume)
}

func TestLoadConfig_EnvOverride_NestedKey(t *testing.T) {
	dir := t.TempDir()
	emptyPath := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(emptyPath, []byte(""), 0o600))

	t.Setenv("FPAGPGEN_CHECKPOINT_DIR", "/env/ckpt")

	cfg, err := config.LoadConfig(emptyPath)
	require.NoError(t, err)

	assert.Equal(t, "/env/ckpt", cfg.Checkpoint.Dir)
}

func TestLoadConfig_ExplicitPath_NotFound_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Nil(t, cfg)
}
