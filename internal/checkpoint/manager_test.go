package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_New(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewManager(dir, "abc123")

	assert.Equal(t, dir, m.BaseDir)
	assert.Equal(t, "abc123", m.SourceHash)
	assert.Equal(t, DefaultMaxAge, m.MaxAge)
	assert.Equal(t, int64(DefaultMaxSize), m.MaxSize)
}

func TestManager_CheckpointDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewManager(dir, "abc123")
	expected := filepath.Join(dir, "abc123")
	assert.Equal(t, expected, m.CheckpointDir())
}

func TestManager_MetadataPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewManager(dir, "abc123")
	expected := filepath.Join(dir, "abc123", "checkpoint.json")
	assert.Equal(t, expected, m.MetadataPath())
}

func TestManager_Exists_NoCheckpoint(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewManager(dir, "abc123")

	assert.False(t, m.Exists())
}

func TestManager_Exists_WithCheckpoint(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewManager(dir, "abc123")

	cpDir := m.CheckpointDir()
	err := os.MkdirAll(cpDir, 0o750)
	require.NoError(t, err)

	err = os.WriteFile(m.MetadataPath(), []byte(`{"version":1}`), 0o600)
	require.NoError(t, err)

	assert.True(t, m.Exists())
}

func TestManager_Clear(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewManager(dir, "abc123")

	cpDir := m.CheckpointDir()
	err := os.MkdirAll(cpDir, 0o750)
	require.NoError(t, err)

	err = os.WriteFile(m.MetadataPath(), []byte(`{"version":1}`), 0o600)
	require.NoError(t, err)

	require.True(t, m.Exists())

	err = m.Clear()
	require.NoError(t, err)

	assert.False(t, m.Exists())
}

func TestManager_Clear_NonExistent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewManager(dir, "abc123")

	err := m.Clear()
	assert.NoError(t, err)
}

func TestManager_SaveLoad_Metadata(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewManager(dir, "abc123")

	state := RunState{
		TotalChains:     1000,
		ProcessedChains: 500,
		CurrentTween:    1,
		TotalTweens:     2,
		LastChainID:     42,
		LastTweenTime:   "20260115.1200",
	}

	err := m.Save(nil, state, "/path/to/source.fpdf", []string{"arealink"})
	require.NoError(t, err)

	assert.True(t, m.Exists())

	meta, err := m.LoadMetadata()
	require.NoError(t, err)

	assert.Equal(t, MetadataVersion, meta.Version)
	assert.Equal(t, "/path/to/source.fpdf", meta.SourcePath)
	assert.Equal(t, "abc123", meta.SourceHash)
	assert.Equal(t, []string{"arealink"}, meta.Stages)
	assert.Equal(t, state.TotalChains, meta.RunState.TotalChains)
	assert.Equal(t, state.ProcessedChains, meta.RunState.ProcessedChains)
}

func TestManager_SaveLoad_Checkpointables(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewManager(dir, "abc123")

	state := RunState{
		TotalChains:     100,
		ProcessedChains: 50,
	}

	original := &mockCheckpointable{data: "stage state"}
	checkpointables := []Checkpointable{original}

	err := m.Save(checkpointables, state, "/path/to/source.fpdf", []string{"mock"})
	require.NoError(t, err)

	restored := &mockCheckpointable{}
	restoredList := []Checkpointable{restored}

	loadedState, err := m.Load(restoredList)
	require.NoError(t, err)

	assert.Equal(t, original.data, restored.data)
	assert.Equal(t, state.TotalChains, loadedState.TotalChains)
	assert.Equal(t, state.ProcessedChains, loadedState.ProcessedChains)
}

func TestManager_DefaultValues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7*24*time.Hour, DefaultMaxAge)
	assert.Equal(t, 1<<30, DefaultMaxSize) // 1GB.
}

func TestManager_Validate_Success(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewManager(dir, "abc123")

	state := RunState{
		TotalChains:     100,
		ProcessedChains: 50,
		LastChainID:     42,
	}

	err := m.Save(nil, state, "/path/to/source.fpdf", []string{"arealink"})
	require.NoError(t, err)

	err = m.Validate("/path/to/source.fpdf", []string{"arealink"})
	assert.NoError(t, err)
}

func TestManager_Validate_WrongSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewManager(dir, "abc123")

	state := RunState{}
	err := m.Save(nil, state, "/path/to/source.fpdf", []string{"arealink"})
	require.NoError(t, err)

	err = m.Validate("/different/source.fpdf", []string{"arealink"})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSourcePathMismatch)
}

func TestManager_Validate_WrongStages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewManager(dir, "abc123")

	state := RunState{}
	err := m.Save(nil, state, "/path/to/source.fpdf", []string{"arealink"})
	require.NoError(t, err)

	err = m.Validate("/path/to/source.fpdf", []string{"tween"})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrStageMismatch)
}

func TestManager_Validate_NoCheckpoint(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewManager(dir, "abc123")

	err := m.Validate("/path/to/source.fpdf", []string{"arealink"})
	assert.Error(t, err)
}

func TestDefaultDir(t *testing.T) {
	t.Parallel()

	dir := DefaultDir()
	assert.Contains(t, dir, ".fpagpgen")
	assert.Contains(t, dir, "checkpoints")
}

func TestSourceHash(t *testing.T) {
	t.Parallel()

	hash := SourceHash("/path/to/source.fpdf")
	assert.Len(t, hash, 16) // 8 bytes hex = 16 chars.

	hash2 := SourceHash("/path/to/source.fpdf")
	assert.Equal(t, hash, hash2)

	hash3 := SourceHash("/different/source.fpdf")
	assert.NotEqual(t, hash, hash3)
}

func TestManager_Save_ErrorOnMkdir(t *testing.T) {
	t.Parallel()

	// Use a path that can't be created (file instead of dir).
	tmpFile, err := os.CreateTemp(t.TempDir(), "checkpoint-test")
	require.NoError(t, err)
	tmpFile.Close()

	m := NewManager(tmpFile.Name(), "abc123")
	err = m.Save(nil, RunState{}, "/source.fpdf", []string{})
	assert.Error(t, err)
}
