package checkpoint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MetadataVersion is the current checkpoint metadata format version.
const MetadataVersion = 1

// Sentinel errors for checkpoint validation.
var (
	ErrSourcePathMismatch = errors.New("source path mismatch")
	ErrStageMismatch      = errors.New("stage mismatch")
)

// DefaultDir returns the default checkpoint directory (~/.fpagpgen/checkpoints).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return filepath.Join(home, ".fpagpgen", "checkpoints")
}

// SourceHash computes a short hash of an fpdf source path for use as a
// checkpoint directory name.
func SourceHash(sourcePath string) string {
	h := sha256.Sum256([]byte(sourcePath))

	return hex.EncodeToString(h[:8]) // First 8 bytes = 16 hex chars.
}

// Default retention values.
const (
	DefaultMaxAge  = 7 * 24 * time.Hour // 7 days.
	DefaultMaxSize = 1 << 30            // 1GB.
)

// Directory permissions for checkpoints.
const dirPerm = 0o750

// Manager coordinates checkpoints for one fpdf source's interpolation run.
type Manager struct {
	BaseDir    string
	SourceHash string
	MaxAge     time.Duration
	MaxSize    int64
}

// NewManager creates a new checkpoint manager.
func NewManager(baseDir, sourceHash string) *Manager {
	return &Manager{
		BaseDir:    baseDir,
		SourceHash: sourceHash,
		MaxAge:     DefaultMaxAge,
		MaxSize:    DefaultMaxSize,
	}
}

// CheckpointDir returns the directory for this source's checkpoint.
func (m *Manager) CheckpointDir() string {
	return filepath.Join(m.BaseDir, m.SourceHash)
}

// MetadataPath returns the path to the metadata file.
func (m *Manager) MetadataPath() string {
	return filepath.Join(m.CheckpointDir(), "checkpoint.json")
}

// Exists returns true if a valid checkpoint exists.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.MetadataPath())

	return err == nil
}

// Clear removes the checkpoint for the current source.
func (m *Manager) Clear() error {
	cpDir := m.CheckpointDir()

	_, statErr := os.Stat(cpDir)
	if os.IsNotExist(statErr) {
		return nil
	}

	err := os.RemoveAll(cpDir)
	if err != nil {
		return fmt.Errorf("remove checkpoint dir: %w", err)
	}

	return nil
}

// Save creates a checkpoint for all checkpointable run stages.
func (m *Manager) Save(
	checkpointables []Checkpointable,
	state RunState,
	sourcePath string,
	stageNames []string,
) error {
	cpDir := m.CheckpointDir()

	err := os.MkdirAll(cpDir, dirPerm)
	if err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	checksums := make(map[string]string)

	for i, cp := range checkpointables {
		stageDir := filepath.Join(cpDir, fmt.Sprintf("stage_%d", i))

		mkdirErr := os.MkdirAll(stageDir, dirPerm)
		if mkdirErr != nil {
			return fmt.Errorf("create stage dir: %w", mkdirErr)
		}

		saveErr := cp.SaveCheckpoint(stageDir)
		if saveErr != nil {
			return fmt.Errorf("save checkpoint for stage %d: %w", i, saveErr)
		}
	}

	meta := Metadata{
		Version:    MetadataVersion,
		SourcePath: sourcePath,
		SourceHash: m.SourceHash,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		Stages:     stageNames,
		RunState:   state,
		Checksums:  checksums,
	}

	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	writeErr := os.WriteFile(m.MetadataPath(), metaData, 0o600)
	if writeErr != nil {
		return fmt.Errorf("write metadata: %w", writeErr)
	}

	return nil
}

// LoadMetadata loads the checkpoint metadata.
func (m *Manager) LoadMetadata() (*Metadata, error) {
	data, err := os.ReadFile(m.MetadataPath())
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var meta Metadata

	unmarshalErr := json.Unmarshal(data, &meta)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", unmarshalErr)
	}

	return &meta, nil
}

// Load restores state for all checkpointable run stages.
func (m *Manager) Load(checkpointables []Checkpointable) (*RunState, error) {
	meta, err := m.LoadMetadata()
	if err != nil {
		return nil, err
	}

	cpDir := m.CheckpointDir()

	for i, cp := range checkpointables {
		stageDir := filepath.Join(cpDir, fmt.Sprintf("stage_%d", i))

		loadErr := cp.LoadCheckpoint(stageDir)
		if loadErr != nil {
			return nil, fmt.Errorf("load checkpoint for stage %d: %w", i, loadErr)
		}
	}

	return &meta.RunState, nil
}

// Validate checks if the checkpoint is valid for the given parameters.
func (m *Manager) Validate(sourcePath string, stageNames []string) error {
	meta, err := m.LoadMetadata()
	if err != nil {
		return err
	}

	if meta.SourcePath != sourcePath {
		return fmt.Errorf("%w: checkpoint has %q, got %q", ErrSourcePathMismatch, meta.SourcePath, sourcePath)
	}

	if !stringSlicesEqual(meta.Stages, stageNames) {
		return fmt.Errorf("%w: checkpoint has %v, got %v", ErrStageMismatch, meta.Stages, stageNames)
	}

	return nil
}

// stringSlicesEqual compares two string slices for equality.
func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
