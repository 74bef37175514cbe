package cache

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"
)

// SpillDir persists evicted resource content to disk as lz4-compressed
// blobs, keyed by a filesystem-safe form of the resource's path, so a large
// symbol library evicted from the in-memory ResourceCache can be reloaded
// without re-parsing its source file from scratch.
type SpillDir struct {
	dir string
}

// NewSpillDir prepares dir (created if missing) as a spill target.
func NewSpillDir(dir string) (*SpillDir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create spill dir: %w", err)
	}

	return &SpillDir{dir: dir}, nil
}

// Write lz4-compresses resource.Data and writes it under the spill
// directory, returning the path it was written to.
func (s *SpillDir) Write(resource *Resource) (string, error) {
	if resource == nil {
		return "", fmt.Errorf("cache: nil resource")
	}

	path := s.spillPath(resource.Path)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("cache: open spill file: %w", err)
	}
	defer file.Close()

	writer := lz4.NewWriter(file)

	if _, err := writer.Write(resource.Data); err != nil {
		return "", fmt.Errorf("cache: compress spill entry: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("cache: flush spill entry: %w", err)
	}

	return path, nil
}

// Read decompresses a previously spilled resource for originalPath, or
// returns an error wrapping fs.ErrNotExist (test it with errors.Is) if it
// was never spilled.
func (s *SpillDir) Read(originalPath string) (*Resource, error) {
	path := s.spillPath(originalPath)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cache: open spill file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer

	reader := lz4.NewReader(file)

	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("cache: decompress spill entry: %w", err)
	}

	return &Resource{Path: originalPath, Data: buf.Bytes()}, nil
}

// Remove deletes a spilled entry, if present.
func (s *SpillDir) Remove(originalPath string) error {
	err := os.Remove(s.spillPath(originalPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cache: remove spill entry: %w", err)
	}

	return nil
}

func (s *SpillDir) spillPath(originalPath string) string {
	return filepath.Join(s.dir, spillFileName(originalPath)+".lz4")
}

// spillFileName turns an arbitrary resource path into a filesystem-safe
// name by replacing path separators, keeping the mapping legible for
// debugging instead of hashing it away.
func spillFileName(originalPath string) string {
	name := make([]byte, len(originalPath))

	for i := 0; i < len(originalPath); i++ {
		c := originalPath[i]
		if c == '/' || c == '\\' || c == ':' {
			name[i] = '_'
		} else {
			name[i] = c
		}
	}

	return string(name)
}
