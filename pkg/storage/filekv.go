package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileKV is a file-per-key string store. It backs the fee state store when
// Redis is not available (offline and test deployments). Writes replace the
// whole value, matching the last-writer-wins contract of the store.
type FileKV struct {
	baseDir string
}

// NewFileKV ensures the base directory exists and returns a handle.
func NewFileKV(baseDir string) (*FileKV, error) {
	if baseDir == "" {
		baseDir = "./data"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileKV{baseDir: baseDir}, nil
}

// Get reads the value stored for key. The second return reports presence.
func (s *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read key %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set writes value under key, replacing any previous content.
func (s *FileKV) Set(_ context.Context, key, value string) error {
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return fmt.Errorf("write key %s: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("commit key %s: %w", key, err)
	}
	return nil
}

func (s *FileKV) path(key string) string {
	return filepath.Join(s.baseDir, key+".json")
}
