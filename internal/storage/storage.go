// Package storage writes run artifacts to an output directory.
//
// Every file is written to a temporary sibling first and renamed into place,
// so a crashed run never leaves a half-written CSV or chart behind. Besides
// raw artifacts it persists the JSON run summary and, optionally, a SQLite
// export of the computed tables.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rewired-gh/mailstats/internal/models"
)

const (
	DefaultFilePermissions os.FileMode = 0o644
	DefaultDirPermissions  os.FileMode = 0o755
)

// Store writes artifacts below a single directory
type Store struct {
	dir             string
	filePermissions os.FileMode
	dirPermissions  os.FileMode
}

// New creates a Store rooted at dir.
// An empty dir means the current working directory; zero permissions fall
// back to the defaults.
func New(dir string, filePermissions, dirPermissions os.FileMode) *Store {
	if dir == "" {
		dir = "."
	}
	if filePermissions == 0 {
		filePermissions = DefaultFilePermissions
	}
	if dirPermissions == 0 {
		dirPermissions = DefaultDirPermissions
	}

	return &Store{
		dir:             dir,
		filePermissions: filePermissions,
		dirPermissions:  dirPermissions,
	}
}

// Path resolves name against the store directory.
// Absolute names are returned unchanged.
func (s *Store) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// WriteFile atomically replaces name with data and returns the final path
func (s *Store) WriteFile(name string, data []byte) (string, error) {
	path := s.Path(name)

	if err := os.MkdirAll(filepath.Dir(path), s.dirPermissions); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write to temporary file first (atomic write)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, s.filePermissions); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath) // Clean up temp file on rename failure
		return "", fmt.Errorf("failed to rename file: %w", err)
	}

	return path, nil
}

// SaveSummary writes the run summary as indented JSON
func (s *Store) SaveSummary(name string, summary *models.RunSummary) (string, error) {
	if err := summary.Validate(); err != nil {
		return "", fmt.Errorf("invalid summary: %w", err)
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}

	return s.WriteFile(name, append(jsonData, '\n'))
}

// LoadSummary reads a summary previously written by SaveSummary
func (s *Store) LoadSummary(name string) (*models.RunSummary, error) {
	jsonData, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}

	var summary models.RunSummary
	if err := json.Unmarshal(jsonData, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &summary, nil
}
