package leaderboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileName is the file the scores are kept in
const DefaultFileName = "top.json"

// FileStore implements Store using a JSON file
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path. The directory is created on the first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the file backing the store
func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads the entries; a missing file is an empty leaderboard
func (fs *FileStore) Load() ([]Entry, error) {
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal leaderboard: %w", err)
	}
	return entries, nil
}

// Save writes the entries through a temporary file so readers never see a partial list
func (fs *FileStore) Save(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(fs.path), 0755); err != nil {
		return fmt.Errorf("failed to create leaderboard directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write leaderboard file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("failed to replace leaderboard file: %w", err)
	}
	return nil
}
