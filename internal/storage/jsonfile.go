package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/models"
)

// JSONStorage persists the project mapping as a single JSON file. This is
// the original deployment mode; SQLiteStorage is the database-backed one.
type JSONStorage struct {
	path string
}

// NewJSONStorage creates a JSON file storage at the given path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Open ensures the parent directory exists. A missing data file is not an
// error; Load treats it as an empty mapping.
func (s *JSONStorage) Open() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	return nil
}

// Close is a no-op for JSON file storage.
func (s *JSONStorage) Close() error {
	return nil
}

// Load reads the full project mapping from the data file.
func (s *JSONStorage) Load(_ context.Context) (ProjectMap, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return ProjectMap{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", s.path, err, ErrUnavailable)
	}

	var raw map[int]*models.Project
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if raw == nil {
		raw = map[int]*models.Project{}
	}
	return raw, nil
}

// Save writes the full project mapping atomically (temp file + rename).
func (s *JSONStorage) Save(_ context.Context, projects ProjectMap) error {
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return fmt.Errorf("encode projects: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("write %s: %v: %w", tmp, err, ErrUnavailable)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %v: %w", tmp, err, ErrUnavailable)
	}
	return nil
}
