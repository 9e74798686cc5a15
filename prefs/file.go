package prefs

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps every key in one JSON object on disk.
type FileStore struct {
	mu       sync.Mutex
	filePath string
}

func NewFileStore(filePath string) *FileStore {
	return &FileStore{filePath: filePath}
}

// Load returns the raw value for key. A missing file or key yields nil.
func (s *FileStore) Load(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return nil, err
	}
	raw, ok := values[key]
	if !ok {
		return nil, nil
	}
	return raw, nil
}

// Save rewrites the file with key set to value.
func (s *FileStore) Save(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = json.RawMessage(value)
	return s.writeAtomic(values)
}

// Caller must hold s.mu.
func (s *FileStore) read() (map[string]json.RawMessage, error) {
	values := map[string]json.RawMessage{}
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// writeAtomic writes to a temp file then renames it over filePath.
func (s *FileStore) writeAtomic(values map[string]json.RawMessage) error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := s.filePath + ".tmp"
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}
