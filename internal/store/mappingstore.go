// Package store persists the resolved smart-mapping configuration between
// sessions. The on-disk format is a single msgpack file; this is the only
// persistence the converter owns.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// MappingStore round-trips the attribute→column smart mappings.
type MappingStore interface {
	// Load returns the persisted mappings. A missing store is not an error;
	// it loads as empty.
	Load() (map[string]string, error)
	// Save replaces the persisted mappings.
	Save(mappings map[string]string) error
	// Reset removes the persisted copy entirely.
	Reset() error
}

const mappingFileName = "smart_mappings.msgpack"

// FileMappingStore stores the mappings in a msgpack file under a data
// directory.
type FileMappingStore struct {
	path string
}

// NewFileMappingStore creates a store under dir. The directory is created on
// first save, not here.
func NewFileMappingStore(dir string) *FileMappingStore {
	return &FileMappingStore{path: filepath.Join(dir, mappingFileName)}
}

// Path returns the backing file path.
func (s *FileMappingStore) Path() string { return s.path }

func (s *FileMappingStore) Load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read mapping store: %w", err)
	}
	mappings := map[string]string{}
	if err := msgpack.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("decode mapping store: %w", err)
	}
	return mappings, nil
}

func (s *FileMappingStore) Save(mappings map[string]string) error {
	data, err := msgpack.Marshal(mappings)
	if err != nil {
		return fmt.Errorf("encode mapping store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write mapping store: %w", err)
	}
	return nil
}

func (s *FileMappingStore) Reset() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove mapping store: %w", err)
	}
	return nil
}

// MemoryMappingStore is an in-memory store for tests and embedded use.
type MemoryMappingStore struct {
	mappings map[string]string
}

func NewMemoryMappingStore() *MemoryMappingStore {
	return &MemoryMappingStore{mappings: map[string]string{}}
}

func (s *MemoryMappingStore) Load() (map[string]string, error) {
	out := make(map[string]string, len(s.mappings))
	for k, v := range s.mappings {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryMappingStore) Save(mappings map[string]string) error {
	s.mappings = make(map[string]string, len(mappings))
	for k, v := range mappings {
		s.mappings[k] = v
	}
	return nil
}

func (s *MemoryMappingStore) Reset() error {
	s.mappings = map[string]string{}
	return nil
}
