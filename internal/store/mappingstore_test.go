package store

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	s := NewFileMappingStore(t.TempDir())

	mappings := map[string]string{
		"pressure": "OPERATING PRESSURE",
		"phase":    "FLUID PHASE",
	}
	require.NoError(t, s.Save(mappings))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, mappings, loaded)
}

func TestFileStoreMissingFileLoadsEmpty(t *testing.T) {
	s := NewFileMappingStore(t.TempDir())
	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileStoreReset(t *testing.T) {
	s := NewFileMappingStore(t.TempDir())
	require.NoError(t, s.Save(map[string]string{"line": "LINE NO"}))
	require.NoError(t, s.Reset())

	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Fatalf("reset must remove the backing file, stat err: %v", err)
	}

	// Resetting an already empty store is not an error.
	require.NoError(t, s.Reset())

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileStoreCreatesDataDir(t *testing.T) {
	dir := t.TempDir() + "/nested/data"
	s := NewFileMappingStore(dir)
	require.NoError(t, s.Save(map[string]string{"a": "b"}))
	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "b", loaded["a"])
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryMappingStore()
	require.NoError(t, s.Save(map[string]string{"a": "b"}))

	loaded, _ := s.Load()
	assert.Equal(t, "b", loaded["a"])

	// Load returns a copy; mutating it must not touch the store.
	loaded["a"] = "mutated"
	again, _ := s.Load()
	assert.Equal(t, "b", again["a"])

	require.NoError(t, s.Reset())
	empty, _ := s.Load()
	assert.Empty(t, empty)
}
