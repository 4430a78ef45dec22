// Package storage persists the geocode cache and run state as two JSON files
// under the configured data directory.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"meetingsync/internal/domain"
	"meetingsync/internal/ports"
)

const (
	geocodeCacheFile = "geocode_cache.json"
	stateFile        = "state.json"
)

// FileStore reads and writes the two state files. Missing or unreadable
// files load as empty defaults so a first run starts clean; writes go
// through a temp file and rename so a crash never truncates state.
type FileStore struct {
	dir string
}

var _ ports.StateStore = (*FileStore)(nil)

// NewFileStore roots the store at dir; the directory is created on first
// write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// LoadGeocodeCache returns the persisted cache, or an empty one.
func (s *FileStore) LoadGeocodeCache() (domain.GeocodeCache, error) {
	cache := domain.GeocodeCache{}
	if err := s.readJSON(geocodeCacheFile, &cache); err != nil {
		return domain.GeocodeCache{}, nil
	}
	return cache, nil
}

// SaveGeocodeCache atomically replaces the cache file.
func (s *FileStore) SaveGeocodeCache(cache domain.GeocodeCache) error {
	return s.writeJSON(geocodeCacheFile, cache)
}

// LoadState returns the persisted run state, or a clean one with an empty
// fingerprint map.
func (s *FileStore) LoadState() (domain.RunState, error) {
	var state domain.RunState
	if err := s.readJSON(stateFile, &state); err != nil {
		state = domain.RunState{}
	}
	if state.Fingerprints == nil {
		state.Fingerprints = map[string]string{}
	}
	return state, nil
}

// SaveState atomically replaces the state file.
func (s *FileStore) SaveState(state domain.RunState) error {
	return s.writeJSON(stateFile, state)
}

func (s *FileStore) readJSON(name string, v any) error {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func (s *FileStore) writeJSON(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	target := filepath.Join(s.dir, name)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("replace %s: %w", target, err)
	}
	return nil
}
