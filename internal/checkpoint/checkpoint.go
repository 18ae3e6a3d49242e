package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store persists one JSON document per pipeline stage key. A read failure of
// any sort (missing file, corrupt content) is treated as absent so the
// pipeline can always be rerun from scratch per stage. Writes are atomic:
// a key is either fully written or fully absent, never partial.
//
// A memory layer in front of the disk keeps repeated reads within a run
// cheap; the disk is the durable truth.
type Store struct {
	dir      string
	disabled bool
	memory   *gocache.Cache
}

// New creates a store rooted at dir. If enabled is false, Get always
// misses and Put still writes (fresh data is fetched but kept for later).
func New(dir string, enabled bool) *Store {
	return &Store{
		dir:      dir,
		disabled: !enabled,
		memory:   gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

// Get unmarshals the checkpoint for key into v. Returns false on any
// failure: absence, unreadable file or malformed JSON are all cache misses,
// never errors.
func (s *Store) Get(key string, v any) bool {
	if s.disabled {
		return false
	}

	data, ok := s.raw(key)
	if !ok {
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false
	}
	return true
}

func (s *Store) raw(key string) ([]byte, bool) {
	if cached, found := s.memory.Get(key); found {
		return cached.([]byte), true
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}

	s.memory.Set(key, data, gocache.NoExpiration)
	return data, true
}

// Put writes the checkpoint for key. The value is written to a temp file
// and renamed into place so an interrupted write never leaves a partial
// checkpoint behind.
func (s *Store) Put(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint %q: %w", key, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	path := s.path(key)
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write checkpoint %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp checkpoint: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename checkpoint %q: %w", key, err)
	}

	s.memory.Set(key, data, gocache.NoExpiration)
	return nil
}

// Delete removes the checkpoint for key
func (s *Store) Delete(key string) error {
	s.memory.Delete(key)
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes every checkpoint
func (s *Store) Clear() error {
	s.memory.Flush()
	return os.RemoveAll(s.dir)
}

// path generates the file path for a stage key
func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Do is the cache-or-fetch combinator: it returns the checkpointed value
// for key if present, otherwise calls fetch and stores its result. All
// stage short-circuiting goes through here so the policy lives in one place.
func Do[T any](s *Store, key string, fetch func() (T, error)) (T, error) {
	var v T
	if s.Get(key, &v) {
		return v, nil
	}

	v, err := fetch()
	if err != nil {
		return v, err
	}

	if err := s.Put(key, v); err != nil {
		return v, err
	}
	return v, nil
}
