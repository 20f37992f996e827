// Package storage provides the flat string key/value store the client keeps
// between runs. Composite values are stored JSON-encoded by their owners.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store is plain key/value string storage.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	SetMany(values map[string]string) error
	Remove(keys ...string) error
}

// FileStore keeps every key in a single yaml document and rewrites it on
// each mutation.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// Open loads the store at path. A missing file is an empty store.
func Open(path string) (*FileStore, error) {
	s := &FileStore{path: path, values: map[string]string{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage %s: %w", path, err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("failed to parse storage %s: %w", path, err)
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
	return s, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the value for key.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a single key.
func (s *FileStore) Set(key, value string) error {
	return s.SetMany(map[string]string{key: value})
}

// SetMany stores all values with one write.
func (s *FileStore) SetMany(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.copyLocked()
	for k, v := range values {
		s.values[k] = v
	}
	if err := s.flush(); err != nil {
		s.values = prev
		return err
	}
	return nil
}

// Remove deletes keys; unknown keys are ignored.
func (s *FileStore) Remove(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.copyLocked()
	changed := false
	for _, k := range keys {
		if _, ok := s.values[k]; ok {
			delete(s.values, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := s.flush(); err != nil {
		s.values = prev
		return err
	}
	return nil
}

// Snapshot returns a copy of every stored key and value.
func (s *FileStore) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *FileStore) copyLocked() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// flush rewrites the whole document via temp file + rename. Caller holds mu.
func (s *FileStore) flush() error {
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("failed to encode storage: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace storage: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

// Get returns the value for key.
func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

// Set stores a single key.
func (m *MemoryStore) Set(key, value string) error {
	return m.SetMany(map[string]string{key: value})
}

// SetMany stores all values.
func (m *MemoryStore) SetMany(values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

// Remove deletes keys.
func (m *MemoryStore) Remove(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// Len reports how many keys are stored.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}
