package flags

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore keeps the flags in a YAML file and rewrites it on every change.
type FileStore struct {
	path string

	mu    sync.Mutex
	flags map[string]bool
}

// OpenFileStore loads path, or starts empty when it does not exist yet.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, flags: make(map[string]bool)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read flag file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s.flags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flag file %s: %w", path, err)
	}
	if s.flags == nil {
		s.flags = make(map[string]bool)
	}
	return s, nil
}

func (s *FileStore) Get(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags[key], nil
}

func (s *FileStore) Set(key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[key] = value
	return s.save()
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.flags[key]; !ok {
		return nil
	}
	delete(s.flags, key)
	return s.save()
}

func (s *FileStore) Close() error {
	return nil
}

// Keys returns the stored keys in sorted order.
func (s *FileStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.flags))
	for k := range s.flags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *FileStore) save() error {
	data, err := yaml.Marshal(s.flags)
	if err != nil {
		return fmt.Errorf("failed to marshal flags: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create flag directory: %w", err)
	}
	// Write to a sibling file first so a crash never leaves half a file behind.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write flag file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace flag file %s: %w", s.path, err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
