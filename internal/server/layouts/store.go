// Package layouts owns the set of loaded keyboard layouts served by the
// API. All access goes through the store, which serializes mutation against
// the lock-free read paths of keymap.Map.
package layouts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/virtkbd/keymapd/keymap"
)

// Store holds the layouts loaded from a directory, keyed by the lowercased
// file base name ("qwerty" for qwerty.kcm).
type Store struct {
	dir    string
	logger *slog.Logger

	mu      sync.RWMutex
	layouts map[string]*keymap.Map

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// Open scans dir for .kcm files and loads each as a base layout. Files that
// fail to parse are skipped with a warning; the store opens as long as the
// directory is readable.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		dir:     dir,
		logger:  logger,
		layouts: make(map[string]*keymap.Map),
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("open layout dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".kcm") {
			continue
		}
		if err := s.load(filepath.Join(dir, entry.Name())); err != nil {
			logger.Warn("skipping layout", "file", entry.Name(), "error", err)
		}
	}
	return s, nil
}

// Dir returns the directory the store was opened on.
func (s *Store) Dir() string { return s.dir }

func nameForFile(path string) string {
	return strings.ToLower(strings.TrimSuffix(filepath.Base(path), ".kcm"))
}

// load parses path and installs it under its base name. Caller-facing
// entry points take the write lock; load itself assumes it.
func (s *Store) load(path string) error {
	m, err := keymap.Load(path, keymap.FormatBase)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.layouts[nameForFile(path)] = m
	s.mu.Unlock()
	return nil
}

// Names returns the loaded layout names, sorted.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.layouts))
	for name := range s.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrNotFound is returned for operations on unknown layout names.
type ErrNotFound struct{ Name string }

func (e ErrNotFound) Error() string { return fmt.Sprintf("layout %q not loaded", e.Name) }

// With runs fn with read access to the named layout. fn must not retain or
// mutate the map.
func (s *Store) With(name string, fn func(*keymap.Map) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.layouts[strings.ToLower(name)]
	if !ok {
		return ErrNotFound{Name: name}
	}
	return fn(m)
}

// Mutate runs fn with exclusive access to the named layout, for operations
// that change it (remapping, overlays, overlay reset).
func (s *Store) Mutate(name string, fn func(*keymap.Map) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.layouts[strings.ToLower(name)]
	if !ok {
		return ErrNotFound{Name: name}
	}
	return fn(m)
}

// Reload re-parses the named layout from disk, replacing the loaded copy
// and discarding remap and overlay state.
func (s *Store) Reload(name string) error {
	name = strings.ToLower(name)
	s.mu.RLock()
	_, ok := s.layouts[name]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound{Name: name}
	}
	return s.load(filepath.Join(s.dir, name+".kcm"))
}

func (s *Store) remove(name string) {
	s.mu.Lock()
	delete(s.layouts, name)
	s.mu.Unlock()
}
