// Package settings persists the user's preferences as a small JSON document
// in the config directory. The store loads in the background; writers wait
// for it to become ready so an early save cannot clobber the file.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/oukeidos/typoduck/internal/files"
	"github.com/oukeidos/typoduck/internal/logger"
)

// ErrNotReady is returned by writes issued before the document has loaded.
var ErrNotReady = errors.New("settings store is still loading")

const (
	// FileName is the document name inside the config directory.
	FileName = "settings.json"
	// ConfigDirEnv overrides the config directory.
	ConfigDirEnv = "TYPODUCK_CONFIG_DIR"
)

// Dir returns the directory holding settings and logs.
func Dir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(base, "typoduck"), nil
}

// DefaultPath is Dir()/settings.json.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Store is a key/value JSON document.
type Store struct {
	path string

	mu    sync.RWMutex
	doc   map[string]any
	dirty bool

	ready   chan struct{}
	loadErr error
}

// Open starts loading path in the background and returns immediately.
func Open(path string) *Store {
	s := &Store{path: path, doc: map[string]any{}, ready: make(chan struct{})}
	go s.load()
	return s
}

// Load opens path and waits for it.
func Load(ctx context.Context, path string) (*Store, error) {
	s := Open(path)
	if err := s.Wait(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() {
	defer close(s.ready)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("No settings file yet; using defaults", "path", s.path)
		return
	}
	if err != nil {
		s.loadErr = fmt.Errorf("read settings: %w", err)
		return
	}

	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		backup, berr := files.WriteNew(s.path+".corrupt", data, 0600)
		if berr != nil {
			logger.Warn("Settings file unreadable and could not be backed up", "path", s.path, "error", berr)
		} else {
			logger.Warn("Settings file unreadable; starting from defaults", "path", s.path, "backup", backup, "error", err)
		}
		return
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	logger.Debug("Settings loaded", "path", s.path, "entries", len(doc))
}

// Path returns the document path.
func (s *Store) Path() string { return s.path }

// Ready is closed once loading has finished, successfully or not.
func (s *Store) Ready() <-chan struct{} { return s.ready }

// IsReady reports whether Ready is closed.
func (s *Store) IsReady() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// Wait blocks until the store is ready and returns any load error.
func (s *Store) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return s.loadErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get returns the raw value for key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.doc[key]
	return v, ok
}

// Keys lists the stored keys, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.doc))
	for k := range s.doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StringWithFallback returns the string at key, or fallback when missing or
// not a string.
func (s *Store) StringWithFallback(key, fallback string) string {
	if v, ok := s.Get(key); ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return fallback
}

// BoolWithFallback returns the bool at key, or fallback when missing or not a
// bool.
func (s *Store) BoolWithFallback(key string, fallback bool) bool {
	if v, ok := s.Get(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

// Set stores a value in memory. Call Save to persist.
func (s *Store) Set(key string, value any) error {
	if !s.IsReady() {
		return ErrNotReady
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc[key] = value
	s.dirty = true
	return nil
}

// Delete removes key from the document.
func (s *Store) Delete(key string) error {
	if !s.IsReady() {
		return ErrNotReady
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.doc[key]; ok {
		delete(s.doc, key)
		s.dirty = true
	}
	return nil
}

// Save writes the document atomically if anything changed.
func (s *Store) Save() error {
	if !s.IsReady() {
		return ErrNotReady
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := files.AtomicWrite(s.path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.dirty = false
	logger.Debug("Settings saved", "path", s.path)
	return nil
}
