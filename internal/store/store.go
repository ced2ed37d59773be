// Package store persists field answers between runs.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// DefaultPath is the store file used when none is configured
const DefaultPath = "form_data.json"

// Scope decides how a field is keyed in the store
type Scope int

const (
	// ScopeName keys by field name alone, shared across forms and sites
	ScopeName Scope = iota
	// ScopeForm keys by origin, form index and field name
	ScopeForm
)

// ParseScope converts "name" or "form" to a Scope
func ParseScope(s string) (Scope, error) {
	switch s {
	case "", "name":
		return ScopeName, nil
	case "form":
		return ScopeForm, nil
	default:
		return ScopeName, fmt.Errorf("unknown store scope %q (supported: name, form)", s)
	}
}

func (sc Scope) String() string {
	if sc == ScopeForm {
		return "form"
	}
	return "name"
}

// Key returns the store key of the named field in form formIndex of pageURL
func (sc Scope) Key(pageURL string, formIndex int, name string) string {
	if sc == ScopeForm {
		return Origin(pageURL) + "#" + strconv.Itoa(formIndex) + "/" + name
	}
	return name
}

// Store is a flat mapping from field key to value backed by a JSON file.
// It is not safe for concurrent use.
type Store struct {
	path   string
	values map[string]Value
}

// New returns an empty store that saves to path
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path, values: make(map[string]Value)}
}

// Load reads the store at path. A missing file yields an empty store.
func Load(path string) (*Store, error) {
	s := New(path)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store %s: %w", s.path, err)
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", s.path, err)
	}
	if s.values == nil {
		s.values = make(map[string]Value)
	}
	return s, nil
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Store) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

func (s *Store) Set(key string, v Value) {
	s.values[key] = v
}

func (s *Store) Len() int {
	return len(s.values)
}

// Keys returns all keys in sorted order
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Save rewrites the whole file. The new content is written to a temporary
// file in the same directory and renamed over the old one, so readers see
// either the previous or the new store.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store %s: %w", s.path, err)
	}
	return nil
}
