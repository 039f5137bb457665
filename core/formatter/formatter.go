// Package formatter provides a pluggable output formatting system.
// Formatters encode resolved definitions for files (json, yaml) and the
// terminal (table).
package formatter

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Formatter encodes a value in a specific output format.
type Formatter interface {
	// Name returns the formatter name (e.g., "table", "json", "yaml").
	Name() string

	// Extension returns the file extension including the dot, or "" when
	// the format is not meant for files.
	Extension() string

	// Format writes v to w.
	Format(w io.Writer, v any, opts Options) error
}

// Options configures formatting behavior.
type Options struct {
	// Compact minimizes whitespace (for json).
	Compact bool

	// MaxWidth truncates long cells (0 = no limit).
	MaxWidth int
}

// Tabular is implemented by values the table formatter can render.
type Tabular interface {
	Header() []string
	Rows() [][]string
}

// Registry manages registered formatters.
type Registry struct {
	mu         sync.RWMutex
	formatters map[string]Formatter
}

// NewRegistry creates a registry with the json, yaml and table formatters.
func NewRegistry() *Registry {
	r := &Registry{formatters: make(map[string]Formatter)}
	for _, f := range []Formatter{JSON{}, YAML{}, Table{}} {
		r.formatters[f.Name()] = f
	}
	return r
}

// Register adds a formatter to the registry.
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[f.Name()]; exists {
		return fmt.Errorf("formatter %q already registered", f.Name())
	}

	r.formatters[f.Name()] = f
	return nil
}

// Get returns a formatter by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (available: %v)", name, r.list())
	}
	return f, nil
}

// List returns all registered formatter names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list()
}

func (r *Registry) list() []string {
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
