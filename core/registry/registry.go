// Package registry indexes the declarations of a project and detects
// conflicting declarations: the same interface reference or integration
// name declared by more than one source.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/artpar/botdef/core/contract"
	"github.com/artpar/botdef/core/integration"
)

// Claim is one declaration of a name.
type Claim struct {
	Kind   string
	Name   string
	Source string
}

// Conflict is a name claimed by more than one source.
type Conflict struct {
	Kind   string
	Name   string
	Claims []Claim
}

// Error returns the conflict message.
func (c Conflict) Error() string {
	sources := make([]string, len(c.Claims))
	for i, cl := range c.Claims {
		sources[i] = cl.Source
	}
	return fmt.Sprintf("%s %s declared in %s", c.Kind, c.Name, strings.Join(sources, " and "))
}

// ConflictError represents one or more declaration conflicts.
type ConflictError struct {
	Conflicts []Conflict
}

// Error returns the conflict error message.
func (e *ConflictError) Error() string {
	var msgs []string
	for _, c := range e.Conflicts {
		msgs = append(msgs, c.Error())
	}
	return fmt.Sprintf("declaration conflicts detected:\n  - %s", strings.Join(msgs, "\n  - "))
}

// HasConflicts returns true if there are any conflicts.
func (e *ConflictError) HasConflicts() bool {
	return len(e.Conflicts) > 0
}

type interfaceEntry struct {
	iface  contract.Interface
	source string
}

type integrationEntry struct {
	def    integration.Definition
	source string
}

// Registry indexes interfaces by "name@version" and integrations by name.
type Registry struct {
	mu sync.RWMutex

	interfaces   map[string]interfaceEntry
	integrations map[string]integrationEntry
}

// New creates a new registry.
func New() *Registry {
	return &Registry{
		interfaces:   make(map[string]interfaceEntry),
		integrations: make(map[string]integrationEntry),
	}
}

// RegisterInterface registers an interface declared in source.
func (r *Registry) RegisterInterface(iface contract.Interface, source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref := iface.Ref()
	if existing, exists := r.interfaces[ref]; exists {
		return &ConflictError{Conflicts: []Conflict{{
			Kind: "interface",
			Name: ref,
			Claims: []Claim{
				{Kind: "interface", Name: ref, Source: existing.source},
				{Kind: "interface", Name: ref, Source: source},
			},
		}}}
	}

	r.interfaces[ref] = interfaceEntry{iface: iface, source: source}
	return nil
}

// RegisterIntegration registers an integration declared in source.
// Integration names are unique regardless of version, matching how bots
// install them.
func (r *Registry) RegisterIntegration(def integration.Definition, source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.integrations[def.Name]; exists {
		return &ConflictError{Conflicts: []Conflict{{
			Kind: "integration",
			Name: def.Name,
			Claims: []Claim{
				{Kind: "integration", Name: def.Name, Source: existing.source},
				{Kind: "integration", Name: def.Name, Source: source},
			},
		}}}
	}

	r.integrations[def.Name] = integrationEntry{def: def, source: source}
	return nil
}

// ReplaceIntegration stores def over an already registered integration of
// the same name, keeping its source.
func (r *Registry) ReplaceIntegration(def integration.Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.integrations[def.Name]
	if !exists {
		return fmt.Errorf("integration %q not registered", def.Name)
	}
	r.integrations[def.Name] = integrationEntry{def: def, source: existing.source}
	return nil
}

// Interface returns a registered interface by name and version.
func (r *Registry) Interface(name, version string) (contract.Interface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.interfaces[contract.FormatRef(name, version)]
	return e.iface, ok
}

// Integration returns a registered integration by name.
func (r *Registry) Integration(name string) (integration.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.integrations[name]
	return e.def, ok
}

// Source returns the source an interface or integration was declared in.
func (r *Registry) Source(kind, name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch kind {
	case "interface":
		e, ok := r.interfaces[name]
		return e.source, ok
	case "integration":
		e, ok := r.integrations[name]
		return e.source, ok
	}
	return "", false
}

// Interfaces returns all registered interfaces sorted by name then version.
func (r *Registry) Interfaces() []contract.Interface {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contract.Interface, 0, len(r.interfaces))
	for _, e := range r.interfaces {
		out = append(out, e.iface)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Version < out[j].Version
	})
	return out
}

// Integrations returns all registered integrations sorted by name.
func (r *Registry) Integrations() []integration.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]integration.Definition, 0, len(r.integrations))
	for _, e := range r.integrations {
		out = append(out, e.def)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
