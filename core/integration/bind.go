package integration

import (
	"fmt"
	"strings"

	"github.com/artpar/botdef/core/contract"
	"github.com/artpar/botdef/core/schema"
)

// ConfigurationError is returned when an integration author binds an
// interface incorrectly: a foreign entity, an unknown placeholder, or a
// rename of a member the interface does not declare.
type ConfigurationError struct {
	Interface string
	Message   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("cannot extend interface %q: %s", e.Interface, e.Message)
}

// Binding is what an integration author supplies for one interface.
type Binding struct {
	// Entities maps interface placeholder names to owned entities.
	Entities map[string]Entity

	// Actions, Events and Channels optionally rename interface members.
	// Members without an entry keep the interface's own name.
	Actions  map[string]string
	Events   map[string]string
	Channels map[string]string
}

// BindingFunc receives the integration's entity store and returns the binding.
type BindingFunc func(store EntityStore) (Binding, error)

// Bind runs fn against the store and turns its result into an implementation
// statement and its binding key.
func Bind(iface contract.Interface, store EntityStore, fn BindingFunc) (Statement, string, error) {
	if fn == nil {
		fn = func(EntityStore) (Binding, error) { return Binding{}, nil }
	}

	b, err := fn(store)
	if err != nil {
		return Statement{}, "", fmt.Errorf("binding %s: %w", iface.Ref(), err)
	}

	cfgErr := func(format string, args ...any) error {
		return &ConfigurationError{Interface: iface.Name, Message: fmt.Sprintf(format, args...)}
	}

	for _, placeholder := range sortedKeys(b.Entities) {
		e := b.Entities[placeholder]
		if !iface.HasEntity(placeholder) {
			return Statement{}, "", cfgErr("interface has no entity %q", placeholder)
		}
		if !store.Owns(e) {
			return Statement{}, "", cfgErr("entity %q: the provided schema is not part of the integration's entities", placeholder)
		}
	}

	st := Statement{
		Name:     iface.Name,
		Version:  iface.Version,
		Entities: make(map[string]BoundEntity, len(b.Entities)),
	}

	// Key order follows declaration order so the same physical binding
	// always yields the same key.
	var entityNames []string
	for _, decl := range iface.Entities {
		e, ok := b.Entities[decl.Name]
		if !ok {
			continue
		}
		st.Entities[decl.Name] = BoundEntity{Name: e.Name(), Schema: e.Schema()}
		entityNames = append(entityNames, e.Name())
	}

	if st.Actions, err = resolveAliases(iface.Name, "action", iface.ActionNames(), b.Actions); err != nil {
		return Statement{}, "", err
	}
	if st.Events, err = resolveAliases(iface.Name, "event", iface.EventNames(), b.Events); err != nil {
		return Statement{}, "", err
	}
	if st.Channels, err = resolveAliases(iface.Name, "channel", iface.ChannelNames(), b.Channels); err != nil {
		return Statement{}, "", err
	}

	return st, BindingKey(iface.Name, entityNames), nil
}

// BindingKey returns the interfaces-table key of an instantiation: the bare
// interface name without entities, "name<e1,e2>" otherwise.
func BindingKey(name string, entityNames []string) string {
	if len(entityNames) == 0 {
		return name
	}
	return fmt.Sprintf("%s<%s>", name, strings.Join(entityNames, ","))
}

// resolveAliases maps every member to its alias, or to itself.
func resolveAliases(iface, kind string, members []string, renames map[string]string) (map[string]Alias, error) {
	known := make(map[string]bool, len(members))
	for _, m := range members {
		known[m] = true
	}
	for _, m := range sortedKeys(renames) {
		if !known[m] {
			return nil, &ConfigurationError{Interface: iface, Message: fmt.Sprintf("rename of unknown %s %q", kind, m)}
		}
		if !schema.IsValidIdentifier(renames[m]) {
			return nil, &ConfigurationError{Interface: iface, Message: fmt.Sprintf("%s %q: alias %q is not a valid identifier", kind, m, renames[m])}
		}
	}

	out := make(map[string]Alias, len(members))
	taken := make(map[string]string, len(members))
	for _, m := range members {
		name := m
		if alias, ok := renames[m]; ok {
			name = alias
		}
		if other, dup := taken[name]; dup {
			return nil, &ConfigurationError{Interface: iface, Message: fmt.Sprintf("%ss %q and %q both map to %q", kind, other, m, name)}
		}
		taken[name] = m
		out[m] = Alias{Name: name}
	}
	return out, nil
}
