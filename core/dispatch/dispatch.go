// Package dispatch turns bot-side member references into fully qualified
// runtime names ("provider:member") through a lookup table built once per bot.
//
// A provider is either an installed integration, addressed by its own name,
// or an interface the bot depends on, addressed by the interface name and
// routed to the integration implementing it.
package dispatch

import (
	"sort"

	"github.com/artpar/botdef/core/bot"
)

// Route maps a provider's member names to a target integration.
type Route struct {
	// Target is the integration name that serves the calls.
	Target string

	Actions map[string]string
	Events  map[string]string
}

// Table is the providerName -> memberName -> targetName lookup.
type Table struct {
	routes map[string]Route
}

// BuildTable resolves every installed integration and interface dependency
// of b. Integrations route to themselves under their own member names;
// interfaces route to the implementing integration under its aliases.
func BuildTable(b bot.Definition) (*Table, error) {
	resolved, err := bot.ResolveInterfaces(b)
	if err != nil {
		return nil, err
	}

	t := &Table{routes: make(map[string]Route, len(b.Integrations)+len(resolved))}

	for _, name := range b.IntegrationNames() {
		def := b.Integrations[name].Package.Definition
		r := Route{Target: name, Actions: make(map[string]string), Events: make(map[string]string)}
		for member := range def.Actions {
			r.Actions[member] = member
		}
		for member := range def.Events {
			r.Events[member] = member
		}
		t.routes[name] = r
	}

	for name, res := range resolved {
		r := Route{Target: res.Integration, Actions: make(map[string]string), Events: make(map[string]string)}
		for member, alias := range res.Statement.Actions {
			r.Actions[member] = alias.Name
		}
		for member, alias := range res.Statement.Events {
			r.Events[member] = alias.Name
		}
		// an interface dependency shadows an integration of the same name
		t.routes[name] = r
	}

	return t, nil
}

// Providers returns the provider names in sorted order.
func (t *Table) Providers() []string {
	names := make([]string, 0, len(t.routes))
	for name := range t.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Route returns the route of a provider.
func (t *Table) Route(provider string) (Route, bool) {
	r, ok := t.routes[provider]
	return r, ok
}

// Resolve returns the fully qualified action name for provider.member.
// Unknown providers and members resolve to "provider:member" unchanged.
func (t *Table) Resolve(provider, member string) string {
	r, ok := t.routes[provider]
	if !ok {
		return qualify(provider, member)
	}
	return qualify(r.Target, lookup(r.Actions, member))
}

// EventType returns the fully qualified event type for provider.event.
func (t *Table) EventType(provider, event string) string {
	r, ok := t.routes[provider]
	if !ok {
		return qualify(provider, event)
	}
	return qualify(r.Target, lookup(r.Events, event))
}

func lookup(m map[string]string, member string) string {
	if name, ok := m[member]; ok && name != "" {
		return name
	}
	return member
}

func qualify(prefix, suffix string) string {
	return prefix + ":" + suffix
}
