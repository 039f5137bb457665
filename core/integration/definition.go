// Package integration defines integration definitions and the engine that
// instantiates generic interfaces against them.
//
// An integration owns concrete entities. Extending it with an interface binds
// the interface's placeholder entities to owned entities, dereferences the
// interface's templates and merges the result into the integration's own
// action, event and channel tables:
//
//	def, err := nlp.Extend(sentiment, func(store integration.EntityStore) (integration.Binding, error) {
//		doc, err := store.Get("document")
//		if err != nil {
//			return integration.Binding{}, err
//		}
//		return integration.Binding{
//			Entities: map[string]integration.Entity{"item": doc},
//			Actions:  map[string]string{"classify": "analyze"},
//		}, nil
//	})
//
// Every step returns a new Definition; the receiver is never modified.
package integration

import (
	"sort"

	"github.com/artpar/botdef/core/contract"
	"github.com/artpar/botdef/core/schema"
)

// Definition is a concrete capability provider.
type Definition struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`

	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Icon        string `yaml:"icon,omitempty" json:"icon,omitempty"`
	Readme      string `yaml:"readme,omitempty" json:"readme,omitempty"`

	// Configuration is the default configuration schema.
	Configuration *ConfigurationDefinition `yaml:"configuration,omitempty" json:"configuration,omitempty"`

	// Configurations are alternative named configuration schemas.
	Configurations map[string]ConfigurationDefinition `yaml:"configurations,omitempty" json:"configurations,omitempty"`

	// Entities are the schemas this integration owns.
	Entities map[string]EntityDefinition `yaml:"entities,omitempty" json:"entities,omitempty"`

	Actions  map[string]ActionDefinition  `yaml:"actions,omitempty" json:"actions,omitempty"`
	Events   map[string]EventDefinition   `yaml:"events,omitempty" json:"events,omitempty"`
	Channels map[string]ChannelDefinition `yaml:"channels,omitempty" json:"channels,omitempty"`
	States   map[string]StateDefinition   `yaml:"states,omitempty" json:"states,omitempty"`

	Secrets map[string]SecretDefinition `yaml:"secrets,omitempty" json:"secrets,omitempty"`
	User    *UserDefinition             `yaml:"user,omitempty" json:"user,omitempty"`

	// Interfaces maps binding keys to the interfaces this integration implements.
	Interfaces map[string]Statement `yaml:"interfaces,omitempty" json:"interfaces,omitempty"`
}

// Package is a published integration definition.
type Package struct {
	ID         string     `json:"id"`
	Definition Definition `json:"definition"`
}

// ActionDefinition is a concrete action.
type ActionDefinition struct {
	Title       string         `yaml:"title,omitempty" json:"title,omitempty"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Input       *schema.Schema `yaml:"input" json:"input"`
	Output      *schema.Schema `yaml:"output" json:"output"`
}

// EventDefinition is a concrete event.
type EventDefinition struct {
	Title       string         `yaml:"title,omitempty" json:"title,omitempty"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Schema      *schema.Schema `yaml:"schema" json:"schema"`
}

// ChannelDefinition is a concrete channel with its message schemas.
type ChannelDefinition struct {
	Title       string                       `yaml:"title,omitempty" json:"title,omitempty"`
	Description string                       `yaml:"description,omitempty" json:"description,omitempty"`
	Messages    map[string]MessageDefinition `yaml:"messages" json:"messages"`
}

// MessageDefinition is a message schema inside a channel.
type MessageDefinition struct {
	Schema *schema.Schema `yaml:"schema" json:"schema"`
}

// StateType scopes a state.
type StateType string

const (
	StateConversation StateType = "conversation"
	StateUser         StateType = "user"
	StateIntegration  StateType = "integration"
)

// StateDefinition is persistent state owned by the integration.
type StateDefinition struct {
	Type   StateType      `yaml:"type" json:"type"`
	Schema *schema.Schema `yaml:"schema" json:"schema"`
}

// ConfigurationDefinition describes configuration accepted at install time.
type ConfigurationDefinition struct {
	Title       string         `yaml:"title,omitempty" json:"title,omitempty"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Schema      *schema.Schema `yaml:"schema" json:"schema"`
}

// EntityDefinition is an owned entity schema.
type EntityDefinition struct {
	Title       string         `yaml:"title,omitempty" json:"title,omitempty"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Schema      *schema.Schema `yaml:"schema" json:"schema"`
}

// SecretDefinition declares a secret the integration expects.
type SecretDefinition struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Optional    bool   `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// UserDefinition declares user tags.
type UserDefinition struct {
	Tags map[string]TagDefinition `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// TagDefinition documents a tag.
type TagDefinition struct {
	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Statement records one instantiation of an interface by an integration.
type Statement struct {
	// ID of the published interface package, when known.
	ID string `yaml:"id,omitempty" json:"id,omitempty"`

	// Name and Version identify the implemented interface.
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`

	// Entities maps interface placeholders to the bound owned entities.
	Entities map[string]BoundEntity `yaml:"entities" json:"entities"`

	// Actions, Events and Channels map interface member names to the names
	// they have inside the integration.
	Actions  map[string]Alias `yaml:"actions" json:"actions"`
	Events   map[string]Alias `yaml:"events" json:"events"`
	Channels map[string]Alias `yaml:"channels" json:"channels"`
}

// BoundEntity is the owned entity bound to an interface placeholder.
type BoundEntity struct {
	Name   string         `yaml:"name" json:"name"`
	Schema *schema.Schema `yaml:"schema" json:"schema"`
}

// Alias is the name an interface member has inside the integration.
type Alias struct {
	Name string `yaml:"name" json:"name"`
}

// Ref returns the "name@version" reference of the implemented interface.
func (s Statement) Ref() string {
	return contract.FormatRef(s.Name, s.Version)
}

// Matches reports whether the statement implements name@version exactly.
func (s Statement) Matches(name, version string) bool {
	return s.Name == name && s.Version == version
}

// ActionName returns the integration-side name of an interface action.
func (s Statement) ActionName(member string) string {
	if a, ok := s.Actions[member]; ok && a.Name != "" {
		return a.Name
	}
	return member
}

// EventName returns the integration-side name of an interface event.
func (s Statement) EventName(member string) string {
	if a, ok := s.Events[member]; ok && a.Name != "" {
		return a.Name
	}
	return member
}

// ChannelName returns the integration-side name of an interface channel.
func (s Statement) ChannelName(member string) string {
	if a, ok := s.Channels[member]; ok && a.Name != "" {
		return a.Name
	}
	return member
}

// Ref returns the "name@version" reference of the integration.
func (d Definition) Ref() string {
	return contract.FormatRef(d.Name, d.Version)
}

// Implements reports whether any statement implements name@version.
func (d Definition) Implements(name, version string) bool {
	_, ok := d.Statement(name, version)
	return ok
}

// Statement returns the first statement implementing name@version, in
// binding key order.
func (d Definition) Statement(name, version string) (Statement, bool) {
	for _, key := range d.BindingKeys() {
		if st := d.Interfaces[key]; st.Matches(name, version) {
			return st, true
		}
	}
	return Statement{}, false
}

// BindingKeys returns the keys of the interfaces table in sorted order.
func (d Definition) BindingKeys() []string {
	keys := make([]string, 0, len(d.Interfaces))
	for k := range d.Interfaces {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the definition.
func (d Definition) Clone() Definition {
	out := d
	if d.Configuration != nil {
		c := d.Configuration.clone()
		out.Configuration = &c
	}
	out.Configurations = cloneMap(d.Configurations, ConfigurationDefinition.clone)
	out.Entities = cloneMap(d.Entities, EntityDefinition.clone)
	out.Actions = cloneMap(d.Actions, ActionDefinition.clone)
	out.Events = cloneMap(d.Events, EventDefinition.clone)
	out.Channels = cloneMap(d.Channels, ChannelDefinition.clone)
	out.States = cloneMap(d.States, StateDefinition.clone)
	out.Secrets = cloneMap(d.Secrets, func(s SecretDefinition) SecretDefinition { return s })
	out.Interfaces = cloneMap(d.Interfaces, Statement.clone)
	if d.User != nil {
		u := UserDefinition{Tags: cloneMap(d.User.Tags, func(t TagDefinition) TagDefinition { return t })}
		out.User = &u
	}
	return out
}

func (a ActionDefinition) clone() ActionDefinition {
	a.Input = a.Input.Clone()
	a.Output = a.Output.Clone()
	return a
}

func (e EventDefinition) clone() EventDefinition {
	e.Schema = e.Schema.Clone()
	return e
}

func (c ChannelDefinition) clone() ChannelDefinition {
	c.Messages = cloneMap(c.Messages, func(m MessageDefinition) MessageDefinition {
		return MessageDefinition{Schema: m.Schema.Clone()}
	})
	return c
}

func (s StateDefinition) clone() StateDefinition {
	s.Schema = s.Schema.Clone()
	return s
}

func (c ConfigurationDefinition) clone() ConfigurationDefinition {
	c.Schema = c.Schema.Clone()
	return c
}

func (e EntityDefinition) clone() EntityDefinition {
	e.Schema = e.Schema.Clone()
	return e
}

func (s Statement) clone() Statement {
	s.Entities = cloneMap(s.Entities, func(e BoundEntity) BoundEntity {
		return BoundEntity{Name: e.Name, Schema: e.Schema.Clone()}
	})
	s.Actions = cloneMap(s.Actions, func(a Alias) Alias { return a })
	s.Events = cloneMap(s.Events, func(a Alias) Alias { return a })
	s.Channels = cloneMap(s.Channels, func(a Alias) Alias { return a })
	return s
}

func cloneMap[V any](m map[string]V, fn func(V) V) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = fn(v)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
