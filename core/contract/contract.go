// Package contract defines interface declarations: generic capability
// contracts written against placeholder entities.
//
// An interface is identified by (name, version). Two declarations with the
// same name and different versions are distinct contracts. Declarations are
// read-only once published; integrations instantiate them through
// integration.Definition.Extend.
package contract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/artpar/botdef/core/schema"
	"gopkg.in/yaml.v3"
)

// Interface is a generic capability contract.
type Interface struct {
	// Name of the interface (e.g., "llm", "deletable").
	Name string `yaml:"name" json:"name"`

	// Version of the contract. Compared by string equality.
	Version string `yaml:"version" json:"version"`

	// Title and Description for documentation.
	Title       string `yaml:"title,omitempty" json:"title,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Entities are the placeholders implementers bind to their own schemas.
	// Declaration order defines the order of the binding key.
	Entities Entities `yaml:"entities,omitempty" json:"entities,omitempty"`

	// Actions the implementer must expose.
	Actions map[string]ActionTemplate `yaml:"actions,omitempty" json:"actions,omitempty"`

	// Events the implementer emits.
	Events map[string]EventTemplate `yaml:"events,omitempty" json:"events,omitempty"`

	// Channels the implementer serves.
	Channels map[string]ChannelTemplate `yaml:"channels,omitempty" json:"channels,omitempty"`
}

// EntityDecl declares one placeholder entity. Schema is the minimal shape
// any bound entity is expected to have.
type EntityDecl struct {
	Name        string         `yaml:"-" json:"name"`
	Title       string         `yaml:"title,omitempty" json:"title,omitempty"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Schema      *schema.Schema `yaml:"schema" json:"schema"`
}

// Entities is an ordered list of entity declarations.
// In YAML it is written as a mapping whose key order is preserved.
type Entities []EntityDecl

// ActionTemplate is an action whose schemas may reference entities.
type ActionTemplate struct {
	Title       string         `yaml:"title,omitempty" json:"title,omitempty"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Input       *schema.Schema `yaml:"input" json:"input"`
	Output      *schema.Schema `yaml:"output" json:"output"`
}

// EventTemplate is an event whose payload may reference entities.
type EventTemplate struct {
	Title       string         `yaml:"title,omitempty" json:"title,omitempty"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Schema      *schema.Schema `yaml:"schema" json:"schema"`
}

// ChannelTemplate is a set of named message schemas.
type ChannelTemplate struct {
	Title       string                     `yaml:"title,omitempty" json:"title,omitempty"`
	Description string                     `yaml:"description,omitempty" json:"description,omitempty"`
	Messages    map[string]MessageTemplate `yaml:"messages" json:"messages"`
}

// MessageTemplate is a message schema inside a channel.
type MessageTemplate struct {
	Schema *schema.Schema `yaml:"schema" json:"schema"`
}

// Ref returns the "name@version" reference of the interface.
func (i Interface) Ref() string {
	return FormatRef(i.Name, i.Version)
}

// FormatRef formats a name and version as "name@version".
func FormatRef(name, version string) string {
	return fmt.Sprintf("%s@%s", name, version)
}

// ParseRef splits a "name@version" reference.
func ParseRef(ref string) (name, version string, err error) {
	name, version, ok := strings.Cut(ref, "@")
	if !ok || name == "" || version == "" {
		return "", "", fmt.Errorf("invalid reference %q: expected name@version", ref)
	}
	return name, version, nil
}

// Package is a published interface declaration.
type Package struct {
	ID        string    `json:"id"`
	Interface Interface `json:"interface"`
}

// EntityNames returns entity names in declaration order.
func (i Interface) EntityNames() []string {
	names := make([]string, len(i.Entities))
	for idx, e := range i.Entities {
		names[idx] = e.Name
	}
	return names
}

// Entity returns the named entity declaration.
func (i Interface) Entity(name string) (EntityDecl, bool) {
	for _, e := range i.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return EntityDecl{}, false
}

// HasEntity reports whether the interface declares the named entity.
func (i Interface) HasEntity(name string) bool {
	_, ok := i.Entity(name)
	return ok
}

// ActionNames returns action names in sorted order.
func (i Interface) ActionNames() []string { return sortedKeys(i.Actions) }

// EventNames returns event names in sorted order.
func (i Interface) EventNames() []string { return sortedKeys(i.Events) }

// ChannelNames returns channel names in sorted order.
func (i Interface) ChannelNames() []string { return sortedKeys(i.Channels) }

// MessageNames returns the channel's message names in sorted order.
func (c ChannelTemplate) MessageNames() []string { return sortedKeys(c.Messages) }

// UnmarshalYAML decodes a mapping of entity name to declaration, keeping
// the mapping order.
func (e *Entities) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: entities must be a mapping", node.Line)
	}

	out := make(Entities, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var decl EntityDecl
		if err := node.Content[i+1].Decode(&decl); err != nil {
			return fmt.Errorf("entity %q: %w", node.Content[i].Value, err)
		}
		decl.Name = node.Content[i].Value
		out = append(out, decl)
	}
	*e = out
	return nil
}

// MarshalYAML encodes entities as an ordered mapping.
func (e Entities) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, decl := range e {
		var value yaml.Node
		if err := value.Encode(decl); err != nil {
			return nil, fmt.Errorf("entity %q: %w", decl.Name, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: decl.Name},
			&value,
		)
	}
	return node, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
