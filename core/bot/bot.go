// Package bot defines bots: assemblies of installed integrations and
// interface dependencies. A bot owns no entities; it only consumes what its
// integrations provide.
package bot

import (
	"sort"

	"github.com/artpar/botdef/core/contract"
	"github.com/artpar/botdef/core/integration"
	"github.com/artpar/botdef/core/schema"
)

// Definition is a deployable bot.
type Definition struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Integrations are keyed by integration name.
	Integrations map[string]Installation `yaml:"integrations,omitempty" json:"integrations,omitempty"`

	// Interfaces are keyed by interface name.
	Interfaces map[string]Dependency `yaml:"interfaces,omitempty" json:"interfaces,omitempty"`

	User         *TagsDefinition `yaml:"user,omitempty" json:"user,omitempty"`
	Conversation *TagsDefinition `yaml:"conversation,omitempty" json:"conversation,omitempty"`
	Message      *TagsDefinition `yaml:"message,omitempty" json:"message,omitempty"`

	States          map[string]StateDefinition              `yaml:"states,omitempty" json:"states,omitempty"`
	Configuration   *integration.ConfigurationDefinition    `yaml:"configuration,omitempty" json:"configuration,omitempty"`
	Events          map[string]integration.EventDefinition  `yaml:"events,omitempty" json:"events,omitempty"`
	RecurringEvents map[string]RecurringEvent               `yaml:"recurringEvents,omitempty" json:"recurringEvents,omitempty"`
	Actions         map[string]integration.ActionDefinition `yaml:"actions,omitempty" json:"actions,omitempty"`
}

// Installation is an integration installed into a bot.
type Installation struct {
	Package integration.Package `yaml:"-" json:"package"`

	Enabled bool `yaml:"enabled" json:"enabled"`

	// ConfigurationType selects one of the integration's named
	// configurations. Empty means the default configuration.
	ConfigurationType string         `yaml:"configurationType,omitempty" json:"configurationType,omitempty"`
	Configuration     map[string]any `yaml:"configuration,omitempty" json:"configuration,omitempty"`
}

// InstallConfig is what the bot author provides when installing an integration.
type InstallConfig struct {
	Enabled           bool
	ConfigurationType string
	Configuration     map[string]any
}

// Dependency is an interface the bot requires some installed integration to
// implement.
type Dependency struct {
	ID      string `yaml:"id,omitempty" json:"id,omitempty"`
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

// Ref returns "name@version".
func (d Dependency) Ref() string {
	return contract.FormatRef(d.Name, d.Version)
}

// StateType scopes a bot state.
type StateType string

const (
	StateConversation StateType = "conversation"
	StateUser         StateType = "user"
	StateBot          StateType = "bot"
)

// StateDefinition is persistent state owned by the bot.
type StateDefinition struct {
	Type   StateType      `yaml:"type" json:"type"`
	Schema *schema.Schema `yaml:"schema" json:"schema"`

	// Expiry in milliseconds. Zero means the state does not expire.
	Expiry int64 `yaml:"expiry,omitempty" json:"expiry,omitempty"`
}

// TagsDefinition declares tags on users, conversations or messages.
type TagsDefinition struct {
	Tags map[string]integration.TagDefinition `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// RecurringEvent emits one of the bot's events on a cron schedule.
type RecurringEvent struct {
	Type     string         `yaml:"type" json:"type"`
	Payload  map[string]any `yaml:"payload,omitempty" json:"payload,omitempty"`
	Schedule Schedule       `yaml:"schedule" json:"schedule"`
}

// Schedule is a cron expression.
type Schedule struct {
	Cron string `yaml:"cron" json:"cron"`
}

// AddIntegration returns a copy of d with pkg installed under its name.
// Installing a second package with the same name replaces the first.
func (d Definition) AddIntegration(pkg integration.Package, cfg InstallConfig) Definition {
	out := d.clone()
	if out.Integrations == nil {
		out.Integrations = make(map[string]Installation, 1)
	}
	out.Integrations[pkg.Definition.Name] = Installation{
		Package:           integration.Package{ID: pkg.ID, Definition: pkg.Definition.Clone()},
		Enabled:           cfg.Enabled,
		ConfigurationType: cfg.ConfigurationType,
		Configuration:     cfg.Configuration,
	}
	return out
}

// AddInterface returns a copy of d depending on pkg.
func (d Definition) AddInterface(pkg contract.Package) Definition {
	out := d.clone()
	if out.Interfaces == nil {
		out.Interfaces = make(map[string]Dependency, 1)
	}
	out.Interfaces[pkg.Interface.Name] = Dependency{
		ID:      pkg.ID,
		Name:    pkg.Interface.Name,
		Version: pkg.Interface.Version,
	}
	return out
}

// IntegrationNames returns installed integration names in sorted order.
func (d Definition) IntegrationNames() []string { return sortedKeys(d.Integrations) }

// InterfaceNames returns interface dependency names in sorted order.
func (d Definition) InterfaceNames() []string { return sortedKeys(d.Interfaces) }

func (d Definition) clone() Definition {
	out := d
	if d.Integrations != nil {
		out.Integrations = make(map[string]Installation, len(d.Integrations))
		for k, v := range d.Integrations {
			out.Integrations[k] = v
		}
	}
	if d.Interfaces != nil {
		out.Interfaces = make(map[string]Dependency, len(d.Interfaces))
		for k, v := range d.Interfaces {
			out.Interfaces[k] = v
		}
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
