// Package manifest loads a declarative project directory:
//
//	interfaces/    interface declarations
//	integrations/  integration definitions with their implements list
//	bots/          bot definitions
//
// Integration files implement interfaces through the same BindingFunc path
// used by Go callers, so a YAML binding is checked exactly like a Go one.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/artpar/botdef/core/bot"
	"github.com/artpar/botdef/core/contract"
	"github.com/artpar/botdef/core/integration"
)

// Project subdirectories.
const (
	InterfacesDir   = "interfaces"
	IntegrationsDir = "integrations"
	BotsDir         = "bots"
)

// Implementation is one implements entry of an integration file.
//
//	implements:
//	  - interface: sentiment@1.0.0
//	    entities: { item: document }
//	    actions: { classify: analyze }
type Implementation struct {
	// Interface is the interface name, or "name@version" when Version is empty.
	Interface string `yaml:"interface"`
	Version   string `yaml:"version,omitempty"`

	// Entities maps interface placeholders to owned entity names.
	Entities map[string]string `yaml:"entities,omitempty"`

	Actions  map[string]string `yaml:"actions,omitempty"`
	Events   map[string]string `yaml:"events,omitempty"`
	Channels map[string]string `yaml:"channels,omitempty"`
}

// Ref returns the name and version of the implemented interface.
func (im Implementation) Ref() (name, version string, err error) {
	if im.Version != "" {
		return im.Interface, im.Version, nil
	}
	return contract.ParseRef(im.Interface)
}

// BindingFunc returns the binding function that looks the mapped entities
// up in the integration's entity store.
func (im Implementation) BindingFunc() integration.BindingFunc {
	return func(store integration.EntityStore) (integration.Binding, error) {
		b := integration.Binding{
			Actions:  im.Actions,
			Events:   im.Events,
			Channels: im.Channels,
		}
		if len(im.Entities) == 0 {
			return b, nil
		}

		ifaceName, _, _ := im.Ref()
		b.Entities = make(map[string]integration.Entity, len(im.Entities))
		for _, placeholder := range sortedKeys(im.Entities) {
			name := im.Entities[placeholder]
			e, err := store.Get(name)
			if errors.Is(err, integration.ErrEntityNotFound) {
				return integration.Binding{}, &integration.ConfigurationError{
					Interface: ifaceName,
					Message:   fmt.Sprintf("entity %q: %q is not part of the integration's entities", placeholder, name),
				}
			}
			if err != nil {
				return integration.Binding{}, fmt.Errorf("entity %q: %w", placeholder, err)
			}
			b.Entities[placeholder] = e
		}
		return b, nil
	}
}

// IntegrationFile is a parsed integration file.
type IntegrationFile struct {
	Definition integration.Definition
	Implements []Implementation
}

// ParseIntegration parses an integration definition and its implements list.
func ParseIntegration(data []byte) (IntegrationFile, error) {
	def, err := integration.Parse(data)
	if err != nil {
		return IntegrationFile{}, err
	}

	var raw struct {
		Implements []Implementation `yaml:"implements"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return IntegrationFile{}, fmt.Errorf("parse yaml: %w", err)
	}

	for i, im := range raw.Implements {
		if im.Interface == "" {
			return IntegrationFile{}, fmt.Errorf("integration %q: implements[%d]: interface is required", def.Name, i)
		}
		if _, _, err := im.Ref(); err != nil {
			return IntegrationFile{}, fmt.Errorf("integration %q: implements[%d]: %w", def.Name, i, err)
		}
	}

	return IntegrationFile{Definition: def, Implements: raw.Implements}, nil
}

// Install is one installed integration of a bot file.
type Install struct {
	// Version pins the installed integration version. Empty accepts the
	// version declared in the project.
	Version string `yaml:"version,omitempty"`

	// Enabled defaults to true.
	Enabled *bool `yaml:"enabled,omitempty"`

	ConfigurationType string         `yaml:"configurationType,omitempty"`
	Configuration     map[string]any `yaml:"configuration,omitempty"`
}

// IsEnabled returns the effective enabled flag.
func (in Install) IsEnabled() bool {
	return in.Enabled == nil || *in.Enabled
}

// BotFile is a parsed bot file.
type BotFile struct {
	Name string `yaml:"name"`

	Integrations map[string]Install `yaml:"integrations,omitempty"`

	// Interfaces are "name@version" dependencies.
	Interfaces []string `yaml:"interfaces,omitempty"`

	User         *bot.TagsDefinition `yaml:"user,omitempty"`
	Conversation *bot.TagsDefinition `yaml:"conversation,omitempty"`
	Message      *bot.TagsDefinition `yaml:"message,omitempty"`

	States          map[string]bot.StateDefinition         `yaml:"states,omitempty"`
	Configuration   *integration.ConfigurationDefinition    `yaml:"configuration,omitempty"`
	Events          map[string]integration.EventDefinition  `yaml:"events,omitempty"`
	RecurringEvents map[string]bot.RecurringEvent           `yaml:"recurringEvents,omitempty"`
	Actions         map[string]integration.ActionDefinition `yaml:"actions,omitempty"`
}

// ParseBot parses a bot file. An empty name defaults to fallbackName.
func ParseBot(data []byte, fallbackName string) (BotFile, error) {
	var f BotFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return BotFile{}, fmt.Errorf("parse yaml: %w", err)
	}
	if f.Name == "" {
		f.Name = fallbackName
	}
	if !contract.IsValidName(f.Name) {
		return BotFile{}, fmt.Errorf("bot name %q is not a valid name", f.Name)
	}
	for _, ref := range f.Interfaces {
		if _, _, err := contract.ParseRef(ref); err != nil {
			return BotFile{}, fmt.Errorf("bot %q: %w", f.Name, err)
		}
	}
	return f, nil
}

// definition returns the bot definition without installations or dependencies.
func (f BotFile) definition() bot.Definition {
	return bot.Definition{
		Name:            f.Name,
		User:            f.User,
		Conversation:    f.Conversation,
		Message:         f.Message,
		States:          f.States,
		Configuration:   f.Configuration,
		Events:          f.Events,
		RecurringEvents: f.RecurringEvents,
		Actions:         f.Actions,
	}
}

// fileKind is the kind of declaration a project file holds.
type fileKind int

const (
	kindInterface fileKind = iota
	kindIntegration
	kindBot
)

func (k fileKind) String() string {
	switch k {
	case kindInterface:
		return "interface"
	case kindIntegration:
		return "integration"
	default:
		return "bot"
	}
}

type sourceFile struct {
	kind fileKind
	path string
}

// collect lists the definition files of a project. Missing subdirectories
// are skipped.
func collect(dir string) ([]sourceFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project %s: not a directory", dir)
	}

	var files []sourceFile
	for _, sub := range []struct {
		name string
		kind fileKind
	}{
		{InterfacesDir, kindInterface},
		{IntegrationsDir, kindIntegration},
		{BotsDir, kindBot},
	} {
		root := filepath.Join(dir, sub.name)
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) && path == root {
					return filepath.SkipDir
				}
				return err
			}
			if d.IsDir() || !contract.IsDefinitionFile(d.Name()) {
				return nil
			}
			files = append(files, sourceFile{kind: sub.kind, path: path})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].kind != files[j].kind {
			return files[i].kind < files[j].kind
		}
		return files[i].path < files[j].path
	})
	return files, nil
}

// baseName returns the file name without its extension.
func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
