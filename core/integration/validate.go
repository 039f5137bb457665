package integration

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/artpar/botdef/core/contract"
	"github.com/artpar/botdef/core/schema"
)

// ParseFile parses an integration definition from a YAML file.
func ParseFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses an integration definition from YAML bytes. Interfaces are not
// read here; they are recorded by Extend.
func Parse(data []byte) (Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("parse yaml: %w", err)
	}
	def.Interfaces = nil

	if err := Validate(def); err != nil {
		return Definition{}, fmt.Errorf("validate integration %q: %w", def.Name, err)
	}

	return def, nil
}

// Validate validates an integration definition. All schemas owned by an
// integration must be concrete.
func Validate(def Definition) error {
	var errs []string

	if def.Name == "" {
		errs = append(errs, "integration name is required")
	} else if !contract.IsValidName(def.Name) {
		errs = append(errs, fmt.Sprintf("integration name %q is not a valid name", def.Name))
	}
	if def.Version == "" {
		errs = append(errs, "integration version is required")
	}

	check := func(owner string, s *schema.Schema) {
		if s == nil {
			errs = append(errs, fmt.Sprintf("%s: schema is required", owner))
			return
		}
		if !s.IsConcrete() {
			errs = append(errs, fmt.Sprintf("%s: references interface entities %s", owner, strings.Join(s.Placeholders(), ", ")))
		}
		if err := schema.Validate(s); err != nil {
			msg := strings.TrimPrefix(err.Error(), "validation errors:\n  - ")
			for _, line := range strings.Split(msg, "\n  - ") {
				errs = append(errs, fmt.Sprintf("%s: %s", owner, line))
			}
		}
	}
	ident := func(kind, name string) {
		if !schema.IsValidIdentifier(name) {
			errs = append(errs, fmt.Sprintf("%s name %q is not a valid identifier", kind, name))
		}
	}

	for _, name := range sortedKeys(def.Entities) {
		ident("entity", name)
		check(fmt.Sprintf("entity %q", name), def.Entities[name].Schema)
	}
	for _, name := range sortedKeys(def.Actions) {
		ident("action", name)
		check(fmt.Sprintf("action %q input", name), def.Actions[name].Input)
		check(fmt.Sprintf("action %q output", name), def.Actions[name].Output)
	}
	for _, name := range sortedKeys(def.Events) {
		ident("event", name)
		check(fmt.Sprintf("event %q", name), def.Events[name].Schema)
	}
	for _, name := range sortedKeys(def.Channels) {
		ident("channel", name)
		for _, msg := range sortedKeys(def.Channels[name].Messages) {
			check(fmt.Sprintf("channel %q message %q", name, msg), def.Channels[name].Messages[msg].Schema)
		}
	}
	for _, name := range sortedKeys(def.States) {
		ident("state", name)
		st := def.States[name]
		switch st.Type {
		case StateConversation, StateUser, StateIntegration:
		default:
			errs = append(errs, fmt.Sprintf("state %q: unknown type %q", name, st.Type))
		}
		check(fmt.Sprintf("state %q", name), st.Schema)
	}
	if def.Configuration != nil && def.Configuration.Schema != nil {
		check("configuration", def.Configuration.Schema)
	}
	for _, name := range sortedKeys(def.Configurations) {
		ident("configuration", name)
		check(fmt.Sprintf("configuration %q", name), def.Configurations[name].Schema)
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
