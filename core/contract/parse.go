package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/artpar/botdef/core/schema"
	"gopkg.in/yaml.v3"
)

// ParseFile parses an interface declaration from a YAML file.
func ParseFile(path string) (Interface, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Interface{}, fmt.Errorf("read file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses an interface declaration from YAML bytes.
func Parse(data []byte) (Interface, error) {
	var iface Interface
	if err := yaml.Unmarshal(data, &iface); err != nil {
		return Interface{}, fmt.Errorf("parse yaml: %w", err)
	}

	if err := Validate(iface); err != nil {
		return Interface{}, fmt.Errorf("validate interface %q: %w", iface.Name, err)
	}

	return iface, nil
}

// IsDefinitionFile reports whether a file name looks like a YAML definition.
func IsDefinitionFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// Validate validates an interface declaration.
// Every entity referenced by a template must be declared, so an interface
// that validates can always be fully dereferenced once all its entities are bound.
func Validate(iface Interface) error {
	var errs []string

	if iface.Name == "" {
		errs = append(errs, "interface name is required")
	} else if !IsValidName(iface.Name) {
		errs = append(errs, fmt.Sprintf("interface name %q is not a valid name", iface.Name))
	}

	if iface.Version == "" {
		errs = append(errs, "interface version is required")
	}

	declared := make(map[string]bool, len(iface.Entities))
	for _, e := range iface.Entities {
		if !schema.IsValidIdentifier(e.Name) {
			errs = append(errs, fmt.Sprintf("entity name %q is not a valid identifier", e.Name))
		}
		if declared[e.Name] {
			errs = append(errs, fmt.Sprintf("entity %q declared twice", e.Name))
		}
		declared[e.Name] = true

		if e.Schema == nil {
			errs = append(errs, fmt.Sprintf("entity %q: schema is required", e.Name))
			continue
		}
		if !e.Schema.IsConcrete() {
			errs = append(errs, fmt.Sprintf("entity %q: schema must not reference entities", e.Name))
		}
		errs = appendSchemaErrors(errs, fmt.Sprintf("entity %q", e.Name), e.Schema)
	}

	check := func(owner string, s *schema.Schema) {
		if s == nil {
			errs = append(errs, fmt.Sprintf("%s: schema is required", owner))
			return
		}
		errs = appendSchemaErrors(errs, owner, s)
		for _, ref := range s.Placeholders() {
			if !declared[ref] {
				errs = append(errs, fmt.Sprintf("%s: references undeclared entity %q", owner, ref))
			}
		}
	}

	for _, name := range iface.ActionNames() {
		action := iface.Actions[name]
		if !schema.IsValidIdentifier(name) {
			errs = append(errs, fmt.Sprintf("action name %q is not a valid identifier", name))
		}
		check(fmt.Sprintf("action %q input", name), action.Input)
		check(fmt.Sprintf("action %q output", name), action.Output)
	}

	for _, name := range iface.EventNames() {
		if !schema.IsValidIdentifier(name) {
			errs = append(errs, fmt.Sprintf("event name %q is not a valid identifier", name))
		}
		check(fmt.Sprintf("event %q", name), iface.Events[name].Schema)
	}

	for _, name := range iface.ChannelNames() {
		channel := iface.Channels[name]
		if !schema.IsValidIdentifier(name) {
			errs = append(errs, fmt.Sprintf("channel name %q is not a valid identifier", name))
		}
		for _, msg := range channel.MessageNames() {
			check(fmt.Sprintf("channel %q message %q", name, msg), channel.Messages[msg].Schema)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func appendSchemaErrors(errs []string, owner string, s *schema.Schema) []string {
	if err := schema.Validate(s); err != nil {
		msg := strings.TrimPrefix(err.Error(), "validation errors:\n  - ")
		for _, line := range strings.Split(msg, "\n  - ") {
			errs = append(errs, fmt.Sprintf("%s: %s", owner, line))
		}
	}
	return errs
}

// IsValidName accepts identifiers plus dashes, as used by package names
// such as "hitl" or "text-generation".
func IsValidName(s string) bool {
	return schema.IsValidIdentifier(strings.ReplaceAll(s, "-", "_"))
}
