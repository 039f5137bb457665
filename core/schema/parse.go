package schema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse parses a schema from YAML (or JSON) bytes and validates it.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if err := Validate(&s); err != nil {
		return nil, err
	}

	return &s, nil
}

// UnmarshalYAML decodes a schema node. Besides the full mapping form it
// accepts two shorthands:
//
//	name: string            # scalar type name
//	item: { entity: item }  # placeholder, type inferred
//
// A mapping without a type is inferred as entity (entity set), enum
// (values set), array (items set) or object.
func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*s = Schema{Type: Type(strings.TrimSpace(node.Value))}
		return nil
	}

	type plain Schema
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Schema(p)

	if s.Type == "" {
		switch {
		case s.Entity != "":
			s.Type = TypeEntity
		case len(s.Values) > 0:
			s.Type = TypeEnum
		case s.Items != nil:
			s.Type = TypeArray
		default:
			s.Type = TypeObject
		}
	}
	if s.Type == TypeEnum {
		s.Values = sortedUnique(s.Values)
	}
	if len(s.Required) > 0 {
		s.Required = sortedUnique(s.Required)
	}
	return nil
}

// Validate checks that a schema tree is well formed.
func Validate(s *Schema) error {
	var errs []string
	validateNode(s, "", &errs)
	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validateNode(s *Schema, path string, errs *[]string) {
	if s == nil {
		*errs = append(*errs, fmt.Sprintf("%s: schema is required", displayPath(path)))
		return
	}

	if !isValidType(s.Type) {
		*errs = append(*errs, fmt.Sprintf("%s: unknown type %q", displayPath(path), s.Type))
		return
	}

	switch s.Type {
	case TypeEnum:
		if len(s.Values) == 0 {
			*errs = append(*errs, fmt.Sprintf("%s: enum type requires values", displayPath(path)))
		}
	case TypeEntity:
		if !IsValidIdentifier(s.Entity) {
			*errs = append(*errs, fmt.Sprintf("%s: entity reference %q is not a valid identifier", displayPath(path), s.Entity))
		}
	case TypeArray:
		if s.Items == nil {
			*errs = append(*errs, fmt.Sprintf("%s: array type requires items", displayPath(path)))
		} else {
			validateNode(s.Items, path+"[]", errs)
		}
	case TypeObject:
		for _, name := range s.PropertyNames() {
			if !IsValidIdentifier(name) {
				*errs = append(*errs, fmt.Sprintf("%s: property name %q is not a valid identifier", displayPath(path), name))
			}
			validateNode(s.Properties[name], joinPath(path, name), errs)
		}
		for _, name := range s.Required {
			if _, ok := s.Properties[name]; !ok {
				*errs = append(*errs, fmt.Sprintf("%s: required property %q not in properties", displayPath(path), name))
			}
		}
	}

	for _, c := range s.Constraints {
		if err := validateConstraint(path, s.Type, c); err != nil {
			*errs = append(*errs, err.Error())
		}
	}
}

// IsValidIdentifier checks if a string is a valid identifier.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range s {
		if i == 0 {
			if !isLetter(c) && c != '_' {
				return false
			}
		} else {
			if !isLetter(c) && !isDigit(c) && c != '_' {
				return false
			}
		}
	}

	return true
}

// IsCamelCase reports whether s is a lower camelCase identifier.
func IsCamelCase(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if i == 0 && !(c >= 'a' && c <= 'z') {
			return false
		}
		if !isLetter(c) && !isDigit(c) {
			return false
		}
	}
	return true
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

// isValidType checks if a schema type is valid.
func isValidType(t Type) bool {
	switch t {
	case TypeObject, TypeArray,
		TypeString, TypeNumber, TypeInteger, TypeBoolean,
		TypeEnum, TypeAny, TypeEntity:
		return true
	default:
		return false
	}
}
