package schema

import (
	"encoding/json"
	"sort"
)

// Type is the kind of value a schema describes.
type Type string

const (
	// Composite types
	TypeObject Type = "object"
	TypeArray  Type = "array"

	// Scalar types
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"

	// Special types
	TypeEnum   Type = "enum"   // Requires Values
	TypeAny    Type = "any"    // Unconstrained value
	TypeEntity Type = "entity" // Placeholder for an interface entity, requires Entity
)

// IsScalar returns true for leaf types that carry no nested schemas.
func (t Type) IsScalar() bool {
	switch t {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeEnum, TypeAny:
		return true
	default:
		return false
	}
}

// Schema describes the shape of a value.
// Schemas are treated as immutable values: every operation in this package
// returns a new tree and never modifies its inputs.
type Schema struct {
	// Type is the schema type. See Type constants.
	Type Type `yaml:"type" json:"type"`

	// Title is a short human-readable label.
	Title string `yaml:"title,omitempty" json:"title,omitempty"`

	// Description for documentation and generated code comments.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Properties lists the fields of an object schema.
	Properties map[string]*Schema `yaml:"properties,omitempty" json:"properties,omitempty"`

	// Required lists the property names that must be present.
	Required []string `yaml:"required,omitempty" json:"required,omitempty"`

	// Items is the element schema of an array.
	Items *Schema `yaml:"items,omitempty" json:"items,omitempty"`

	// Values lists valid values for enum schemas.
	Values []string `yaml:"values,omitempty" json:"values,omitempty"`

	// Entity names the interface entity an entity schema stands for.
	Entity string `yaml:"entity,omitempty" json:"entity,omitempty"`

	// Nullable allows null in addition to the described type.
	Nullable bool `yaml:"nullable,omitempty" json:"nullable,omitempty"`

	// Constraints are declarative limits (min, max, pattern...).
	Constraints []Constraint `yaml:"constraints,omitempty" json:"constraints,omitempty"`
}

// Object creates an object schema with the given properties.
func Object(props map[string]*Schema) *Schema {
	s := &Schema{Type: TypeObject, Properties: make(map[string]*Schema, len(props))}
	for name, p := range props {
		s.Properties[name] = p.Clone()
	}
	return s
}

// String creates a string schema.
func String() *Schema { return &Schema{Type: TypeString} }

// Number creates a number schema.
func Number() *Schema { return &Schema{Type: TypeNumber} }

// Integer creates an integer schema.
func Integer() *Schema { return &Schema{Type: TypeInteger} }

// Boolean creates a boolean schema.
func Boolean() *Schema { return &Schema{Type: TypeBoolean} }

// Any creates an unconstrained schema.
func Any() *Schema { return &Schema{Type: TypeAny} }

// Array creates an array schema of items.
func Array(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items.Clone()}
}

// Enum creates an enum schema with the given values.
func Enum(values ...string) *Schema {
	return &Schema{Type: TypeEnum, Values: sortedUnique(values)}
}

// Ref creates a placeholder that stands for the named interface entity.
func Ref(entity string) *Schema {
	return &Schema{Type: TypeEntity, Entity: entity}
}

// WithRequired returns a copy of s with the given properties marked required.
func (s *Schema) WithRequired(names ...string) *Schema {
	out := s.Clone()
	out.Required = sortedUnique(append(out.Required, names...))
	return out
}

// WithTitle returns a copy of s with its title set.
func (s *Schema) WithTitle(title string) *Schema {
	out := s.Clone()
	out.Title = title
	return out
}

// WithDescription returns a copy of s with its description set.
func (s *Schema) WithDescription(desc string) *Schema {
	out := s.Clone()
	out.Description = desc
	return out
}

// WithConstraints returns a copy of s with extra constraints appended.
func (s *Schema) WithConstraints(cs ...Constraint) *Schema {
	out := s.Clone()
	out.Constraints = append(out.Constraints, cs...)
	return out
}

// AsNullable returns a copy of s that also accepts null.
func (s *Schema) AsNullable() *Schema {
	out := s.Clone()
	out.Nullable = true
	return out
}

// Clone returns a deep copy of s. Cloning nil returns nil.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := &Schema{
		Type:        s.Type,
		Title:       s.Title,
		Description: s.Description,
		Entity:      s.Entity,
		Nullable:    s.Nullable,
		Items:       s.Items.Clone(),
	}
	if s.Properties != nil {
		out.Properties = make(map[string]*Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = p.Clone()
		}
	}
	if s.Required != nil {
		out.Required = append([]string(nil), s.Required...)
	}
	if s.Values != nil {
		out.Values = append([]string(nil), s.Values...)
	}
	if s.Constraints != nil {
		out.Constraints = append([]Constraint(nil), s.Constraints...)
	}
	return out
}

// Property returns the named property of an object schema.
func (s *Schema) Property(name string) (*Schema, bool) {
	if s == nil || s.Properties == nil {
		return nil, false
	}
	p, ok := s.Properties[name]
	return p, ok
}

// PropertyNames returns the object's property names in sorted order.
func (s *Schema) PropertyNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Placeholders returns the sorted set of entity names referenced anywhere in s.
func (s *Schema) Placeholders() []string {
	seen := make(map[string]bool)
	s.walk(func(n *Schema) {
		if n.Type == TypeEntity {
			seen[n.Entity] = true
		}
	})
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsConcrete returns true if s references no interface entity.
func (s *Schema) IsConcrete() bool {
	return len(s.Placeholders()) == 0
}

// String renders s as compact JSON.
func (s *Schema) String() string {
	if s == nil {
		return "null"
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "<invalid schema>"
	}
	return string(data)
}

func (s *Schema) walk(fn func(*Schema)) {
	if s == nil {
		return
	}
	fn(s)
	for _, name := range s.PropertyNames() {
		s.Properties[name].walk(fn)
	}
	s.Items.walk(fn)
}

// Equal reports whether a and b describe the same schema.
// Nil and empty collections are considered equal; Required and Values
// are compared as sets.
func Equal(a, b *Schema) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type != b.Type || a.Title != b.Title || a.Description != b.Description ||
		a.Entity != b.Entity || a.Nullable != b.Nullable {
		return false
	}
	if !equalSets(a.Required, b.Required) || !equalSets(a.Values, b.Values) {
		return false
	}
	if !equalConstraints(a.Constraints, b.Constraints) {
		return false
	}
	if len(a.Properties) != len(b.Properties) {
		return false
	}
	for name, ap := range a.Properties {
		bp, ok := b.Properties[name]
		if !ok || !Equal(ap, bp) {
			return false
		}
	}
	return Equal(a.Items, b.Items)
}

func equalSets(a, b []string) bool {
	a, b = sortedUnique(a), sortedUnique(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sortedUnique returns a sorted copy of values without duplicates.
func sortedUnique(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
