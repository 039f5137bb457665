package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// Constraint is a declarative limit attached to a schema.
// Constraints are carried through dereferencing and merging; they are
// never evaluated against payloads by this package.
type Constraint struct {
	// Type is the constraint type (min, max, min_length, max_length, pattern, etc.)
	Type ConstraintType `yaml:"type" json:"type"`

	// Value is the constraint parameter (number, regex pattern, etc.)
	Value any `yaml:"value,omitempty" json:"value,omitempty"`

	// Message is the custom error message (optional).
	Message string `yaml:"message,omitempty" json:"message,omitempty"`
}

// ConstraintType identifies the type of constraint.
type ConstraintType string

const (
	// Numeric constraints
	ConstraintMin ConstraintType = "min" // Minimum numeric value
	ConstraintMax ConstraintType = "max" // Maximum numeric value

	// String constraints
	ConstraintMinLength ConstraintType = "min_length" // Minimum string length
	ConstraintMaxLength ConstraintType = "max_length" // Maximum string length
	ConstraintPattern   ConstraintType = "pattern"    // Regex pattern match
	ConstraintNotEmpty  ConstraintType = "not_empty"  // String must not be empty/whitespace
)

// Min creates a minimum value constraint.
func Min(v float64) Constraint { return Constraint{Type: ConstraintMin, Value: v} }

// Max creates a maximum value constraint.
func Max(v float64) Constraint { return Constraint{Type: ConstraintMax, Value: v} }

// MinLength creates a minimum length constraint.
func MinLength(n int) Constraint { return Constraint{Type: ConstraintMinLength, Value: n} }

// MaxLength creates a maximum length constraint.
func MaxLength(n int) Constraint { return Constraint{Type: ConstraintMaxLength, Value: n} }

// Pattern creates a regex constraint.
func Pattern(re string) Constraint { return Constraint{Type: ConstraintPattern, Value: re} }

// appliesTo reports whether a constraint type makes sense on a schema type.
func (c ConstraintType) appliesTo(t Type) bool {
	switch c {
	case ConstraintMin, ConstraintMax:
		return t == TypeNumber || t == TypeInteger
	case ConstraintMinLength, ConstraintMaxLength:
		return t == TypeString || t == TypeArray
	case ConstraintPattern, ConstraintNotEmpty:
		return t == TypeString
	default:
		return false
	}
}

// validateConstraint checks that a constraint is well formed for schema type t.
func validateConstraint(path string, t Type, c Constraint) error {
	if !c.Type.appliesTo(t) {
		return fmt.Errorf("%s: constraint %q does not apply to type %q", displayPath(path), c.Type, t)
	}
	switch c.Type {
	case ConstraintMin, ConstraintMax, ConstraintMinLength, ConstraintMaxLength:
		if _, err := toFloat64(c.Value); err != nil {
			return fmt.Errorf("%s: constraint %q requires a numeric value", displayPath(path), c.Type)
		}
	case ConstraintPattern:
		s, ok := c.Value.(string)
		if !ok {
			return fmt.Errorf("%s: constraint %q requires a string value", displayPath(path), c.Type)
		}
		if _, err := regexp.Compile(s); err != nil {
			return fmt.Errorf("%s: invalid pattern %q: %v", displayPath(path), s, err)
		}
	}
	return nil
}

// mergeConstraints unions two constraint lists keyed by type.
// The same type with different values cannot be reconciled.
func mergeConstraints(path string, a, b []Constraint) ([]Constraint, error) {
	if len(a) == 0 && len(b) == 0 {
		return nil, nil
	}
	byType := make(map[ConstraintType]Constraint, len(a)+len(b))
	for _, list := range [][]Constraint{a, b} {
		for _, c := range list {
			existing, ok := byType[c.Type]
			if !ok {
				byType[c.Type] = c
				continue
			}
			if !constraintValueEqual(existing.Value, c.Value) {
				return nil, &MergeConflictError{
					Path:   displayPath(path),
					Left:   fmt.Sprintf("%s=%v", existing.Type, existing.Value),
					Right:  fmt.Sprintf("%s=%v", c.Type, c.Value),
					Reason: "incompatible constraints",
				}
			}
			if c.Message != "" {
				existing.Message = c.Message
				byType[c.Type] = existing
			}
		}
	}
	out := make([]Constraint, 0, len(byType))
	for _, c := range byType {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

func equalConstraints(a, b []Constraint) bool {
	if len(a) != len(b) {
		return false
	}
	index := make(map[ConstraintType]Constraint, len(a))
	for _, c := range a {
		index[c.Type] = c
	}
	for _, c := range b {
		other, ok := index[c.Type]
		if !ok || other.Message != c.Message || !constraintValueEqual(other.Value, c.Value) {
			return false
		}
	}
	return true
}

// constraintValueEqual compares parameters, treating YAML ints and JSON
// floats of the same magnitude as equal.
func constraintValueEqual(a, b any) bool {
	af, aerr := toFloat64(a)
	bf, berr := toFloat64(b)
	if aerr == nil && berr == nil {
		return af == bf
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", v)
	}
}
