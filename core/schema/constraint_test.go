package schema

import (
	"errors"
	"testing"
)

func TestValidateConstraint(t *testing.T) {
	tests := []struct {
		name    string
		typ     Type
		c       Constraint
		wantErr bool
	}{
		{"min on number", TypeNumber, Min(0), false},
		{"max on integer", TypeInteger, Max(10), false},
		{"min_length on string", TypeString, MinLength(1), false},
		{"max_length on array", TypeArray, MaxLength(5), false},
		{"pattern on string", TypeString, Pattern(`^[a-z]+$`), false},
		{"not_empty on string", TypeString, Constraint{Type: ConstraintNotEmpty}, false},
		{"min on string", TypeString, Min(0), true},
		{"pattern on number", TypeNumber, Pattern(`x`), true},
		{"non numeric min", TypeNumber, Constraint{Type: ConstraintMin, Value: "abc"}, true},
		{"non string pattern", TypeString, Constraint{Type: ConstraintPattern, Value: 3}, true},
		{"unknown constraint", TypeString, Constraint{Type: "ref_exists"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConstraint("field", tt.typ, tt.c)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConstraint() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMergeConstraints(t *testing.T) {
	t.Run("union by type", func(t *testing.T) {
		got, err := mergeConstraints("n", []Constraint{Min(0)}, []Constraint{Max(10)})
		if err != nil {
			t.Fatalf("mergeConstraints() error = %v", err)
		}
		if len(got) != 2 || got[0].Type != ConstraintMax || got[1].Type != ConstraintMin {
			t.Errorf("mergeConstraints() = %v, want [max min]", got)
		}
	})

	t.Run("same value from yaml and json", func(t *testing.T) {
		got, err := mergeConstraints("n",
			[]Constraint{{Type: ConstraintMin, Value: 1}},
			[]Constraint{{Type: ConstraintMin, Value: 1.0}},
		)
		if err != nil {
			t.Fatalf("mergeConstraints() error = %v", err)
		}
		if len(got) != 1 {
			t.Errorf("mergeConstraints() = %v, want one constraint", got)
		}
	})

	t.Run("message last write wins", func(t *testing.T) {
		got, err := mergeConstraints("n",
			[]Constraint{{Type: ConstraintMin, Value: 1, Message: "first"}},
			[]Constraint{{Type: ConstraintMin, Value: 1, Message: "second"}},
		)
		if err != nil {
			t.Fatalf("mergeConstraints() error = %v", err)
		}
		if got[0].Message != "second" {
			t.Errorf("Message = %q, want second", got[0].Message)
		}
	})

	t.Run("conflicting values", func(t *testing.T) {
		_, err := mergeConstraints("n", []Constraint{Min(0)}, []Constraint{Min(5)})
		var conflict *MergeConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("error = %v, want *MergeConflictError", err)
		}
		if conflict.Reason != "incompatible constraints" {
			t.Errorf("Reason = %q", conflict.Reason)
		}
	})
}
