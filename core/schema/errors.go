package schema

import "fmt"

// UnboundEntityError is returned when a schema references an interface
// entity that has no binding.
type UnboundEntityError struct {
	Entity string
	Path   string
}

func (e *UnboundEntityError) Error() string {
	return fmt.Sprintf("unbound entity %q at %s", e.Entity, displayPath(e.Path))
}

// MergeConflictError is returned when two schemas cannot be combined
// structurally, e.g. the same property declared with different types.
type MergeConflictError struct {
	Path   string
	Left   string
	Right  string
	Reason string
}

func (e *MergeConflictError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "incompatible types"
	}
	return fmt.Sprintf("cannot merge schemas at %s: %s (%s vs %s)", displayPath(e.Path), reason, e.Left, e.Right)
}

func displayPath(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
