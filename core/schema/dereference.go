package schema

// Dereference substitutes every entity placeholder in s with the schema bound
// to that entity name, recursively. A placeholder without a binding is an
// *UnboundEntityError. Dereferencing a concrete schema returns an equal copy.
//
// The bound schema is substituted as-is: title, description and nullability
// written at the placeholder site are dropped.
func Dereference(s *Schema, bindings map[string]*Schema) (*Schema, error) {
	return dereference(s, bindings, "")
}

func dereference(s *Schema, bindings map[string]*Schema, path string) (*Schema, error) {
	if s == nil {
		return nil, nil
	}

	switch s.Type {
	case TypeEntity:
		bound, ok := bindings[s.Entity]
		if !ok || bound == nil {
			return nil, &UnboundEntityError{Entity: s.Entity, Path: path}
		}
		return bound.Clone(), nil

	case TypeObject:
		out := s.Clone()
		for _, name := range s.PropertyNames() {
			p, err := dereference(s.Properties[name], bindings, joinPath(path, name))
			if err != nil {
				return nil, err
			}
			out.Properties[name] = p
		}
		return out, nil

	case TypeArray:
		out := s.Clone()
		items, err := dereference(s.Items, bindings, path+"[]")
		if err != nil {
			return nil, err
		}
		out.Items = items
		return out, nil

	default:
		return s.Clone(), nil
	}
}
