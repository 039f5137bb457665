package schema

import "fmt"

// Merge combines a and b into a schema accepting the union of their fields.
//
// Objects keep every property of both sides; properties present on both are
// merged recursively and Required is the union of both lists. Enums union
// their values and arrays merge their item schemas. Scalars of the same type
// merge trivially. Anything else (string vs number, entity vs other entity)
// is a *MergeConflictError naming the offending path.
//
// Field content is order independent: Merge(a, b) and Merge(b, a) describe
// the same fields. Titles and descriptions are not: a non-empty value on b
// replaces the one on a.
func Merge(a, b *Schema) (*Schema, error) {
	return merge(a, b, "")
}

func merge(a, b *Schema, path string) (*Schema, error) {
	if a == nil {
		return b.Clone(), nil
	}
	if b == nil {
		return a.Clone(), nil
	}

	if a.Type != b.Type {
		return nil, &MergeConflictError{Path: displayPath(path), Left: string(a.Type), Right: string(b.Type)}
	}

	out := &Schema{
		Type:        a.Type,
		Title:       lastNonEmpty(a.Title, b.Title),
		Description: lastNonEmpty(a.Description, b.Description),
		Nullable:    a.Nullable || b.Nullable,
	}

	constraints, err := mergeConstraints(path, a.Constraints, b.Constraints)
	if err != nil {
		return nil, err
	}
	out.Constraints = constraints

	switch a.Type {
	case TypeObject:
		out.Properties = make(map[string]*Schema, len(a.Properties)+len(b.Properties))
		for name, p := range a.Properties {
			out.Properties[name] = p.Clone()
		}
		for _, name := range b.PropertyNames() {
			bp := b.Properties[name]
			ap, ok := out.Properties[name]
			if !ok {
				out.Properties[name] = bp.Clone()
				continue
			}
			merged, err := merge(ap, bp, joinPath(path, name))
			if err != nil {
				return nil, err
			}
			out.Properties[name] = merged
		}
		out.Required = sortedUnique(append(append([]string(nil), a.Required...), b.Required...))

	case TypeArray:
		items, err := merge(a.Items, b.Items, path+"[]")
		if err != nil {
			return nil, err
		}
		out.Items = items

	case TypeEnum:
		out.Values = sortedUnique(append(append([]string(nil), a.Values...), b.Values...))

	case TypeEntity:
		if a.Entity != b.Entity {
			return nil, &MergeConflictError{
				Path:   displayPath(path),
				Left:   fmt.Sprintf("entity %s", a.Entity),
				Right:  fmt.Sprintf("entity %s", b.Entity),
				Reason: "different entities",
			}
		}
		out.Entity = a.Entity
	}

	return out, nil
}

func lastNonEmpty(a, b string) string {
	if b != "" {
		return b
	}
	return a
}
