/*
Package schema describes the shape of action inputs, action outputs, event
payloads and channel messages.

Schemas are plain data. Interfaces write them against abstract entities
(placeholders); integrations substitute their own entity schemas in.

# Schema Definition

A schema in YAML:

	type: object
	properties:
	  item:  { entity: item }            # placeholder for an interface entity
	  label: string                      # shorthand for { type: string }
	  score: { type: number, constraints: [{ type: min, value: 0 }] }
	  tags:  { type: array, items: string }
	required: [item]

# Types

  - object:  named properties, optional required list
  - array:   items schema
  - string, number, integer, boolean: scalars
  - enum:    one of values
  - any:     unconstrained
  - entity:  placeholder, replaced by Dereference

# Operations

Dereference replaces placeholders with bound schemas and fails with
*UnboundEntityError when a placeholder has no binding:

	concrete, err := schema.Dereference(template, map[string]*schema.Schema{
		"item": documentSchema,
	})

Merge unions two schemas and fails with *MergeConflictError when they
disagree on a type:

	merged, err := schema.Merge(a, b)

Both are pure: inputs are never modified.
*/
package schema
