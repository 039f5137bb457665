package integration

import (
	"errors"
	"testing"

	"github.com/artpar/botdef/core/contract"
	"github.com/artpar/botdef/core/schema"
)

func TestBindingKey(t *testing.T) {
	tests := []struct {
		name     string
		iface    string
		entities []string
		want     string
	}{
		{"no entities", "hitl", nil, "hitl"},
		{"one entity", "listable", []string{"issue"}, "listable<issue>"},
		{"two entities", "syncable", []string{"issue", "comment"}, "syncable<issue,comment>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BindingKey(tt.iface, tt.entities); got != tt.want {
				t.Errorf("BindingKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBind_KeyFollowsDeclarationOrder(t *testing.T) {
	iface := contract.Interface{
		Name:    "linked",
		Version: "1.0.0",
		Entities: contract.Entities{
			{Name: "target", Schema: schema.Object(nil)},
			{Name: "source", Schema: schema.Object(nil)},
		},
	}
	def := Definition{
		Name:    "linear",
		Version: "1.0.0",
		Entities: map[string]EntityDefinition{
			"issue":   {Schema: schema.Object(nil)},
			"project": {Schema: schema.Object(nil)},
		},
	}
	store := NewEntityStore(def)

	st, key, err := Bind(iface, store, func(s EntityStore) (Binding, error) {
		return Binding{Entities: map[string]Entity{
			"source": s.MustGet("issue"),
			"target": s.MustGet("project"),
		}}, nil
	})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if key != "linked<project,issue>" {
		t.Errorf("Bind() key = %q, want %q", key, "linked<project,issue>")
	}
	if st.Ref() != "linked@1.0.0" {
		t.Errorf("Ref() = %q, want %q", st.Ref(), "linked@1.0.0")
	}
}

func TestBind_Errors(t *testing.T) {
	iface := contract.Interface{
		Name:     "deletable",
		Version:  "0.0.1",
		Entities: contract.Entities{{Name: "item", Schema: schema.Object(nil)}},
		Actions: map[string]contract.ActionTemplate{
			"delete": {Input: schema.Object(map[string]*schema.Schema{"id": schema.String()}), Output: schema.Object(nil)},
			"purge":  {Input: schema.Object(nil), Output: schema.Object(nil)},
		},
	}
	def := Definition{
		Name:     "todo",
		Version:  "1.0.0",
		Entities: map[string]EntityDefinition{"task": {Schema: schema.Object(nil)}},
	}

	tests := []struct {
		name    string
		binding func(EntityStore) Binding
	}{
		{
			name: "unknown placeholder",
			binding: func(s EntityStore) Binding {
				return Binding{Entities: map[string]Entity{"thing": s.MustGet("task")}}
			},
		},
		{
			name: "rename of unknown action",
			binding: func(s EntityStore) Binding {
				return Binding{Entities: map[string]Entity{"item": s.MustGet("task")}, Actions: map[string]string{"archive": "archiveTask"}}
			},
		},
		{
			name: "invalid alias",
			binding: func(s EntityStore) Binding {
				return Binding{Entities: map[string]Entity{"item": s.MustGet("task")}, Actions: map[string]string{"delete": "delete-task"}}
			},
		},
		{
			name: "alias collision",
			binding: func(s EntityStore) Binding {
				return Binding{Entities: map[string]Entity{"item": s.MustGet("task")}, Actions: map[string]string{"delete": "purge"}}
			},
		},
		{
			name: "rename of unknown event",
			binding: func(s EntityStore) Binding {
				return Binding{Entities: map[string]Entity{"item": s.MustGet("task")}, Events: map[string]string{"deleted": "taskDeleted"}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Bind(iface, NewEntityStore(def), func(s EntityStore) (Binding, error) {
				return tt.binding(s), nil
			})
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Bind() error = %v, want *ConfigurationError", err)
			}
			if cfgErr.Interface != "deletable" {
				t.Errorf("Interface = %q, want %q", cfgErr.Interface, "deletable")
			}
		})
	}
}

func TestEntityStore(t *testing.T) {
	def := Definition{
		Name:     "todo",
		Version:  "1.0.0",
		Entities: map[string]EntityDefinition{"task": {Schema: schema.Object(map[string]*schema.Schema{"title": schema.String()})}},
	}
	store := NewEntityStore(def)

	if store.Owner() != "todo@1.0.0" {
		t.Errorf("Owner() = %q, want %q", store.Owner(), "todo@1.0.0")
	}

	task, err := store.Get("task")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !store.Owns(task) {
		t.Error("Owns() = false for own entity")
	}

	// a second store over the same definition shares ownership
	if !NewEntityStore(def).Owns(task) {
		t.Error("Owns() = false for entity of an equal store")
	}

	// mutating the returned schema does not leak into the store
	task.Schema().Properties["extra"] = schema.String()
	if !store.Owns(task) {
		t.Error("Owns() = false after mutating a schema copy")
	}

	// an entity from an older revision of the definition is not owned
	changed := def.Clone()
	changed.Entities["task"] = EntityDefinition{Schema: schema.Object(map[string]*schema.Schema{"name": schema.String()})}
	if NewEntityStore(changed).Owns(task) {
		t.Error("Owns() = true for entity with a different schema")
	}

	if _, err := store.Get("missing"); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("Get() error = %v, want ErrEntityNotFound", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantErr bool
	}{
		{
			name: "valid",
			def: Definition{
				Name:     "todo",
				Version:  "1.0.0",
				Entities: map[string]EntityDefinition{"task": {Schema: schema.Object(nil)}},
				States:   map[string]StateDefinition{"cursor": {Type: StateIntegration, Schema: schema.Object(nil)}},
			},
		},
		{name: "missing name", def: Definition{Version: "1.0.0"}, wantErr: true},
		{name: "missing version", def: Definition{Name: "todo"}, wantErr: true},
		{
			name: "placeholder in owned action",
			def: Definition{
				Name:    "todo",
				Version: "1.0.0",
				Actions: map[string]ActionDefinition{"get": {Input: schema.Ref("item"), Output: schema.Object(nil)}},
			},
			wantErr: true,
		},
		{
			name: "unknown state type",
			def: Definition{
				Name:    "todo",
				Version: "1.0.0",
				States:  map[string]StateDefinition{"cursor": {Type: "global", Schema: schema.Object(nil)}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.def)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
name: todo
version: 1.0.0
title: Todo
entities:
  task:
    schema:
      properties:
        id: string
        title: string
      required: [id]
actions:
  createTask:
    input:
      properties:
        title: string
    output:
      properties:
        id: string
`)

	def, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if def.Ref() != "todo@1.0.0" {
		t.Errorf("Ref() = %q, want %q", def.Ref(), "todo@1.0.0")
	}
	task := def.Entities["task"].Schema
	if task.Type != schema.TypeObject || len(task.Properties) != 2 {
		t.Errorf("task schema = %s, want object with 2 properties", task)
	}
	if _, ok := def.Actions["createTask"]; !ok {
		t.Error("action createTask missing")
	}
}
