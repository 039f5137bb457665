package integration

import (
	"errors"
	"fmt"

	"github.com/artpar/botdef/core/schema"
)

// ErrEntityNotFound is returned when a store has no entity with the requested name.
var ErrEntityNotFound = errors.New("entity not found")

// Entity is an owned entity handed out by an EntityStore.
// Its fields are unexported so the only way to obtain one that passes the
// ownership check is through the integration's own store; the zero value and
// entities of other integrations are foreign.
type Entity struct {
	name   string
	schema *schema.Schema
	owner  string
}

// Name returns the entity name inside its integration.
func (e Entity) Name() string { return e.name }

// Schema returns a copy of the entity schema.
func (e Entity) Schema() *schema.Schema { return e.schema.Clone() }

// IsZero reports whether e was not obtained from any store.
func (e Entity) IsZero() bool { return e.owner == "" }

// EntityStore is a read-only view over an integration's owned entities.
type EntityStore struct {
	owner    string
	entities map[string]Entity
}

// NewEntityStore creates the entity store of a definition.
func NewEntityStore(def Definition) EntityStore {
	owner := def.Ref()
	store := EntityStore{
		owner:    owner,
		entities: make(map[string]Entity, len(def.Entities)),
	}
	for name, e := range def.Entities {
		store.entities[name] = Entity{name: name, schema: e.Schema.Clone(), owner: owner}
	}
	return store
}

// Owner returns the "name@version" of the integration owning the store.
func (s EntityStore) Owner() string { return s.owner }

// Get returns the named owned entity.
func (s EntityStore) Get(name string) (Entity, error) {
	e, ok := s.entities[name]
	if !ok {
		return Entity{}, fmt.Errorf("%w: %q in integration %s", ErrEntityNotFound, name, s.owner)
	}
	return e, nil
}

// MustGet returns the named owned entity and panics if it does not exist.
// Intended for definition files where a missing entity is a programming error.
func (s EntityStore) MustGet(name string) Entity {
	e, err := s.Get(name)
	if err != nil {
		panic(err)
	}
	return e
}

// Names returns the owned entity names in sorted order.
func (s EntityStore) Names() []string {
	return sortedKeys(s.entities)
}

// Owns reports whether e was handed out by this store's integration and
// still matches the owned schema.
func (s EntityStore) Owns(e Entity) bool {
	if e.owner == "" || e.owner != s.owner {
		return false
	}
	owned, ok := s.entities[e.name]
	if !ok {
		return false
	}
	return schema.Equal(owned.schema, e.schema)
}
