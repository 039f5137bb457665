package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/botdef/adapters/clock"
	"github.com/artpar/botdef/adapters/idgen"
	"github.com/artpar/botdef/adapters/memory"
	"github.com/artpar/botdef/core/contract"
	"github.com/artpar/botdef/core/integration"
	"github.com/artpar/botdef/core/schema"
	"github.com/artpar/botdef/ports"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newCatalog() *Catalog {
	return New(Deps{
		Store:          memory.NewPackageStore(),
		InterfaceIDs:   idgen.NewSequential("intver_"),
		IntegrationIDs: idgen.NewSequential("integ_"),
		Clock:          clock.NewFake(now),
		Logger:         zerolog.Nop(),
	})
}

func deletable() contract.Interface {
	item := schema.Object(map[string]*schema.Schema{"id": schema.String()}).WithRequired("id")
	return contract.Interface{
		Name:     "deletable",
		Version:  "0.0.1",
		Entities: contract.Entities{{Name: "item", Schema: item}},
		Events: map[string]contract.EventTemplate{
			"deleted": {Schema: schema.Ref("item")},
		},
		Actions: map[string]contract.ActionTemplate{
			"delete": {Input: schema.Ref("item"), Output: schema.Object(nil)},
		},
	}
}

func TestPublishInterface(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()

	pkg, err := c.PublishInterface(ctx, deletable())
	require.NoError(t, err)
	assert.Equal(t, "intver_1", pkg.ID)
	assert.Equal(t, []string{"item"}, pkg.Interface.EntityNames())

	// identical content is a no-op
	again, err := c.PublishInterface(ctx, deletable())
	require.NoError(t, err)
	assert.Equal(t, pkg.ID, again.ID)

	changed := deletable()
	changed.Description = "Items that can be deleted"
	_, err = c.PublishInterface(ctx, changed)
	assert.ErrorIs(t, err, ErrAlreadyPublished)

	got, err := c.GetInterface(ctx, "deletable", "0.0.1")
	require.NoError(t, err)
	assert.True(t, schema.Equal(deletable().Actions["delete"].Input, got.Interface.Actions["delete"].Input))
}

func TestPublishInterface_Invalid(t *testing.T) {
	c := newCatalog()

	_, err := c.PublishInterface(context.Background(), contract.Interface{Name: "broken"})
	assert.Error(t, err)

	list, err := c.ListInterfaces(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPublishIntegration_StampsInterfaceIDs(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()

	ifacePkg, err := c.PublishInterface(ctx, deletable())
	require.NoError(t, err)

	todo := integration.Definition{
		Name:    "todo",
		Version: "1.0.0",
		Entities: map[string]integration.EntityDefinition{
			"task": {Schema: schema.Object(map[string]*schema.Schema{"id": schema.String(), "title": schema.String()})},
		},
	}
	todo, err = todo.Extend(deletable(), func(s integration.EntityStore) (integration.Binding, error) {
		return integration.Binding{Entities: map[string]integration.Entity{"item": s.MustGet("task")}}, nil
	})
	require.NoError(t, err)

	pkg, err := c.PublishIntegration(ctx, todo)
	require.NoError(t, err)
	assert.Equal(t, "integ_1", pkg.ID)
	assert.Equal(t, ifacePkg.ID, pkg.Definition.Interfaces["deletable<task>"].ID)

	// the caller's definition is not modified
	assert.Empty(t, todo.Interfaces["deletable<task>"].ID)

	list, err := c.ListIntegrations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "todo", list[0].Definition.Name)

	entry, err := c.GetByID(ctx, "integ_1")
	require.NoError(t, err)
	assert.Equal(t, ports.KindIntegration, entry.Kind)
	assert.Nil(t, entry.Interface)
	require.NotNil(t, entry.Integration)
	assert.Equal(t, "todo", entry.Integration.Definition.Name)

	entry, err = c.GetByID(ctx, ifacePkg.ID)
	require.NoError(t, err)
	assert.Equal(t, ports.KindInterface, entry.Kind)
	require.NotNil(t, entry.Interface)
	assert.Equal(t, "deletable@0.0.1", entry.Interface.Interface.Ref())
}

func TestGet_NotFound(t *testing.T) {
	c := newCatalog()

	_, err := c.GetIntegration(context.Background(), "slack", "1.0.0")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = c.GetInterface(context.Background(), "hitl", "0.2.0")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = c.GetByID(context.Background(), "intver_9")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
