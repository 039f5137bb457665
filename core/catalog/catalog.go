// Package catalog publishes interface and integration packages.
//
// Published packages are immutable. Publishing the same name@version again
// is a no-op when the content is identical and ErrAlreadyPublished otherwise.
package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/artpar/botdef/core/contract"
	"github.com/artpar/botdef/core/integration"
	"github.com/artpar/botdef/ports"
)

// ErrAlreadyPublished is returned when a name@version is already published
// with different content.
var ErrAlreadyPublished = errors.New("package already published with different content")

// Deps are the catalog's collaborators.
type Deps struct {
	Store          ports.PackageStore
	InterfaceIDs   ports.IDGenerator
	IntegrationIDs ports.IDGenerator
	Clock          ports.Clock
	Logger         zerolog.Logger
}

// Catalog publishes and looks up packages.
type Catalog struct {
	store          ports.PackageStore
	interfaceIDs   ports.IDGenerator
	integrationIDs ports.IDGenerator
	clock          ports.Clock
	logger         zerolog.Logger
}

// New creates a catalog.
func New(deps Deps) *Catalog {
	return &Catalog{
		store:          deps.Store,
		interfaceIDs:   deps.InterfaceIDs,
		integrationIDs: deps.IntegrationIDs,
		clock:          deps.Clock,
		logger:         deps.Logger,
	}
}

// PublishInterface validates and publishes an interface declaration.
func (c *Catalog) PublishInterface(ctx context.Context, iface contract.Interface) (contract.Package, error) {
	if err := contract.Validate(iface); err != nil {
		return contract.Package{}, fmt.Errorf("validate interface %s: %w", iface.Ref(), err)
	}

	rec, err := c.publish(ctx, ports.KindInterface, iface.Name, iface.Version, iface, c.interfaceIDs)
	if err != nil {
		return contract.Package{}, err
	}
	return decodeInterface(rec)
}

// PublishIntegration validates and publishes a resolved integration. Every
// statement implementing a published interface is stamped with that
// interface's package ID.
func (c *Catalog) PublishIntegration(ctx context.Context, def integration.Definition) (integration.Package, error) {
	if err := integration.Validate(def); err != nil {
		return integration.Package{}, fmt.Errorf("validate integration %s: %w", def.Ref(), err)
	}

	def = def.Clone()
	for _, key := range def.BindingKeys() {
		st := def.Interfaces[key]
		pkg, err := c.GetInterface(ctx, st.Name, st.Version)
		if errors.Is(err, ports.ErrNotFound) {
			continue
		}
		if err != nil {
			return integration.Package{}, err
		}
		st.ID = pkg.ID
		def.Interfaces[key] = st
	}

	rec, err := c.publish(ctx, ports.KindIntegration, def.Name, def.Version, def, c.integrationIDs)
	if err != nil {
		return integration.Package{}, err
	}
	return decodeIntegration(rec)
}

// GetInterface returns a published interface.
func (c *Catalog) GetInterface(ctx context.Context, name, version string) (contract.Package, error) {
	rec, err := c.store.Get(ctx, ports.KindInterface, name, version)
	if err != nil {
		return contract.Package{}, fmt.Errorf("interface %s: %w", contract.FormatRef(name, version), err)
	}
	return decodeInterface(rec)
}

// GetIntegration returns a published integration.
func (c *Catalog) GetIntegration(ctx context.Context, name, version string) (integration.Package, error) {
	rec, err := c.store.Get(ctx, ports.KindIntegration, name, version)
	if err != nil {
		return integration.Package{}, fmt.Errorf("integration %s: %w", contract.FormatRef(name, version), err)
	}
	return decodeIntegration(rec)
}

// Entry is a published package of either kind. Exactly one of Interface and
// Integration is set, matching Kind.
type Entry struct {
	Kind        ports.PackageKind    `json:"kind"`
	Interface   *contract.Package    `json:"interface,omitempty"`
	Integration *integration.Package `json:"integration,omitempty"`
}

// GetByID returns the package published under id.
func (c *Catalog) GetByID(ctx context.Context, id string) (Entry, error) {
	rec, err := c.store.GetByID(ctx, id)
	if err != nil {
		return Entry{}, fmt.Errorf("package %s: %w", id, err)
	}

	switch rec.Kind {
	case ports.KindInterface:
		pkg, err := decodeInterface(rec)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Kind: rec.Kind, Interface: &pkg}, nil
	case ports.KindIntegration:
		pkg, err := decodeIntegration(rec)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Kind: rec.Kind, Integration: &pkg}, nil
	default:
		return Entry{}, fmt.Errorf("package %s: unknown kind %q", id, rec.Kind)
	}
}

// ListInterfaces returns all published interfaces.
func (c *Catalog) ListInterfaces(ctx context.Context) ([]contract.Package, error) {
	recs, err := c.store.List(ctx, ports.KindInterface)
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	out := make([]contract.Package, 0, len(recs))
	for _, rec := range recs {
		pkg, err := decodeInterface(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, pkg)
	}
	return out, nil
}

// ListIntegrations returns all published integrations.
func (c *Catalog) ListIntegrations(ctx context.Context) ([]integration.Package, error) {
	recs, err := c.store.List(ctx, ports.KindIntegration)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	out := make([]integration.Package, 0, len(recs))
	for _, rec := range recs {
		pkg, err := decodeIntegration(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, pkg)
	}
	return out, nil
}

func (c *Catalog) publish(ctx context.Context, kind ports.PackageKind, name, version string, v any, ids ports.IDGenerator) (ports.PackageRecord, error) {
	content, err := json.Marshal(v)
	if err != nil {
		return ports.PackageRecord{}, fmt.Errorf("encode %s: %w", kind, err)
	}
	sum := sha256.Sum256(content)
	digest := hex.EncodeToString(sum[:])
	ref := contract.FormatRef(name, version)

	existing, err := c.store.Get(ctx, kind, name, version)
	switch {
	case err == nil:
		return c.samePackage(existing, digest, ref)
	case !errors.Is(err, ports.ErrNotFound):
		return ports.PackageRecord{}, fmt.Errorf("lookup %s %s: %w", kind, ref, err)
	}

	rec := ports.PackageRecord{
		ID:        ids.New(),
		Kind:      kind,
		Name:      name,
		Version:   version,
		Digest:    digest,
		Content:   content,
		CreatedAt: c.clock.Now(),
	}
	if err := c.store.Create(ctx, rec); err != nil {
		if !errors.Is(err, ports.ErrDuplicate) {
			return ports.PackageRecord{}, fmt.Errorf("store %s %s: %w", kind, ref, err)
		}
		// lost a race with a concurrent publish
		existing, err := c.store.Get(ctx, kind, name, version)
		if err != nil {
			return ports.PackageRecord{}, fmt.Errorf("lookup %s %s: %w", kind, ref, err)
		}
		return c.samePackage(existing, digest, ref)
	}

	c.logger.Info().
		Str("kind", string(kind)).
		Str("package", ref).
		Str("id", rec.ID).
		Msg("package published")
	return rec, nil
}

func (c *Catalog) samePackage(existing ports.PackageRecord, digest, ref string) (ports.PackageRecord, error) {
	if existing.Digest != digest {
		return ports.PackageRecord{}, fmt.Errorf("%s %s: %w", existing.Kind, ref, ErrAlreadyPublished)
	}
	c.logger.Debug().
		Str("kind", string(existing.Kind)).
		Str("package", ref).
		Msg("package unchanged")
	return existing, nil
}

func decodeInterface(rec ports.PackageRecord) (contract.Package, error) {
	var iface contract.Interface
	if err := json.Unmarshal(rec.Content, &iface); err != nil {
		return contract.Package{}, fmt.Errorf("decode interface %s: %w", rec.ID, err)
	}
	return contract.Package{ID: rec.ID, Interface: iface}, nil
}

func decodeIntegration(rec ports.PackageRecord) (integration.Package, error) {
	var def integration.Definition
	if err := json.Unmarshal(rec.Content, &def); err != nil {
		return integration.Package{}, fmt.Errorf("decode integration %s: %w", rec.ID, err)
	}
	return integration.Package{ID: rec.ID, Definition: def}, nil
}
