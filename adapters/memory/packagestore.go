// Package memory provides in-memory implementations of storage ports.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/artpar/botdef/ports"
)

// PackageStore is an in-memory implementation of ports.PackageStore.
type PackageStore struct {
	mu       sync.RWMutex
	packages map[string]ports.PackageRecord // by ID
	byRef    map[string]string              // kind/name@version -> ID
}

// NewPackageStore creates a new in-memory package store.
func NewPackageStore() *PackageStore {
	return &PackageStore{
		packages: make(map[string]ports.PackageRecord),
		byRef:    make(map[string]string),
	}
}

var _ ports.PackageStore = (*PackageStore)(nil)

// Get retrieves a package by kind, name and version.
func (s *PackageStore) Get(ctx context.Context, kind ports.PackageKind, name, version string) (ports.PackageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byRef[refKey(kind, name, version)]
	if !ok {
		return ports.PackageRecord{}, ports.ErrNotFound
	}
	return copyRecord(s.packages[id]), nil
}

// GetByID retrieves a package by ID.
func (s *PackageStore) GetByID(ctx context.Context, id string) (ports.PackageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.packages[id]
	if !ok {
		return ports.PackageRecord{}, ports.ErrNotFound
	}
	return copyRecord(rec), nil
}

// List returns all packages of a kind ordered by name then version.
func (s *PackageStore) List(ctx context.Context, kind ports.PackageKind) ([]ports.PackageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ports.PackageRecord
	for _, rec := range s.packages {
		if rec.Kind == kind {
			out = append(out, copyRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Version < out[j].Version
	})
	return out, nil
}

// Create stores a new package.
func (s *PackageStore) Create(ctx context.Context, rec ports.PackageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := refKey(rec.Kind, rec.Name, rec.Version)
	if _, exists := s.byRef[key]; exists {
		return fmt.Errorf("%s %s@%s: %w", rec.Kind, rec.Name, rec.Version, ports.ErrDuplicate)
	}
	if _, exists := s.packages[rec.ID]; exists {
		return fmt.Errorf("package id %s: %w", rec.ID, ports.ErrDuplicate)
	}

	s.packages[rec.ID] = copyRecord(rec)
	s.byRef[key] = rec.ID
	return nil
}

func refKey(kind ports.PackageKind, name, version string) string {
	return string(kind) + "/" + name + "@" + version
}

func copyRecord(rec ports.PackageRecord) ports.PackageRecord {
	rec.Content = append([]byte(nil), rec.Content...)
	return rec
}
