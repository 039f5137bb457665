package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/botdef/ports"
)

// PackageStore implements ports.PackageStore using SQLite.
type PackageStore struct {
	db *DB
}

// NewPackageStore creates a new SQLite package store.
func NewPackageStore(db *DB) *PackageStore {
	return &PackageStore{db: db}
}

var _ ports.PackageStore = (*PackageStore)(nil)

// Get retrieves a package by kind, name and version.
func (s *PackageStore) Get(ctx context.Context, kind ports.PackageKind, name, version string) (ports.PackageRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, name, version, digest, content, created_at
		FROM packages
		WHERE kind = ? AND name = ? AND version = ?
	`, string(kind), name, version)
	return scanPackage(row)
}

// GetByID retrieves a package by ID.
func (s *PackageStore) GetByID(ctx context.Context, id string) (ports.PackageRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, name, version, digest, content, created_at
		FROM packages
		WHERE id = ?
	`, id)
	return scanPackage(row)
}

// List returns all packages of a kind.
func (s *PackageStore) List(ctx context.Context, kind ports.PackageKind) ([]ports.PackageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, name, version, digest, content, created_at
		FROM packages
		WHERE kind = ?
		ORDER BY name, version
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var out []ports.PackageRecord
	for rows.Next() {
		rec, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Create stores a new package.
func (s *PackageStore) Create(ctx context.Context, rec ports.PackageRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO packages (id, kind, name, version, digest, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, string(rec.Kind), rec.Name, rec.Version, rec.Digest, string(rec.Content), rec.CreatedAt)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%s %s@%s: %w", rec.Kind, rec.Name, rec.Version, ports.ErrDuplicate)
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPackage(row scanner) (ports.PackageRecord, error) {
	var rec ports.PackageRecord
	var kind, content string
	err := row.Scan(&rec.ID, &kind, &rec.Name, &rec.Version, &rec.Digest, &content, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.PackageRecord{}, ports.ErrNotFound
	}
	if err != nil {
		return ports.PackageRecord{}, fmt.Errorf("scan package: %w", err)
	}
	rec.Kind = ports.PackageKind(kind)
	rec.Content = []byte(content)
	return rec, nil
}
