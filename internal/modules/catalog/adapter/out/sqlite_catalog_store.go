package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"biochar/internal/modules/catalog/domain"
	apperrors "biochar/internal/platform/errors"
	"biochar/internal/platform/sqlitedb"
)

// SQLiteCatalogStore keeps kilns and biomass types in the shared database.
type SQLiteCatalogStore struct {
	db *sql.DB
}

func NewSQLiteCatalogStore(ctx context.Context, db *sql.DB) (*SQLiteCatalogStore, error) {
	store := &SQLiteCatalogStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteCatalogStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS kilns (
  id TEXT PRIMARY KEY,
  coordinator_id TEXT NOT NULL,
  name TEXT NOT NULL,
  capacity_kg REAL NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_kilns_coordinator ON kilns(coordinator_id, name);
CREATE TABLE IF NOT EXISTS biomass_types (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_biomass_types_name ON biomass_types(name COLLATE NOCASE);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create catalog tables: %w", err)
	}
	return nil
}

func (s *SQLiteCatalogStore) InsertKiln(ctx context.Context, kiln domain.Kiln) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kilns (id, coordinator_id, name, capacity_kg, created_at) VALUES (?, ?, ?, ?, ?)`,
		kiln.ID, kiln.CoordinatorID, kiln.Name, kiln.CapacityKg, kiln.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: insert kiln: %w", apperrors.ErrStore, err)
	}
	return nil
}

func (s *SQLiteCatalogStore) FindKiln(ctx context.Context, id string) (domain.Kiln, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, coordinator_id, name, capacity_kg, created_at FROM kilns WHERE id = ?`, id)
	kiln, err := scanKiln(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Kiln{}, fmt.Errorf("%w: kiln %s", apperrors.ErrNotFound, id)
	}
	return kiln, err
}

func (s *SQLiteCatalogStore) ListKilns(ctx context.Context, coordinatorID string) ([]domain.Kiln, error) {
	query := `SELECT id, coordinator_id, name, capacity_kg, created_at FROM kilns`
	args := []any{}
	if coordinatorID != "" {
		query += ` WHERE coordinator_id = ?`
		args = append(args, coordinatorID)
	}
	query += ` ORDER BY coordinator_id ASC, name ASC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list kilns: %w", apperrors.ErrStore, err)
	}
	defer rows.Close()

	out := make([]domain.Kiln, 0)
	for rows.Next() {
		kiln, err := scanKiln(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, kiln)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate kilns: %w", apperrors.ErrStore, err)
	}
	return out, nil
}

func (s *SQLiteCatalogStore) InsertBiomassType(ctx context.Context, biomass domain.BiomassType) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO biomass_types (id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		biomass.ID, biomass.Name, biomass.Description, biomass.CreatedAt.Format(time.RFC3339Nano),
	)
	if sqlitedb.IsUniqueViolation(err, "idx_biomass_types_name", "biomass_types.name") {
		return fmt.Errorf("%w: biomass type %q already exists", apperrors.ErrValidation, biomass.Name)
	}
	if err != nil {
		return fmt.Errorf("%w: insert biomass type: %w", apperrors.ErrStore, err)
	}
	return nil
}

func (s *SQLiteCatalogStore) FindBiomassType(ctx context.Context, id string) (domain.BiomassType, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, description, created_at FROM biomass_types WHERE id = ?`, id)
	biomass, err := scanBiomass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.BiomassType{}, fmt.Errorf("%w: biomass type %s", apperrors.ErrNotFound, id)
	}
	return biomass, err
}

func (s *SQLiteCatalogStore) ListBiomassTypes(ctx context.Context) ([]domain.BiomassType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, created_at FROM biomass_types ORDER BY name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: list biomass types: %w", apperrors.ErrStore, err)
	}
	defer rows.Close()

	out := make([]domain.BiomassType, 0)
	for rows.Next() {
		biomass, err := scanBiomass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, biomass)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate biomass types: %w", apperrors.ErrStore, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanKiln(row scanner) (domain.Kiln, error) {
	var kiln domain.Kiln
	var createdAt string
	if err := row.Scan(&kiln.ID, &kiln.CoordinatorID, &kiln.Name, &kiln.CapacityKg, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Kiln{}, err
		}
		return domain.Kiln{}, fmt.Errorf("%w: scan kiln: %w", apperrors.ErrStore, err)
	}
	kiln.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return kiln, nil
}

func scanBiomass(row scanner) (domain.BiomassType, error) {
	var biomass domain.BiomassType
	var createdAt string
	if err := row.Scan(&biomass.ID, &biomass.Name, &biomass.Description, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BiomassType{}, err
		}
		return domain.BiomassType{}, fmt.Errorf("%w: scan biomass type: %w", apperrors.ErrStore, err)
	}
	biomass.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return biomass, nil
}
