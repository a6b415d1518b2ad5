package out

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"biochar/internal/modules/pyrolysis/domain"
	pyrolysisout "biochar/internal/modules/pyrolysis/port/out"
	apperrors "biochar/internal/platform/errors"
	"biochar/internal/platform/sqlitedb"
)

type SQLiteBatchStore struct {
	db *sql.DB
}

func NewSQLiteBatchStore(ctx context.Context, db *sql.DB) (pyrolysisout.BatchStore, error) {
	store := &SQLiteBatchStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// The partial unique index holds the single-active rule even when two
// processes race past the read in Start.
func (s *SQLiteBatchStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS batches (
  id TEXT PRIMARY KEY,
  coordinator_id TEXT NOT NULL,
  kiln_id TEXT NOT NULL,
  biomass_type_id TEXT NOT NULL,
  start_time TEXT NOT NULL,
  input_quantity REAL NOT NULL CHECK (input_quantity > 0),
  status TEXT NOT NULL CHECK (status IN ('in-progress', 'completed')),
  end_time TEXT,
  output_quantity REAL CHECK (output_quantity IS NULL OR output_quantity > 0),
  photo_ref TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_batches_one_active
  ON batches(coordinator_id) WHERE status = 'in-progress';
CREATE INDEX IF NOT EXISTS idx_batches_coordinator_start
  ON batches(coordinator_id, start_time DESC);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create batches table: %w", err)
	}
	return nil
}

func (s *SQLiteBatchStore) ListBatches(ctx context.Context, coordinatorID string) ([]domain.Record, error) {
	query := `SELECT id, coordinator_id, kiln_id, biomass_type_id, start_time, input_quantity, status, end_time, output_quantity, photo_ref FROM batches`
	args := []any{}
	if coordinatorID != "" {
		query += ` WHERE coordinator_id = ?`
		args = append(args, coordinatorID)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list batches: %w", apperrors.ErrStore, err)
	}
	defer rows.Close()

	out := make([]domain.Record, 0)
	for rows.Next() {
		var (
			r         domain.Record
			startTime string
			status    string
			endTime   sql.NullString
			output    sql.NullFloat64
			photoRef  sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.CoordinatorID, &r.KilnID, &r.BiomassTypeID, &startTime, &r.InputQuantity, &status, &endTime, &output, &photoRef); err != nil {
			return nil, fmt.Errorf("%w: scan batch: %w", apperrors.ErrStore, err)
		}
		r.Status = domain.Status(status)
		if r.StartTime, err = time.Parse(time.RFC3339Nano, startTime); err != nil {
			return nil, fmt.Errorf("%w: batch %s start_time: %w", apperrors.ErrStore, r.ID, err)
		}
		if endTime.Valid {
			parsed, err := time.Parse(time.RFC3339Nano, endTime.String)
			if err != nil {
				return nil, fmt.Errorf("%w: batch %s end_time: %w", apperrors.ErrStore, r.ID, err)
			}
			r.EndTime = &parsed
		}
		if output.Valid {
			r.OutputQuantity = &output.Float64
		}
		if photoRef.Valid {
			r.PhotoRef = &photoRef.String
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate batches: %w", apperrors.ErrStore, err)
	}
	return out, nil
}

func (s *SQLiteBatchStore) InsertBatch(ctx context.Context, record domain.Record) error {
	if record.Status != domain.StatusInProgress {
		return fmt.Errorf("%w: only in-progress batches can be inserted", apperrors.ErrInvalidState)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO batches (id, coordinator_id, kiln_id, biomass_type_id, start_time, input_quantity, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.CoordinatorID, record.KilnID, record.BiomassTypeID,
		record.StartTime.UTC().Format(time.RFC3339Nano), record.InputQuantity, string(record.Status),
	)
	if sqlitedb.IsUniqueViolation(err, "idx_batches_one_active", "batches.coordinator_id") {
		return fmt.Errorf("%w: coordinator %s already has a batch in progress: %w", apperrors.ErrInvalidState, record.CoordinatorID, err)
	}
	if err != nil {
		return fmt.Errorf("%w: insert batch: %w", apperrors.ErrStore, err)
	}
	return nil
}

func (s *SQLiteBatchStore) CompleteBatch(ctx context.Context, batch domain.CompletedBatch) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE batches
		    SET status = 'completed', end_time = ?, output_quantity = ?, photo_ref = ?
		  WHERE id = ? AND coordinator_id = ? AND status = 'in-progress'`,
		batch.EndTime.UTC().Format(time.RFC3339Nano), batch.OutputQuantity, batch.PhotoRef,
		batch.ID, batch.CoordinatorID,
	)
	if err != nil {
		return fmt.Errorf("%w: complete batch: %w", apperrors.ErrStore, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: complete batch rows affected: %w", apperrors.ErrStore, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: batch %s is no longer in progress", apperrors.ErrInvalidState, batch.ID)
	}
	return nil
}
