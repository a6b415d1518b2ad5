package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"biochar/internal/modules/identity/domain"
	identityout "biochar/internal/modules/identity/port/out"
	apperrors "biochar/internal/platform/errors"
)

type SQLiteUserStore struct {
	db *sql.DB
}

func NewSQLiteUserStore(ctx context.Context, db *sql.DB) (identityout.UserStore, error) {
	store := &SQLiteUserStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteUserStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('admin', 'coordinator')),
  coordinator_id TEXT,
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_coordinator ON users(coordinator_id) WHERE coordinator_id IS NOT NULL;
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (s *SQLiteUserStore) Insert(ctx context.Context, user domain.User) error {
	var coordinatorID any
	if user.CoordinatorID != "" {
		coordinatorID = user.CoordinatorID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, role, coordinator_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Name, string(user.Role), coordinatorID, user.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: insert user: %w", apperrors.ErrStore, err)
	}
	return nil
}

func (s *SQLiteUserStore) FindByID(ctx context.Context, id string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, role, coordinator_id, created_at FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *SQLiteUserStore) List(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, role, coordinator_id, created_at FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %w", apperrors.ErrStore, err)
	}
	defer rows.Close()

	out := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate users: %w", apperrors.ErrStore, err)
	}
	return out, nil
}

func (s *SQLiteUserStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count users: %w", apperrors.ErrStore, err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (domain.User, error) {
	var (
		user          domain.User
		role          string
		coordinatorID sql.NullString
		createdAt     string
	)
	if err := row.Scan(&user.ID, &user.Name, &role, &coordinatorID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, err
		}
		return domain.User{}, fmt.Errorf("%w: scan user: %w", apperrors.ErrStore, err)
	}
	user.Role = domain.Role(role)
	user.CoordinatorID = coordinatorID.String
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: parse user created_at: %w", apperrors.ErrStore, err)
	}
	user.CreatedAt = parsed
	return user, nil
}
