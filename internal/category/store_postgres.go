package category

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
	"github.com/MandalaChain/E-Certificate/pkg/platform/sentinel"
)

// PostgresStore persists the category allowlist in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the category table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS approved_categories (
			category_key TEXT PRIMARY KEY,
			approved_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure category schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Approve(ctx context.Context, key domain.CategoryKey) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO approved_categories (category_key) VALUES ($1)
		ON CONFLICT DO NOTHING
	`, key.String())
	if err != nil {
		return fmt.Errorf("approve category: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("approve category: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) IsApproved(ctx context.Context, key domain.CategoryKey) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM approved_categories WHERE category_key = $1)
	`, key.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	return exists, nil
}
