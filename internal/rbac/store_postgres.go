package rbac

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
)

// PostgresStore persists role membership in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the role table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS role_members (
			identity TEXT NOT NULL,
			role     TEXT NOT NULL,
			PRIMARY KEY (identity, role)
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure rbac schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Grant(ctx context.Context, identity domain.Identity, role domain.Role) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO role_members (identity, role) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, identity.String(), role.String())
	if err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	return nil
}

func (s *PostgresStore) Revoke(ctx context.Context, identity domain.Identity, role domain.Role) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM role_members WHERE identity = $1 AND role = $2
	`, identity.String(), role.String())
	if err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	return nil
}

func (s *PostgresStore) Has(ctx context.Context, identity domain.Identity, role domain.Role) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM role_members WHERE identity = $1 AND role = $2)
	`, identity.String(), role.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}
	return exists, nil
}
