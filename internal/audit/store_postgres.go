package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore persists audit events in PostgreSQL. The payload column keeps
// the full JSON event so downstream consumers never lose fields the indexed
// columns do not cover.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the audit table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_events (
			id           UUID PRIMARY KEY,
			occurred_at  TIMESTAMPTZ NOT NULL,
			action       TEXT NOT NULL,
			actor        TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL DEFAULT '',
			payload      JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS audit_events_content_hash_idx
			ON audit_events (content_hash) WHERE content_hash <> '';
	`)
	if err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, occurred_at, action, actor, content_hash, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, event.ID, event.Timestamp.UTC(), string(event.Action), event.Actor, event.ContentHash, payload)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByContentHash(ctx context.Context, contentHash string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM audit_events
		WHERE content_hash = $1
		ORDER BY occurred_at, id
	`, contentHash)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		var event Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("decode audit event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
