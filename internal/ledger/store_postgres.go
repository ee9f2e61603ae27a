package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
	"github.com/MandalaChain/E-Certificate/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// PostgresStores bundles the three ledger stores over one database handle.
type PostgresStores struct {
	Hashes  *PostgresHashIndex
	Records *PostgresRecordStore
	Slots   *PostgresSlotAllocator
}

func NewPostgresStores(db *sql.DB) *PostgresStores {
	return &PostgresStores{
		Hashes:  &PostgresHashIndex{db: db},
		Records: &PostgresRecordStore{db: db},
		Slots:   &PostgresSlotAllocator{db: db},
	}
}

// EnsureSchema creates the ledger tables and slot sequence when missing.
func (s *PostgresStores) EnsureSchema(ctx context.Context) error {
	_, err := s.Records.db.ExecContext(ctx, `
		CREATE SEQUENCE IF NOT EXISTS certificate_slots START 1;
		CREATE TABLE IF NOT EXISTS certificate_hashes (
			content_hash TEXT PRIMARY KEY,
			slot_id      BIGINT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS certificates (
			slot_id      BIGINT NOT NULL,
			category     TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			owner        TEXT NOT NULL,
			payload      TEXT NOT NULL,
			external_ref TEXT NOT NULL DEFAULT '',
			status       TEXT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL,
			valid_until  TIMESTAMPTZ,
			PRIMARY KEY (slot_id, category)
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

type PostgresHashIndex struct {
	db *sql.DB
}

func (s *PostgresHashIndex) Get(ctx context.Context, hash domain.ContentHash) (domain.SlotID, error) {
	var slot uint64
	err := s.db.QueryRowContext(ctx, `
		SELECT slot_id FROM certificate_hashes WHERE content_hash = $1
	`, hash.String()).Scan(&slot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SlotAbsent, sentinel.ErrNotFound
		}
		return domain.SlotAbsent, fmt.Errorf("get hash mapping: %w", err)
	}
	return domain.SlotID(slot), nil
}

func (s *PostgresHashIndex) Put(ctx context.Context, hash domain.ContentHash, slot domain.SlotID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO certificate_hashes (content_hash, slot_id) VALUES ($1, $2)
	`, hash.String(), uint64(slot))
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("put hash mapping: %w", err)
	}
	return nil
}

type PostgresRecordStore struct {
	db *sql.DB
}

func (s *PostgresRecordStore) Get(ctx context.Context, slot domain.SlotID, category domain.CategoryKey) (Record, error) {
	var (
		record     Record
		hash       string
		cat        string
		owner      string
		status     string
		validUntil sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT content_hash, category, owner, payload, external_ref, status, created_at, valid_until
		FROM certificates WHERE slot_id = $1 AND category = $2
	`, uint64(slot), category.String()).Scan(
		&hash, &cat, &owner, &record.Payload, &record.ExternalRef,
		&status, &record.CreatedAt, &validUntil,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, sentinel.ErrNotFound
		}
		return Record{}, fmt.Errorf("get certificate: %w", err)
	}

	record.Slot = slot
	if record.ContentHash, err = domain.ParseContentHash(hash); err != nil {
		return Record{}, fmt.Errorf("stored content hash invalid: %w", err)
	}
	if record.Category, err = domain.ParseCategoryKey(cat); err != nil {
		return Record{}, fmt.Errorf("stored category invalid: %w", err)
	}
	if record.Status, err = domain.ParseStatus(status); err != nil {
		return Record{}, fmt.Errorf("stored status invalid: %w", err)
	}
	record.OwnerIdentity = domain.Identity(owner)
	if validUntil.Valid {
		record.ValidUntil = validUntil.Time
	}
	return record, nil
}

func (s *PostgresRecordStore) Put(ctx context.Context, record Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO certificates
			(slot_id, category, content_hash, owner, payload, external_ref, status, created_at, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, uint64(record.Slot), record.Category.String(), record.ContentHash.String(),
		record.OwnerIdentity.String(), record.Payload, record.ExternalRef,
		record.Status.String(), record.CreatedAt.UTC(), nullTime(record.ValidUntil))
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("put certificate: %w", err)
	}
	return nil
}

func (s *PostgresRecordStore) Update(ctx context.Context, record Record) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE certificates
		SET payload = $3, external_ref = $4, status = $5, valid_until = $6
		WHERE slot_id = $1 AND category = $2
	`, uint64(record.Slot), record.Category.String(), record.Payload,
		record.ExternalRef, record.Status.String(), nullTime(record.ValidUntil))
	if err != nil {
		return fmt.Errorf("update certificate: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update certificate: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type PostgresSlotAllocator struct {
	db *sql.DB
}

func (a *PostgresSlotAllocator) Next(ctx context.Context) (domain.SlotID, error) {
	var slot uint64
	err := a.db.QueryRowContext(ctx, `SELECT nextval('certificate_slots')`).Scan(&slot)
	if err != nil {
		return domain.SlotAbsent, fmt.Errorf("allocate slot: %w", err)
	}
	return domain.SlotID(slot), nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
