package ledger

import (
	"context"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
)

// Stores are interface-driven so the ledger logic stays testable and the
// in-memory and PostgreSQL implementations are interchangeable. All
// implementations return pkg/platform/sentinel errors for factual states.

// HashIndex maps content hashes to slots. Put is write-once: a second Put for
// the same hash returns sentinel.ErrConflict.
type HashIndex interface {
	Get(ctx context.Context, hash domain.ContentHash) (domain.SlotID, error)
	Put(ctx context.Context, hash domain.ContentHash, slot domain.SlotID) error
}

// RecordStore maps (slot, category) to a record, supporting multiple
// independent certificates per slot.
type RecordStore interface {
	Get(ctx context.Context, slot domain.SlotID, category domain.CategoryKey) (Record, error)
	Put(ctx context.Context, record Record) error
	Update(ctx context.Context, record Record) error
}

// SlotAllocator hands out strictly increasing, 1-based slots. Slots are never
// reused; exhaustion of the integer domain is treated as unreachable.
type SlotAllocator interface {
	Next(ctx context.Context) (domain.SlotID, error)
}
