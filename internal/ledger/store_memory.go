package ledger

import (
	"context"
	"sync"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
	"github.com/MandalaChain/E-Certificate/pkg/platform/sentinel"
)

// In-memory stores keep tests and single-node deployments lightweight. They
// intentionally favor clarity over performance.

type InMemoryHashIndex struct {
	mu    sync.RWMutex
	slots map[domain.ContentHash]domain.SlotID
}

func NewInMemoryHashIndex() *InMemoryHashIndex {
	return &InMemoryHashIndex{slots: make(map[domain.ContentHash]domain.SlotID)}
}

func (s *InMemoryHashIndex) Get(_ context.Context, hash domain.ContentHash) (domain.SlotID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if slot, ok := s.slots[hash]; ok {
		return slot, nil
	}
	return domain.SlotAbsent, sentinel.ErrNotFound
}

func (s *InMemoryHashIndex) Put(_ context.Context, hash domain.ContentHash, slot domain.SlotID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[hash]; ok {
		return sentinel.ErrConflict
	}
	s.slots[hash] = slot
	return nil
}

type recordKey struct {
	slot     domain.SlotID
	category domain.CategoryKey
}

type InMemoryRecordStore struct {
	mu      sync.RWMutex
	records map[recordKey]Record
}

func NewInMemoryRecordStore() *InMemoryRecordStore {
	return &InMemoryRecordStore{records: make(map[recordKey]Record)}
}

func (s *InMemoryRecordStore) Get(_ context.Context, slot domain.SlotID, category domain.CategoryKey) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.records[recordKey{slot: slot, category: category}]; ok {
		return record, nil
	}
	return Record{}, sentinel.ErrNotFound
}

func (s *InMemoryRecordStore) Put(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey{slot: record.Slot, category: record.Category}
	if _, ok := s.records[key]; ok {
		return sentinel.ErrConflict
	}
	s.records[key] = record
	return nil
}

func (s *InMemoryRecordStore) Update(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey{slot: record.Slot, category: record.Category}
	if _, ok := s.records[key]; !ok {
		return sentinel.ErrNotFound
	}
	s.records[key] = record
	return nil
}

type InMemorySlotAllocator struct {
	mu   sync.Mutex
	next domain.SlotID
}

func NewInMemorySlotAllocator() *InMemorySlotAllocator {
	return &InMemorySlotAllocator{next: 1}
}

func (a *InMemorySlotAllocator) Next(_ context.Context) (domain.SlotID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	slot := a.next
	a.next++
	return slot, nil
}
