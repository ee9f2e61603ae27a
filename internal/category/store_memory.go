package category

import (
	"context"
	"sync"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
	"github.com/MandalaChain/E-Certificate/pkg/platform/sentinel"
)

// InMemoryStore keeps the category allowlist in process memory.
type InMemoryStore struct {
	mu       sync.RWMutex
	approved map[domain.CategoryKey]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{approved: make(map[domain.CategoryKey]bool)}
}

func (s *InMemoryStore) Approve(_ context.Context, key domain.CategoryKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.approved[key] {
		return sentinel.ErrConflict
	}
	s.approved[key] = true
	return nil
}

func (s *InMemoryStore) IsApproved(_ context.Context, key domain.CategoryKey) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.approved[key], nil
}
