package relay

import (
	"context"
	"sync"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
	"github.com/MandalaChain/E-Certificate/pkg/platform/sentinel"
)

// InMemoryNonceStore keeps relay nonces in process memory.
type InMemoryNonceStore struct {
	mu     sync.Mutex
	nonces map[domain.Identity]uint64
}

func NewInMemoryNonceStore() *InMemoryNonceStore {
	return &InMemoryNonceStore{nonces: make(map[domain.Identity]uint64)}
}

func (s *InMemoryNonceStore) Current(_ context.Context, identity domain.Identity) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nonces[identity], nil
}

func (s *InMemoryNonceStore) Advance(_ context.Context, identity domain.Identity, expected uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nonces[identity] != expected {
		return sentinel.ErrConflict
	}
	s.nonces[identity] = expected + 1
	return nil
}
