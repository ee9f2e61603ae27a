package rbac

import (
	"context"
	"sync"

	"github.com/MandalaChain/E-Certificate/pkg/domain"
)

type membershipKey struct {
	identity domain.Identity
	role     domain.Role
}

// InMemoryStore keeps role membership in process memory.
type InMemoryStore struct {
	mu      sync.RWMutex
	members map[membershipKey]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{members: make(map[membershipKey]bool)}
}

func (s *InMemoryStore) Grant(_ context.Context, identity domain.Identity, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[membershipKey{identity: identity, role: role}] = true
	return nil
}

func (s *InMemoryStore) Revoke(_ context.Context, identity domain.Identity, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, membershipKey{identity: identity, role: role})
	return nil
}

func (s *InMemoryStore) Has(_ context.Context, identity domain.Identity, role domain.Role) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members[membershipKey{identity: identity, role: role}], nil
}
