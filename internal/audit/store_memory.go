package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps audit events in process memory. It backs tests and
// single-node deployments without Postgres.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
	byHash map[string][]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byHash: make(map[string][]int)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if event.ContentHash != "" {
		s.byHash[event.ContentHash] = append(s.byHash[event.ContentHash], len(s.events)-1)
	}
	return nil
}

func (s *InMemoryStore) ListByContentHash(_ context.Context, contentHash string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idxs := s.byHash[contentHash]
	out := make([]Event, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.events[i])
	}
	return out, nil
}

// All returns every stored event in append order. Test helper.
func (s *InMemoryStore) All() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...)
}
