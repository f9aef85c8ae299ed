package killswitch

import (
	"context"
	"sync"
)

// MemoryStore keeps the record in process. Deployments wanting the switch
// to survive restarts or be visible to the operator CLI use the sqlite
// store instead.
type MemoryStore struct {
	mu      sync.Mutex
	rec     Record
	history []Transition
	nextID  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rec: Record{State: StateActive}, nextID: 1}
}

func (s *MemoryStore) Load(_ context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec, nil
}

func (s *MemoryStore) Save(_ context.Context, rec Record, expect int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec.Version != expect {
		return ErrVersionConflict
	}
	s.rec = rec
	return nil
}

func (s *MemoryStore) AppendHistory(_ context.Context, tr Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr.ID = s.nextID
	s.nextID++
	s.history = append(s.history, tr)
	return nil
}

func (s *MemoryStore) History(_ context.Context, limit int) ([]Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.history)
	if limit > n {
		limit = n
	}
	out := make([]Transition, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.history[i])
	}
	return out, nil
}
