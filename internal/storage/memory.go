package storage

import (
	"context"
	"sync"

	"github.com/pfrederiksen/campus-events/internal/event"
)

// MemoryStore keeps the snapshot in process memory. It does not survive restarts.
type MemoryStore struct {
	mu   sync.Mutex
	snap *event.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) (*event.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap, nil
}

func (s *MemoryStore) Save(_ context.Context, snap *event.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = nil
	return nil
}
