package contentstore

import (
	"context"
	"fmt"
	"sync"

	"hackerbrief/internal/model"
)

type memKey struct {
	sourceID int64
	kind     model.ContentKind
}

// MemoryStore is an in-process Store used in tests and local development.
// Counts are exact.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[memKey][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[memKey][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, sourceID int64, kind model.ContentKind, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := make([]byte, len(payload))
	copy(b, payload)
	s.data[memKey{sourceID, kind}] = b
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sourceID int64, kind model.ContentKind) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[memKey{sourceID, kind}]
	if !ok {
		return nil, fmt.Errorf("%w: %d/%s", ErrNotFound, sourceID, kind)
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (s *MemoryStore) Exists(_ context.Context, sourceID int64, kind model.ContentKind) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[memKey{sourceID, kind}]
	return ok, nil
}

func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := Stats{PerKind: make(map[model.ContentKind]int64, len(model.Kinds()))}
	for k := range s.data {
		out.PerKind[k.kind]++
		out.TotalKeys++
	}
	return out, nil
}
