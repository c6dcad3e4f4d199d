package records

import (
	"context"
	"slices"
	"sync"

	"github.com/pixil98/go-mudmaze/internal/game"
)

// MemoryStore keeps the log in process. It is what runs when no database is
// configured.
type MemoryStore struct {
	mu      sync.Mutex
	records []game.EscapeRecord
	closed  bool
}

func NewMemoryStore(seed ...game.EscapeRecord) *MemoryStore {
	return &MemoryStore{records: slices.Clone(seed)}
}

func (s *MemoryStore) Load(context.Context) ([]game.EscapeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return slices.Clone(s.records), nil
}

func (s *MemoryStore) Append(_ context.Context, rec game.EscapeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
