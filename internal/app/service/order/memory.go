package order

import (
	"context"
	"sync"

	"github.com/DFXswiss/dfx-gateway/internal/models"
)

// MemoryStore implements Store in memory with the same compare-and-swap
// semantics as the gorm store. Used by tests and local development.
type MemoryStore struct {
	mu     sync.Mutex
	orders map[int64]*models.Order
	notes  map[int64][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[int64]*models.Order),
		notes:  make(map[int64][]string),
	}
}

func (s *MemoryStore) Put(o *models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.orders[o.ID] = &cp
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id int64, from, to models.OrderStatus, note string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return false, ErrNotFound
	}
	if o.Status != from {
		return false, nil
	}
	o.Status = to
	if note != "" {
		s.notes[id] = append(s.notes[id], note)
	}
	return true, nil
}

func (s *MemoryStore) AppendNote(ctx context.Context, id int64, note string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return ErrNotFound
	}
	s.notes[id] = append(s.notes[id], note)
	return nil
}

// Notes returns a copy of the audit notes recorded for an order.
func (s *MemoryStore) Notes(id int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notes[id]...)
}
