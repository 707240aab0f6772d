package product

import (
	"context"
	"sync"
)

// MemStore keeps products in insertion order. Lookups are linear scans.
type MemStore struct {
	mu    sync.Mutex
	items []Product
}

func NewMemStore() *MemStore {
	return &MemStore{items: make([]Product, 0, 16)}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Product, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemStore) Len(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items), nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, false, nil
	}
	return s.items[i], true, nil
}

func (s *MemStore) Append(ctx context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(p.ID) >= 0 {
		return ErrDuplicateID
	}
	s.items = append(s.items, p)
	return nil
}

func (s *MemStore) Update(ctx context.Context, id string, merge MergeFunc) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, ErrNotFound
	}

	next, err := merge(s.items[i])
	if err != nil {
		return Product{}, err
	}
	next.ID = s.items[i].ID

	s.items[i] = next
	return next, nil
}

func (s *MemStore) Delete(ctx context.Context, id string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, ErrNotFound
	}
	return s.removeAt(i), nil
}

// callers hold s.mu
func (s *MemStore) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *MemStore) removeAt(i int) Product {
	p := s.items[i]
	copy(s.items[i:], s.items[i+1:])
	s.items[len(s.items)-1] = Product{}
	s.items = s.items[:len(s.items)-1]
	return p
}
