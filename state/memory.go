package state

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. It serializes transactions with a
// mutex, so Update never observes a conflict. Intended for tests and
// single-process hosts without durability requirements.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Update implements Store.
func (s *MemoryStore) Update(ctx context.Context, id string, fn func(ctx context.Context, tx Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTxn{store: s, id: id}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

// memoryTxn stages at most one write or delete; commit applies it while
// the store mutex is still held.
type memoryTxn struct {
	store   *MemoryStore
	id      string
	put     *Record
	deleted bool
}

func (t *memoryTxn) Get(ctx context.Context) (*Record, error) {
	if t.deleted {
		return nil, nil
	}
	if t.put != nil {
		rec := *t.put
		return &rec, nil
	}
	rec, ok := t.store.records[t.id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (t *memoryTxn) Put(ctx context.Context, rec Record) error {
	rec.ID = t.id
	t.put = &rec
	t.deleted = false
	return nil
}

func (t *memoryTxn) Delete(ctx context.Context) error {
	t.put = nil
	t.deleted = true
	return nil
}

func (t *memoryTxn) commit() {
	switch {
	case t.deleted:
		delete(t.store.records, t.id)
	case t.put != nil:
		t.store.records[t.id] = *t.put
	}
}
