package store

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]*Record)}
}

func clone(r *Record) *Record {
	c := *r
	c.Data = maps.Clone(r.Data)
	return &c
}

func (m *MemoryStore) Put(_ context.Context, r *Record) error {
	if err := prepare(r); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	coll, ok := m.data[r.Collection]
	if !ok {
		coll = make(map[string]*Record)
		m.data[r.Collection] = coll
	}
	coll[r.ID] = clone(r)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, collection, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(r), nil
}

func (m *MemoryStore) List(_ context.Context, collection string, limit int) ([]*Record, error) {
	m.mu.RLock()
	recs := make([]*Record, 0, len(m.data[collection]))
	for _, r := range m.data[collection] {
		recs = append(recs, clone(r))
	}
	m.mu.RUnlock()
	return newestFirst(recs, limit), nil
}

func (m *MemoryStore) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.data[collection], id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
