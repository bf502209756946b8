package store

import (
	"context"
	"sort"
	"sync"

	"github.com/jooba/jooba/internal/model"
)

// Memory is an in-process catalog backend for tests and dev runs.
// It mirrors the remote store's semantics: no ownership checks, field
// merge on update, last write wins.
type Memory struct {
	mu       sync.RWMutex
	products map[string]model.Product
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{products: make(map[string]model.Product)}
}

// Get returns a single product by id.
func (m *Memory) Get(ctx context.Context, id string) (*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// List returns the whole catalog in id order.
func (m *Memory) List(ctx context.Context) ([]*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.products))
	for id := range m.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*model.Product, 0, len(ids))
	for _, id := range ids {
		p := m.products[id]
		out = append(out, &p)
	}
	return out, nil
}

// Push stores a new product under a generated key.
func (m *Memory) Push(ctx context.Context, p *model.Product) (string, error) {
	id := NewKey()

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *p
	stored.ID = id
	m.products[id] = stored
	return id, nil
}

// Update merges fields into one product.
func (m *Memory) Update(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}

	applyFields(&p, fields)
	m.products[id] = p
	return nil
}

// Delete removes one product.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

// Ping always succeeds; the backend is in-process.
func (m *Memory) Ping(ctx context.Context) error {
	return nil
}
