package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ProductsCreated    uint64
	ProductsUpdated    uint64
	ProductsDeleted    uint64
	SearchesPerformed  uint64
	CatalogReadCount   uint64
	CatalogReadTotalNs int64
	UsersRegistered    uint64
	AuthFailures       uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	productsCreated    uint64
	productsUpdated    uint64
	productsDeleted    uint64
	searchesPerformed  uint64
	catalogReadCount   uint64
	catalogReadTotalNs int64
	usersRegistered    uint64
	authFailures       uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		ProductsCreated:    atomic.LoadUint64(&m.productsCreated),
		ProductsUpdated:    atomic.LoadUint64(&m.productsUpdated),
		ProductsDeleted:    atomic.LoadUint64(&m.productsDeleted),
		SearchesPerformed:  atomic.LoadUint64(&m.searchesPerformed),
		CatalogReadCount:   atomic.LoadUint64(&m.catalogReadCount),
		CatalogReadTotalNs: atomic.LoadInt64(&m.catalogReadTotalNs),
		UsersRegistered:    atomic.LoadUint64(&m.usersRegistered),
		AuthFailures:       atomic.LoadUint64(&m.authFailures),
	}
}

// IncProductCreated increments the product created counter.
func (m *InMemoryRecorder) IncProductCreated() {
	atomic.AddUint64(&m.productsCreated, 1)
}

// IncProductUpdated increments the product updated counter.
func (m *InMemoryRecorder) IncProductUpdated() {
	atomic.AddUint64(&m.productsUpdated, 1)
}

// IncProductDeleted increments the product deleted counter.
func (m *InMemoryRecorder) IncProductDeleted() {
	atomic.AddUint64(&m.productsDeleted, 1)
}

// IncSearchPerformed increments the search counter.
func (m *InMemoryRecorder) IncSearchPerformed() {
	atomic.AddUint64(&m.searchesPerformed, 1)
}

// ObserveCatalogReadDuration records a whole-catalog read.
func (m *InMemoryRecorder) ObserveCatalogReadDuration(duration time.Duration) {
	atomic.AddUint64(&m.catalogReadCount, 1)
	atomic.AddInt64(&m.catalogReadTotalNs, duration.Nanoseconds())
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncAuthFailure increments the failed-authentication counter.
func (m *InMemoryRecorder) IncAuthFailure() {
	atomic.AddUint64(&m.authFailures, 1)
}
