package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	m := NewInMemory()

	m.IncProductCreated()
	m.IncProductCreated()
	m.IncProductDeleted()
	m.IncSearchPerformed()
	m.IncUserRegistered()
	m.IncAuthFailure()
	m.ObserveCatalogReadDuration(25 * time.Millisecond)

	snap := m.Snapshot()

	if snap.ProductsCreated != 2 {
		t.Errorf("expected 2 products created, got %d", snap.ProductsCreated)
	}
	if snap.ProductsDeleted != 1 {
		t.Errorf("expected 1 product deleted, got %d", snap.ProductsDeleted)
	}
	if snap.SearchesPerformed != 1 {
		t.Errorf("expected 1 search, got %d", snap.SearchesPerformed)
	}
	if snap.UsersRegistered != 1 {
		t.Errorf("expected 1 registration, got %d", snap.UsersRegistered)
	}
	if snap.AuthFailures != 1 {
		t.Errorf("expected 1 auth failure, got %d", snap.AuthFailures)
	}
	if snap.CatalogReadCount != 1 {
		t.Errorf("expected 1 catalog read, got %d", snap.CatalogReadCount)
	}
	if snap.CatalogReadTotalNs != (25 * time.Millisecond).Nanoseconds() {
		t.Errorf("unexpected catalog read total: %d", snap.CatalogReadTotalNs)
	}
}

func TestInMemoryRecorder_ConcurrentIncrements(t *testing.T) {
	m := NewInMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncProductCreated()
			m.IncAuthFailure()
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.ProductsCreated != 50 {
		t.Errorf("expected 50 products created, got %d", snap.ProductsCreated)
	}
	if snap.AuthFailures != 50 {
		t.Errorf("expected 50 auth failures, got %d", snap.AuthFailures)
	}
}
