// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Catalog mutation metrics
	IncProductCreated()
	IncProductUpdated()
	IncProductDeleted()

	// Catalog read metrics
	IncSearchPerformed()
	ObserveCatalogReadDuration(duration time.Duration)

	// Identity metrics
	IncUserRegistered()
	IncAuthFailure()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
