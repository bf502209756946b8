package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (NoopRecorder) IncProductCreated()                       {}
func (NoopRecorder) IncProductUpdated()                       {}
func (NoopRecorder) IncProductDeleted()                       {}
func (NoopRecorder) IncSearchPerformed()                      {}
func (NoopRecorder) ObserveCatalogReadDuration(time.Duration) {}
func (NoopRecorder) IncUserRegistered()                       {}
func (NoopRecorder) IncAuthFailure()                          {}
