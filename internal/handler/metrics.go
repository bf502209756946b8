package handler

import (
	"fmt"
	"net/http"

	"github.com/jooba/jooba/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "jooba_products_created_total %d\n", snap.ProductsCreated)
	writeMetric(w, "jooba_products_updated_total %d\n", snap.ProductsUpdated)
	writeMetric(w, "jooba_products_deleted_total %d\n", snap.ProductsDeleted)

	writeMetric(w, "jooba_searches_total %d\n", snap.SearchesPerformed)
	writeMetric(w, "jooba_catalog_read_duration_seconds_count %d\n", snap.CatalogReadCount)
	writeMetric(w, "jooba_catalog_read_duration_seconds_sum %.6f\n", float64(snap.CatalogReadTotalNs)/1e9)

	writeMetric(w, "jooba_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "jooba_auth_failures_total %d\n", snap.AuthFailures)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
