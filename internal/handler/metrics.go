package handler

import (
	"fmt"
	"maps"
	"net/http"
	"slices"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/metrics"
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

	writeMetric(w, "finance_logins_total{outcome=\"success\"} %d\n", snap.LoginSuccess)
	writeMetric(w, "finance_logins_total{outcome=\"failure\"} %d\n", snap.LoginFailure)
	writeMetric(w, "finance_registrations_total{outcome=\"success\"} %d\n", snap.RegistrationSuccess)
	writeMetric(w, "finance_registrations_total{outcome=\"failure\"} %d\n", snap.RegistrationFailure)
	writeMetric(w, "finance_logouts_total %d\n", snap.Logouts)

	writeLabeled(w, "finance_rate_limited_total", "endpoint", snap.RateLimited)
	writeLabeled(w, "finance_sessions_expired_total", "reason", snap.SessionsExpired)
	writeLabeled(w, "finance_resources_created_total", "kind", snap.ResourcesCreated)
	writeLabeled(w, "finance_resources_deleted_total", "kind", snap.ResourcesDeleted)

	writeMetric(w, "finance_http_request_duration_seconds_count %d\n", snap.RequestDurationCount)
	writeMetric(w, "finance_http_request_duration_seconds_sum %.6f\n", float64(snap.RequestDurationNs)/1e9)
}

func writeLabeled(w http.ResponseWriter, name, label string, values map[string]uint64) {
	for _, key := range slices.Sorted(maps.Keys(values)) {
		writeMetric(w, "%s{%s=%q} %d\n", name, label, key, values[key])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
