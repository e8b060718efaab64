// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Login outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Authentication metrics
	IncLogin(outcome string)
	IncRegistration(outcome string)
	IncRateLimited(endpoint string)
	IncSessionExpired(reason string)
	IncLogout()

	// Ledger metrics, keyed by resource kind
	IncResourceCreated(kind string)
	IncResourceDeleted(kind string)

	// HTTP metrics
	ObserveRequestDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
