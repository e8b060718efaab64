package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncLogin(string)                      {}
func (n *NoopRecorder) IncRegistration(string)               {}
func (n *NoopRecorder) IncRateLimited(string)                {}
func (n *NoopRecorder) IncSessionExpired(string)             {}
func (n *NoopRecorder) IncLogout()                           {}
func (n *NoopRecorder) IncResourceCreated(string)            {}
func (n *NoopRecorder) IncResourceDeleted(string)            {}
func (n *NoopRecorder) ObserveRequestDuration(time.Duration) {}
