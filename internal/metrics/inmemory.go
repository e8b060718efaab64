package metrics

import (
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoginSuccess         uint64
	LoginFailure         uint64
	RegistrationSuccess  uint64
	RegistrationFailure  uint64
	Logouts              uint64
	RateLimited          map[string]uint64
	SessionsExpired      map[string]uint64
	ResourcesCreated     map[string]uint64
	ResourcesDeleted     map[string]uint64
	RequestDurationCount uint64
	RequestDurationNs    int64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	loginSuccess        uint64
	loginFailure        uint64
	registrationSuccess uint64
	registrationFailure uint64
	logouts             uint64
	requestCount        uint64
	requestTotalNs      int64

	mu      sync.Mutex
	limited map[string]uint64
	expired map[string]uint64
	created map[string]uint64
	deleted map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		limited: make(map[string]uint64),
		expired: make(map[string]uint64),
		created: make(map[string]uint64),
		deleted: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		LoginSuccess:         atomic.LoadUint64(&m.loginSuccess),
		LoginFailure:         atomic.LoadUint64(&m.loginFailure),
		RegistrationSuccess:  atomic.LoadUint64(&m.registrationSuccess),
		RegistrationFailure:  atomic.LoadUint64(&m.registrationFailure),
		Logouts:              atomic.LoadUint64(&m.logouts),
		RateLimited:          maps.Clone(m.limited),
		SessionsExpired:      maps.Clone(m.expired),
		ResourcesCreated:     maps.Clone(m.created),
		ResourcesDeleted:     maps.Clone(m.deleted),
		RequestDurationCount: atomic.LoadUint64(&m.requestCount),
		RequestDurationNs:    atomic.LoadInt64(&m.requestTotalNs),
	}
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(outcome string) {
	if outcome == OutcomeSuccess {
		atomic.AddUint64(&m.loginSuccess, 1)
		return
	}
	atomic.AddUint64(&m.loginFailure, 1)
}

// IncRegistration counts a registration attempt by outcome.
func (m *InMemoryRecorder) IncRegistration(outcome string) {
	if outcome == OutcomeSuccess {
		atomic.AddUint64(&m.registrationSuccess, 1)
		return
	}
	atomic.AddUint64(&m.registrationFailure, 1)
}

// IncLogout counts an explicit logout.
func (m *InMemoryRecorder) IncLogout() {
	atomic.AddUint64(&m.logouts, 1)
}

// IncRateLimited counts a denied attempt per endpoint.
func (m *InMemoryRecorder) IncRateLimited(endpoint string) {
	m.inc(m.limited, endpoint)
}

// IncSessionExpired counts sessions rejected as expired, by reason.
func (m *InMemoryRecorder) IncSessionExpired(reason string) {
	m.inc(m.expired, reason)
}

// IncResourceCreated counts created ledger resources per kind.
func (m *InMemoryRecorder) IncResourceCreated(kind string) {
	m.inc(m.created, kind)
}

// IncResourceDeleted counts deleted ledger resources per kind.
func (m *InMemoryRecorder) IncResourceDeleted(kind string) {
	m.inc(m.deleted, kind)
}

// ObserveRequestDuration records an HTTP request duration.
func (m *InMemoryRecorder) ObserveRequestDuration(duration time.Duration) {
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddInt64(&m.requestTotalNs, duration.Nanoseconds())
}

func (m *InMemoryRecorder) inc(counter map[string]uint64, label string) {
	m.mu.Lock()
	counter[label]++
	m.mu.Unlock()
}
