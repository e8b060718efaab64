package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncLogin(OutcomeSuccess)
	m.IncLogin(OutcomeFailure)
	m.IncLogin(OutcomeFailure)
	m.IncRegistration(OutcomeSuccess)
	m.IncLogout()
	m.IncRateLimited("login")
	m.IncSessionExpired("idle")
	m.IncResourceCreated("profile")
	m.IncResourceDeleted("tag")
	m.ObserveRequestDuration(2 * time.Millisecond)

	snap := m.Snapshot()
	if snap.LoginSuccess != 1 || snap.LoginFailure != 2 {
		t.Errorf("login counters = %d/%d, want 1/2", snap.LoginSuccess, snap.LoginFailure)
	}
	if snap.RegistrationSuccess != 1 || snap.Logouts != 1 {
		t.Errorf("registration/logout = %d/%d, want 1/1", snap.RegistrationSuccess, snap.Logouts)
	}
	if snap.RateLimited["login"] != 1 || snap.SessionsExpired["idle"] != 1 {
		t.Errorf("labelled counters not recorded: %+v", snap)
	}
	if snap.ResourcesCreated["profile"] != 1 || snap.ResourcesDeleted["tag"] != 1 {
		t.Errorf("resource counters not recorded: %+v", snap)
	}
	if snap.RequestDurationCount != 1 || snap.RequestDurationNs != int64(2*time.Millisecond) {
		t.Errorf("duration = %d/%d", snap.RequestDurationCount, snap.RequestDurationNs)
	}
}

func TestInMemoryRecorder_SnapshotIsCopy(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncRateLimited("register")
	snap := m.Snapshot()
	snap.RateLimited["register"] = 99

	if got := m.Snapshot().RateLimited["register"]; got != 1 {
		t.Errorf("snapshot mutation leaked into recorder: %d", got)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncResourceCreated("transaction")
			m.IncLogin(OutcomeFailure)
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.ResourcesCreated["transaction"] != 100 || snap.LoginFailure != 100 {
		t.Errorf("lost updates: %+v", snap)
	}
}
