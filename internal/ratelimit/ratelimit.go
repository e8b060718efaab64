// Package ratelimit implements sliding-window attempt limiting per identifier.
//
// Each identifier (for example "login:<ip>:<username>") owns an ordered list of
// attempt timestamps. A check prunes timestamps that left the window, denies
// when the list is full, and otherwise records the attempt. Check and record
// happen atomically for a given identifier.
package ratelimit

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
)

// ErrInvalidLimit is returned when a check is made with a non-positive limit or window.
var ErrInvalidLimit = errors.New("rate limit: max attempts and window must be positive")

// ErrCapacity is returned by Memory when a new identifier cannot be tracked
// without dropping a bucket that is currently locked out.
var ErrCapacity = errors.New("rate limit: tracking capacity exhausted")

// Result is the outcome of a single check.
type Result struct {
	Allowed bool
	// Remaining is the number of attempts still admissible in the current window.
	Remaining int
	// RetryAfter is zero when Allowed is true.
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds for the Retry-After header.
func (r Result) RetryAfterSeconds() int {
	if r.RetryAfter <= 0 {
		return 0
	}
	return int(math.Ceil(r.RetryAfter.Seconds()))
}

// Limiter decides whether another attempt for identifier is admitted.
type Limiter interface {
	Check(ctx context.Context, identifier string, maxAttempts int, window time.Duration) (Result, error)
}

// Policy is a named limit applied to one class of requests.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
}

// Identifier joins key parts with ':' so different endpoints never share a bucket.
func Identifier(parts ...string) string {
	return strings.Join(parts, ":")
}

// decide applies the sliding-window rule to attempts, which must be sorted
// ascending. It returns the pruned slice (with now appended when allowed).
func decide(attempts []time.Time, now time.Time, maxAttempts int, window time.Duration) ([]time.Time, Result) {
	cutoff := now.Add(-window)
	i := 0
	for i < len(attempts) && !attempts[i].After(cutoff) {
		i++
	}
	if i > 0 {
		attempts = append(attempts[:0], attempts[i:]...)
	}

	if len(attempts) >= maxAttempts {
		retry := window - now.Sub(attempts[0])
		if retry < 0 {
			retry = 0
		}
		return attempts, Result{Allowed: false, Remaining: 0, RetryAfter: retry}
	}

	attempts = append(attempts, now)
	return attempts, Result{Allowed: true, Remaining: maxAttempts - len(attempts)}
}
