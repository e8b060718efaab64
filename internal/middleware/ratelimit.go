package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/auth"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/metrics"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/ratelimit"
)

// RateLimitConfig holds configuration for an auth endpoint limiter.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter ratelimit.Limiter
	Metrics metrics.Recorder
	Enabled bool
	// Endpoint labels logs and metrics, e.g. "login".
	Endpoint string
	Policy   ratelimit.Policy
	// Key derives the bucket identifier from the request. An error aborts
	// the request before any attempt is recorded.
	Key func(r *http.Request) (string, error)
}

// RateLimit returns middleware that admits at most Policy.MaxAttempts
// requests per identifier in any sliding Policy.Window. The attempt is
// recorded before the handler checks credentials. Limiter failures fail
// closed with 503.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			identifier, err := cfg.Key(r)
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
					return
				}
				writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body could not be read")
				return
			}

			result, err := cfg.Limiter.Check(r.Context(), identifier, cfg.Policy.MaxAttempts, cfg.Policy.Window)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("endpoint", cfg.Endpoint),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE",
					"Service temporarily unavailable. Please try again later.")
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Policy.MaxAttempts))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

			if !result.Allowed {
				retry := result.RetryAfterSeconds()
				cfg.Metrics.IncRateLimited(cfg.Endpoint)
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("endpoint", cfg.Endpoint),
					slog.String("ip", clientIP(r)),
					slog.Int("retry_after_seconds", retry),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED",
					fmt.Sprintf("Too many attempts. Please try again in %d seconds.", retry))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoginKey buckets login attempts per client IP and submitted username.
// The body is restored for the handler. A malformed body yields an empty
// username so the attempt still counts against the IP.
func LoginKey(r *http.Request) (string, error) {
	body, err := peekBody(r)
	if err != nil {
		return "", err
	}
	var peek struct {
		Username string `json:"username"`
	}
	if len(body) > 0 {
		_ = json.Unmarshal(body, &peek)
	}
	return ratelimit.Identifier("login", clientIP(r), auth.SanitizeString(peek.Username)), nil
}

// RegisterKey buckets registration attempts per client IP only.
func RegisterKey(r *http.Request) (string, error) {
	return ratelimit.Identifier("register", clientIP(r)), nil
}

// peekBody reads the request body and replaces it with an identical reader.
// Read failures, including the MaxBodySize limit, are returned.
func peekBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// clientIP returns the host part of RemoteAddr. RemoteAddr is the socket
// peer unless chi's RealIP runs first, which main only mounts when
// TRUST_PROXY is set.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
