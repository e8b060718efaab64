package cache

import (
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestHashKey_Deterministic(t *testing.T) {
	t.Parallel()

	id := "login:192.168.1.100:alice"
	if hashKey(id) != hashKey(id) {
		t.Error("Same identifier should produce same hash")
	}
}

func TestHashKey_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"login identifier", "login:192.168.1.1:alice"},
		{"register identifier", "register:127.0.0.1"},
		{"IPv6", "register:2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := len(hashKey(tt.in)); got != 32 {
				t.Errorf("hashKey(%q) length = %d, want 32", tt.in, got)
			}
		})
	}
}

func TestHashKey_HidesRawIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    string
		b    string
	}{
		{"different users same ip", "login:10.0.0.1:alice", "login:10.0.0.1:bob"},
		{"different endpoints", "login:10.0.0.1", "register:10.0.0.1"},
		{"IPv4 vs IPv6", "register:127.0.0.1", "register:::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if hashKey(tt.a) == hashKey(tt.b) {
				t.Errorf("%q and %q produced the same key", tt.a, tt.b)
			}
		})
	}
}

func TestCache_KeyNamespace(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	def := NewFromClient(client)
	if got := def.key(sessionPrefix, "abc"); got != "ft:session:abc" {
		t.Errorf("default key = %q", got)
	}

	custom := NewFromClient(client, WithNamespace("staging:"))
	if got := custom.key(rateLimitPrefix, "x"); got != "staging:ratelimit:x" {
		t.Errorf("custom key = %q", got)
	}
}
