package middleware

import (
	"strings"
	"testing"
)

func TestValidResourceID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"ulid", "01HZX3K9V4Q2M8N7P6R5S4T3W2", true},
		{"uuid", "5f0c2d0e-8a7b-4c1d-9e2f-3a4b5c6d7e8f", true},
		{"underscore", "txn_1", true},
		{"empty", "", false},
		{"too long", strings.Repeat("a", MaxResourceIDLength+1), false},
		{"max length", strings.Repeat("a", MaxResourceIDLength), true},
		{"slash", "abc/def", false},
		{"dot dot", "..", false},
		{"space", "abc def", false},
		{"sql", "1' OR '1'='1", false},
		{"unicode letter", "café", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidResourceID(tt.id); got != tt.want {
				t.Errorf("ValidResourceID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
