package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	const (
		lengthReason = "Username must be between 3 and 80 characters"
		charsReason  = "Username can only contain letters, numbers, underscores, and hyphens"
	)

	tests := []struct {
		name   string
		input  string
		ok     bool
		reason string
	}{
		{"simple", "alice", true, ""},
		{"min length", "bob", true, ""},
		{"max length", strings.Repeat("a", 80), true, ""},
		{"underscore and hyphen", "a_b-c", true, ""},
		{"too short", "ab", false, lengthReason},
		{"empty", "", false, lengthReason},
		{"too long", strings.Repeat("a", 81), false, lengthReason},
		{"space", "al ice", false, charsReason},
		{"dot", "al.ice", false, charsReason},
		{"non ascii letter", "aliçe", false, charsReason},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ok, reason := ValidateUsername(tt.input)
			if ok != tt.ok || reason != tt.reason {
				t.Errorf("ValidateUsername(%q) = (%v, %q), want (%v, %q)", tt.input, ok, reason, tt.ok, tt.reason)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		ok    bool
	}{
		{"a@example.com", true},
		{"first.last+tag@sub.example.co", true},
		{"a@example", false},
		{"a@example.c", false},
		{"@example.com", false},
		{"a example@example.com", false},
		{"", false},
		{strings.Repeat("a", 115) + "@x.com", false},
	}

	for _, tt := range tests {
		if ok, _ := ValidateEmail(tt.input); ok != tt.ok {
			t.Errorf("ValidateEmail(%q) = %v, want %v", tt.input, ok, tt.ok)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		ok     bool
		reason string
	}{
		{"strong", "Secret123", true, ""},
		{"short", "Ab1", false, "Password must be at least 8 characters long"},
		{"seven chars", "Abcdef1", false, "Password must be at least 8 characters long"},
		{"too long", "Aa1" + strings.Repeat("x", 126), false, "Password must be less than 128 characters"},
		{"no upper", "secret123", false, "Password must contain at least one uppercase letter"},
		{"no lower", "SECRET123", false, "Password must contain at least one lowercase letter"},
		{"no digit", "SecretPass", false, "Password must contain at least one number"},
		{"max length", "Aa1" + strings.Repeat("x", 125), true, ""},
		{"non-ASCII upper only", "Ébcdefg1", false, "Password must contain at least one uppercase letter"},
		{"non-ASCII lower only", "ABCDÉFG1", false, "Password must contain at least one lowercase letter"},
		{"non-ASCII letters alongside ASCII", "Éclair9x", false, "Password must contain at least one uppercase letter"},
		{"non-ASCII extra characters", "Crème123", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ok, reason := ValidatePassword(tt.input)
			if ok != tt.ok || reason != tt.reason {
				t.Errorf("ValidatePassword(%q) = (%v, %q), want (%v, %q)", tt.input, ok, reason, tt.ok, tt.reason)
			}
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	t.Parallel()

	if err := ValidateCredentials("alice", "alice@example.com", "Secret123"); err != nil {
		t.Fatalf("valid credentials rejected: %v", err)
	}

	err := ValidateCredentials("al", "alice@example.com", "Secret123")
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "username" || !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("short username: got %v", err)
	}

	err = ValidateCredentials("alice", "nope", "Secret123")
	if !errors.As(err, &verr) || verr.Field != "email" || !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("bad email: got %v", err)
	}

	err = ValidateCredentials("alice", "alice@example.com", "secret")
	if !errors.As(err, &verr) || verr.Field != "password" || !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak password: got %v", err)
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	if got := Sanitize("  alice \n"); got != "alice" {
		t.Errorf("Sanitize(string) = %q, want %q", got, "alice")
	}
	if got := Sanitize(42); got != 42 {
		t.Errorf("Sanitize(int) = %v, want 42", got)
	}
	if got := Sanitize(nil); got != nil {
		t.Errorf("Sanitize(nil) = %v, want nil", got)
	}
	// Markup is not neutralized.
	if got := SanitizeString(" <b>x</b> "); got != "<b>x</b>" {
		t.Errorf("SanitizeString = %q", got)
	}
}
