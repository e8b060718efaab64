package auth

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrInvalidFormat marks a username or email that does not have the required shape.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrWeakPassword marks a password that fails the strength rules.
	ErrWeakPassword = errors.New("weak password")
)

const (
	usernameMinLen = 3
	usernameMaxLen = 80
	emailMaxLen    = 120
	passwordMinLen = 8
	passwordMaxLen = 128
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidationError carries the field and the human-readable reason a credential was rejected.
// The reason is safe to show to clients.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateUsername requires 3 to 80 characters from [A-Za-z0-9_-].
func ValidateUsername(s string) (bool, string) {
	n := utf8.RuneCountInString(s)
	if n < usernameMinLen || n > usernameMaxLen {
		return false, "Username must be between 3 and 80 characters"
	}
	for _, r := range s {
		if !isUsernameRune(r) {
			return false, "Username can only contain letters, numbers, underscores, and hyphens"
		}
	}
	return true, ""
}

// ValidateEmail requires local@domain.tld with a TLD of two or more letters.
func ValidateEmail(s string) (bool, string) {
	if len(s) > emailMaxLen {
		return false, "Email must be at most 120 characters"
	}
	if !emailRegex.MatchString(s) {
		return false, "Invalid email format"
	}
	return true, ""
}

// ValidatePassword requires 8 to 128 characters with at least one ASCII
// uppercase letter, one ASCII lowercase letter and one decimal digit.
// Non-ASCII letters are allowed but do not satisfy the letter classes.
func ValidatePassword(s string) (bool, string) {
	n := utf8.RuneCountInString(s)
	if n < passwordMinLen {
		return false, "Password must be at least 8 characters long"
	}
	if n > passwordMaxLen {
		return false, "Password must be less than 128 characters"
	}

	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	if !upper {
		return false, "Password must contain at least one uppercase letter"
	}
	if !lower {
		return false, "Password must contain at least one lowercase letter"
	}
	if !digit {
		return false, "Password must contain at least one number"
	}
	return true, ""
}

// ValidateCredentials runs the three registration checks in order and
// returns the first failure as a *ValidationError.
func ValidateCredentials(username, email, password string) error {
	if ok, reason := ValidateUsername(username); !ok {
		return &ValidationError{Field: "username", Reason: reason, Err: ErrInvalidFormat}
	}
	if ok, reason := ValidateEmail(email); !ok {
		return &ValidationError{Field: "email", Reason: reason, Err: ErrInvalidFormat}
	}
	if ok, reason := ValidatePassword(password); !ok {
		return &ValidationError{Field: "password", Reason: reason, Err: ErrWeakPassword}
	}
	return nil
}

// SanitizeString trims surrounding whitespace. It is normalization only;
// storage always binds values as query parameters.
func SanitizeString(s string) string {
	return strings.TrimSpace(s)
}

// Sanitize trims strings and returns any other value unchanged.
func Sanitize(v any) any {
	if s, ok := v.(string); ok {
		return SanitizeString(s)
	}
	return v
}

func isUsernameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' || r == '-'
}
