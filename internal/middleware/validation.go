package middleware

import (
	"unicode"
)

// MaxResourceIDLength bounds path identifiers before they reach storage.
const MaxResourceIDLength = 64

// ValidResourceID reports whether id can name a stored resource: non-empty,
// bounded, and made only of ASCII letters, digits, '-' and '_'.
func ValidResourceID(id string) bool {
	if id == "" || len(id) > MaxResourceIDLength {
		return false
	}
	for _, r := range id {
		if r > unicode.MaxASCII {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return false
		}
	}
	return true
}
