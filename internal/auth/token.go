package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// sessionTokenBytes is the entropy of a session token (256 bits).
const sessionTokenBytes = 32

// ErrInvalidToken indicates a token that could not have been issued by NewSessionToken.
var ErrInvalidToken = errors.New("invalid session token")

// NewSessionToken returns a random opaque token for a session cookie.
func NewSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidateTokenFormat rejects values that are not well-formed session tokens
// before any store lookup happens.
func ValidateTokenFormat(token string) error {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(b) != sessionTokenBytes {
		return ErrInvalidToken
	}
	return nil
}

// TokenHash returns the SHA-256 of a token, hex encoded.
// Sessions are stored under this value so a leaked store does not leak cookies.
func TokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
