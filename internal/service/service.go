// Package service provides business logic for the application.
package service

import (
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

// Service errors shared by the auth and ledger services.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource already exists")
)

// FieldError is a rejected input field with a client-facing message.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

// newID returns a lexicographically sortable unique ID.
func newID() string {
	return ulid.Make().String()
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
