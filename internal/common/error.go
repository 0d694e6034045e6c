// Package common defines the sentinel errors shared by the store, service and
// HTTP layers of gophstore. Callers should match them with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInternal           = errors.New("internal error")

	// Access errors.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	// Upload errors.
	ErrTooLarge   = errors.New("file too large")
	ErrNotAnImage = errors.New("not an image")
	ErrNoFile     = errors.New("no file uploaded")
)

// Error carries a client-facing message on top of one of the sentinel kinds
// above. errors.Is(err, kind) holds for an *Error built with that kind.
type Error struct {
	Kind    error
	Message string
}

// NewError returns an *Error of the given kind.
func NewError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func (e *Error) Error() string {
	if e.Message == "" && e.Kind != nil {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// MessageOf returns the client-facing message attached to err, if any.
func MessageOf(err error) (string, bool) {
	var ce *Error
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message, true
	}
	return "", false
}
