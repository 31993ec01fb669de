package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrEmailTaken indicates that the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken indicates that the username is already registered.
	ErrUsernameTaken = errors.New("username already registered")
	// ErrInvalidCredentials is returned for an unknown email as well as for a wrong password.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrForbidden indicates that the caller acted on another user's resources.
	ErrForbidden = errors.New("not authorized")
	// ErrPreferencesExist indicates that the user already has preferences.
	ErrPreferencesExist = errors.New("preferences already exist")
	// ErrInvalidInput indicates input that passed shape validation but cannot be processed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstream indicates that the chat completion API failed.
	ErrUpstream = errors.New("upstream request failed")
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("not found")
)

// NotFoundError is returned when a requested resource does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// Is makes errors.Is(err, ErrNotFound) match any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

func upstream(err error) error {
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}
