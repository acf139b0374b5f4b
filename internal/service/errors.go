package service

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every store. Match with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("task not found")
	ErrStorage            = errors.New("storage error")
	ErrNoSession          = errors.New("not logged in")
)

// ValidationError describes bad caller input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	return e.Msg
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// StorageError reports a failed read, write or decode of a persisted key.
type StorageError struct {
	Op  string // "read", "write", "delete", "list", "decode", "encode"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is matches ErrStorage in addition to the wrapped chain.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
