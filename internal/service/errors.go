package service

import (
	"errors"
	"strings"
)

// The closed set of failures the service layer reports. internal/handlers maps
// each one to a status code.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrPersistence        = errors.New("persistence error")
	ErrInternal           = errors.New("internal error")
	ErrConflict           = errors.New("conflict")
	ErrValidation         = errors.New("validation failed")
	ErrUnavailable        = errors.New("feature not configured")
)

// Taxonomy lists every sentinel above.
var Taxonomy = []error{
	ErrNotFound,
	ErrInvalidCredentials,
	ErrForbidden,
	ErrBadRequest,
	ErrPersistence,
	ErrInternal,
	ErrConflict,
	ErrValidation,
	ErrUnavailable,
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError matches ErrValidation under errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
