package serverutils

import (
	"errors"
	"strings"
)

var (
	ErrBadRequest         = errors.New("bad request")
	ErrNotFound           = errors.New("not found")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ValidationError carries the struct fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed on: " + strings.Join(e.Fields, ", ")
}
