package trace

import (
	"errors"
	"fmt"
)

// Error kinds raised by the pipeline stages. Stage errors wrap one of these
// so callers can branch with errors.Is.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrInsufficientPoints   = errors.New("insufficient points")
	ErrMissingDimension     = errors.New("missing dimension")
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// FieldError names the field that caused a stage to fail.
type FieldError struct {
	Kind   error
	Field  string
	Detail string
}

// NewFieldError builds a FieldError of the given kind.
func NewFieldError(kind error, field, format string, args ...interface{}) *FieldError {
	return &FieldError{
		Kind:   kind,
		Field:  field,
		Detail: fmt.Sprintf(format, args...),
	}
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
	}
	if e.Detail == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Field)
	}
	return fmt.Sprintf("%v: %s: %s", e.Kind, e.Field, e.Detail)
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}
