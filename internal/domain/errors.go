package domain

import (
	"errors"
	"fmt"
	"math"
)

// Error kinds. Compare with errors.Is against a *CalcError.
var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidInterval         = errors.New("invalid interval")
	ErrConstraintViolation     = errors.New("constraint violation")
	ErrExternalDataUnavailable = errors.New("external data unavailable")
)

// CalcError represents a typed failure from one of the calculators
type CalcError struct {
	Kind      error
	Operation string
	Field     string
	Message   string
	Cause     error
}

func (e *CalcError) Error() string {
	msg := e.Operation + ": " + e.Message
	if e.Field != "" {
		msg = e.Operation + ": " + e.Field + ": " + e.Message
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *CalcError) Unwrap() error {
	return e.Cause
}

// Is matches the error kind so callers can use errors.Is(err, ErrInvalidInput)
func (e *CalcError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// InvalidInput builds an ErrInvalidInput error for a single field
func InvalidInput(operation, field, format string, args ...any) *CalcError {
	return &CalcError{
		Kind:      ErrInvalidInput,
		Operation: operation,
		Field:     field,
		Message:   fmt.Sprintf(format, args...),
	}
}

// ConstraintViolation builds an ErrConstraintViolation error naming the failed constraint
func ConstraintViolation(operation, constraint, format string, args ...any) *CalcError {
	return &CalcError{
		Kind:      ErrConstraintViolation,
		Operation: operation,
		Field:     constraint,
		Message:   fmt.Sprintf(format, args...),
	}
}

// CheckFinite fails when v is NaN or infinite
func CheckFinite(operation, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return InvalidInput(operation, field, "must be a finite number, got %v", v)
	}
	return nil
}

// CheckNonNegative fails when v is not finite or below zero
func CheckNonNegative(operation, field string, v float64) error {
	if err := CheckFinite(operation, field, v); err != nil {
		return err
	}
	if v < 0 {
		return InvalidInput(operation, field, "cannot be negative, got %v", v)
	}
	return nil
}

// CheckRate fails when a percentage rate is not finite or at or below -100 %
func CheckRate(operation, field string, percent float64) error {
	if err := CheckFinite(operation, field, percent); err != nil {
		return err
	}
	if percent <= -100 {
		return InvalidInput(operation, field, "must be greater than -100%%, got %v%%", percent)
	}
	return nil
}
