// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to HTTP/CLI output by adapters.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates input validation failed.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates a required dependency is unavailable.
	ErrUnavailable = errors.New("unavailable")

	// ErrBadResponse indicates the upstream answered with a non-2xx status.
	ErrBadResponse = errors.New("bad response")

	// ErrDecode indicates the upstream payload did not match the expected shape.
	ErrDecode = errors.New("decode failed")

	// ErrNetwork indicates a transport-level failure (DNS, refused connection, timeout).
	ErrNetwork = errors.New("network error")
)

// NotFoundError provides context for not found errors.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UnavailableError provides context for unavailable errors.
type UnavailableError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// BadResponseError reports a non-2xx upstream status.
type BadResponseError struct {
	Operation  string
	StatusCode int
}

// Error implements the error interface.
func (e *BadResponseError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("%s: bad response: HTTP %d", e.Operation, e.StatusCode)
	}

	return fmt.Sprintf("bad response: HTTP %d", e.StatusCode)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *BadResponseError) Unwrap() error {
	return ErrBadResponse
}

// NewBadResponseError creates a bad response error for the given status code.
func NewBadResponseError(operation string, statusCode int) error {
	return &BadResponseError{Operation: operation, StatusCode: statusCode}
}

// DecodeError reports a payload that could not be decoded into Target.
type DecodeError struct {
	Target string
	Cause  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decoding %s: %v", e.Target, e.Cause)
	}

	return "decoding " + e.Target + " failed"
}

// Unwrap returns both the sentinel and the cause.
func (e *DecodeError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrDecode}
	}

	return []error{ErrDecode, e.Cause}
}

// NewDecodeError creates a decode error for the given target type.
func NewDecodeError(target string, cause error) error {
	return &DecodeError{Target: target, Cause: cause}
}

// NetworkError reports a transport failure talking to Service.
type NetworkError struct {
	Service string
	Cause   error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %q: %v", e.Service, e.Cause)
}

// Unwrap returns both the sentinel and the cause.
func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Cause}
}

// NewNetworkError creates a network error for the given service.
func NewNetworkError(service string, cause error) error {
	return &NetworkError{Service: service, Cause: cause}
}

// StatusCode extracts the upstream status from a BadResponseError in the chain.
func StatusCode(err error) (int, bool) {
	var badResp *BadResponseError
	if errors.As(err, &badResp) {
		return badResp.StatusCode, true
	}

	return 0, false
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsBadResponse checks if an error is a bad response error.
func IsBadResponse(err error) bool {
	return errors.Is(err, ErrBadResponse)
}

// IsDecode checks if an error is a decode error.
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}

// IsNetwork checks if an error is a network error.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}
