package utils

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthExpired marks a 401 returned by an authenticated gateway call.
	ErrAuthExpired = errors.New("session expired, please login again")
	// ErrLoginRequired is returned before any network call when an action
	// needs a valid session and there is none.
	ErrLoginRequired = errors.New("please login first")
)

// GatewayError represents any non-success response or transport failure
// returned by the storefront gateway. StatusCode is 0 for transport errors.
type GatewayError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	if e.StatusCode == 0 {
		if e.Err != nil {
			return fmt.Sprintf("gateway unreachable: %v", e.Err)
		}
		return "gateway unreachable"
	}
	if e.Message != "" {
		return fmt.Sprintf("gateway error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway error: %d", e.StatusCode)
}

// Unwrap exposes ErrAuthExpired for 401s and the transport error otherwise.
func (e *GatewayError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrAuthExpired
	}
	return e.Err
}

// NewGatewayError creates a new gateway error
func NewGatewayError(statusCode int, message string) *GatewayError {
	return &GatewayError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewTransportError wraps a failure that happened before any response arrived.
func NewTransportError(err error) *GatewayError {
	return &GatewayError{Err: err}
}

// IsAuthError checks if the error is an expired/invalid session
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthExpired)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsGatewayError reports whether err came from the gateway boundary.
func IsGatewayError(err error) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError reports whether err (or anything it wraps) is a ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return true
	}
	var multi *MultiError
	return errors.As(err, &multi)
}

// OtpInvalidError is returned when the gateway rejects an OTP.
type OtpInvalidError struct {
	Message string `json:"message"`
}

// Error implements the error interface
func (e *OtpInvalidError) Error() string {
	return e.Message
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error `json:"errors"`
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors
func (e *MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ErrOrNil returns the multi-error itself when it holds anything, nil otherwise.
func (e *MultiError) ErrOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// NewMultiError creates a new multi-error
func NewMultiError() *MultiError {
	return &MultiError{
		Errors: make([]error, 0),
	}
}
