// Package errors provides structured error handling for portsweep operations.
// It defines error codes and coded error types so callers can tell configuration
// problems apart from scan failures without matching on message text.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents different types of errors that can occur.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeConfiguration ErrorCode = "CONFIGURATION"
	CodeCanceled      ErrorCode = "CANCELED"

	// Target and scanning errors.
	CodeTargetInvalid ErrorCode = "TARGET_INVALID"
	CodeNoTargets     ErrorCode = "NO_TARGETS"
	CodeScanFailed    ErrorCode = "SCAN_FAILED"
	CodeResourceLimit ErrorCode = "RESOURCE_LIMIT"

	// File system errors.
	CodeFileNotFound ErrorCode = "FILE_NOT_FOUND"
)

// ScanError represents an error that occurred during scanning operations.
type ScanError struct {
	Code    ErrorCode
	Message string
	Target  string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Target != "" {
		msg = fmt.Sprintf("%s (target: %s)", msg, e.Target)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *ScanError) WithContext(key string, value interface{}) *ScanError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewScanError creates a new scan error with the specified code and message.
func NewScanError(code ErrorCode, message string) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// WrapScanError wraps an existing error as a scan error.
func WrapScanError(code ErrorCode, message string, err error) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// ResolveError reports an address token that could not be turned into a target.
type ResolveError struct {
	Code    ErrorCode
	Message string
	Address string
	Cause   error
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("[%s] %s (address: %s)", e.Code, e.Message, e.Address)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ResolveError) Unwrap() error {
	return e.Cause
}

// NewResolveError creates a resolve error for an address token.
func NewResolveError(address string, err error) *ResolveError {
	return &ResolveError{
		Code:    CodeTargetInvalid,
		Message: "Address could not be resolved",
		Address: address,
		Cause:   err,
	}
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   interface{}
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field: %s)", msg, e.Field)
	}
	if e.Value != nil {
		msg = fmt.Sprintf("%s (value: %v)", msg, e.Value)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigFieldError creates a configuration error for a specific field.
func NewConfigFieldError(code ErrorCode, message, field string, value interface{}) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Field:   field,
		Value:   value,
	}
}

// WrapConfigError wraps an existing error as a configuration error.
func WrapConfigError(code ErrorCode, message string, err error) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Utility functions for common error operations

// IsCode checks if an error, or any error it wraps, has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from the first coded error in the chain.
func GetCode(err error) ErrorCode {
	var scanErr *ScanError
	if stderrors.As(err, &scanErr) {
		return scanErr.Code
	}
	var resolveErr *ResolveError
	if stderrors.As(err, &resolveErr) {
		return resolveErr.Code
	}
	var configErr *ConfigError
	if stderrors.As(err, &configErr) {
		return configErr.Code
	}
	return CodeUnknown
}

// IsFatal determines if an error indicates a condition that must abort the run
// before any scanning starts.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case CodeNoTargets, CodeConfiguration, CodeValidation:
		return true
	default:
		return false
	}
}

// Common error creation functions

// ErrNoTargets creates the error returned when no address could be resolved.
func ErrNoTargets(unresolved []string) *ScanError {
	return NewScanError(CodeNoTargets, "No IPs could be resolved, aborting scan.").
		WithContext("unresolved", unresolved)
}

// ErrScanCanceled creates an error for scans stopped by context cancellation.
func ErrScanCanceled(err error) *ScanError {
	return WrapScanError(CodeCanceled, "Scan canceled", err)
}

// ErrConfigInvalid creates an error for a configuration value that failed
// validation. cause carries the failed rule.
func ErrConfigInvalid(field string, value interface{}, cause error) *ConfigError {
	err := NewConfigFieldError(CodeValidation, "Invalid configuration value", field, value)
	err.Cause = cause
	return err
}
