// Package errors defines the typed failures shared across the extraction
// layer. Each backend owns a distinct error type so callers can tell an API
// outage from a database outage without string matching.
package errors

import (
	"errors"
	"fmt"
)

// APIError reports a failed API request or liveness check. Endpoint is the
// logical endpoint name ("users", "sessions", "health"), not the full URL.
type APIError struct {
	Endpoint string
	Message  string
	Cause    error
}

// NewAPIError builds an APIError for the given endpoint.
func NewAPIError(endpoint, message string, cause error) *APIError {
	return &APIError{Endpoint: endpoint, Message: message, Cause: cause}
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("api error on %q: %s: %v", e.Endpoint, e.Message, e.Cause)
	}
	return fmt.Sprintf("api error on %q: %s", e.Endpoint, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// DatabaseError reports a failed database operation. Operation is the
// logical step that failed ("connect", "count", "fetch batch", "validate").
type DatabaseError struct {
	Operation string
	Message   string
	Cause     error
}

// NewDatabaseError builds a DatabaseError for the given operation.
func NewDatabaseError(operation, message string, cause error) *DatabaseError {
	return &DatabaseError{Operation: operation, Message: message, Cause: cause}
}

func (e *DatabaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("database error during %s: %s: %v", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("database error during %s: %s", e.Operation, e.Message)
}

func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// ConfigurationError reports missing or invalid settings. It is raised once
// at settings-resolution time; extraction never starts with a bad config.
// Cause typically carries the per-field violation list.
type ConfigurationError struct {
	Message string
	Cause   error
}

// NewConfigurationError builds a ConfigurationError.
func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{Message: message, Cause: cause}
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// DataQualityError reports a failed data validation check. Nothing in the
// extraction layer raises it; downstream validation collaborators use it to
// reject extracted batches.
type DataQualityError struct {
	Check  string
	Detail string
}

// NewDataQualityError builds a DataQualityError for a named check.
func NewDataQualityError(check, detail string) *DataQualityError {
	return &DataQualityError{Check: check, Detail: detail}
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("data quality check %q failed: %s", e.Check, e.Detail)
}

// IsAPIError reports whether err is or wraps an APIError.
func IsAPIError(err error) bool {
	var e *APIError
	return errors.As(err, &e)
}

// IsDatabaseError reports whether err is or wraps a DatabaseError.
func IsDatabaseError(err error) bool {
	var e *DatabaseError
	return errors.As(err, &e)
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsDataQualityError reports whether err is or wraps a DataQualityError.
func IsDataQualityError(err error) bool {
	var e *DataQualityError
	return errors.As(err, &e)
}
