package shared

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	ErrorCategoryConfiguration  ErrorCategory = "configuration"
	ErrorCategoryNetwork        ErrorCategory = "network"
	ErrorCategoryValidation     ErrorCategory = "validation"
	ErrorCategoryProcessing     ErrorCategory = "processing"
	ErrorCategoryTimeout        ErrorCategory = "timeout"
	ErrorCategoryAuthentication ErrorCategory = "authentication"
	ErrorCategoryAuthorization  ErrorCategory = "authorization"
)

// Status tags reported in read API response bodies. Read endpoints always
// answer HTTP 200; these strings are the only failure signal the display sees.
const (
	StatusOK                = "OK"
	StatusGoldSourceError   = "SOURCE ERROR (LLGUSD)"
	StatusSilverSourceError = "SOURCE ERROR (LLSUSD)"
	StatusSiteError         = "STORAGE ERROR (SITE)"
	StatusListError         = "STORAGE ERROR (LIST)"
	StatusXRatesError       = "STORAGE ERROR (XRATES)"
	StatusDiscountsError    = "STORAGE ERROR (DISCOUNTS)"
	StatusInvalidSection    = "INVALID SECTION"
)

// ServiceError represents a standardized error with additional context
type ServiceError struct {
	Category    ErrorCategory `json:"category"`
	Code        string        `json:"code"`
	Message     string        `json:"message"`
	StatusTag   string        `json:"status_tag,omitempty"`
	Details     interface{}   `json:"details,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
	ServiceName string        `json:"service_name"`
	Operation   string        `json:"operation"`
	Cause       error         `json:"-"` // Original error, not serialized
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// NewServiceError creates a new service error
func NewServiceError(category ErrorCategory, code, message, serviceName, operation string, cause error) *ServiceError {
	return &ServiceError{
		Category:    category,
		Code:        code,
		Message:     message,
		Timestamp:   time.Now(),
		ServiceName: serviceName,
		Operation:   operation,
		Cause:       cause,
	}
}

// WithDetails adds additional details to the error
func (e *ServiceError) WithDetails(details interface{}) *ServiceError {
	e.Details = details
	return e
}

// WithStatusTag sets the board status tag reported for this error
func (e *ServiceError) WithStatusTag(tag string) *ServiceError {
	e.StatusTag = tag
	return e
}

// GetCategory returns the error category
func (e *ServiceError) GetCategory() ErrorCategory {
	return e.Category
}

// LogError logs the error with structured fields
func (e *ServiceError) LogError() {
	logrus.WithFields(logrus.Fields{
		"error_category":   e.Category,
		"error_code":       e.Code,
		"error_message":    e.Message,
		"status_tag":       e.StatusTag,
		"service_name":     e.ServiceName,
		"operation":        e.Operation,
		"timestamp":        e.Timestamp,
		"details":          e.Details,
		"underlying_error": e.Cause,
	}).Error("Service error occurred")
}

// WrapError wraps an existing error with service error context
func WrapError(err error, category ErrorCategory, code, serviceName, operation string) *ServiceError {
	if err == nil {
		return nil
	}

	// If it's already a ServiceError, just update the context
	if serviceErr, ok := err.(*ServiceError); ok {
		serviceErr.ServiceName = serviceName
		serviceErr.Operation = operation
		return serviceErr
	}

	return NewServiceError(category, code, err.Error(), serviceName, operation, err)
}

// StatusTagOf extracts the board status tag carried by err, falling back to
// the given tag when err carries none.
func StatusTagOf(err error, fallback string) string {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) && serviceErr.StatusTag != "" {
		return serviceErr.StatusTag
	}
	return fallback
}

// GetCategory extracts the category of err, or ErrorCategoryProcessing for
// plain errors.
func GetCategory(err error) ErrorCategory {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Category
	}
	return ErrorCategoryProcessing
}
