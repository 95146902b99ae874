package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Network/graph errors
	ErrorTypeNetworkNotBuilt   ErrorType = "NETWORK_NOT_BUILT"
	ErrorTypeInvalidNode       ErrorType = "INVALID_NODE"
	ErrorTypeInvalidEdge       ErrorType = "INVALID_EDGE"
	ErrorTypeCircularReference ErrorType = "CIRCULAR_REFERENCE"
	ErrorTypeInconsistentData  ErrorType = "INCONSISTENT_DATA"

	// Optimization errors
	ErrorTypePathNotFound       ErrorType = "PATH_NOT_FOUND"
	ErrorTypeInsufficientStock  ErrorType = "INSUFFICIENT_STOCK"
	ErrorTypePermissionDenied   ErrorType = "PERMISSION_DENIED"
	ErrorTypeOptimizationFailed ErrorType = "OPTIMIZATION_FAILED"
	ErrorTypeValidationFailed   ErrorType = "VALIDATION_FAILED"

	// Infrastructure errors
	ErrorTypeCacheError ErrorType = "CACHE_ERROR"
	ErrorTypeTimeout    ErrorType = "TIMEOUT"
	ErrorTypeExternal   ErrorType = "EXTERNAL"
	ErrorTypeInternal   ErrorType = "INTERNAL"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

// Constructor functions for common error types

// NewNetworkNotBuiltError indicates no distributor graph snapshot is available
func NewNetworkNotBuiltError() *AppError {
	return &AppError{
		Type:       ErrorTypeNetworkNotBuilt,
		Message:    "distributor network has not been built",
		HTTPStatus: http.StatusServiceUnavailable,
		StackTrace: captureStackTrace(),
	}
}

// NewInvalidNodeError creates an invalid node error
func NewInvalidNodeError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidNode,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewInvalidEdgeError creates an invalid edge error
func NewInvalidEdgeError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidEdge,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewCircularReferenceError reports a cycle in the parent hierarchy
func NewCircularReferenceError(nodeID string) *AppError {
	return &AppError{
		Type:       ErrorTypeCircularReference,
		Message:    fmt.Sprintf("circular parent reference detected at node '%s'", nodeID),
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewInconsistentDataError reports a failed graph validation with itemized issues
func NewInconsistentDataError(issues []string) *AppError {
	return &AppError{
		Type:       ErrorTypeInconsistentData,
		Message:    fmt.Sprintf("network data failed validation with %d issue(s)", len(issues)),
		Details:    map[string]interface{}{"issues": issues},
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewPathNotFoundError indicates no valid procurement path exists
func NewPathNotFoundError(buyerID, productID string) *AppError {
	return &AppError{
		Type:       ErrorTypePathNotFound,
		Message:    fmt.Sprintf("no valid procurement path found for buyer '%s' and product '%s'", buyerID, productID),
		HTTPStatus: http.StatusNotFound,
		StackTrace: captureStackTrace(),
	}
}

// NewInsufficientStockError creates an insufficient stock error
func NewInsufficientStockError(supplierID string, available, requested int) *AppError {
	return &AppError{
		Type:    ErrorTypeInsufficientStock,
		Message: fmt.Sprintf("supplier '%s' has %d units, %d requested", supplierID, available, requested),
		Details: map[string]interface{}{
			"supplierId": supplierID,
			"available":  available,
			"requested":  requested,
		},
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewPermissionDeniedError creates a permission denied error
func NewPermissionDeniedError(message string) *AppError {
	if message == "" {
		message = "purchase permission denied"
	}
	return &AppError{
		Type:       ErrorTypePermissionDenied,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
		StackTrace: captureStackTrace(),
	}
}

// NewOptimizationFailedError creates an optimization failure error
func NewOptimizationFailedError(message string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeOptimizationFailed,
		Message:    message,
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// NewValidationFailedError creates a path validation failure error
func NewValidationFailedError(reasons []string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidationFailed,
		Message:    "procurement path failed validation",
		Details:    map[string]interface{}{"reasons": reasons},
		HTTPStatus: http.StatusUnprocessableEntity,
		StackTrace: captureStackTrace(),
	}
}

// NewCacheError creates a cache error
func NewCacheError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeCacheError,
		Message:    fmt.Sprintf("cache operation '%s' failed", operation),
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(operation string) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Message:    fmt.Sprintf("operation '%s' timed out", operation),
		HTTPStatus: http.StatusRequestTimeout,
		StackTrace: captureStackTrace(),
	}
}

// NewExternalError creates an external service error
func NewExternalError(service string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Message:    fmt.Sprintf("external service '%s' error", service),
		Cause:      err,
		HTTPStatus: http.StatusBadGateway,
		StackTrace: captureStackTrace(),
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNetworkNotBuilt checks if an error reports a missing graph snapshot
func IsNetworkNotBuilt(err error) bool {
	return IsType(err, ErrorTypeNetworkNotBuilt)
}

// IsPathNotFound checks if an error is a path not found error
func IsPathNotFound(err error) bool {
	return IsType(err, ErrorTypePathNotFound)
}

// IsInvalidNode checks if an error is an invalid node error
func IsInvalidNode(err error) bool {
	return IsType(err, ErrorTypeInvalidNode)
}

// IsPermissionDenied checks if an error is a permission denied error
func IsPermissionDenied(err error) bool {
	return IsType(err, ErrorTypePermissionDenied)
}

// IsInconsistentData checks if an error is a data consistency error
func IsInconsistentData(err error) bool {
	return IsType(err, ErrorTypeInconsistentData)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return IsType(err, ErrorTypeTimeout)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, add context to message
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}

	// Otherwise create a new internal error
	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
