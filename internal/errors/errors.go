package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// StartupFailed indicates a process could not resolve, bind, listen or connect
	StartupFailed ErrorCode = "STARTUP_FAILED"
	// DatabaseUnavailable indicates the record file could not be read
	DatabaseUnavailable ErrorCode = "DATABASE_UNAVAILABLE"
	// LookupUnavailable indicates the lookup server could not be reached
	LookupUnavailable ErrorCode = "LOOKUP_UNAVAILABLE"
	// ProtocolError indicates the lookup stream ended or broke mid-result
	ProtocolError ErrorCode = "PROTOCOL_ERROR"
	// BadRequest indicates a malformed or unsafe request target
	BadRequest ErrorCode = "BAD_REQUEST"
	// Forbidden indicates a directory was requested without a trailing slash
	Forbidden ErrorCode = "FORBIDDEN"
	// NotFound indicates the requested file does not exist
	NotFound ErrorCode = "NOT_FOUND"
	// NotImplemented indicates an unsupported method or protocol version
	NotImplemented ErrorCode = "NOT_IMPLEMENTED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// Error is an mdbgw error with a stable code and an optional cause.
type Error struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new Error
func New(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or InternalError.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return InternalError
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// StatusFor maps an error code to the HTTP status the gateway answers with.
func StatusFor(code ErrorCode) int {
	switch code {
	case BadRequest:
		return http.StatusBadRequest // 400
	case Forbidden:
		return http.StatusForbidden // 403
	case NotFound:
		return http.StatusNotFound // 404
	case NotImplemented:
		return http.StatusNotImplemented // 501
	case LookupUnavailable, DatabaseUnavailable:
		return http.StatusServiceUnavailable // 503
	case ProtocolError:
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}
