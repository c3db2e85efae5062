package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries an HTTP status and a stable machine-readable code alongside the
// underlying cause. Handlers map any error chain to a response through FromError.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(format string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "validation_error", Err: fmt.Errorf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Status: http.StatusNotFound, Code: "not_found", Err: fmt.Errorf(format, args...)}
}

func AccessDenied(format string, args ...any) *Error {
	return &Error{Status: http.StatusForbidden, Code: "access_denied", Err: fmt.Errorf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "unauthorized", Err: fmt.Errorf(format, args...)}
}

// QuotaExceeded maps AI-provider billing/rate-limit failures; not retried automatically.
func QuotaExceeded(err error) *Error {
	return &Error{Status: http.StatusPaymentRequired, Code: "upstream_quota_exceeded", Err: err}
}

// UpstreamTimeout maps AI-provider deadline misses; the whole request may be retried.
func UpstreamTimeout(err error) *Error {
	return &Error{Status: http.StatusGatewayTimeout, Code: "upstream_timeout", Err: err}
}

func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "internal_error", Err: err}
}

// FromError returns the *Error in err's chain, or wraps err as Internal.
func FromError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}

func IsStatus(err error, status int) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == status
	}
	return false
}
