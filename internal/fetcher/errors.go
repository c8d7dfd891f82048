package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorType is the reason a date contributed no rows. Its value is what the
// run report prints next to a skipped date.
type ErrorType string

const (
	ErrorTypeNoData    ErrorType = "no_data"    // HTTP 400, the API's answer for a day without data
	ErrorTypeRateLimit ErrorType = "rate_limit" // HTTP 429
	ErrorTypeServer    ErrorType = "server"     // HTTP 5xx
	ErrorTypeClient    ErrorType = "client"     // any other HTTP 4xx
	ErrorTypeMalformed ErrorType = "malformed"  // 2xx body that is not an array of objects
	ErrorTypeNetwork   ErrorType = "network"
	ErrorTypeTimeout   ErrorType = "timeout"
	ErrorTypeCanceled  ErrorType = "canceled"
	ErrorTypeUnknown   ErrorType = "unknown"
)

var defaultMessages = map[ErrorType]string{
	ErrorTypeNoData:    "no data for this date",
	ErrorTypeRateLimit: "too many requests",
	ErrorTypeServer:    "analytics API failed",
	ErrorTypeNetwork:   "request not delivered",
	ErrorTypeTimeout:   "no answer before the deadline",
	ErrorTypeCanceled:  "run canceled",
}

// FetchError describes why fetching one date failed. StatusCode is zero when
// no HTTP response was received.
type FetchError struct {
	Type       ErrorType
	StatusCode int
	Message    string
	Cause      error
}

func newFetchError(t ErrorType, status int, msg string, cause error) *FetchError {
	if msg == "" {
		msg = defaultMessages[t]
	}
	return &FetchError{Type: t, StatusCode: status, Message: msg, Cause: cause}
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes Cause to errors.Is and errors.As
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewNoDataError creates the error for a date the API has no counts for
func NewNoDataError(statusCode int) *FetchError {
	return newFetchError(ErrorTypeNoData, statusCode, "", nil)
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(statusCode int) *FetchError {
	return newFetchError(ErrorTypeRateLimit, statusCode, "", nil)
}

// NewServerError creates an error for a 5xx answer
func NewServerError(statusCode int) *FetchError {
	return newFetchError(ErrorTypeServer, statusCode, "", nil)
}

// NewClientError creates an error for a 4xx answer other than 400 and 429
func NewClientError(statusCode int, message string) *FetchError {
	return newFetchError(ErrorTypeClient, statusCode, message, nil)
}

// NewMalformedError reports a successful response whose body cannot be read as rows.
func NewMalformedError(message string, cause error) *FetchError {
	return newFetchError(ErrorTypeMalformed, 0, message, cause)
}

// NewNetworkError creates a network error
func NewNetworkError(cause error) *FetchError {
	return newFetchError(ErrorTypeNetwork, 0, "", cause)
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(cause error) *FetchError {
	return newFetchError(ErrorTypeTimeout, 0, "", cause)
}

// NewCanceledError marks a date that was never requested, or whose request
// was abandoned, because the run context ended.
func NewCanceledError(cause error) *FetchError {
	return newFetchError(ErrorTypeCanceled, 0, "", cause)
}

// ClassifyHTTPError maps a non-2xx status to a FetchError.
func ClassifyHTTPError(statusCode int) *FetchError {
	switch {
	case statusCode == http.StatusBadRequest:
		return NewNoDataError(statusCode)
	case statusCode == http.StatusTooManyRequests:
		return NewRateLimitError(statusCode)
	case statusCode >= 500:
		return NewServerError(statusCode)
	case statusCode >= 400:
		return NewClientError(statusCode, http.StatusText(statusCode))
	}
	return newFetchError(ErrorTypeUnknown, statusCode, "unexpected status", nil)
}

// ClassifyTransportError maps an error raised before any status was received.
// Errors that already are a FetchError pass through unchanged.
func ClassifyTransportError(err error) *FetchError {
	var fe *FetchError
	var netErr net.Error
	switch {
	case errors.As(err, &fe):
		return fe
	case errors.Is(err, context.Canceled):
		return NewCanceledError(err)
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return NewTimeoutError(err)
	}
	return NewNetworkError(err)
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Type
	}
	return ErrorTypeUnknown
}
