// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnsupported is matched by every UnsupportedError.
var ErrUnsupported = errors.New("operation not supported by dialect")

// UnsupportedError signals that a dialect cannot express a query. It is a
// "not applicable" outcome rather than a failure of the backend.
type UnsupportedError struct {
	Dialect   Dialect
	Operation string
	Reason    string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: %s %s: %s", ErrUnsupported, e.Dialect, e.Operation, e.Reason)
}

// Is makes errors.Is(err, ErrUnsupported) hold.
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

func unsupported(d Dialect, op, reason string) error {
	return &UnsupportedError{Dialect: d, Operation: op, Reason: reason}
}

// ErrorType classifies transport errors.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified HTTP status.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit the backend throttled us.
	ErrorTypeRateLimit
	// ErrorTypeInvalidRequest the backend rejected the parameters.
	ErrorTypeInvalidRequest
	// ErrorTypeNotFound the endpoint does not exist.
	ErrorTypeNotFound
	// ErrorTypeUnavailable the backend is down or overloaded.
	ErrorTypeUnavailable
	// ErrorTypeNetwork the backend could not be reached.
	ErrorTypeNetwork
	// ErrorTypeDecode the backend answered with something that is not a feature collection.
	ErrorTypeDecode
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeRateLimit:
		return "rate limited"
	case ErrorTypeInvalidRequest:
		return "invalid request"
	case ErrorTypeNotFound:
		return "not found"
	case ErrorTypeUnavailable:
		return "unavailable"
	case ErrorTypeNetwork:
		return "network error"
	case ErrorTypeDecode:
		return "invalid response"
	default:
		return "unknown"
	}
}

// TransportError is returned when the backend could not produce a usable
// answer. It is fatal to the query only, and never retried.
type TransportError struct {
	Type       ErrorType
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s <%s>", e.Type, e.URL)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err carries a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError

	return errors.As(err, &te)
}

// IsRateLimitError reports whether the backend throttled the request.
func IsRateLimitError(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Type == ErrorTypeRateLimit
	}

	return false
}

// ClassifyHTTPStatus maps a non-2xx status code to a TransportError.
func ClassifyHTTPStatus(statusCode int, url string) *TransportError {
	e := &TransportError{URL: url, StatusCode: statusCode}

	switch statusCode {
	case http.StatusTooManyRequests:
		e.Type = ErrorTypeRateLimit
	case http.StatusBadRequest:
		e.Type = ErrorTypeInvalidRequest
	case http.StatusNotFound:
		e.Type = ErrorTypeNotFound
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		e.Type = ErrorTypeUnavailable
	default:
		e.Type = ErrorTypeUnknown
	}

	return e
}
