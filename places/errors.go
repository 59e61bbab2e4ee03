// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// GeocodingError describes why a provider call produced no usable result.
type GeocodingError struct {
	Type       ErrorType
	Message    string
	Err        error
	StatusCode int // non-2xx HTTP status, 0 otherwise
}

// ErrorType classifies provider failures.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit too many requests.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded quota exhausted or key denied.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout the request timed out.
	ErrorTypeTimeout
	// ErrorTypeNotFound the provider has no match.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest the provider refused the parameters.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError transport failure or upstream outage.
	ErrorTypeNetworkError
	// ErrorTypeMalformedResponse the body could not be decoded.
	ErrorTypeMalformedResponse
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeUnknown:           "unknown",
	ErrorTypeRateLimit:         "rate_limit",
	ErrorTypeQuotaExceeded:     "quota_exceeded",
	ErrorTypeTimeout:           "timeout",
	ErrorTypeNotFound:          "not_found",
	ErrorTypeInvalidRequest:    "invalid_request",
	ErrorTypeNetworkError:      "network_error",
	ErrorTypeMalformedResponse: "malformed_response",
}

func (t ErrorType) String() string {
	if name, ok := errorTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("ErrorType(%d)", int(t))
}

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

func errorType(err error) (ErrorType, bool) {
	var geoErr *GeocodingError
	if !errors.As(err, &geoErr) {
		return ErrorTypeUnknown, false
	}

	return geoErr.Type, true
}

// IsRateLimitError reports whether err is a rate limit failure.
func IsRateLimitError(err error) bool {
	t, ok := errorType(err)

	return ok && t == ErrorTypeRateLimit
}

// IsQuotaExceededError reports whether err is a quota or key failure.
func IsQuotaExceededError(err error) bool {
	t, ok := errorType(err)

	return ok && t == ErrorTypeQuotaExceeded
}

// IsTimeoutError reports whether err is a timeout.
func IsTimeoutError(err error) bool {
	t, ok := errorType(err)

	return ok && t == ErrorTypeTimeout
}

// IsProviderRejection reports whether the provider answered 2xx with a
// status other than OK. Non-2xx answers, transport failures and undecodable
// bodies mean the provider is unavailable instead.
func IsProviderRejection(err error) bool {
	var geoErr *GeocodingError
	if !errors.As(err, &geoErr) || geoErr.StatusCode != 0 {
		return false
	}

	switch geoErr.Type {
	case ErrorTypeNotFound, ErrorTypeInvalidRequest, ErrorTypeQuotaExceeded, ErrorTypeRateLimit:
		return true
	default:
		return false
	}
}

// ClassifyHTTPError maps a non-2xx HTTP status to a GeocodingError.
func ClassifyHTTPError(statusCode int, _ string) *GeocodingError {
	geoErr := &GeocodingError{StatusCode: statusCode}

	switch statusCode {
	case http.StatusTooManyRequests:
		geoErr.Type, geoErr.Message = ErrorTypeRateLimit, "rate limit reached"
	case http.StatusForbidden:
		geoErr.Type, geoErr.Message = ErrorTypeQuotaExceeded, "quota exceeded or access denied"
	case http.StatusBadRequest:
		geoErr.Type, geoErr.Message = ErrorTypeInvalidRequest, "invalid request"
	case http.StatusNotFound:
		geoErr.Type, geoErr.Message = ErrorTypeNotFound, "not found"
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		geoErr.Type, geoErr.Message = ErrorTypeNetworkError, fmt.Sprintf("service unavailable (status %d)", statusCode)
	default:
		geoErr.Type, geoErr.Message = ErrorTypeUnknown, fmt.Sprintf("HTTP error %d", statusCode)
	}

	return geoErr
}

// ClassifyProviderStatus maps a Google Maps web service status other than
// OK to a GeocodingError.
func ClassifyProviderStatus(status, message string) *GeocodingError {
	geoErr := &GeocodingError{Message: "google maps status: " + status}
	if message != "" {
		geoErr.Message += " (" + message + ")"
	}

	switch status {
	case "ZERO_RESULTS", "NOT_FOUND":
		geoErr.Type = ErrorTypeNotFound
	case "OVER_QUERY_LIMIT", "REQUEST_DENIED", "OVER_DAILY_LIMIT":
		geoErr.Type = ErrorTypeQuotaExceeded
	case "INVALID_REQUEST":
		geoErr.Type = ErrorTypeInvalidRequest
	case "UNKNOWN_ERROR":
		geoErr.Type = ErrorTypeNetworkError
	default:
		geoErr.Type = ErrorTypeUnknown
	}

	return geoErr
}

// ClassifyTransportError wraps an error returned by the HTTP client.
func ClassifyTransportError(err error) *GeocodingError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &GeocodingError{Type: ErrorTypeTimeout, Message: "request timed out", Err: err}
	}

	return &GeocodingError{Type: ErrorTypeNetworkError, Message: "request failed", Err: err}
}
