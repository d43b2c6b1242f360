package ai

import "errors"

var (
	ErrConfiguration      = errors.New("ai client is not configured")
	ErrServiceUnavailable = errors.New("ai service unavailable")
	ErrServiceError       = errors.New("ai service error")
	ErrMalformedResponse  = errors.New("malformed ai response")
)
