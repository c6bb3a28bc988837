package models

import "errors"

var (
	// ErrClassifierUnavailable: remote classifier unreachable or not configured.
	ErrClassifierUnavailable = errors.New("classifier unavailable")

	// ErrAgentUnavailable: rules agent not authenticated or the call failed.
	ErrAgentUnavailable = errors.New("agent unavailable")

	// ErrMalformedResponse: structured output missing expected fields.
	ErrMalformedResponse = errors.New("malformed response")
)
