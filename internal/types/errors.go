package types

import "errors"

// Core error taxonomy. Bus and device errors stay inside the hardware
// layer; the relay/state errors cross the REST boundary.
var (
	// ErrBus marks a single failed I2C transaction. Never fatal; the
	// device cache stays on its last good value.
	ErrBus = errors.New("bus transaction failed")

	// ErrDeviceUnavailable marks an expander that never answered its
	// probe. Every later operation on it is a permanent no-op.
	ErrDeviceUnavailable = errors.New("device unavailable")

	// ErrUnknownRelay is returned for relay identifiers outside "1".."16".
	ErrUnknownRelay = errors.New("unknown relay")

	// ErrMalformedState is returned for a desired-state token that is
	// neither "on" nor "off".
	ErrMalformedState = errors.New("malformed state token")
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewErrorResponse builds a consistent API error payload.
// details can be string, map, struct, etc.
func NewErrorResponse(code, message string, details any) ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
