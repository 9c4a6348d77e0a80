package f4t

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the controller core. The core performs no local
// recovery: every failure propagates to the caller unmodified and no command
// is ever retried.
var (
	// ErrTransport marks a connection-level failure reported by the channel.
	ErrTransport = errors.New("f4t: transport failure")

	// ErrTimeout marks a read that produced no response line within the
	// configured window.
	ErrTimeout = errors.New("f4t: response timeout")

	// ErrInvalidArgument marks a value rejected locally, before any command
	// text is transmitted (e.g. an unrecognized ramp scale).
	ErrInvalidArgument = errors.New("f4t: invalid argument")

	// ErrUnexpectedResponse marks a response line that cannot be parsed into
	// the expected type (e.g. a unit token outside the TempUnit set).
	ErrUnexpectedResponse = errors.New("f4t: unexpected response")
)

// invalidArgf wraps ErrInvalidArgument with a formatted detail message.
func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// unexpectedf wraps ErrUnexpectedResponse with a formatted detail message.
func unexpectedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnexpectedResponse, fmt.Sprintf(format, args...))
}
