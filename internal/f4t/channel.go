package f4t

import "time"

// DefaultTimeout is applied to a channel that has no timeout configured,
// before the first command is issued.
const DefaultTimeout = 1500 * time.Millisecond

// CommandChannel is the transport collaborator the controller core depends
// on. Implementations own the socket or serial line; the core only issues
// command strings and requests parsed response lines.
//
// A CommandChannel is not safe for concurrent use. The controller serializes
// all access to it; additional callers must synchronize externally.
type CommandChannel interface {
	// SendCommand transmits one command string. Fails with ErrTransport on
	// connection loss.
	SendCommand(cmd string) error

	// ReadResponse blocks until one response line is available or the channel
	// timeout elapses, failing with ErrTimeout in the latter case. The
	// returned line has its terminator and surrounding whitespace stripped.
	ReadResponse() (string, error)

	// ClearBuffer discards any unread buffered response data, preventing a
	// stale line from being misattributed to the next query.
	ClearBuffer() error

	// Timeout reports the configured per-call timeout; zero means unset.
	Timeout() time.Duration

	// SetTimeout replaces the per-call timeout.
	SetTimeout(d time.Duration)
}
