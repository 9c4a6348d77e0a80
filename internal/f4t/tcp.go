package f4t

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"
)

// TCPChannel implements CommandChannel over a TCP connection to the
// controller's SCPI service. The protocol is line-oriented: commands are
// terminated with \n and responses arrive as single text lines.
type TCPChannel struct {
	conn    net.Conn
	r       *bufio.Reader
	timeout time.Duration
}

// DialTCP connects to addr (host:port). A zero timeout leaves the channel
// unconfigured; the controller applies DefaultTimeout before the first
// command.
func DialTCP(addr string, timeout time.Duration) (*TCPChannel, error) {
	dialTimeout := timeout
	if dialTimeout <= 0 {
		dialTimeout = DefaultTimeout
	}
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrTransport, addr, err)
	}
	return NewTCPChannel(conn, timeout), nil
}

// NewTCPChannel wraps an existing connection. Useful for tests that pipe a
// scripted device behind a loopback listener.
func NewTCPChannel(conn net.Conn, timeout time.Duration) *TCPChannel {
	return &TCPChannel{
		conn:    conn,
		r:       bufio.NewReader(conn),
		timeout: timeout,
	}
}

func (t *TCPChannel) effectiveTimeout() time.Duration {
	if t.timeout <= 0 {
		return DefaultTimeout
	}
	return t.timeout
}

// SendCommand writes one newline-terminated command string.
func (t *TCPChannel) SendCommand(cmd string) error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.effectiveTimeout())); err != nil {
		return fmt.Errorf("%w: set write deadline: %v", ErrTransport, err)
	}
	if _, err := t.conn.Write([]byte(cmd + "\n")); err != nil {
		return classifyNetErr("write", err)
	}
	return nil
}

// ReadResponse reads one response line within the channel timeout.
func (t *TCPChannel) ReadResponse() (string, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(t.effectiveTimeout())); err != nil {
		return "", fmt.Errorf("%w: set read deadline: %v", ErrTransport, err)
	}
	line, err := t.r.ReadString('\n')
	if err != nil {
		return "", classifyNetErr("read", err)
	}
	return strings.TrimSpace(line), nil
}

// ClearBuffer drains pending response data. Anything already buffered is
// dropped, then the socket is polled with a near-zero deadline so bytes in
// flight are consumed without blocking a full timeout.
func (t *TCPChannel) ClearBuffer() error {
	if n := t.r.Buffered(); n > 0 {
		if _, err := t.r.Discard(n); err != nil {
			return fmt.Errorf("%w: discard buffered input: %v", ErrTransport, err)
		}
	}
	if err := t.conn.SetReadDeadline(time.Now().Add(5 * time.Millisecond)); err != nil {
		return fmt.Errorf("%w: set read deadline: %v", ErrTransport, err)
	}
	var scratch [256]byte
	for {
		if _, err := t.r.Read(scratch[:]); err != nil {
			if isNetTimeout(err) {
				return nil // nothing left in flight
			}
			return classifyNetErr("drain", err)
		}
	}
}

// Timeout reports the configured per-call timeout; zero means unset.
func (t *TCPChannel) Timeout() time.Duration { return t.timeout }

// SetTimeout replaces the per-call timeout.
func (t *TCPChannel) SetTimeout(d time.Duration) { t.timeout = d }

// Close releases the underlying connection.
func (t *TCPChannel) Close() error {
	return t.conn.Close()
}

func isNetTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

// classifyNetErr maps a socket error onto the core's error kinds.
func classifyNetErr(op string, err error) error {
	if isNetTimeout(err) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrTransport, op, err)
}
