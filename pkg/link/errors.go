package link

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// Default endpoints.
const (
	DefaultPort       = 12345
	DefaultListenAddr = "0.0.0.0:12345"
	DefaultPeerAddr   = "192.168.4.1:12345"
)

var (
	// ErrSessionClosed indicates the session was already closed.
	ErrSessionClosed = errors.New("session closed")
)

// OpError reports a failed connection establishment step.
// Op is one of "listen", "accept", "connect".
type OpError struct {
	Op   string
	Addr string
	Err  error
}

// Error implements error.
func (e *OpError) Error() string {
	return "TCP: " + e.Op + " " + e.Addr + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error {
	return e.Err
}

// IsExpectedClose reports whether err is a normal teardown of the
// connection: EOF, closed connection, broken pipe, or connection reset.
func IsExpectedClose(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) || errors.Is(err, ErrSessionClosed) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EPIPE || errno == syscall.ECONNRESET
	}
	return false
}
