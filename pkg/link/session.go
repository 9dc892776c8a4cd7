package link

import (
	"io"
	"net"
	"sync"

	"github.com/golang/glog"
)

// Session owns the established connection, and on the access point the
// listener it was accepted from. The relay tasks get the read half and the
// write half separately and never close the connection themselves.
type Session struct {
	conn     net.Conn
	listener net.Listener

	closeOnce sync.Once
	closeErr  error
	closed    chan struct{}
}

// NewSession wraps conn. listener may be nil.
func NewSession(conn net.Conn, listener net.Listener) *Session {
	return &Session{
		conn:     conn,
		listener: listener,
		closed:   make(chan struct{}),
	}
}

// LocalAddr gets the local address of the connection.
func (s *Session) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// RemoteAddr gets the peer address.
func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

func (s *Session) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

type readHalf struct{ s *Session }

func (h readHalf) Read(p []byte) (int, error) {
	if h.s.isClosed() {
		return 0, ErrSessionClosed
	}
	return h.s.conn.Read(p)
}

type writeHalf struct{ s *Session }

func (h writeHalf) Write(p []byte) (int, error) {
	if h.s.isClosed() {
		return 0, ErrSessionClosed
	}
	return h.s.conn.Write(p)
}

// ReadHalf returns the inbound direction of the connection.
func (s *Session) ReadHalf() io.Reader {
	return readHalf{s: s}
}

// WriteHalf returns the outbound direction of the connection.
func (s *Session) WriteHalf() io.Writer {
	return writeHalf{s: s}
}

// CloseWrite shuts down the outbound direction only, when the connection
// supports it.
func (s *Session) CloseWrite() error {
	if cw, ok := s.conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return s.Close()
}

// Done is closed once Close is called.
func (s *Session) Done() <-chan struct{} {
	return s.closed
}

// Close closes the connection and the listener. It is safe to call
// multiple times, and every call returns the result of the first.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		glog.Infof("TCP: closing session with %s", s.conn.RemoteAddr())
		s.closeErr = s.conn.Close()
		if s.listener != nil {
			if err := s.listener.Close(); err != nil && s.closeErr == nil && !IsExpectedClose(err) {
				s.closeErr = err
			}
		}
		close(s.closed)
	})
	return s.closeErr
}
