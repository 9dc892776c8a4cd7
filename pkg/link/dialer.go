package link

import (
	"context"
	"net"
	"time"

	"github.com/golang/glog"
)

// Defaults for establishing the connection.
const (
	DefaultKeepAlive   = time.Second
	DefaultDialTimeout = 10 * time.Second
	DefaultBackoff     = 500 * time.Millisecond
	maxBackoff         = 10 * time.Second
)

// Dialer connects the station to the access point.
// With Attempts <= 1 a single failure is final.
type Dialer struct {
	Addr      string
	Timeout   time.Duration
	Attempts  int
	Backoff   time.Duration
	KeepAlive time.Duration
}

// NewDialer creates a Dialer with defaults.
func NewDialer(addr string) *Dialer {
	return &Dialer{
		Addr:      addr,
		Timeout:   DefaultDialTimeout,
		Attempts:  1,
		Backoff:   DefaultBackoff,
		KeepAlive: DefaultKeepAlive,
	}
}

// Dial connects and returns the session.
func (d *Dialer) Dial(ctx context.Context) (*Session, error) {
	attempts := d.Attempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := d.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	var err error
	for n := 1; ; n++ {
		var conn net.Conn
		if conn, err = d.dialOnce(ctx); err == nil {
			glog.Infof("TCP: successfully connected to %s", conn.RemoteAddr())
			return NewSession(conn, nil), nil
		}
		glog.Errorf("TCP: socket unable to connect (%d/%d): %v", n, attempts, err)
		if n >= attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, &OpError{Op: "connect", Addr: d.Addr, Err: ctx.Err()}
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return nil, &OpError{Op: "connect", Addr: d.Addr, Err: err}
}

func (d *Dialer) dialOnce(ctx context.Context) (net.Conn, error) {
	nd := net.Dialer{Timeout: d.Timeout, KeepAlive: d.KeepAlive}
	return nd.DialContext(ctx, "tcp", d.Addr)
}
