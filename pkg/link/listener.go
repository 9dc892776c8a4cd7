package link

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/termlink/pkg/framework"
)

// Listener accepts exactly one client per process.
type Listener struct {
	Addr      string
	KeepAlive time.Duration

	lock     sync.Mutex
	listener net.Listener
	accepted bool
	session  *Session
	err      error
}

// NewListener creates a Listener on addr.
func NewListener(addr string) *Listener {
	return &Listener{Addr: addr, KeepAlive: DefaultKeepAlive}
}

// Listen binds the address if not bound yet and returns the bound address.
func (l *Listener) Listen(ctx context.Context) (net.Addr, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if err := l.listenLocked(ctx); err != nil {
		return nil, err
	}
	return l.listener.Addr(), nil
}

func (l *Listener) listenLocked(ctx context.Context) error {
	if l.listener != nil {
		return nil
	}
	if l.err != nil {
		return l.err
	}
	lc := net.ListenConfig{KeepAlive: l.KeepAlive}
	ln, err := lc.Listen(ctx, "tcp", l.Addr)
	if err != nil {
		l.err = &OpError{Op: "listen", Addr: l.Addr, Err: err}
		glog.Errorf("%v", l.err)
		return l.err
	}
	glog.Infof("TCP: socket listening on %s", ln.Addr())
	l.listener = ln
	return nil
}

// Accept waits for the one client. The first call binds when needed and
// accepts; later calls return the same session or the same error.
// Canceling ctx unblocks a pending accept and closes the listener.
func (l *Listener) Accept(ctx context.Context) (*Session, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.accepted {
		return l.session, l.err
	}
	l.accepted = true
	if err := l.listenLocked(ctx); err != nil {
		return nil, err
	}
	var conn net.Conn
	err := fx.RunWithContextCloser(ctx, l.listener, func() (err error) {
		conn, err = l.listener.Accept()
		return
	})
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		l.listener.Close()
		l.err = &OpError{Op: "accept", Addr: l.listener.Addr().String(), Err: err}
		glog.Errorf("%v", l.err)
		return nil, l.err
	}
	glog.Infof("TCP: socket accepted from %s", conn.RemoteAddr())
	l.session = NewSession(conn, l.listener)
	return l.session, nil
}

// Close releases the listener when no session took ownership of it.
func (l *Listener) Close() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.listener == nil || l.session != nil {
		return nil
	}
	err := l.listener.Close()
	if IsExpectedClose(err) {
		return nil
	}
	return err
}
