//go:build linux || darwin

package uart

import (
	"errors"
	"os"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/golang/glog"
	"golang.org/x/term"
)

// PTY is a virtual serial line backed by a pseudo-terminal pair. The
// relay owns the master side, a terminal program attaches to SlavePath.
type PTY struct {
	master  *os.File
	slave   *os.File
	timeout time.Duration
}

// OpenPTY creates the pair and puts the slave in raw mode so bytes pass
// through unmodified.
func OpenPTY(conf Config) (*PTY, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, err
	}
	if _, err = term.MakeRaw(int(slave.Fd())); err != nil {
		master.Close()
		slave.Close()
		return nil, err
	}
	if master, err = pollable(master); err != nil {
		slave.Close()
		return nil, err
	}
	p := &PTY{master: master, slave: slave, timeout: conf.ReadTimeout}
	glog.Infof("UART: virtual line at %s", slave.Name())
	return p, nil
}

// pollable swaps f for a non-blocking copy of its descriptor registered
// with the runtime poller. pty.Open leaves the master in blocking mode,
// where read deadlines are not supported.
func pollable(f *os.File) (*os.File, error) {
	defer f.Close()
	fd, err := syscall.Dup(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	if err = syscall.SetNonblock(fd, true); err != nil {
		syscall.Close(fd)
		return nil, err
	}
	return os.NewFile(uintptr(fd), f.Name()), nil
}

// Name implements Port.
func (p *PTY) Name() string {
	return p.master.Name()
}

// SlavePath is the device a terminal program opens.
func (p *PTY) SlavePath() string {
	return p.slave.Name()
}

// SetReadTimeout implements Port.
func (p *PTY) SetReadTimeout(d time.Duration) error {
	p.timeout = d
	return nil
}

// Read implements Port. A read that times out returns (0, nil).
func (p *PTY) Read(b []byte) (int, error) {
	if p.timeout > 0 {
		if err := p.master.SetReadDeadline(time.Now().Add(p.timeout)); err != nil {
			return 0, err
		}
	}
	n, err := p.master.Read(b)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return n, nil
	}
	return n, err
}

// Write implements Port.
func (p *PTY) Write(b []byte) (int, error) {
	return p.master.Write(b)
}

// Close closes both sides.
func (p *PTY) Close() error {
	err := p.master.Close()
	if e := p.slave.Close(); err == nil {
		err = e
	}
	return err
}
