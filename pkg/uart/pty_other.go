//go:build !linux && !darwin

package uart

import (
	"errors"
	"time"
)

// PTY is unavailable on this platform.
type PTY struct{}

// OpenPTY fails on platforms without pseudo-terminals.
func OpenPTY(conf Config) (*PTY, error) {
	return nil, errors.New("UART: pseudo-terminals not supported")
}

func (p *PTY) Name() string                         { return "" }
func (p *PTY) SlavePath() string                    { return "" }
func (p *PTY) SetReadTimeout(d time.Duration) error { return nil }
func (p *PTY) Read(b []byte) (int, error)           { return 0, errors.New("UART: not supported") }
func (p *PTY) Write(b []byte) (int, error)          { return 0, errors.New("UART: not supported") }
func (p *PTY) Close() error                         { return nil }
