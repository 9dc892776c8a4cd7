package relay

import (
	"io"
	"sync/atomic"
)

// Direction is the direction of a relay.
type Direction string

// Directions seen from the node.
const (
	// Inbound is socket to peripheral.
	Inbound Direction = "inbound"
	// Outbound is peripheral to socket.
	Outbound Direction = "outbound"
)

// Counter counts forwarded bytes and chunks.
type Counter struct {
	bytes  atomic.Uint64
	chunks atomic.Uint64
}

// Add records one chunk of n bytes.
func (c *Counter) Add(n int) {
	c.bytes.Add(uint64(n))
	c.chunks.Add(1)
}

// Bytes gets the number of bytes forwarded.
func (c *Counter) Bytes() uint64 {
	return c.bytes.Load()
}

// Chunks gets the number of writes issued.
func (c *Counter) Chunks() uint64 {
	return c.chunks.Load()
}

// Stats holds the counters of both directions.
type Stats struct {
	Inbound  Counter
	Outbound Counter
}

// Counter gets the counter of a direction.
func (s *Stats) Counter(dir Direction) *Counter {
	if dir == Outbound {
		return &s.Outbound
	}
	return &s.Inbound
}

type countingWriter struct {
	w io.Writer
	c *Counter
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	if n > 0 {
		w.c.Add(n)
	}
	return n, err
}

// Counted wraps w so every write is recorded in c.
func Counted(w io.Writer, c *Counter) io.Writer {
	return &countingWriter{w: w, c: c}
}
