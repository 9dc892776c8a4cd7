package relay

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readResult struct {
	data []byte
	err  error
}

// scriptReader replays reads and ends with io.EOF.
type scriptReader struct {
	reads []readResult
}

func (r *scriptReader) Read(p []byte) (int, error) {
	if len(r.reads) == 0 {
		return 0, io.EOF
	}
	res := r.reads[0]
	r.reads = r.reads[1:]
	return copy(p, res.data), res.err
}

type recordWriter struct {
	writes [][]byte
	limit  int
}

func (w *recordWriter) Write(p []byte) (int, error) {
	w.writes = append(w.writes, append([]byte(nil), p...))
	if w.limit > 0 && len(p) > w.limit {
		return w.limit, nil
	}
	return len(p), nil
}

func TestPumpForwardsEachReadAsOneWrite(t *testing.T) {
	src := &scriptReader{reads: []readResult{
		{data: []byte("AT\r\n")},
		{},
		{err: os.ErrDeadlineExceeded},
		{data: []byte{0x00, 0x01, 0xff}},
	}}
	dst := &recordWriter{}
	var echo bytes.Buffer
	var observed [][]byte
	var counter Counter
	p := &Pump{
		Tag:       "test",
		Direction: Inbound,
		Src:       src,
		Dst:       dst,
		BufSize:   255,
		Echo:      &echo,
		Hexdump:   true,
		Counter:   &counter,
		Observer: func(dir Direction, b []byte) {
			assert.Equal(t, Inbound, dir)
			observed = append(observed, append([]byte(nil), b...))
		},
	}
	require.NoError(t, p.Run(context.Background()))
	require.Equal(t, [][]byte{[]byte("AT\r\n"), {0x00, 0x01, 0xff}}, dst.writes)
	require.Equal(t, dst.writes, observed)
	require.Equal(t, "AT\r\n\x00\x01\xff", echo.String())
	require.Equal(t, uint64(7), counter.Bytes())
	require.Equal(t, uint64(2), counter.Chunks())
}

func TestPumpRoundTripSizes(t *testing.T) {
	for _, size := range []int{1, 2, 254, 255, 512, 1023, 1024} {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i * 7)
		}
		src := &scriptReader{reads: []readResult{{data: data}}}
		dst := &recordWriter{}
		p := &Pump{Tag: "size", Src: src, Dst: dst, BufSize: DefaultSocketBufSize}
		require.NoError(t, p.Run(context.Background()))
		require.Len(t, dst.writes, 1, "size %d", size)
		require.Equal(t, data, dst.writes[0])
	}
}

func TestPumpReadErrorAfterData(t *testing.T) {
	errBroken := errors.New("broken line")
	src := &scriptReader{reads: []readResult{{data: []byte("x"), err: errBroken}}}
	dst := &recordWriter{}
	p := &Pump{Tag: "err", Src: src, Dst: dst}
	require.Equal(t, errBroken, p.Run(context.Background()))
	require.Equal(t, [][]byte{[]byte("x")}, dst.writes)
}

func TestPumpShortWrite(t *testing.T) {
	src := &scriptReader{reads: []readResult{{data: []byte("hello")}}}
	p := &Pump{Tag: "short", Src: src, Dst: &recordWriter{limit: 2}}
	require.Equal(t, io.ErrShortWrite, p.Run(context.Background()))
}

func TestPumpStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pump{Tag: "cancel", Src: &scriptReader{reads: []readResult{{data: []byte("x")}}}, Dst: &recordWriter{}}
	require.NoError(t, p.Run(ctx))
}

func TestCounted(t *testing.T) {
	var buf bytes.Buffer
	var c Counter
	w := Counted(&buf, &c)
	w.Write([]byte("abc"))
	w.Write([]byte("de"))
	require.Equal(t, uint64(5), c.Bytes())
	require.Equal(t, uint64(2), c.Chunks())
}
