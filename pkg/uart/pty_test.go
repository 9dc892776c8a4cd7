//go:build linux || darwin

package uart

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPTYPassesBytes(t *testing.T) {
	p, err := OpenPTY(DefaultConfig())
	require.NoError(t, err)
	defer p.Close()

	term, err := os.OpenFile(p.SlavePath(), os.O_RDWR, 0)
	require.NoError(t, err)
	defer term.Close()

	_, err = term.Write([]byte("AT\r\n"))
	require.NoError(t, err)
	buf := make([]byte, 255)
	n, err := io.ReadAtLeast(p, buf, 4)
	require.NoError(t, err)
	require.Equal(t, "AT\r\n", string(buf[:n]))

	_, err = p.Write([]byte{0x00, 0x7f, 0xff})
	require.NoError(t, err)
	n, err = io.ReadAtLeast(term, buf, 3)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x7f, 0xff}, buf[:n])
}

func TestPTYReadTimeout(t *testing.T) {
	p, err := OpenPTY(DefaultConfig())
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, p.SetReadTimeout(200*time.Millisecond))

	type result struct {
		n   int
		err error
	}
	resCh := make(chan result, 1)
	start := time.Now()
	go func() {
		n, err := p.Read(make([]byte, 255))
		resCh <- result{n, err}
	}()
	select {
	case res := <-resCh:
		require.NoError(t, res.err)
		require.Zero(t, res.n)
		require.True(t, time.Since(start) >= 150*time.Millisecond)
	case <-time.After(3 * time.Second):
		t.Fatal("PTY read ignored the read timeout")
	}
}

func TestConfigValidate(t *testing.T) {
	conf := DefaultConfig()
	require.NoError(t, conf.Validate())
	require.Equal(t, "115200 8N1", conf.String())
	conf.Parity = "mark"
	require.Error(t, conf.Validate())
	conf = DefaultConfig()
	conf.StopBits = 3
	require.Error(t, conf.Validate())
}

func TestOpenWithoutDevice(t *testing.T) {
	_, err := Open(DefaultConfig())
	require.Equal(t, ErrNoDevice, err)
}
