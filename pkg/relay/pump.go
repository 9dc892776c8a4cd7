package relay

import (
	"context"
	"encoding/hex"
	"io"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/termlink/pkg/link"
)

// Observer sees every forwarded chunk. p must not be retained.
type Observer func(dir Direction, p []byte)

// Pump forwards bytes from Src to Dst one read-forward cycle at a time.
// Every cycle reads into its own buffer and a read of n > 0 bytes is
// forwarded with exactly one write of n bytes.
type Pump struct {
	Tag       string
	Direction Direction
	Src       io.Reader
	Dst       io.Writer
	BufSize   int

	// Echo receives a copy of every chunk, usually the console.
	Echo io.Writer
	// Hexdump logs every chunk at verbosity 2.
	Hexdump  bool
	Observer Observer
	Counter  *Counter
}

// Name implements Named.
func (p *Pump) Name() string {
	return p.Tag
}

// Run runs the cycles until the source ends or ctx is done. Read timeouts
// and empty reads start the next cycle. It returns nil when the
// connection was closed or ctx is done.
func (p *Pump) Run(ctx context.Context) error {
	size := p.BufSize
	if size <= 0 {
		size = DefaultSocketBufSize
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		buf := make([]byte, size)
		n, err := p.Src.Read(buf)
		if n > 0 {
			if werr := p.forward(buf[:n]); werr != nil {
				if link.IsExpectedClose(werr) {
					glog.Infof("%s: destination closed", p.Tag)
					return nil
				}
				glog.Errorf("%s: write failed: %v", p.Tag, werr)
				return werr
			}
		}
		switch {
		case err == nil:
		case os.IsTimeout(err):
		case link.IsExpectedClose(err):
			glog.Infof("%s: source closed", p.Tag)
			return nil
		default:
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			glog.Errorf("%s: read failed: %v", p.Tag, err)
			return err
		}
	}
}

func (p *Pump) forward(chunk []byte) error {
	if p.Hexdump {
		glog.V(2).Infof("%s: Read %d bytes\n%s", p.Tag, len(chunk), hex.Dump(chunk))
	} else {
		glog.V(2).Infof("%s: %d bytes", p.Tag, len(chunk))
	}
	written, err := p.Dst.Write(chunk)
	if written > 0 && p.Counter != nil {
		p.Counter.Add(written)
	}
	if err != nil {
		return err
	}
	if written != len(chunk) {
		return io.ErrShortWrite
	}
	if p.Echo != nil {
		p.Echo.Write(chunk)
	}
	if p.Observer != nil {
		p.Observer(p.Direction, chunk)
	}
	return nil
}
