package relay

import (
	"context"
	"io"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/robotalks/termlink/pkg/link"
)

// Buffer sizes of a single cycle.
const (
	DefaultSocketBufSize = 1024
	DefaultSerialBufSize = 255
	// DefaultLabelBufSize leaves room for a terminator in the label text.
	DefaultLabelBufSize = DefaultSocketBufSize - 1
)

// Options are shared by both roles.
type Options struct {
	// Echo receives inbound bytes, usually os.Stdout.
	Echo     io.Writer
	Observer Observer
	Stats    *Stats
}

func (o *Options) counter(dir Direction) *Counter {
	if o.Stats == nil {
		return nil
	}
	return o.Stats.Counter(dir)
}

// Host relays between the session and the serial line until either side
// ends. The terminating pump cancels its sibling, and the session is closed
// before Host returns. The serial line stays open, its owner closes it.
func Host(ctx context.Context, sess *link.Session, line io.ReadWriter, opts Options) error {
	tx := &Pump{
		Tag:       "TX_TASK",
		Direction: Inbound,
		Src:       sess.ReadHalf(),
		Dst:       line,
		BufSize:   DefaultSerialBufSize,
		Echo:      opts.Echo,
		Observer:  opts.Observer,
		Counter:   opts.counter(Inbound),
	}
	rx := &Pump{
		Tag:       "RX_TASK",
		Direction: Outbound,
		Src:       line,
		Dst:       sess.WriteHalf(),
		BufSize:   DefaultSocketBufSize,
		Hexdump:   true,
		Observer:  opts.Observer,
		Counter:   opts.counter(Outbound),
	}
	return run(ctx, sess, tx, rx)
}

// Station relays from the session into the label until the session ends.
func Station(ctx context.Context, sess *link.Session, label io.Writer, opts Options) error {
	read := &Pump{
		Tag:       "socket_read",
		Direction: Inbound,
		Src:       sess.ReadHalf(),
		Dst:       label,
		BufSize:   DefaultLabelBufSize,
		Echo:      opts.Echo,
		Observer:  opts.Observer,
		Counter:   opts.counter(Inbound),
	}
	return run(ctx, sess, read)
}

func run(ctx context.Context, sess *link.Session, pumps ...*Pump) error {
	g, gctx := errgroup.WithContext(ctx)
	stopCtx, stop := context.WithCancel(gctx)
	defer stop()
	for _, p := range pumps {
		p := p
		g.Go(func() error {
			defer stop()
			err := p.Run(stopCtx)
			glog.V(1).Infof("%s: stopped: %v", p.Name(), err)
			return err
		})
	}
	g.Go(func() error {
		<-stopCtx.Done()
		// a blocked socket read only returns once the session is closed
		sess.Close()
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
