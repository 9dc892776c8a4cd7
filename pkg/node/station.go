package node

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"golang.org/x/term"

	"github.com/robotalks/termlink/pkg/config"
	"github.com/robotalks/termlink/pkg/console"
	"github.com/robotalks/termlink/pkg/display"
	fx "github.com/robotalks/termlink/pkg/framework"
	"github.com/robotalks/termlink/pkg/link"
	"github.com/robotalks/termlink/pkg/monitor"
	"github.com/robotalks/termlink/pkg/relay"
	"github.com/robotalks/termlink/pkg/wifi"
)

// Station runs the station role: associate, connect, then show what the
// access point sends on the label.
type Station struct {
	Config  *config.Config
	Monitor *monitor.Publisher
	Radio   wifi.Radio
	Label   *display.Label
	// Echo receives inbound bytes, Out the painted screen.
	Echo  io.Writer
	Out   io.Writer
	Stats relay.Stats

	result wifi.Result
	peer   string
}

// NewStation creates the role from configuration.
func NewStation(conf *config.Config, mon *monitor.Publisher) *Station {
	return &Station{
		Config:  conf,
		Monitor: mon,
		Radio:   wifi.NewNL80211Radio(conf.Station),
		Label:   display.NewLabel(display.InitialText),
		Echo:    os.Stdout,
		Out:     os.Stdout,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// StatusText describes the association and the peer.
func (s *Station) StatusText() string {
	if s.peer == "" {
		return fmt.Sprintf("wifi: %s", s.result.State)
	}
	return fmt.Sprintf("wifi: %s %s (%d reconnects)\npeer: %s",
		s.result.State, s.result.IP, s.result.Reconnects, s.peer)
}

// Run brings up the role. Association and connection failures are final.
func (s *Station) Run(ctx context.Context) error {
	conf := s.Config
	s.Monitor.State(monitor.StateStarting)
	if err := conf.Validate(config.RoleStation); err != nil {
		s.Monitor.State(monitor.StateFailed)
		return stageErr(StageInit, err)
	}

	defer s.Radio.Close()
	s.Monitor.State(monitor.StateAssociating)
	res, err := wifi.NewStation(s.Radio, conf.Station).Associate(ctx)
	s.result = res
	if err != nil {
		s.Monitor.State(monitor.StateFailed)
		return stageErr(StageAssociation, err)
	}
	s.Monitor.State(monitor.StateAssociated)

	dialer := &link.Dialer{
		Addr:      conf.Peer.Addr,
		Timeout:   conf.Peer.Timeout,
		Attempts:  conf.Peer.Attempts,
		Backoff:   conf.Peer.Backoff,
		KeepAlive: conf.KeepAlive,
	}
	sess, err := dialer.Dial(ctx)
	if err != nil {
		s.Monitor.State(monitor.StateFailed)
		return stageErr(StageConnection, err)
	}
	defer sess.Close()
	s.peer = sess.RemoteAddr().String()
	s.Monitor.State(monitor.StateRelaying)

	input := display.NewTextArea(relay.Counted(sess.WriteHalf(), &s.Stats.Outbound))
	loop := fx.NewLoop().Add(input)

	runner := fx.NewRunnerWith(ctx)
	runner.StopOnExit = true
	runner.Go(fx.NamedRun("socket_read", fx.RunFunc(func(ctx context.Context) error {
		return relay.Station(ctx, sess, s.Label, relay.Options{
			Echo:     s.Echo,
			Observer: s.Monitor.Observer(),
			Stats:    &s.Stats,
		})
	})))
	if conf.Screen && !conf.Shell && s.Out != nil {
		screen := display.NewScreen(s.Label, input, s.Out)
		screen.Columns = conf.Columns
		screen.Clear = isTerminal(s.Out)
		loop.Add(screen)
	}
	if conf.Viewer != "" {
		runner.Go(&display.Viewer{Addr: conf.Viewer, Label: s.Label, Input: input})
	}
	if conf.Shell {
		sh := console.New(loop, s.Label, &s.Stats)
		sh.Status = s.StatusText
		sh.Quit = runner.Stop
		runner.Go(sh)
	}
	runner.Go(fx.NamedRun("display", loop))

	err = runner.Wait()
	glog.Infof("TCP: received %d bytes, sent %d bytes",
		s.Stats.Inbound.Bytes(), s.Stats.Outbound.Bytes())
	if err != nil {
		s.Monitor.State(monitor.StateFailed)
		return stageErr(StageIO, err)
	}
	s.Monitor.State(monitor.StateStopped)
	return ctx.Err()
}
