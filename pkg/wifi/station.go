package wifi

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/golang/glog"
)

// Radio is the station side of the wireless driver.
type Radio interface {
	io.Closer
	// Start puts the radio in station mode and returns its event stream.
	// Events stop when ctx is done.
	Start(ctx context.Context) (<-chan Event, error)
	// Connect requests an association attempt. The outcome is reported
	// through the event stream.
	Connect() error
}

// Result is the outcome of Station.Associate.
type Result struct {
	State      State
	IP         net.IP
	Reconnects int
}

// Associated indicates the station got an address.
func (r Result) Associated() bool {
	return r.State == StateAssociated
}

// Station associates to the access point through a Radio.
type Station struct {
	Radio  Radio
	Config StationConfig
}

// NewStation creates a Station.
func NewStation(radio Radio, conf StationConfig) *Station {
	return &Station{Radio: radio, Config: conf}
}

type outcome struct {
	result Result
	err    error
}

// Associate blocks until the association sequence reaches a terminal
// state or the configured timeout expires. ErrAssociationFailed is
// returned with the result when the retry budget is spent.
// Radio events are no longer consumed once Associate returns.
func (s *Station) Associate(ctx context.Context) (Result, error) {
	timeout := s.Config.Timeout
	if timeout <= 0 {
		timeout = DefaultStationConfig().Timeout
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := s.Radio.Start(ctx)
	if err != nil {
		return Result{}, err
	}
	glog.Infof("Wifi: STA initialization complete, SSID %q", s.Config.SSID)

	outcomeCh := make(chan outcome, 1)
	go func() {
		outcomeCh <- s.drive(ctx, events)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case o := <-outcomeCh:
		if o.err != nil {
			return o.result, o.err
		}
		if !o.result.Associated() {
			glog.Warningf("Wifi: failed to connect to AP after %d retries", o.result.Reconnects)
			return o.result, ErrAssociationFailed
		}
		glog.Infof("Wifi: connected to AP, STA IP %s", o.result.IP)
		return o.result, nil
	case <-timer.C:
		glog.Warningf("Wifi: no association outcome within %s", timeout)
		return Result{State: StateConnecting}, ErrAssociationTimeout
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (s *Station) drive(ctx context.Context, events <-chan Event) outcome {
	assoc := NewAssociation(s.Config.MaxRetries)
	for {
		var ev Event
		var ok bool
		select {
		case <-ctx.Done():
			return outcome{err: ctx.Err()}
		case ev, ok = <-events:
		}
		if !ok {
			return outcome{err: ErrRadioStopped}
		}
		glog.V(2).Infof("Wifi: event %s in %s", ev.Kind, assoc.State())
		if assoc.Handle(ev) == ActionConnect {
			if assoc.Reconnects() == 0 {
				glog.Info("Wifi: establishing connection with AP")
			} else {
				glog.Infof("Wifi: reconnecting to AP (%d/%d)", assoc.Retries(), assoc.MaxRetries)
			}
			if err := s.Radio.Connect(); err != nil {
				return outcome{err: err}
			}
		}
		if assoc.State().IsTerminal() {
			return outcome{result: Result{
				State:      assoc.State(),
				IP:         assoc.IP(),
				Reconnects: assoc.Reconnects(),
			}}
		}
	}
}
