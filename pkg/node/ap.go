package node

import (
	"context"
	"io"
	"net"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/robotalks/termlink/pkg/config"
	"github.com/robotalks/termlink/pkg/link"
	"github.com/robotalks/termlink/pkg/monitor"
	"github.com/robotalks/termlink/pkg/relay"
	"github.com/robotalks/termlink/pkg/uart"
	"github.com/robotalks/termlink/pkg/wifi"
)

// AP runs the access point role: serial line on one side, the single
// station connection on the other.
type AP struct {
	Config  *config.Config
	Monitor *monitor.Publisher
	Echo    io.Writer
	Stats   relay.Stats

	// OpenLine opens the serial line, defaults to the configured device
	// or a pseudo-terminal.
	OpenLine func() (uart.Port, error)
	// Listening is called once the listener is bound.
	Listening func(net.Addr)
	// Stations lists associated stations for join/leave events. Nil
	// disables the watcher. Run closes it when it is an io.Closer.
	Stations wifi.StationLister
}

// NewAP creates the role from configuration.
func NewAP(conf *config.Config, mon *monitor.Publisher) *AP {
	return &AP{
		Config:   conf,
		Monitor:  mon,
		Echo:     os.Stdout,
		Stations: &wifi.NL80211Stations{Interface: conf.AP.Interface},
	}
}

func (a *AP) openLine() (uart.Port, error) {
	if a.OpenLine != nil {
		return a.OpenLine()
	}
	if a.Config.VirtualUART {
		return uart.OpenPTY(a.Config.UART)
	}
	return uart.Open(a.Config.UART)
}

func (a *AP) writeHostapd() error {
	f, err := os.Create(a.Config.HostapdConf)
	if err != nil {
		return err
	}
	if err = a.Config.AP.WriteHostapd(f); err != nil {
		f.Close()
		return err
	}
	glog.Infof("Wifi: hostapd configuration written to %s", a.Config.HostapdConf)
	return f.Close()
}

func (a *AP) stationWatcher() *wifi.StationWatcher {
	return &wifi.StationWatcher{
		Lister:   a.Stations,
		Interval: 2 * time.Second,
		OnChange: a.Monitor.Stations,
	}
}

// Run brings up the role and relays until the session ends or ctx is
// done. Everything opened here is closed before it returns.
func (a *AP) Run(ctx context.Context) error {
	conf := a.Config
	a.Monitor.State(monitor.StateStarting)
	if err := conf.Validate(config.RoleAP); err != nil {
		a.Monitor.State(monitor.StateFailed)
		return stageErr(StageInit, err)
	}
	glog.Infof("Wifi: AP %q channel %d auth %s max %d clients",
		conf.AP.SSID, conf.AP.Channel, conf.AP.EffectiveAuth(), conf.AP.MaxClients)
	if conf.HostapdConf != "" {
		if err := a.writeHostapd(); err != nil {
			a.Monitor.State(monitor.StateFailed)
			return stageErr(StageInit, errors.Wrap(err, "hostapd configuration"))
		}
	}

	line, err := a.openLine()
	if err != nil {
		a.Monitor.State(monitor.StateFailed)
		return stageErr(StageInit, err)
	}
	defer line.Close()
	glog.Infof("UART: relaying %s", line.Name())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if a.Stations != nil {
		if c, ok := a.Stations.(io.Closer); ok {
			defer c.Close()
		}
		done := make(chan struct{})
		defer func() { <-done }()
		defer cancel()
		go func() {
			defer close(done)
			a.stationWatcher().Run(ctx)
		}()
	}

	listener := link.NewListener(conf.Listen)
	listener.KeepAlive = conf.KeepAlive
	defer listener.Close()
	addr, err := listener.Listen(ctx)
	if err != nil {
		a.Monitor.State(monitor.StateFailed)
		return stageErr(StageConnection, err)
	}
	a.Monitor.State(monitor.StateListening)
	if a.Listening != nil {
		a.Listening(addr)
	}

	sess, err := listener.Accept(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.Monitor.State(monitor.StateFailed)
		return stageErr(StageConnection, err)
	}
	defer sess.Close()
	a.Monitor.State(monitor.StateRelaying)

	err = relay.Host(ctx, sess, line, relay.Options{
		Echo:     a.Echo,
		Observer: a.Monitor.Observer(),
		Stats:    &a.Stats,
	})
	glog.Infof("TCP: relayed %d bytes in, %d bytes out",
		a.Stats.Inbound.Bytes(), a.Stats.Outbound.Bytes())
	if err != nil && err != context.Canceled {
		a.Monitor.State(monitor.StateFailed)
		return stageErr(StageIO, err)
	}
	a.Monitor.State(monitor.StateStopped)
	return err
}
