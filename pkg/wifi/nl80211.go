package wifi

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/golang/glog"
	nl80211 "github.com/mdlayher/wifi"
	"github.com/pkg/errors"
)

// NL80211Radio observes a host wireless interface through nl80211.
// Association itself is left to the system supplicant: a connect request
// makes the radio check, for up to PollInterval, whether the interface is
// associated to the configured SSID and carries an IPv4 address.
type NL80211Radio struct {
	Interface    string
	SSID         string
	PollInterval time.Duration

	client    *nl80211.Client
	connectCh chan struct{}
	lock      sync.Mutex
}

const nl80211CheckPeriod = 200 * time.Millisecond

// NewNL80211Radio creates the radio from station config.
func NewNL80211Radio(conf StationConfig) *NL80211Radio {
	return &NL80211Radio{
		Interface:    conf.Interface,
		SSID:         conf.SSID,
		PollInterval: conf.PollInterval,
		connectCh:    make(chan struct{}, 1),
	}
}

// Start implements Radio.
func (r *NL80211Radio) Start(ctx context.Context) (<-chan Event, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.client == nil {
		client, err := nl80211.New()
		if err != nil {
			return nil, errors.Wrap(err, "open nl80211")
		}
		r.client = client
	}
	ifi, err := r.findInterface()
	if err != nil {
		return nil, err
	}
	events := make(chan Event, 1)
	go r.run(ctx, ifi, events)
	return events, nil
}

// Connect implements Radio.
func (r *NL80211Radio) Connect() error {
	select {
	case r.connectCh <- struct{}{}:
	default:
	}
	return nil
}

// Close implements Radio.
func (r *NL80211Radio) Close() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

func (r *NL80211Radio) findInterface() (*nl80211.Interface, error) {
	ifis, err := r.client.Interfaces()
	if err != nil {
		return nil, errors.Wrap(err, "list wireless interfaces")
	}
	for _, ifi := range ifis {
		if ifi.Name == r.Interface {
			return ifi, nil
		}
	}
	return nil, errors.Wrap(ErrInterfaceNotFound, r.Interface)
}

func (r *NL80211Radio) run(ctx context.Context, ifi *nl80211.Interface, events chan<- Event) {
	defer close(events)
	if !sendEvent(ctx, events, Event{Kind: EventStationStart}) {
		return
	}
	period := r.PollInterval
	if period <= 0 {
		period = DefaultStationConfig().PollInterval
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.connectCh:
		}
		ip := r.waitAssociated(ctx, ifi, period)
		if ip == nil {
			if !sendEvent(ctx, events, Event{Kind: EventDisconnected}) {
				return
			}
			continue
		}
		sendEvent(ctx, events, Event{Kind: EventGotIP, IP: ip})
		return
	}
}

func (r *NL80211Radio) waitAssociated(ctx context.Context, ifi *nl80211.Interface, period time.Duration) net.IP {
	deadline := time.After(period)
	ticker := time.NewTicker(nl80211CheckPeriod)
	defer ticker.Stop()
	for {
		if ip := r.check(ifi); ip != nil {
			return ip
		}
		select {
		case <-ctx.Done():
			return nil
		case <-deadline:
			return nil
		case <-ticker.C:
		}
	}
}

func (r *NL80211Radio) check(ifi *nl80211.Interface) net.IP {
	r.lock.Lock()
	client := r.client
	r.lock.Unlock()
	if client == nil {
		return nil
	}
	bss, err := client.BSS(ifi)
	if err != nil {
		glog.V(2).Infof("Wifi: BSS %s: %v", ifi.Name, err)
		return nil
	}
	if bss.Status != nl80211.BSSStatusAssociated || (r.SSID != "" && bss.SSID != r.SSID) {
		return nil
	}
	return interfaceIPv4(ifi.Name)
}

func interfaceIPv4(name string) net.IP {
	nif, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	addrs, err := nif.Addrs()
	if err != nil {
		return nil
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok {
			if ip4 := ipnet.IP.To4(); ip4 != nil {
				return ip4
			}
		}
	}
	return nil
}

func sendEvent(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
