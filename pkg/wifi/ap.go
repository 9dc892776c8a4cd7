package wifi

import (
	"context"
	"time"

	"github.com/golang/glog"
	nl80211 "github.com/mdlayher/wifi"
	"github.com/pkg/errors"
)

// StationLister lists the stations associated to an access point by MAC.
type StationLister interface {
	Stations() ([]string, error)
}

// StationWatcher logs stations joining and leaving the access point.
type StationWatcher struct {
	Lister   StationLister
	Interval time.Duration

	// OnChange is called with the current count after every change.
	OnChange func(joined, left []string, count int)

	known map[string]bool
}

// Name implements Named.
func (w *StationWatcher) Name() string {
	return "ap-stations"
}

// Run implements Runnable.
func (w *StationWatcher) Run(ctx context.Context) error {
	interval := w.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := w.Poll(); err != nil {
			glog.V(2).Infof("Wifi: list stations: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll compares the current station list with the previous one.
func (w *StationWatcher) Poll() error {
	macs, err := w.Lister.Stations()
	if err != nil {
		return err
	}
	current := make(map[string]bool, len(macs))
	var joined, left []string
	for _, mac := range macs {
		current[mac] = true
		if !w.known[mac] {
			joined = append(joined, mac)
			glog.Infof("Wifi: station %s join", mac)
		}
	}
	for mac := range w.known {
		if !current[mac] {
			left = append(left, mac)
			glog.Infof("Wifi: station %s leave", mac)
		}
	}
	w.known = current
	if (len(joined) > 0 || len(left) > 0) && w.OnChange != nil {
		w.OnChange(joined, left, len(current))
	}
	return nil
}

// NL80211Stations lists stations of an AP interface through nl80211.
type NL80211Stations struct {
	Interface string
	client    *nl80211.Client
}

// Stations implements StationLister.
func (s *NL80211Stations) Stations() ([]string, error) {
	if s.client == nil {
		client, err := nl80211.New()
		if err != nil {
			return nil, errors.Wrap(err, "open nl80211")
		}
		s.client = client
	}
	ifis, err := s.client.Interfaces()
	if err != nil {
		return nil, err
	}
	for _, ifi := range ifis {
		if ifi.Name != s.Interface {
			continue
		}
		infos, err := s.client.StationInfo(ifi)
		if err != nil {
			return nil, err
		}
		macs := make([]string, 0, len(infos))
		for _, info := range infos {
			macs = append(macs, info.HardwareAddr.String())
		}
		return macs, nil
	}
	return nil, errors.Wrap(ErrInterfaceNotFound, s.Interface)
}

// Close releases the nl80211 client.
func (s *NL80211Stations) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
