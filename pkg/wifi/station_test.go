package wifi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type scriptedRadio struct {
	script   []Event
	failWith error

	lock     sync.Mutex
	events   chan Event
	connects int
	closed   bool
}

func (r *scriptedRadio) Start(ctx context.Context) (<-chan Event, error) {
	r.events = make(chan Event, len(r.script)+1)
	r.events <- Event{Kind: EventStationStart}
	return r.events, nil
}

func (r *scriptedRadio) Connect() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.connects++
	if r.failWith != nil {
		return r.failWith
	}
	if len(r.script) > 0 {
		r.events <- r.script[0]
		r.script = r.script[1:]
	}
	return nil
}

func (r *scriptedRadio) Close() error {
	r.closed = true
	return nil
}

func (r *scriptedRadio) connectCount() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.connects
}

func stationConfig() StationConfig {
	conf := DefaultStationConfig()
	conf.Timeout = time.Second
	return conf
}

func repeat(ev Event, n int) []Event {
	evs := make([]Event, n)
	for i := range evs {
		evs[i] = ev
	}
	return evs
}

func TestStationAssociateFirstAttempt(t *testing.T) {
	radio := &scriptedRadio{script: []Event{gotIP("192.168.4.2")}}
	res, err := NewStation(radio, stationConfig()).Associate(context.Background())
	require.NoError(t, err)
	require.True(t, res.Associated())
	require.Equal(t, "192.168.4.2", res.IP.String())
	require.Equal(t, 0, res.Reconnects)
	require.Equal(t, 1, radio.connectCount())
}

func TestStationAssociateAfterRetries(t *testing.T) {
	script := append(repeat(disconnected(), 9), gotIP("192.168.4.3"))
	radio := &scriptedRadio{script: script}
	res, err := NewStation(radio, stationConfig()).Associate(context.Background())
	require.NoError(t, err)
	require.True(t, res.Associated())
	require.Equal(t, 9, res.Reconnects)
	require.Equal(t, 10, radio.connectCount())
}

func TestStationAssociateFailed(t *testing.T) {
	radio := &scriptedRadio{script: repeat(disconnected(), 11)}
	res, err := NewStation(radio, stationConfig()).Associate(context.Background())
	require.Equal(t, ErrAssociationFailed, err)
	require.Equal(t, StateFailed, res.State)
	require.Equal(t, DefaultMaxRetries+1, radio.connectCount())
}

func TestStationAssociateTimeout(t *testing.T) {
	conf := stationConfig()
	conf.Timeout = 50 * time.Millisecond
	radio := &scriptedRadio{}
	start := time.Now()
	_, err := NewStation(radio, conf).Associate(context.Background())
	require.Equal(t, ErrAssociationTimeout, err)
	require.True(t, time.Since(start) < time.Second)
}

func TestStationAssociateConnectError(t *testing.T) {
	errRadio := errors.New("radio busy")
	radio := &scriptedRadio{failWith: errRadio}
	_, err := NewStation(radio, stationConfig()).Associate(context.Background())
	require.Equal(t, errRadio, err)
}

func TestStationAssociateRadioStopped(t *testing.T) {
	radio := &closingRadio{}
	_, err := NewStation(radio, stationConfig()).Associate(context.Background())
	require.Equal(t, ErrRadioStopped, err)
}

type closingRadio struct{}

func (r *closingRadio) Start(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event)
	close(ch)
	return ch, nil
}

func (r *closingRadio) Connect() error { return nil }
func (r *closingRadio) Close() error   { return nil }
