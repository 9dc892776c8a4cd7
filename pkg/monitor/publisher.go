package monitor

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/termlink/pkg/relay"
)

// Node states published on the state topic.
const (
	StateStarting    = "starting"
	StateAssociating = "associating"
	StateAssociated  = "associated"
	StateListening   = "listening"
	StateConnected   = "connected"
	StateRelaying    = "relaying"
	StateStopped     = "stopped"
	StateFailed      = "failed"
	StateOffline     = "offline"
)

// Publisher publishes the node state and traffic. A nil Publisher
// discards everything so callers don't need to check whether monitoring
// is enabled.
type Publisher struct {
	Queue *Queue
	Role  string
	Node  string

	now func() time.Time
}

// StateTopic is the retained topic of a node's state.
func StateTopic(role, node string) string {
	return role + "/" + node + "/state"
}

// TrafficTopic is the topic of a node's forwarded chunks.
func TrafficTopic(role, node string) string {
	return role + "/" + node + "/traffic"
}

// StationsTopic is the retained topic of the stations associated with an
// access point.
func StationsTopic(role, node string) string {
	return role + "/" + node + "/stations"
}

// NewPublisher connects to the broker at brokerURL. The broker marks the
// node offline when the connection drops.
func NewPublisher(brokerURL, role string) (*Publisher, error) {
	opts, prefix, err := OptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	p := &Publisher{Role: role, Node: NodeID()}
	if will, err := p.event(KindState, func(e *Event) { e.State = StateOffline }).Encode(); err == nil {
		opts.SetBinaryWill(prefix+StateTopic(p.Role, p.Node), will, 1, true)
	}
	if opts.ClientID == "" {
		opts.SetClientID("termlink:" + role + ":" + p.Node)
	}
	p.Queue = NewQueue(opts, prefix)
	return p, nil
}

// Connect connects to the broker without waiting, the client retries in
// the background.
func (p *Publisher) Connect() {
	if p == nil {
		return
	}
	p.Queue.Connect()
}

// Close publishes the stopped state and disconnects.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	p.State(StateStopped)
	return p.Queue.Close()
}

func (p *Publisher) event(kind string, fill func(*Event)) *Event {
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	e := &Event{Kind: kind, Role: p.Role, Node: p.Node, Time: now()}
	fill(e)
	return e
}

func (p *Publisher) publish(topic string, e *Event, qos byte, retain bool) {
	data, err := e.Encode()
	if err != nil {
		glog.Errorf("Monitor: encode %s: %v", e.Kind, err)
		return
	}
	p.Queue.PubWith(topic, data, qos, retain)
}

// State publishes a state change as a retained message.
func (p *Publisher) State(state string) {
	if p == nil {
		return
	}
	glog.V(1).Infof("Monitor: %s state %s", p.Role, state)
	p.publish(StateTopic(p.Role, p.Node), p.event(KindState, func(e *Event) { e.State = state }), 1, true)
}

// Traffic publishes a forwarded chunk. It matches relay.Observer.
func (p *Publisher) Traffic(dir relay.Direction, chunk []byte) {
	if p == nil {
		return
	}
	p.publish(TrafficTopic(p.Role, p.Node), p.event(KindTraffic, func(e *Event) {
		e.Direction = string(dir)
		e.Bytes = len(chunk)
		e.Payload = append([]byte(nil), chunk...)
	}), 0, false)
}

// Stations publishes a change of associated stations. It matches
// wifi.StationWatcher.OnChange.
func (p *Publisher) Stations(joined, left []string, count int) {
	if p == nil {
		return
	}
	p.publish(StationsTopic(p.Role, p.Node), p.event(KindStations, func(e *Event) {
		e.Joined = joined
		e.Left = left
		e.Stations = count
	}), 1, true)
}

// Observer returns the traffic callback for the relay, nil when p is nil.
func (p *Publisher) Observer() relay.Observer {
	if p == nil {
		return nil
	}
	return p.Traffic
}

// Run keeps the connection until ctx is done and then closes it.
func (p *Publisher) Run(ctx context.Context) error {
	p.Connect()
	<-ctx.Done()
	p.Close()
	return nil
}

// Name implements Named.
func (p *Publisher) Name() string {
	return "monitor"
}
