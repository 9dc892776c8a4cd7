package wifi

import (
	"fmt"
	"net"
)

// EventKind is the kind of a radio event.
type EventKind int

const (
	// EventStationStart is reported once the radio runs in station mode.
	EventStationStart EventKind = iota
	// EventDisconnected is reported when an association attempt fails or
	// an established association drops.
	EventDisconnected
	// EventGotIP is reported when the network stack assigned an address.
	EventGotIP
)

// String implements fmt.Stringer.
func (k EventKind) String() string {
	switch k {
	case EventStationStart:
		return "station-start"
	case EventDisconnected:
		return "disconnected"
	case EventGotIP:
		return "got-ip"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is a signal from the radio or the network stack.
type Event struct {
	Kind EventKind
	IP   net.IP
}

// State is the state of the association sequence.
type State int

const (
	// StateIdle means the radio hasn't started.
	StateIdle State = iota
	// StateConnecting means a connect request is outstanding.
	StateConnecting
	// StateAssociated is terminal: an address was assigned.
	StateAssociated
	// StateFailed is terminal: the retry budget was spent.
	StateFailed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateAssociated:
		return "associated"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// IsTerminal indicates no further events are accepted.
func (s State) IsTerminal() bool {
	return s == StateAssociated || s == StateFailed
}

// Action is what the caller must do after an event was handled.
type Action int

const (
	// ActionNone requires nothing.
	ActionNone Action = iota
	// ActionConnect requires a connect request to the radio.
	ActionConnect
)

// Association tracks one association sequence.
// The zero value with MaxRetries set is ready to use.
type Association struct {
	MaxRetries int

	state      State
	retries    int
	reconnects int
	ip         net.IP
}

// NewAssociation creates an Association with the retry bound.
func NewAssociation(maxRetries int) *Association {
	return &Association{MaxRetries: maxRetries}
}

// State gets the current state.
func (a *Association) State() State {
	return a.state
}

// Retries gets the retry counter. It is reset to zero once associated.
func (a *Association) Retries() int {
	return a.retries
}

// Reconnects gets the total number of reconnect requests issued.
// Unlike Retries it survives the reset on association.
func (a *Association) Reconnects() int {
	return a.reconnects
}

// IP gets the assigned address once associated.
func (a *Association) IP() net.IP {
	return a.ip
}

// Handle consumes one event. Events after a terminal state are ignored.
func (a *Association) Handle(ev Event) Action {
	if a.state.IsTerminal() {
		return ActionNone
	}
	switch ev.Kind {
	case EventStationStart:
		if a.state == StateIdle {
			a.state = StateConnecting
			return ActionConnect
		}
	case EventDisconnected:
		if a.retries < a.MaxRetries {
			a.state = StateConnecting
			a.retries++
			a.reconnects++
			return ActionConnect
		}
		a.state = StateFailed
	case EventGotIP:
		a.retries = 0
		a.ip = ev.IP
		a.state = StateAssociated
	}
	return ActionNone
}
