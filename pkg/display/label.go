package display

import (
	"sync"
)

// InitialText is shown before the first message arrives.
const InitialText = "Waiting for message"

// Label is a text shown on the screen. Every write replaces the text, so
// it always shows the most recent message.
type Label struct {
	lock    sync.RWMutex
	text    string
	version uint64
	subs    map[chan string]struct{}
}

// NewLabel creates a Label with initial text.
func NewLabel(text string) *Label {
	return &Label{text: text, subs: make(map[chan string]struct{})}
}

// Text gets the current text.
func (l *Label) Text() string {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.text
}

// Version increases on every change.
func (l *Label) Version() uint64 {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.version
}

// SetText replaces the text and notifies subscribers.
func (l *Label) SetText(text string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.text = text
	l.version++
	for ch := range l.subs {
		// drop the stale text if the subscriber hasn't picked it up yet
		select {
		case <-ch:
		default:
		}
		ch <- text
	}
}

// Write implements io.Writer.
func (l *Label) Write(p []byte) (int, error) {
	l.SetText(string(p))
	return len(p), nil
}

// Subscribe receives the latest text after every change. Slow
// subscribers only see the most recent one.
func (l *Label) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 1)
	l.lock.Lock()
	l.subs[ch] = struct{}{}
	l.lock.Unlock()
	return ch, func() {
		l.lock.Lock()
		delete(l.subs, ch)
		l.lock.Unlock()
	}
}
