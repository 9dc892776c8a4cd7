package display

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/termlink/pkg/framework"
)

// InputPrompt is shown above the text area.
const InputPrompt = "Text input that will be sent to paired device:"

// ErrNoTarget indicates the text area isn't connected to a peer.
var ErrNoTarget = errors.New("text area has no target")

// TextArea holds outbound text until it's submitted to Target.
type TextArea struct {
	Target     io.Writer
	LineEnding string

	lock    sync.Mutex
	text    string
	version uint64
}

// NewTextArea creates a TextArea terminating submitted lines with CRLF.
func NewTextArea(target io.Writer) *TextArea {
	return &TextArea{Target: target, LineEnding: "\r\n"}
}

// Text gets the pending text.
func (a *TextArea) Text() string {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.text
}

// Version increases on every change.
func (a *TextArea) Version() uint64 {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.version
}

// SetText replaces the pending text.
func (a *TextArea) SetText(text string) {
	a.lock.Lock()
	a.text = text
	a.version++
	a.lock.Unlock()
}

// Submit writes the pending text to Target in a single write and clears
// it. An empty text area submits nothing.
func (a *TextArea) Submit() (string, error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.submitLocked()
}

// SubmitText replaces the pending text and submits it without letting
// another writer in between.
func (a *TextArea) SubmitText(text string) (string, error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.text = text
	a.version++
	return a.submitLocked()
}

func (a *TextArea) submitLocked() (string, error) {
	if a.Target == nil {
		return "", ErrNoTarget
	}
	text := a.text
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if _, err := io.WriteString(a.Target, text+a.LineEnding); err != nil {
		return "", err
	}
	a.text = ""
	a.version++
	glog.V(1).Infof("Input: sent %d bytes", len(text))
	return text, nil
}

// InputMsg is posted to the loop to send text through the text area.
type InputMsg struct {
	Text   string
	Result chan error
}

// NewInputMsg creates an InputMsg with a result channel.
func NewInputMsg(text string) *InputMsg {
	return &InputMsg{Text: text, Result: make(chan error, 1)}
}

// Control implements Controller. It consumes InputMsg.
func (a *TextArea) Control(cc fx.ControlContext) error {
	for _, msg := range cc.Messages() {
		in, ok := msg.(*InputMsg)
		if !ok {
			continue
		}
		cc.Take(msg)
		_, err := a.SubmitText(in.Text)
		if in.Result != nil {
			in.Result <- err
		}
	}
	return nil
}

// AddToLoop implements LoopAdder.
func (a *TextArea) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvInput, a)
}
