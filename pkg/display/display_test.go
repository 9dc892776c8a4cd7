package display

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/termlink/pkg/framework"
)

func TestLabelKeepsMostRecentMessage(t *testing.T) {
	l := NewLabel(InitialText)
	require.Equal(t, "Waiting for message", l.Text())
	ch, cancel := l.Subscribe()
	defer cancel()

	n, err := l.Write([]byte("first"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	l.Write([]byte("second"))
	require.Equal(t, "second", l.Text())
	require.Equal(t, uint64(2), l.Version())
	require.Equal(t, "second", <-ch)
}

type syncBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
	err  error
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.err != nil {
		return 0, b.err
	}
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.String()
}

func TestTextAreaSubmit(t *testing.T) {
	var out syncBuffer
	a := NewTextArea(&out)
	text, err := a.Submit()
	require.NoError(t, err)
	require.Empty(t, text)
	require.Empty(t, out.String())

	a.SetText("AT")
	text, err = a.Submit()
	require.NoError(t, err)
	require.Equal(t, "AT", text)
	require.Equal(t, "AT\r\n", out.String())
	require.Empty(t, a.Text())

	out.err = errors.New("closed")
	a.SetText("again")
	_, err = a.Submit()
	require.Error(t, err)
	require.Equal(t, "again", a.Text())

	_, err = (&TextArea{}).Submit()
	require.Equal(t, ErrNoTarget, err)
}

func TestTextAreaSubmitTextConcurrent(t *testing.T) {
	var out syncBuffer
	a := NewTextArea(&out)
	var wg sync.WaitGroup
	var expected []string
	for i := 0; i < 20; i++ {
		line := fmt.Sprintf("line-%d", i)
		expected = append(expected, line)
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := a.SubmitText(line)
			assert.NoError(t, err)
			assert.Equal(t, line, text)
		}()
	}
	wg.Wait()

	sent := strings.Split(strings.TrimSuffix(out.String(), "\r\n"), "\r\n")
	assert.ElementsMatch(t, expected, sent)
	require.Empty(t, a.Text())

	out.err = errors.New("closed")
	_, err := a.SubmitText("kept")
	require.Error(t, err)
	require.Equal(t, "kept", a.Text())
}

func TestScreenRender(t *testing.T) {
	l := NewLabel(InitialText)
	s := NewScreen(l, NewTextArea(nil), nil)
	frame := s.Render()
	assert.Contains(t, frame, Title)
	assert.Contains(t, frame, InitialText)
	assert.Contains(t, frame, "Text input that will be")

	l.SetText("OK\r\n\x01")
	frame = s.Render()
	assert.Contains(t, frame, "OK")
	assert.NotContains(t, frame, "\r")
	assert.NotContains(t, frame, "\x01")
}

func TestScreenRedrawsInLoop(t *testing.T) {
	var out syncBuffer
	var sent syncBuffer
	l := NewLabel(InitialText)
	input := NewTextArea(&sent)
	s := NewScreen(l, input, &out)

	loop := fx.NewLoop()
	loop.Interval = time.Hour
	loop.Add(input, s)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), InitialText)
	}, 5*time.Second, 10*time.Millisecond)

	l.SetText("hello from host")
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "hello from host")
	}, 5*time.Second, 10*time.Millisecond)

	msg := NewInputMsg("ping")
	loop.PostMessage(msg)
	loop.TriggerNext()
	select {
	case err := <-msg.Result:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("input not submitted")
	}
	require.Equal(t, "ping\r\n", sent.String())
}

func TestViewerMirrorsLabel(t *testing.T) {
	var sent syncBuffer
	l := NewLabel(InitialText)
	v := &Viewer{Label: l, Input: NewTextArea(&sent)}
	srv := httptest.NewServer(v.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/label"
	ws, err := websocket.Dial(url, "", srv.URL)
	require.NoError(t, err)
	defer ws.Close()

	var text string
	require.NoError(t, websocket.Message.Receive(ws, &text))
	require.Equal(t, InitialText, text)

	l.SetText("update")
	require.NoError(t, websocket.Message.Receive(ws, &text))
	require.Equal(t, "update", text)

	require.NoError(t, websocket.Message.Send(ws, "from browser"))
	require.Eventually(t, func() bool {
		return sent.String() == "from browser\r\n"
	}, 5*time.Second, 10*time.Millisecond)
}
