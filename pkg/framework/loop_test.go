package framework

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type textMsg struct {
	text string
}

func TestLoopMessagesByPriority(t *testing.T) {
	loop := NewLoop()
	loop.Interval = time.Hour
	var order []string
	done := make(chan struct{})
	loop.AddController(PrLvRedraw, ControlFunc(func(cc ControlContext) error {
		if len(order) == 1 {
			order = append(order, "redraw")
			close(done)
		}
		return nil
	}))
	loop.AddController(PrLvUpdate, ControlFunc(func(cc ControlContext) error {
		for _, msg := range cc.Messages() {
			if m, ok := msg.(*textMsg); ok {
				cc.Take(m)
				order = append(order, m.text)
			}
		}
		return nil
	}))
	loop.AddRunnable(RunFunc(func(ctx context.Context) error {
		ctl := LoopCtlFrom(ctx)
		ctl.PostMessage(&textMsg{text: "hello"})
		ctl.TriggerNext()
		<-ctx.Done()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
	require.Equal(t, []string{"hello", "redraw"}, order)
}

func TestLoopKeepsUntakenMessages(t *testing.T) {
	loop := NewLoop()
	seen := 0
	loop.AddController(PrLvUpdate, ControlFunc(func(cc ControlContext) error {
		seen = len(cc.Messages())
		return nil
	}))
	loop.PostMessage(&textMsg{})
	loop.runIteration(context.Background())
	loop.runIteration(context.Background())
	require.Equal(t, 1, seen)
}
