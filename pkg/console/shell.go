// Package console provides the interactive shell of the station.
package console

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"golang.org/x/term"

	"github.com/robotalks/termlink/pkg/display"
	fx "github.com/robotalks/termlink/pkg/framework"
	"github.com/robotalks/termlink/pkg/relay"
)

// ErrNotTerminal indicates stdin isn't a terminal.
var ErrNotTerminal = errors.New("shell requires a terminal")

// SendTimeout bounds waiting for the loop to submit text.
const SendTimeout = time.Second

// Shell provides an ishell backed interactive shell.
type Shell struct {
	Shell *ishell.Shell
	Loop  fx.LoopControl
	Label *display.Label
	Stats *relay.Stats

	// Status describes the link, e.g. association and peer.
	Status func() string
	// Quit is called by the quit command.
	Quit func()
}

const shellKey = "$shell"

var commands = []*ishell.Cmd{
	&SendCmd,
	&ShowCmd,
	&StatusCmd,
	&QuitCmd,
}

// New creates a shell posting input to loop.
func New(loop fx.LoopControl, label *display.Label, stats *relay.Stats) *Shell {
	s := &Shell{
		Shell: ishell.New(),
		Loop:  loop,
		Label: label,
		Stats: stats,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt("termlink > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Send submits text through the loop and waits for the result.
func (s *Shell) Send(text string) error {
	msg := display.NewInputMsg(text)
	s.Loop.PostMessage(msg)
	s.Loop.TriggerNext()
	select {
	case err := <-msg.Result:
		return err
	case <-time.After(SendTimeout):
		return context.DeadlineExceeded
	}
}

// StatusText formats the link status and relay counters.
func (s *Shell) StatusText() string {
	var b strings.Builder
	if s.Status != nil {
		b.WriteString(s.Status())
		b.WriteString("\n")
	}
	if s.Stats != nil {
		fmt.Fprintf(&b, "inbound: %d bytes in %d chunks\n", s.Stats.Inbound.Bytes(), s.Stats.Inbound.Chunks())
		fmt.Fprintf(&b, "outbound: %d bytes in %d chunks\n", s.Stats.Outbound.Bytes(), s.Stats.Outbound.Chunks())
	}
	return b.String()
}

// Name implements Named.
func (s *Shell) Name() string {
	return "shell"
}

// Run implements Runnable. The shell stops when ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ErrNotTerminal
	}
	return fx.RunWithContextCancel(ctx, func() { s.Shell.Close() }, func() error {
		s.Shell.Run()
		return nil
	})
}

var (
	// SendCmd sends the arguments joined by spaces to the peer.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "TEXT...",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("text expected"))
				return
			}
			if err := ShellFrom(c).Send(strings.Join(c.Args, " ")); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		},
	}

	// ShowCmd prints the received message.
	ShowCmd = ishell.Cmd{
		Name: "show",
		Help: "print the received message",
		Func: func(c *ishell.Context) {
			c.Printf("%q\n", ShellFrom(c).Label.Text())
		},
	}

	// StatusCmd prints the link status.
	StatusCmd = ishell.Cmd{
		Name: "status",
		Help: "print link status and counters",
		Func: func(c *ishell.Context) {
			c.Print(ShellFrom(c).StatusText())
		},
	}

	// QuitCmd stops the station.
	QuitCmd = ishell.Cmd{
		Name:    "quit",
		Aliases: []string{"q"},
		Help:    "stop the station",
		Func: func(c *ishell.Context) {
			if quit := ShellFrom(c).Quit; quit != nil {
				quit()
			}
			c.Stop()
		},
	}
)
