package display

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	fx "github.com/robotalks/termlink/pkg/framework"
)

// Title is shown above the message box.
const Title = "Text received from paired device:"

// DefaultColumns fits a 320 pixel wide panel with an 8 pixel font.
const DefaultColumns = 40

const clearScreen = "\x1b[H\x1b[2J"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	promptStyle = lipgloss.NewStyle().Faint(true)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Height(3).
			MaxHeight(5)
)

// Screen lays out the title, the message box, the input prompt and the
// text area, and repaints Out whenever the label or the input changes.
type Screen struct {
	Label   *Label
	Input   *TextArea
	Out     io.Writer
	Columns int
	// Clear erases the terminal before each repaint.
	Clear bool

	lock     sync.Mutex
	labelVer uint64
	inputVer uint64
	drawn    bool
}

// NewScreen creates a Screen.
func NewScreen(label *Label, input *TextArea, out io.Writer) *Screen {
	return &Screen{Label: label, Input: input, Out: out, Columns: DefaultColumns}
}

// Render produces one frame.
func (s *Screen) Render() string {
	cols := s.Columns
	if cols <= 0 {
		cols = DefaultColumns
	}
	// 280 of 320 pixels
	boxWidth := cols * 7 / 8
	center := lipgloss.NewStyle().Width(cols).Align(lipgloss.Center)
	box := boxStyle.Width(boxWidth)

	parts := []string{
		center.Render(titleStyle.Render(Title)),
		center.Render(box.Render(printable(s.Label.Text()))),
	}
	if s.Input != nil {
		parts = append(parts,
			center.Render(promptStyle.Render(InputPrompt)),
			center.Render(box.Render(printable(s.Input.Text()))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Dirty reports whether the contents changed since the last repaint.
func (s *Screen) Dirty() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.dirtyLocked()
}

func (s *Screen) dirtyLocked() bool {
	if !s.drawn || s.Label.Version() != s.labelVer {
		return true
	}
	return s.Input != nil && s.Input.Version() != s.inputVer
}

// Control implements Controller.
func (s *Screen) Control(cc fx.ControlContext) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.dirtyLocked() {
		return nil
	}
	s.labelVer = s.Label.Version()
	if s.Input != nil {
		s.inputVer = s.Input.Version()
	}
	s.drawn = true
	frame := s.Render() + "\n"
	if s.Clear {
		frame = clearScreen + frame
	}
	_, err := io.WriteString(s.Out, frame)
	return err
}

// AddToLoop implements LoopAdder. Label changes wake up the loop so a new
// message is painted without waiting for the next tick.
func (s *Screen) AddToLoop(l *fx.Loop) {
	ch, cancel := s.Label.Subscribe()
	l.AddController(fx.PrLvRedraw, s)
	l.AddRunnable(fx.NamedRun("screen-watch", fx.RunFunc(func(ctx context.Context) error {
		defer cancel()
		ctl := fx.LoopCtlFrom(ctx)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ch:
				ctl.TriggerNext()
			}
		}
	})))
}

func printable(text string) string {
	text = strings.ToValidUTF8(text, "?")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\r':
			return -1
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case r < 0x20 || r == 0x7f:
			return '.'
		}
		return r
	}, text)
}
