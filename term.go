package main

import (
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nf/ch8/chip8"
	"github.com/nf/ch8/vm"
)

// keyHold is how long a key counts as held after the terminal
// reports it. Terminals send no release events.
const keyHold = 150 * time.Millisecond

// term shows the display in a terminal, two pixel rows per cell.
type term struct {
	attached
	beep bool // ring the terminal bell when the sound timer starts

	held    [16]time.Time // release deadline of each held key
	beeping bool
}

func newTerm(beep bool) *term { return &term{beep: beep} }

func (t *term) Run(exit <-chan bool) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()
	s.HideCursor()
	s.Clear()

	events := make(chan tcell.Event)
	quit := make(chan struct{})
	defer close(quit)
	go s.ChannelEvents(events, quit)

	tick := time.NewTicker(time.Second / vm.TickRate)
	defer tick.Stop()

	redraw := true
	for {
		select {
		case <-exit:
			return nil
		case e := <-events:
			switch e := e.(type) {
			case *tcell.EventKey:
				if e.Key() == tcell.KeyEscape || e.Key() == tcell.KeyCtrlC {
					return nil
				}
				if e.Key() == tcell.KeyRune {
					t.press(e.Rune(), e.When())
				}
			case *tcell.EventResize:
				s.Sync()
				redraw = true
			}
		case now := <-tick.C:
			v := t.current()
			if v == nil {
				continue
			}
			t.release(v, now)
			select {
			case <-v.Updated():
				redraw = true
			default:
			}
			if redraw {
				f := v.Frame()
				drawFrame(s, &f)
				s.Show()
				redraw = false
			}
			if t.beep {
				on := v.Sound() > 0
				if on && !t.beeping {
					s.Beep()
				}
				t.beeping = on
			}
		}
	}
}

func (t *term) press(r rune, when time.Time) {
	k, ok := keyFor(r)
	v := t.current()
	if !ok || v == nil {
		return
	}
	if t.held[k].IsZero() {
		if err := v.Notify(vm.KeyEvent{Type: vm.Pressed, Key: k}); err != nil {
			log.Printf("term: %v", err)
		}
	}
	t.held[k] = when.Add(keyHold)
}

// release lets go of keys that have not been repeated recently.
func (t *term) release(v *vm.VM, now time.Time) {
	for k, until := range t.held {
		if until.IsZero() || now.Before(until) {
			continue
		}
		t.held[k] = time.Time{}
		if err := v.Notify(vm.KeyEvent{Type: vm.Released, Key: byte(k)}); err != nil {
			log.Printf("term: %v", err)
		}
	}
}

var (
	styleOn  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleOff = tcell.StyleDefault.Foreground(tcell.ColorBlack)
)

// drawFrame renders f into the top-left 64x16 cells of s.
// Each cell is an upper half block coloured by its top pixel,
// on a background coloured by its bottom pixel.
func drawFrame(s tcell.Screen, f *chip8.Frame) {
	for y := 0; y < chip8.Height; y += 2 {
		for x := 0; x < chip8.Width; x++ {
			st := styleOff
			if f.Pixel(x, y) {
				st = styleOn
			}
			if f.Pixel(x, y+1) {
				st = st.Background(tcell.ColorWhite)
			} else {
				st = st.Background(tcell.ColorBlack)
			}
			s.SetContent(x, y/2, '▀', nil, st)
		}
	}
}
