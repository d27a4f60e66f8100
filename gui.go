package main

import (
	"fmt"
	"image"
	"log"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/draw"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/nf/ch8/chip8"
	"github.com/nf/ch8/vm"
)

// gui shows the display in a window and reads the keypad from
// the keyboard.
type gui struct {
	attached
	scale int

	buf   screen.Buffer
	tex   screen.Texture
	dirty bool
}

func newGUI(scale int) *gui {
	if scale < 1 {
		scale = 1
	}
	return &gui{scale: scale}
}

func (g *gui) Run(exit <-chan bool) error {
	var runErr error
	driver.Main(func(s screen.Screen) {
		w, err := s.NewWindow(&screen.NewWindowOptions{
			Title:  "ch8",
			Width:  chip8.Width * g.scale,
			Height: chip8.Height * g.scale,
		})
		if err != nil {
			runErr = err
			return
		}
		defer w.Release()

		type update struct{}
		go func() {
			t := time.NewTicker(time.Second / vm.TickRate)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					w.Send(update{})
				case <-exit:
					w.Send(update{})
					return
				}
			}
		}()

		if err := g.alloc(s); err != nil {
			runErr = err
			return
		}
		defer g.release()

		var sz size.Event
		for {
			e := w.NextEvent()

			select {
			case <-exit:
				return
			default:
			}

			switch e := e.(type) {
			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					return
				}
				g.dirty = true

			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case key.Event:
				if e.Code == key.CodeEscape {
					return
				}
				g.key(e)

			case paint.Event:
				g.dirty = true

			case update:
				if v := g.current(); v != nil {
					select {
					case <-v.Updated():
						g.render(v.Frame())
					default:
					}
				}
				if g.dirty && sz.WidthPx > 0 {
					w.Scale(sz.Bounds(), g.tex, g.tex.Bounds(), draw.Src, nil)
					w.Publish()
					g.dirty = false
				}

			case mouse.Event:
				// Ignored.

			case error:
				log.Print(e)

			default:
				format := "gui: got %#v"
				if _, ok := e.(fmt.Stringer); ok {
					format = "gui: got %v"
				}
				log.Printf(format, e)
			}
		}
	})
	return runErr
}

// key forwards a keyboard event to the keypad.
// Auto-repeated presses carry no direction and are dropped.
func (g *gui) key(e key.Event) {
	k, ok := keyFor(e.Rune)
	if !ok {
		return
	}
	var typ vm.KeyEventType
	switch e.Direction {
	case key.DirPress:
		typ = vm.Pressed
	case key.DirRelease:
		typ = vm.Released
	default:
		return
	}
	if v := g.current(); v != nil {
		if err := v.Notify(vm.KeyEvent{Type: typ, Key: k}); err != nil {
			log.Printf("gui: %v", err)
		}
	}
}

func (g *gui) alloc(s screen.Screen) (err error) {
	sz := image.Point{chip8.Width, chip8.Height}
	if g.buf, err = s.NewBuffer(sz); err != nil {
		return
	}
	if g.tex, err = s.NewTexture(sz); err != nil {
		return
	}
	if v := g.current(); v != nil {
		g.render(v.Frame())
	}
	return
}

func (g *gui) render(f chip8.Frame) {
	img := frameImage(&f)
	draw.Draw(g.buf.RGBA(), g.buf.Bounds(), img, image.Point{}, draw.Src)
	g.tex.Upload(image.Point{}, g.buf, g.buf.Bounds())
	g.dirty = true
}

func (g *gui) release() {
	if g.tex != nil {
		g.tex.Release()
	}
	if g.buf != nil {
		g.buf.Release()
	}
}
