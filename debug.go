package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/ch8/chip8"
	"github.com/nf/ch8/vm"
)

// debugger shows machine state, memory watches and the log in the
// terminal while a program runs.
type debugger struct {
	attached
	reset func() // reloads the ROM; nil outside dev mode

	log   *tview.TextView
	watch *tview.TextView
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	mu      sync.Mutex
	watches []watch

	done atomic.Bool // set once the application has stopped drawing
}

type watch struct {
	addr  uint16
	short bool
}

func newDebugger() *debugger {
	d := &debugger{
		log:   tview.NewTextView().SetMaxLines(1000),
		watch: tview.NewTextView().SetWrap(false),
		state: tview.NewTextView().SetWrap(false),
		input: tview.NewInputField().SetLabel("> "),
		app:   tview.NewApplication(),
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.watch.SetBorder(true).SetTitle(" watch ")

	// Machine state and watches sit side by side above the input line,
	// under a log pane that takes the remaining height.
	d.cols = tview.NewFlex().
		AddItem(d.state, 0, 3, false).
		AddItem(d.watch, 0, 1, false)
	d.rows = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(d.log, 0, 1, false).
		AddItem(d.cols, 6, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := d.input.GetText()
		if cmd == "" {
			return
		}
		d.input.SetText("")
		d.command(cmd)
	})
	return d
}

// command executes a line typed into the debugger.
func (d *debugger) command(line string) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case "exit", "q":
		d.app.Stop()
	case "reset", "r":
		if d.reset == nil {
			log.Print("reset is only available with -dev")
			return
		}
		d.reset()
	case "faults", "f":
		v := d.current()
		if v == nil {
			return
		}
		faults := v.Faults()
		if len(faults) == 0 {
			log.Print("no faults")
		}
		for _, f := range faults {
			log.Print(&f)
		}
	case "w", "w2", "watch", "watch2":
		w, err := parseWatch(arg, strings.HasSuffix(cmd, "2"))
		if err != nil {
			log.Print(err)
			return
		}
		d.mu.Lock()
		d.watches = append(d.watches, w)
		d.mu.Unlock()
		log.Printf("watching %.3x", w.addr)
	case "unwatch", "uw":
		d.mu.Lock()
		d.watches = nil
		d.mu.Unlock()
		log.Print("cleared watches")
	default:
		log.Printf("unknown command %q", cmd)
	}
}

func parseWatch(arg string, short bool) (watch, error) {
	arg = strings.TrimPrefix(strings.TrimSpace(arg), "0x")
	n, err := strconv.ParseUint(arg, 16, 16)
	if err != nil {
		return watch{}, fmt.Errorf("invalid address %q", arg)
	}
	size := uint64(1)
	if short {
		size = 2
	}
	if n+size > chip8.MemSize {
		return watch{}, fmt.Errorf("address %.4x out of memory", n)
	}
	return watch{addr: uint16(n), short: short}, nil
}

func (d *debugger) Run() error {
	defer d.done.Store(true)
	return d.app.Run()
}

func (d *debugger) StateFunc(m *chip8.Machine, k vm.StateKind) {
	if d.done.Load() {
		return
	}
	var (
		watch = d.watchContent(m)
		state = d.stateMsg(m, k)
	)
	d.app.QueueUpdateDraw(func() {
		switch k {
		case vm.RunState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case vm.FaultState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case vm.HaltState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		}
		d.watch.SetText(watch)
		d.state.SetText(state)
	})
}

func (d *debugger) stateMsg(m *chip8.Machine, k vm.StateKind) string {
	var sound byte
	if v := d.current(); v != nil {
		sound = v.Sound()
	}
	return stateMsg(m, k, m.Dev.Delay(), sound)
}

func stateMsg(m *chip8.Machine, k vm.StateKind, delay, sound byte) string {
	op := "-"
	if int(m.PC)+1 < chip8.MemSize {
		op = chip8.Op(uint16(m.Mem[m.PC])<<8 | uint16(m.Mem[m.PC+1])).String()
	}
	kind := "       "
	switch k {
	case vm.FaultState:
		kind = "[fault]"
	case vm.HaltState:
		kind = "[HALT!]"
	}
	var regs strings.Builder
	for i, r := range m.V {
		if i > 0 {
			regs.WriteByte(' ')
		}
		fmt.Fprintf(&regs, "%.2x", r)
	}
	return fmt.Sprintf("%.3x %-18s %s\nV: %s\nI: %.3x dt: %.2x st: %.2x\nstack: %v",
		m.PC, op, kind, regs.String(), m.I, delay, sound, m.Stack)
}

func (d *debugger) watchContent(m *chip8.Machine) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	for _, w := range d.watches {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%.3x] ", w.addr)
		if w.short {
			fmt.Fprintf(&b, "%.2x%.2x", m.Mem[w.addr], m.Mem[w.addr+1])
		} else {
			fmt.Fprintf(&b, "  %.2x", m.Mem[w.addr])
		}
	}
	return b.String()
}
