// Package vm runs a CHIP-8 Machine on its own goroutine, alongside a
// goroutine that drives the 60Hz delay and sound timers, and feeds it
// key events from whatever front-end is attached.
package vm

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nf/ch8/chip8"
)

var (
	ErrRunning     = errors.New("vm is running")
	ErrDestroyed   = errors.New("vm is destroyed")
	ErrROMTooLarge = errors.New("ROM too large")
)

// StateKind describes why a StateFunc was called.
type StateKind int

const (
	RunState   StateKind = iota // periodic update while running
	FaultState                  // after a recoverable fault
	HaltState                   // execution stopped on a fatal fault
)

// StateFunc observes the machine from the execution goroutine.
// It must not retain m or block for long.
type StateFunc func(m *chip8.Machine, k StateKind)

// stateInterval is the minimum time between RunState calls.
const stateInterval = time.Second / 30

type status int

const (
	stopped status = iota
	running
	destroyed
)

// VM is a CHIP-8 machine together with the goroutines that run it.
type VM struct {
	m      *chip8.Machine
	timers Timers
	keys   *Keypad
	faults backlog

	log     *log.Logger
	state   StateFunc
	tick    time.Duration
	timeout time.Duration
	clock   int // instructions per second, 0 for unthrottled

	mu      sync.Mutex // guards status and lifecycle channels
	status  status
	running atomic.Bool
	halt    chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup

	errMu sync.Mutex
	err   error

	frameMu sync.Mutex
	frame   chip8.Frame
	updated chan bool
}

// Option configures a VM.
type Option func(*VM)

// WithLogger sends faults and lifecycle messages to l.
func WithLogger(l *log.Logger) Option { return func(v *VM) { v.log = l } }

// WithStateFunc registers f to observe the machine while it runs.
func WithStateFunc(f StateFunc) Option { return func(v *VM) { v.state = f } }

// WithRand sets the source of the random bytes used by CXNN.
func WithRand(f func() byte) Option { return func(v *VM) { v.m.Rand = f } }

// WithTickRate sets the timer frequency in Hz. The default is TickRate.
func WithTickRate(hz int) Option {
	return func(v *VM) {
		if hz > 0 {
			v.tick = time.Second / time.Duration(hz)
		} else {
			v.tick = 0
		}
	}
}

// WithKeyTimeout bounds how long a key wait sleeps before
// re-checking whether the VM is stopping.
func WithKeyTimeout(d time.Duration) Option { return func(v *VM) { v.timeout = d } }

// WithClock limits execution to hz instructions per second.
// Zero, the default, runs instructions as fast as possible.
func WithClock(hz int) Option { return func(v *VM) { v.clock = hz } }

// New returns a stopped VM with the font loaded and the program
// counter at chip8.ProgramStart.
func New(opts ...Option) (*VM, error) {
	v := &VM{
		m:       chip8.NewMachine(nil),
		log:     log.Default(),
		tick:    time.Second / TickRate,
		timeout: 2 * time.Second,
		done:    make(chan struct{}),
		updated: make(chan bool, 1),
	}
	close(v.done)
	for _, o := range opts {
		o(v)
	}
	switch {
	case v.tick <= 0:
		return nil, errors.New("timer tick rate must be positive")
	case v.timeout <= 0:
		return nil, errors.New("key wait timeout must be positive")
	case v.clock < 0:
		return nil, errors.New("clock rate must not be negative")
	case v.log == nil:
		return nil, errors.New("nil logger")
	}
	v.keys = NewKeypad(v.timeout)
	v.m.Dev = (*device)(v)
	return v, nil
}

// usable returns an error if the VM cannot be loaded or started.
// The caller must hold v.mu.
func (v *VM) usable() error {
	switch v.status {
	case running:
		return ErrRunning
	case destroyed:
		return ErrDestroyed
	}
	return nil
}

// Load copies a program image from r into memory at chip8.ProgramStart.
func (v *VM) Load(r io.Reader) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.usable(); err != nil {
		return err
	}
	b, err := io.ReadAll(io.LimitReader(r, chip8.MaxProgramSize+1))
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}
	if len(b) > chip8.MaxProgramSize {
		return fmt.Errorf("%w: more than the max ROM size of %d bytes", ErrROMTooLarge, chip8.MaxProgramSize)
	}
	v.load(b)
	return nil
}

// LoadFile loads the program image in the named file.
func (v *VM) LoadFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("could not open ROM file: %w", err)
	}
	defer f.Close()
	if fi, err := f.Stat(); err == nil && fi.Size() > chip8.MaxProgramSize {
		return fmt.Errorf("%w: ROM file %q is %d bytes which is more than the max ROM size of %d bytes",
			ErrROMTooLarge, name, fi.Size(), chip8.MaxProgramSize)
	}
	if err := v.Load(f); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (v *VM) load(b []byte) {
	mem := v.m.Mem[chip8.ProgramStart:]
	for i := range mem {
		mem[i] = 0
	}
	copy(mem, b)
}

// Start begins executing the loaded program.
func (v *VM) Start() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.usable(); err != nil {
		return err
	}
	v.setErr(nil)
	v.faults.reset()
	v.halt = make(chan struct{})
	v.done = make(chan struct{})
	v.running.Store(true)
	v.status = running
	v.wg.Add(2)
	go v.runTimers(v.halt)
	go v.execute(v.halt, v.done)
	return nil
}

// Stop halts execution and waits for the execution and timer goroutines
// to exit. A pending key wait is abandoned. Stop does nothing if the VM is
// not running.
func (v *VM) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.status != running {
		return
	}
	v.running.Store(false)
	close(v.halt)
	v.keys.Wake()
	v.wg.Wait()
	v.status = stopped
}

// Destroy releases the machine. The VM must be stopped.
func (v *VM) Destroy() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.usable(); err != nil {
		return err
	}
	v.status = destroyed
	v.m = nil
	return nil
}

// Done returns a channel that is closed when the execution goroutine exits,
// either because Stop was called or because of a fatal fault.
// After a fatal fault the VM still counts as running until Stop is called.
func (v *VM) Done() <-chan struct{} {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.done
}

// Err returns the fatal fault that ended execution, if any.
func (v *VM) Err() error {
	v.errMu.Lock()
	defer v.errMu.Unlock()
	return v.err
}

func (v *VM) setErr(err error) {
	v.errMu.Lock()
	v.err = err
	v.errMu.Unlock()
}

// Machine returns the underlying machine. It must only be used
// while the VM is stopped.
func (v *VM) Machine() *chip8.Machine { return v.m }

// Notify delivers a key event from the front-end.
func (v *VM) Notify(ev KeyEvent) error {
	return v.keys.Notify(ev)
}

// Delay returns the current value of the delay timer.
func (v *VM) Delay() byte { return v.timers.Delay() }

// Sound returns the current value of the sound timer.
// A front-end should sound a tone while it is non-zero.
func (v *VM) Sound() byte { return v.timers.Sound() }

// Frame returns a copy of the display as of the last clear or draw.
func (v *VM) Frame() chip8.Frame {
	v.frameMu.Lock()
	defer v.frameMu.Unlock()
	return v.frame
}

// Updated returns a channel that receives a value when a new frame is
// published. Updates that arrive while a value is pending are merged.
func (v *VM) Updated() <-chan bool { return v.updated }

// Faults returns the most recent recoverable faults, oldest first.
func (v *VM) Faults() []chip8.Fault { return v.faults.list() }

func (v *VM) runTimers(halt <-chan struct{}) {
	defer v.wg.Done()
	t := time.NewTicker(v.tick)
	defer t.Stop()
	for v.running.Load() {
		select {
		case <-t.C:
			v.timers.Tick()
		case <-halt:
			return
		}
	}
}

func (v *VM) execute(halt <-chan struct{}, done chan<- struct{}) {
	defer v.wg.Done()
	defer close(done)

	var (
		lastState time.Time
		budget    int
		perTick   int
		clock     *time.Ticker
	)
	if v.clock > 0 {
		perTick = v.clock / TickRate
		if perTick < 1 {
			perTick = 1
		}
		clock = time.NewTicker(time.Second / TickRate)
		defer clock.Stop()
	}
	for v.running.Load() {
		if clock != nil {
			if budget == 0 {
				select {
				case <-clock.C:
					budget = perTick
				case <-halt:
					return
				}
			}
			budget--
		}

		err := v.m.Step()
		if err == nil {
			if v.state != nil && time.Since(lastState) >= stateInterval {
				v.state(v.m, RunState)
				lastState = time.Now()
			}
			continue
		}
		var f *chip8.Fault
		if !errors.As(err, &f) {
			panic(err)
		}
		if f.Fatal() {
			v.log.Printf("halt: %v", f)
			v.setErr(f)
			if v.state != nil {
				v.state(v.m, HaltState)
			}
			return
		}
		if v.faults.add(f) {
			v.log.Print(f)
			if v.state != nil {
				v.state(v.m, FaultState)
			}
		}
	}
}

// device implements chip8.Device for the VM's machine.
// Its methods are called on the execution goroutine.
type device VM

func (d *device) Delay() byte { return d.timers.Delay() }
func (d *device) SetDelay(v byte) { d.timers.SetDelay(v) }
func (d *device) SetSound(v byte) { d.timers.SetSound(v) }
func (d *device) Pressed(key byte) bool { return d.keys.Pressed(key) }

func (d *device) WaitKey() (byte, bool) {
	return d.keys.Wait(d.running.Load)
}

func (d *device) Redraw(disp *chip8.Display) {
	d.frameMu.Lock()
	d.frame = *disp
	d.frameMu.Unlock()
	select {
	case d.updated <- true:
	default:
	}
}
