package main

import (
	"log"
	"sync"

	"github.com/nf/ch8/vm"
)

// A frontEnd presents a VM to the user and feeds it key events.
type frontEnd interface {
	// Run drives the front-end until exit is closed or the user quits.
	Run(exit <-chan bool) error
	swapper
}

// A swapper is attached to one VM at a time.
type swapper interface {
	Swap(v *vm.VM)
}

// attached holds the VM that a front-end is currently showing.
type attached struct {
	mu sync.Mutex
	v  *vm.VM
}

func (a *attached) Swap(v *vm.VM) {
	a.mu.Lock()
	a.v = v
	a.mu.Unlock()
}

func (a *attached) current() *vm.VM {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.v
}

// Runner owns the running VM and replaces it on Reset.
type Runner struct {
	dev   bool
	opts  []vm.Option
	views []swapper

	reset     chan *vm.VM
	resetDone chan bool
	closed    chan bool

	quitOnce sync.Once
	quit     chan bool
}

// NewRunner returns a Runner that builds VMs with opts and keeps the
// given views attached to the current VM. In dev mode a VM that halts
// is left on screen until the next Reset instead of ending the run.
func NewRunner(devMode bool, opts []vm.Option, views ...swapper) *Runner {
	return &Runner{
		dev:       devMode,
		opts:      opts,
		views:     views,
		reset:     make(chan *vm.VM),
		resetDone: make(chan bool),
		closed:    make(chan bool),
		quit:      make(chan bool),
	}
}

// Quit ends Run as if the program had halted.
func (r *Runner) Quit() {
	r.quitOnce.Do(func() { close(r.quit) })
}

// New returns a stopped VM with the named ROM loaded.
func (r *Runner) New(romFile string) (*vm.VM, error) {
	v, err := vm.New(r.opts...)
	if err != nil {
		return nil, err
	}
	if err := v.LoadFile(romFile); err != nil {
		v.Destroy()
		return nil, err
	}
	return v, nil
}

// Reset replaces the running VM with v and starts it.
// It reports false if the Runner has already finished.
func (r *Runner) Reset(v *vm.VM) bool {
	if !r.dev {
		panic("Reset called while not running in dev mode")
	}
	select {
	case r.reset <- v:
		<-r.resetDone
		return true
	case <-r.closed:
		return false
	}
}

func (r *Runner) swap(v *vm.VM) {
	for _, s := range r.views {
		s.Swap(v)
	}
}

// Run starts v and drives ui until the program halts or the user quits.
// It returns the last VM to run, stopped but not destroyed.
func (r *Runner) Run(v *vm.VM, ui frontEnd) *vm.VM {
	var (
		exit  = make(chan bool)
		quit  = make(chan bool)
		final = make(chan *vm.VM, 1)
	)
	r.swap(v)
	ui.Swap(v)
	if err := v.Start(); err != nil {
		log.Printf("start: %v", err)
		close(r.closed)
		return v
	}
	go func() {
		defer close(r.closed)
		done := v.Done()
		for {
			select {
			case newV := <-r.reset:
				v.Stop()
				if err := v.Destroy(); err != nil {
					log.Printf("destroy: %v", err)
				}
				v = newV
				r.swap(v)
				ui.Swap(v)
				if err := v.Start(); err != nil {
					log.Printf("start: %v", err)
				}
				done = v.Done()
				r.resetDone <- true
			case <-done:
				done = nil
				if !r.dev {
					close(exit)
					final <- v
					return
				}
				log.Print("halted; waiting for reset")
			case <-r.quit:
				close(exit)
				final <- v
				return
			case <-quit:
				final <- v
				return
			}
		}
	}()
	if err := ui.Run(exit); err != nil {
		log.Printf("front-end: %v", err)
	}
	close(quit)
	v = <-final
	v.Stop()
	return v
}
