package vm

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// KeyEventType distinguishes key presses from key releases.
type KeyEventType byte

const (
	Pressed KeyEventType = iota
	Released
)

func (t KeyEventType) String() string {
	if t == Pressed {
		return "pressed"
	}
	return "released"
}

// KeyEvent is a change in the state of one of the 16 keys.
type KeyEvent struct {
	Type KeyEventType
	Key  byte
}

// ErrBadKey is returned by Notify for key codes above 0xf.
var ErrBadKey = errors.New("invalid key code")

// Keypad holds the state of the 16-key input device.
// Its zero value is not usable; create one with NewKeypad.
type Keypad struct {
	mu      sync.Mutex
	arrived *sync.Cond // signalled on every event, broadcast on wake
	keys    [16]bool
	last    KeyEvent
	pending int // key pressed since the current wait began, or -1
	timeout time.Duration
}

// NewKeypad returns a Keypad whose waits re-check their
// cancellation condition at least once per timeout.
func NewKeypad(timeout time.Duration) *Keypad {
	k := &Keypad{
		last:    KeyEvent{Type: Released},
		pending: -1,
		timeout: timeout,
	}
	k.arrived = sync.NewCond(&k.mu)
	return k
}

// Notify records ev and wakes any goroutine waiting for a key press.
func (k *Keypad) Notify(ev KeyEvent) error {
	if ev.Key > 0xf {
		return fmt.Errorf("%w: %#x", ErrBadKey, ev.Key)
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.last = ev
	k.keys[ev.Key] = ev.Type == Pressed
	if ev.Type == Pressed {
		k.pending = int(ev.Key)
	}
	k.arrived.Signal()
	return nil
}

// Pressed reports whether key is held down.
func (k *Keypad) Pressed(key byte) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.keys[key&0xf]
}

// Last returns the most recent event passed to Notify.
func (k *Keypad) Last() KeyEvent {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.last
}

// Wait blocks until a key is pressed and returns it. Presses that happened
// before Wait was called are ignored. Wait returns false, without a key,
// once running reports false; running is checked whenever the keypad is
// woken and at least once per timeout.
func (k *Keypad) Wait(running func() bool) (byte, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pending = -1
	for {
		if k.pending >= 0 {
			key := byte(k.pending)
			k.pending = -1
			return key, true
		}
		if !running() {
			return 0, false
		}
		t := time.AfterFunc(k.timeout, k.Wake)
		k.arrived.Wait()
		t.Stop()
	}
}

// Wake releases any goroutine blocked in Wait so that it
// re-checks its running condition.
func (k *Keypad) Wake() {
	k.mu.Lock()
	k.arrived.Broadcast()
	k.mu.Unlock()
}
