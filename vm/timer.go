package vm

import "sync"

// TickRate is the frequency, in Hz, at which the timers count down.
const TickRate = 60

// Timers holds the delay and sound timers.
// They are shared between the timer and execution goroutines.
type Timers struct {
	mu           sync.Mutex
	delay, sound byte
}

// Tick decrements each non-zero timer.
func (t *Timers) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.delay > 0 {
		t.delay--
	}
	if t.sound > 0 {
		t.sound--
	}
}

func (t *Timers) Delay() byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delay
}

func (t *Timers) Sound() byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sound
}

func (t *Timers) SetDelay(v byte) {
	t.mu.Lock()
	t.delay = v
	t.mu.Unlock()
}

func (t *Timers) SetSound(v byte) {
	t.mu.Lock()
	t.sound = v
	t.mu.Unlock()
}
