package vm

import (
	"sync"

	"github.com/nf/ch8/chip8"
)

const maxBacklog = 100

// backlog keeps the most recent recoverable faults.
// A program stuck on a bad instruction faults on every step, so only the
// first of a run of identical faults is reported as new.
type backlog struct {
	mu      sync.Mutex
	entries []chip8.Fault
	n       int
}

// add records f and reports whether it differs from the previous fault.
func (b *backlog) add(f *chip8.Fault) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) > 0 {
		prev := &b.entries[(b.n+maxBacklog-1)%maxBacklog]
		if prev.Kind == f.Kind && prev.Addr == f.Addr {
			return false
		}
	}
	if b.n < len(b.entries) {
		b.entries[b.n] = *f
	} else {
		b.entries = append(b.entries, *f)
	}
	b.n = (b.n + 1) % maxBacklog
	return true
}

// list returns the recorded faults, oldest first.
func (b *backlog) list() []chip8.Fault {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]chip8.Fault, 0, len(b.entries))
	if len(b.entries) < maxBacklog {
		return append(out, b.entries...)
	}
	out = append(out, b.entries[b.n:]...)
	return append(out, b.entries[:b.n]...)
}

func (b *backlog) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = b.entries[:0]
	b.n = 0
}
