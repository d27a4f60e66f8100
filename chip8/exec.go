// Package chip8 provides an implementation of a CHIP-8 CPU, called Machine,
// that can be used to execute CHIP-8 programs.
package chip8

import (
	"fmt"
	"math/rand"
)

const (
	// MemSize is the size of addressable memory in bytes.
	MemSize = 0x1000

	// ProgramStart is the address at which programs are loaded and
	// execution begins.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program image that fits in memory.
	MaxProgramSize = MemSize - ProgramStart
)

// Machine is an implementation of a CHIP-8 CPU.
//
// Only the goroutine calling Exec may touch its fields while a program runs;
// timers and keys live behind Dev, which does its own locking.
type Machine struct {
	V     [16]byte
	I     uint16
	PC    uint16
	Stack Stack
	Mem   [MemSize]byte
	Disp  Display
	Dev   Device

	// Rand returns the random bytes used by CXNN.
	Rand func() byte
}

// Device provides access to the timers, the keypad and the screen,
// which are shared with other goroutines.
type Device interface {
	Delay() byte
	SetDelay(v byte)
	SetSound(v byte)

	// Pressed reports whether key is held down.
	Pressed(key byte) bool

	// WaitKey blocks until a key is pressed and returns it.
	// It returns false if the wait was cancelled because the
	// machine is stopping.
	WaitKey() (key byte, ok bool)

	// Redraw is called after the display is cleared or drawn to.
	Redraw(d *Display)
}

// NewMachine returns a CHIP-8 CPU with the font loaded at address 0
// and the given program loaded at ProgramStart. Bytes beyond the end of
// memory are ignored; callers should check the size against MaxProgramSize.
func NewMachine(program []byte) *Machine {
	m := &Machine{
		PC:   ProgramStart,
		Dev:  nopDevice{},
		Rand: func() byte { return byte(rand.Intn(0x100)) },
	}
	copy(m.Mem[:], font[:])
	copy(m.Mem[ProgramStart:], program)
	return m
}

// Fetch returns the big-endian instruction word at m.PC.
// It returns a fatal Fault if the word does not lie within memory.
func (m *Machine) Fetch() (Op, error) {
	if int(m.PC)+1 >= MemSize {
		return 0, &Fault{Kind: PCRange, Addr: m.PC}
	}
	return Op(short(m.Mem[m.PC], m.Mem[m.PC+1])), nil
}

// Step fetches and executes one instruction.
func (m *Machine) Step() error {
	op, err := m.Fetch()
	if err != nil {
		return err
	}
	return m.Exec(op)
}

// Exec executes op as if it were stored at m.PC, and sets m.PC
// to the address of the next instruction.
//
// Exec returns a *Fault if op could not be executed. A StackOverflow or
// StackUnderflow fault leaves the machine untouched, including PC; any other
// fault leaves it unchanged except that PC moves past op.
func (m *Machine) Exec(op Op) (err error) {
	var (
		pc   = m.PC
		next = pc + 2
		x, y = op.X(), op.Y()
	)
	fault := func(k FaultKind) error {
		return &Fault{Kind: k, Op: op, Addr: pc}
	}

	switch op.Family() {
	case 0x0:
		switch op {
		case 0x00e0:
			m.Disp.Clear()
			m.Dev.Redraw(&m.Disp)
		case 0x00ee:
			addr, ok := m.Stack.Pop()
			if !ok {
				return fault(StackUnderflow)
			}
			next = addr
		default:
			next = op.NNN()
		}
	case 0x1:
		next = op.NNN()
	case 0x2:
		if !m.Stack.Push(pc + 2) {
			return fault(StackOverflow)
		}
		next = op.NNN()
	case 0x3:
		if m.V[x] == op.NN() {
			next += 2
		}
	case 0x4:
		if m.V[x] != op.NN() {
			next += 2
		}
	case 0x5:
		if op.N() != 0 {
			err = fault(BadOperand)
		} else if m.V[x] == m.V[y] {
			next += 2
		}
	case 0x6:
		m.V[x] = op.NN()
	case 0x7:
		m.V[x] += op.NN()
	case 0x8:
		if !m.alu(op.N(), x, y) {
			err = fault(UnknownOp)
		}
	case 0x9:
		if op.N() != 0 {
			err = fault(BadOperand)
		} else if m.V[x] != m.V[y] {
			next += 2
		}
	case 0xa:
		m.I = op.NNN()
	case 0xb:
		next = uint16(m.V[0]) + op.NNN()
	case 0xc:
		m.V[x] = m.Rand() & op.NN()
	case 0xd:
		n := uint16(op.N())
		if !m.inMem(m.I, n) {
			err = fault(IndexRange)
			break
		}
		hit := m.Disp.Draw(m.V[x], m.V[y], m.Mem[m.I:m.I+n])
		if n > 0 {
			m.V[0xf] = flag(hit)
		}
		m.Dev.Redraw(&m.Disp)
	case 0xe:
		switch op.NN() {
		case 0x9e:
			if m.Dev.Pressed(m.V[x] & 0xf) {
				next += 2
			}
		case 0xa1:
			if !m.Dev.Pressed(m.V[x] & 0xf) {
				next += 2
			}
		default:
			err = fault(UnknownOp)
		}
	case 0xf:
		if k := m.misc(op, x); k != 0 {
			err = fault(k)
		}
	}

	m.PC = next
	return err
}

// alu executes the 8XYN register-register operations.
// It reports false if n is not a known operation.
//
// VF is written before the result, and the result is computed from the
// registers as they are after that write, so when X or Y is F the
// operation sees the flag rather than the old VF.
func (m *Machine) alu(n, x, y byte) bool {
	v := &m.V
	switch n {
	case 0x0:
		v[x] = v[y]
	case 0x1:
		v[x] |= v[y]
	case 0x2:
		v[x] &= v[y]
	case 0x3:
		v[x] ^= v[y]
	case 0x4:
		v[0xf] = flag(uint16(v[x])+uint16(v[y]) > 0xff)
		v[x] += v[y]
	case 0x5:
		v[0xf] = flag(v[x] >= v[y])
		v[x] -= v[y]
	case 0x6:
		v[0xf] = v[y] & 1
		v[y] >>= 1
		v[x] = v[y]
	case 0x7:
		v[0xf] = flag(v[y] >= v[x])
		v[x] = v[y] - v[x]
	case 0xe:
		v[0xf] = v[y] >> 7
		v[y] <<= 1
		v[x] = v[y]
	default:
		return false
	}
	return true
}

// misc executes the FXNN operations.
// It returns a non-zero FaultKind if op cannot be executed.
func (m *Machine) misc(op Op, x byte) FaultKind {
	switch op.NN() {
	case 0x07:
		m.V[x] = m.Dev.Delay()
	case 0x0a:
		if k, ok := m.Dev.WaitKey(); ok {
			m.V[x] = k
		}
	case 0x15:
		m.Dev.SetDelay(m.V[x])
	case 0x18:
		m.Dev.SetSound(m.V[x])
	case 0x1e:
		m.I += uint16(m.V[x])
	case 0x29:
		m.I = uint16(m.V[x]) * GlyphSize
	case 0x33:
		if !m.inMem(m.I, 3) {
			return IndexRange
		}
		v := m.V[x]
		m.Mem[m.I] = v / 100
		m.Mem[m.I+1] = v / 10 % 10
		m.Mem[m.I+2] = v % 10
	case 0x55:
		if !m.inMem(m.I, uint16(x)+1) {
			return IndexRange
		}
		for i := byte(0); i <= x; i++ {
			m.Mem[m.I] = m.V[i]
			m.I++
		}
	case 0x65:
		if !m.inMem(m.I, uint16(x)+1) {
			return IndexRange
		}
		for i := byte(0); i <= x; i++ {
			m.V[i] = m.Mem[m.I]
			m.I++
		}
	default:
		return UnknownOp
	}
	return 0
}

// inMem reports whether the n bytes starting at addr lie within memory.
func (m *Machine) inMem(addr, n uint16) bool {
	return int(addr)+int(n) <= MemSize
}

// Fault is returned by Exec and Fetch when an instruction cannot be
// executed as written.
type Fault struct {
	Kind FaultKind
	Op   Op
	Addr uint16
}

func (f *Fault) Error() string {
	if f.Kind == PCRange {
		return fmt.Sprintf("%s at %.4x", f.Kind, f.Addr)
	}
	return fmt.Sprintf("%s executing %s at %.3x", f.Kind, f.Op, f.Addr)
}

// Fatal reports whether execution cannot continue after f.
func (f *Fault) Fatal() bool { return f.Kind == PCRange }

// FaultKind signifies the condition that caused a Fault.
type FaultKind byte

const (
	StackOverflow FaultKind = iota + 1
	StackUnderflow
	BadOperand
	UnknownOp
	IndexRange

	// PCRange is fatal: the program counter left memory.
	PCRange
)

func (k FaultKind) String() string {
	if s, ok := map[FaultKind]string{
		StackOverflow:  "stack overflow",
		StackUnderflow: "return with empty stack",
		BadOperand:     "invalid operand",
		UnknownOp:      "unknown instruction",
		IndexRange:     "index out of memory",
		PCRange:        "program counter out of memory",
	}[k]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(k))
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func short(hi, lo byte) uint16 {
	return uint16(hi)<<8 + uint16(lo)
}

// nopDevice is used until a real Device is attached.
// Its timers read as zero, no keys are held, and WaitKey never blocks.
type nopDevice struct{}

func (nopDevice) Delay() byte { return 0 }
func (nopDevice) SetDelay(byte) {}
func (nopDevice) SetSound(byte) {}
func (nopDevice) Pressed(byte) bool { return false }
func (nopDevice) WaitKey() (byte, bool) { return 0, false }
func (nopDevice) Redraw(*Display) {}
