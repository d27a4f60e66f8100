package chip8

import (
	"fmt"
	"strings"
)

// StackSize is the number of return addresses the call stack can hold.
const StackSize = 48

// Stack implements the CHIP-8 call stack.
type Stack struct {
	Addrs [StackSize]uint16
	Ptr   byte
}

// Push adds addr to the top of the stack.
// It reports false, leaving the stack unchanged, if the stack is full.
func (s *Stack) Push(addr uint16) bool {
	if int(s.Ptr) == len(s.Addrs) {
		return false
	}
	s.Addrs[s.Ptr] = addr
	s.Ptr++
	return true
}

// Pop removes and returns the address at the top of the stack.
// It reports false if the stack is empty.
func (s *Stack) Pop() (uint16, bool) {
	if s.Ptr == 0 {
		return 0, false
	}
	s.Ptr--
	return s.Addrs[s.Ptr], true
}

// Len returns the number of addresses on the stack.
func (s *Stack) Len() int { return int(s.Ptr) }

func (s Stack) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, v := range s.Addrs[:s.Ptr] {
		b.WriteByte(' ')
		fmt.Fprintf(&b, "%.3x", v)
	}
	b.WriteByte(' ')
	b.WriteByte(')')
	return b.String()
}
