package chip8

import "testing"

func TestStack(t *testing.T) {
	var s Stack
	if _, ok := s.Pop(); ok {
		t.Fatal("Pop on empty stack succeeded")
	}
	for i := 0; i < StackSize; i++ {
		if !s.Push(uint16(i)) {
			t.Fatalf("Push %d failed", i)
		}
	}
	full := s
	if s.Push(0xfff) {
		t.Fatal("Push on full stack succeeded")
	}
	if s != full {
		t.Errorf("failed Push changed stack to %v", s)
	}
	for i := StackSize - 1; i >= 0; i-- {
		v, ok := s.Pop()
		if !ok || v != uint16(i) {
			t.Fatalf("Pop() = %.3x, %v, want %.3x, true", v, ok, i)
		}
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestStackString(t *testing.T) {
	var s Stack
	s.Push(0x202)
	s.Push(0x40a)
	if g, w := s.String(), "( 202 40a )"; g != w {
		t.Errorf("String() = %q, want %q", g, w)
	}
}
