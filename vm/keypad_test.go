package vm

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeypadNotify(t *testing.T) {
	k := NewKeypad(time.Second)
	if got := k.Last(); got.Type != Released {
		t.Errorf("initial Last().Type = %v, want %v", got.Type, Released)
	}
	if err := k.Notify(KeyEvent{Pressed, 0xa}); err != nil {
		t.Fatal(err)
	}
	if !k.Pressed(0xa) {
		t.Errorf("Pressed(0xa) = false, want true")
	}
	if k.Pressed(0xb) {
		t.Errorf("Pressed(0xb) = true, want false")
	}
	if err := k.Notify(KeyEvent{Released, 0xa}); err != nil {
		t.Fatal(err)
	}
	if k.Pressed(0xa) {
		t.Errorf("Pressed(0xa) after release = true, want false")
	}
	if got, want := k.Last(), (KeyEvent{Released, 0xa}); got != want {
		t.Errorf("Last() = %v, want %v", got, want)
	}

	err := k.Notify(KeyEvent{Pressed, 0x10})
	if !errors.Is(err, ErrBadKey) {
		t.Errorf("Notify(0x10) = %v, want %v", err, ErrBadKey)
	}
	if got, want := k.Last(), (KeyEvent{Released, 0xa}); got != want {
		t.Errorf("Last() after bad key = %v, want %v", got, want)
	}
}

func TestKeypadWait(t *testing.T) {
	k := NewKeypad(time.Second)
	// A press before the wait starts must not satisfy it.
	k.Notify(KeyEvent{Pressed, 0x1})

	type result struct {
		key byte
		ok  bool
	}
	res := make(chan result)
	go func() {
		key, ok := k.Wait(func() bool { return true })
		res <- result{key, ok}
	}()

	select {
	case r := <-res:
		t.Fatalf("Wait returned %v before any new press", r)
	case <-time.After(50 * time.Millisecond):
	}
	k.Notify(KeyEvent{Released, 0x1})
	k.Notify(KeyEvent{Pressed, 0x7})

	select {
	case r := <-res:
		if !r.ok || r.key != 0x7 {
			t.Errorf("Wait() = %x, %v; want 7, true", r.key, r.ok)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after key press")
	}
}

func TestKeypadWaitCancel(t *testing.T) {
	k := NewKeypad(time.Hour)
	var running atomic.Bool
	running.Store(true)

	done := make(chan bool)
	go func() {
		_, ok := k.Wait(running.Load)
		done <- ok
	}()
	time.Sleep(20 * time.Millisecond)
	running.Store(false)
	k.Wake()

	select {
	case ok := <-done:
		if ok {
			t.Errorf("cancelled Wait reported ok")
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Wake")
	}
}

func TestKeypadWaitTimeout(t *testing.T) {
	// Without a Wake, the wait notices cancellation within one timeout.
	k := NewKeypad(10 * time.Millisecond)
	var running atomic.Bool
	running.Store(true)

	done := make(chan bool)
	go func() {
		_, ok := k.Wait(running.Load)
		done <- ok
	}()
	time.Sleep(20 * time.Millisecond)
	running.Store(false)

	select {
	case ok := <-done:
		if ok {
			t.Errorf("timed out Wait reported ok")
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not notice cancellation")
	}
}
