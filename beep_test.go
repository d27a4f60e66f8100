package main

import (
	"encoding/binary"
	"testing"
)

func TestBeeperFill(t *testing.T) {
	const period = beepSampleRate / beepFreq

	var b beeper
	p := make([]byte, 4*period)
	b.fill(p, true)
	sample := func(i int) int16 { return int16(binary.LittleEndian.Uint16(p[2*i:])) }
	for i := 0; i < 2*period; i++ {
		want := int16(beepAmplitude)
		if i%period >= period/2 {
			want = -beepAmplitude
		}
		if got := sample(i); got != want {
			t.Fatalf("sample %d = %d, want %d", i, got, want)
		}
	}

	b.fill(p, false)
	for i := 0; i < 2*period; i++ {
		if got := sample(i); got != 0 {
			t.Fatalf("silent sample %d = %d, want 0", i, got)
		}
	}
}

func TestBeeperReadWithoutVM(t *testing.T) {
	var b beeper
	p := []byte{1, 2, 3, 4, 5}
	n, err := b.Read(p)
	if err != nil || n != 4 {
		t.Fatalf("Read = %d, %v; want 4, nil", n, err)
	}
	for i, c := range p[:n] {
		if c != 0 {
			t.Errorf("p[%d] = %d, want 0", i, c)
		}
	}
}
