package main

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"

	"github.com/nf/ch8/vm"
)

const (
	beepSampleRate = 44100
	beepFreq       = 440
	beepAmplitude  = 0x1000
)

// beeper plays a square wave while the attached VM's sound timer
// is non-zero, and silence otherwise.
type beeper struct {
	v      atomic.Pointer[vm.VM]
	player *oto.Player
	phase  int // samples into the current wave period
}

func newBeeper() (*beeper, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   beepSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	b := &beeper{}
	b.player = ctx.NewPlayer(b)
	b.player.Play()
	return b, nil
}

func (b *beeper) Swap(v *vm.VM) { b.v.Store(v) }

// Read implements io.Reader for the oto player.
func (b *beeper) Read(p []byte) (int, error) {
	on := false
	if v := b.v.Load(); v != nil {
		on = v.Sound() > 0
	}
	n := len(p) &^ 1
	b.fill(p[:n], on)
	return n, nil
}

// fill writes 16-bit little-endian samples to p.
func (b *beeper) fill(p []byte, on bool) {
	const period = beepSampleRate / beepFreq
	for i := 0; i+1 < len(p); i += 2 {
		var s int16
		if on {
			s = beepAmplitude
			if b.phase >= period/2 {
				s = -beepAmplitude
			}
		}
		b.phase = (b.phase + 1) % period
		binary.LittleEndian.PutUint16(p[i:], uint16(s))
	}
}

func (b *beeper) Close() error { return b.player.Close() }
