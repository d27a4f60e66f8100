package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/nf/ch8/chip8"
)

func testFrame() *chip8.Frame {
	var f chip8.Frame
	f.Draw(0, 0, []byte{0x80})     // top-left pixel
	f.Draw(62, 31, []byte{0x40})   // bottom-right pixel
	f.Draw(10, 5, []byte{0xf0, 0}) // four pixels on row 5
	return &f
}

func TestFrameImage(t *testing.T) {
	img := frameImage(testFrame())
	if b := img.Bounds(); b.Dx() != chip8.Width || b.Dy() != chip8.Height {
		t.Fatalf("bounds = %v, want %dx%d", b, chip8.Width, chip8.Height)
	}
	for _, c := range []struct {
		x, y int
		on   bool
	}{
		{0, 0, true},
		{1, 0, false},
		{0, 1, false},
		{63, 31, true},
		{10, 5, true},
		{13, 5, true},
		{14, 5, false},
		{10, 6, false},
	} {
		want := colorOff
		if c.on {
			want = colorOn
		}
		if got := img.GrayAt(c.x, c.y); got != want {
			t.Errorf("pixel (%d, %d) = %v, want %v", c.x, c.y, got, want)
		}
	}
}

func TestScaleImage(t *testing.T) {
	img := scaleImage(frameImage(testFrame()), 4)
	if b := img.Bounds(); b.Dx() != 4*chip8.Width || b.Dy() != 4*chip8.Height {
		t.Fatalf("bounds = %v, want %dx%d", b, 4*chip8.Width, 4*chip8.Height)
	}
	for _, c := range []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{3, 3, true},
		{4, 0, false},
		{0, 4, false},
		{255, 127, true},
		{252, 124, true},
		{251, 124, false},
	} {
		on := img.GrayAt(c.x, c.y) == colorOn
		if on != c.want {
			t.Errorf("scaled pixel (%d, %d) on = %v, want %v", c.x, c.y, on, c.want)
		}
	}

	if b := scaleImage(frameImage(testFrame()), 0).Bounds(); b.Dx() != chip8.Width {
		t.Errorf("scale 0 width = %d, want %d", b.Dx(), chip8.Width)
	}
}

func TestWriteScreenshot(t *testing.T) {
	name := filepath.Join(t.TempDir(), "shot.png")
	if err := writeScreenshot(name, testFrame(), 2); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 2*chip8.Width || b.Dy() != 2*chip8.Height {
		t.Errorf("screenshot bounds = %v, want %dx%d", b, 2*chip8.Width, 2*chip8.Height)
	}
	if r, _, _, _ := img.At(1, 1).RGBA(); r != 0xffff {
		t.Errorf("screenshot pixel (1, 1) = %v, want white", img.At(1, 1))
	}

	if err := writeScreenshot(filepath.Join(t.TempDir(), "missing", "x.png"), testFrame(), 1); err == nil {
		t.Errorf("writeScreenshot to a missing directory succeeded")
	}
}
