package chip8

import "strings"

// Screen dimensions in pixels.
const (
	Width  = 64
	Height = 32
)

// Display is a packed monochrome bitmap, one bit per pixel,
// most significant bit leftmost.
type Display [Height][Width / 8]byte

// Frame is a snapshot of a Display.
type Frame = Display

// Clear unsets every pixel.
func (d *Display) Clear() {
	*d = Display{}
}

// Pixel reports whether the pixel at x, y is set.
// Coordinates outside the screen report false.
func (d *Display) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= Width || y >= Height {
		return false
	}
	return d[y][x/8]&(0x80>>(x%8)) != 0
}

// Draw XORs sprite, one byte per row, onto the display with its top-left
// pixel at x, y. The position is reduced modulo the screen size once, then
// each row wraps vertically on its own. A row that straddles two bytes and
// runs off the right edge continues in byte 0 of the same row.
//
// The returned collision flag reflects only the last row drawn: it is true
// if that row turned any set pixel off.
func (d *Display) Draw(x, y byte, sprite []byte) (collision bool) {
	x %= Width
	y %= Height
	var (
		first = x / 8
		shift = x % 8
		next  = first + 1
	)
	if next > Width/8-1 {
		next = 0
	}
	for i, bits := range sprite {
		row := &d[(int(y)+i)%Height]
		if shift == 0 {
			collision = row[first]&bits != 0
			row[first] ^= bits
			continue
		}
		hi, lo := bits>>shift, bits<<(8-shift)
		collision = row[first]&hi != 0 || row[next]&lo != 0
		row[first] ^= hi
		row[next] ^= lo
	}
	return collision
}

func (d *Display) String() string {
	var b strings.Builder
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if d.Pixel(x, y) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
