package chip8

import (
	"fmt"
	"testing"
)

func TestDraw(t *testing.T) {
	for _, c := range []struct {
		name   string
		before map[[2]int]byte // row, byte -> value
		x, y   byte
		sprite []byte
		after  map[[2]int]byte
		hit    bool
	}{
		{
			name:   "aligned",
			sprite: []byte{0xff},
			after:  map[[2]int]byte{{0, 0}: 0xff},
		},
		{
			name:   "self collision",
			before: map[[2]int]byte{{0, 0}: 0xff},
			sprite: []byte{0xff},
			after:  map[[2]int]byte{},
			hit:    true,
		},
		{
			name:   "straddle",
			x:      4,
			y:      4,
			sprite: []byte{0xff, 0xff},
			after: map[[2]int]byte{
				{4, 0}: 0x0f, {4, 1}: 0xf0,
				{5, 0}: 0x0f, {5, 1}: 0xf0,
			},
		},
		{
			name:   "wrap right edge to byte 0",
			x:      60,
			sprite: []byte{0xff},
			after:  map[[2]int]byte{{0, 7}: 0x0f, {0, 0}: 0xf0},
		},
		{
			name:   "position wraps once",
			x:      64 + 8,
			y:      32 + 1,
			sprite: []byte{0x81},
			after:  map[[2]int]byte{{1, 1}: 0x81},
		},
		{
			name:   "rows wrap to top",
			y:      31,
			sprite: []byte{0x01, 0x02, 0x04},
			after:  map[[2]int]byte{{31, 0}: 0x01, {0, 0}: 0x02, {1, 0}: 0x04},
		},
		{
			name:   "collision on last row only",
			before: map[[2]int]byte{{0, 0}: 0x80, {2, 0}: 0x80},
			sprite: []byte{0x80, 0x80},
			after:  map[[2]int]byte{{1, 0}: 0x80, {2, 0}: 0x80},
		},
		{
			name:   "collision in second byte",
			x:      4,
			before: map[[2]int]byte{{0, 1}: 0x80},
			sprite: []byte{0x08},
			after:  map[[2]int]byte{},
			hit:    true,
		},
		{
			name:   "empty sprite",
			before: map[[2]int]byte{{0, 0}: 0xff},
			after:  map[[2]int]byte{{0, 0}: 0xff},
		},
	} {
		t.Run(c.name, func(t *testing.T) {
			var d, want Display
			for k, v := range c.before {
				d[k[0]][k[1]] = v
			}
			for k, v := range c.after {
				want[k[0]][k[1]] = v
			}
			if hit := d.Draw(c.x, c.y, c.sprite); hit != c.hit {
				t.Errorf("Draw returned %v, want %v", hit, c.hit)
			}
			if d != want {
				t.Errorf("display =\n%v\nwant\n%v", &d, &want)
			}
		})
	}
}

func TestPixel(t *testing.T) {
	var d Display
	d[2][1] = 0x41
	for _, c := range []struct {
		x, y int
		want bool
	}{
		{9, 2, true},
		{15, 2, true},
		{8, 2, false},
		{9, 3, false},
		{-1, 0, false},
		{64, 2, false},
		{9, 32, false},
	} {
		if got := d.Pixel(c.x, c.y); got != c.want {
			t.Errorf("Pixel(%d, %d) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestClear(t *testing.T) {
	var d Display
	for y := range d {
		for x := range d[y] {
			d[y][x] = byte(x*y + 1)
		}
	}
	d.Clear()
	if d != (Display{}) {
		t.Errorf("after Clear, display =\n%v", &d)
	}
}

func TestFontGlyphs(t *testing.T) {
	m := NewMachine(nil)
	for v := byte(0); v < 16; v++ {
		m.V[0] = v
		m.Exec(0xf029)
		m.V[1], m.V[2] = 0, 0
		m.Disp.Clear()
		m.Exec(0xd125)
		var b [GlyphSize]byte
		for row := range b {
			b[row] = m.Disp[row][0]
		}
		if g, w := fmt.Sprintf("%x", b), fmt.Sprintf("%x", font[int(v)*GlyphSize:][:GlyphSize]); g != w {
			t.Errorf("glyph %X drawn as %s, want %s", v, g, w)
		}
	}
}
