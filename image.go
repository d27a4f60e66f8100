package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/nf/ch8/chip8"
)

var (
	colorOn  = color.Gray{Y: 0xff}
	colorOff = color.Gray{Y: 0x00}
)

// frameImage renders f as a 64x32 grayscale image.
func frameImage(f *chip8.Frame) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, chip8.Width, chip8.Height))
	for y := 0; y < chip8.Height; y++ {
		for x := 0; x < chip8.Width; x++ {
			c := colorOff
			if f.Pixel(x, y) {
				c = colorOn
			}
			img.SetGray(x, y, c)
		}
	}
	return img
}

// scaleImage returns src enlarged by scale, without smoothing.
func scaleImage(src image.Image, scale int) *image.Gray {
	if scale < 1 {
		scale = 1
	}
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// writeScreenshot writes f to the named file as a PNG, scaled by scale.
func writeScreenshot(name string, f *chip8.Frame, scale int) error {
	out, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(out, scaleImage(frameImage(f), scale)); err != nil {
		out.Close()
		return fmt.Errorf("encoding screenshot: %v", err)
	}
	return out.Close()
}
