package thermal

import (
	"image"
	"image/color"
	"math"
)

// Palette maps an 8-bit intensity to a display color.
type Palette [256]color.RGBA

var hotPalette = buildHot()

// HotPalette returns the black, red, yellow, white ramp.
func HotPalette() *Palette {
	p := hotPalette
	return &p
}

// buildHot ramps red over the first 3/8, green over the next 3/8 and blue
// over the last 1/4 of the range.
func buildHot() Palette {
	var p Palette
	for i := range p {
		t := float64(i) / 255
		p[i] = color.RGBA{
			R: unit(t / 0.375),
			G: unit((t - 0.375) / 0.375),
			B: unit((t - 0.75) / 0.25),
			A: 0xff,
		}
	}
	return p
}

func unit(v float64) uint8 {
	return uint8(math.Round(255 * math.Max(0, math.Min(1, v))))
}

// Luma returns the BT.601 luminance of an 8-bit RGB triple, using the
// same fixed-point weights as color.GrayModel.
func Luma(r, g, b uint8) uint8 {
	y := (19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16
	return uint8(y)
}

// ApplyPalette replaces every pixel of img with p[luma(pixel)].
func ApplyPalette(img *image.RGBA, p *Palette) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			c := p[Luma(row[i], row[i+1], row[i+2])]
			row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
		}
	}
}
