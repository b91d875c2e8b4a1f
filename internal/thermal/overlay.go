package thermal

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Highlight is the crosshair color.
var Highlight = color.RGBA{R: 0xff, A: 0xff}

// Segment is a straight line between two points, endpoints inclusive.
type Segment struct {
	From image.Point
	To   image.Point
}

// Scale multiplies both endpoints by k.
func (s Segment) Scale(k int) Segment {
	return Segment{From: s.From.Mul(k), To: s.To.Mul(k)}
}

// Crosshair returns the horizontal and vertical segments centered on p in
// grid coordinates. Endpoints are clamped to [0, GridWidth] x [0, GridHeight]
// of g, not to the rendered image.
func Crosshair(p Peak, g Geometry) [2]Segment {
	l := g.CrosshairHalf
	return [2]Segment{
		{From: image.Pt(max(0, p.X-l), p.Y), To: image.Pt(min(p.X+l, g.GridWidth), p.Y)},
		{From: image.Pt(p.X, max(0, p.Y-l)), To: image.Pt(p.X, min(p.Y+l, g.GridHeight))},
	}
}

// DrawSegment strokes s onto img with a square brush of the given width.
// Pixels falling outside img are clipped.
func DrawSegment(img *image.RGBA, s Segment, c color.Color, width int) {
	if width < 1 {
		width = 1
	}
	src := image.NewUniform(c)
	lo := (width - 1) / 2
	hi := width - lo
	stamp := func(p image.Point) {
		r := image.Rect(p.X-lo, p.Y-lo, p.X+hi, p.Y+hi).Intersect(img.Bounds())
		if !r.Empty() {
			draw.Draw(img, r, src, image.Point{}, draw.Src)
		}
	}

	// Bresenham walk; axis-aligned segments degenerate to a straight run.
	x0, y0, x1, y1 := s.From.X, s.From.Y, s.To.X, s.To.Y
	dx, sx := abs(x1-x0), sign(x1-x0)
	dy, sy := -abs(y1-y0), sign(y1-y0)
	e := dx + dy
	for {
		stamp(image.Pt(x0, y0))
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// DrawCrosshair marks p on an image upscaled by g.Upscale.
func DrawCrosshair(img *image.RGBA, p Peak, g Geometry) {
	for _, seg := range Crosshair(p, g) {
		DrawSegment(img, seg.Scale(g.Upscale), Highlight, g.StrokeWidth)
	}
}

// DrawLabel writes the peak temperature next to the crosshair, shifted so
// the text stays inside img.
func DrawLabel(img *image.RGBA, p Peak, g Geometry) {
	face := basicfont.Face7x13
	text := fmt.Sprintf("%.1fC", p.Celsius)
	d := &font.Drawer{Dst: img, Src: image.White, Face: face}

	b := img.Bounds()
	w := d.MeasureString(text).Ceil()
	h := face.Metrics().Ascent.Ceil()
	offset := (g.CrosshairHalf + 1) * g.Upscale

	x := p.X*g.Upscale + offset
	if x+w > b.Max.X {
		x = p.X*g.Upscale - offset - w
	}
	y := p.Y*g.Upscale - offset
	if y-h < b.Min.Y {
		y = p.Y*g.Upscale + offset + h
	}
	x = max(b.Min.X, min(x, b.Max.X-w))
	y = max(b.Min.Y+h, min(y, b.Max.Y-1))

	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
