package thermal

import (
	"image"

	"github.com/disintegration/gift"
)

// Render converts a YUYV visible region into an RGBA image, applies the
// amplitude rescale and upscales it by factor with cubic resampling.
func Render(r Region, factor int) (*image.RGBA, error) {
	rgba, err := YUYVToRGBA(r)
	if err != nil {
		return nil, err
	}
	ConvertScaleAbs(rgba, 1.0, 0.0)
	return Upscale(rgba, factor), nil
}

// BT.601 studio-range coefficients in 20-bit fixed point.
const (
	yuvShift = 20
	yuvHalf  = 1 << (yuvShift - 1)
	yuvCY    = 1220542 // 1.164
	yuvCUB   = 2116026 // 2.018
	yuvCUG   = -409993 // -0.391
	yuvCVG   = -852492 // -0.813
	yuvCVR   = 1673527 // 1.596
)

// YUYVToRGBA converts interleaved Y0 U Y1 V pixels to RGBA using BT.601
// with luma in the studio range 16-235.
func YUYVToRGBA(r Region) (*image.RGBA, error) {
	if err := r.check(ErrCodeConversion); err != nil {
		return nil, err
	}
	if r.Width%2 != 0 {
		return nil, newFrameError(ErrCodeConversion, "YUYV width %d is odd", r.Width)
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		row := r.Row(y)
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < r.Width; x += 2 {
			i := x * BytesPerSample
			u := int(row[i+1]) - 128
			v := int(row[i+3]) - 128
			ruv := yuvCVR*v + yuvHalf
			guv := yuvCVG*v + yuvCUG*u + yuvHalf
			buv := yuvCUB*u + yuvHalf
			for k, luma := range [2]byte{row[i], row[i+2]} {
				cy := max(int(luma)-16, 0) * yuvCY
				px := out[(x+k)*4:]
				px[0] = clampByte((cy + ruv) >> yuvShift)
				px[1] = clampByte((cy + guv) >> yuvShift)
				px[2] = clampByte((cy + buv) >> yuvShift)
				px[3] = 0xff
			}
		}
	}
	return dst, nil
}

func clampByte(v int) uint8 {
	return uint8(min(max(v, 0), 255))
}

// ConvertScaleAbs replaces every color channel v with the saturated
// |alpha*v + beta|. Alpha is left untouched.
func ConvertScaleAbs(img *image.RGBA, alpha, beta float64) {
	var lut [256]uint8
	for i := range lut {
		v := alpha*float64(i) + beta
		if v < 0 {
			v = -v
		}
		if v > 255 {
			v = 255
		}
		lut[i] = uint8(v + 0.5)
	}

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			row[i] = lut[row[i]]
			row[i+1] = lut[row[i+1]]
			row[i+2] = lut[row[i+2]]
		}
	}
}

// Upscale resizes src by factor in both axes with bicubic resampling.
func Upscale(src *image.RGBA, factor int) *image.RGBA {
	b := src.Bounds()
	g := gift.New(gift.Resize(b.Dx()*factor, b.Dy()*factor, gift.CubicResampling))
	dst := image.NewRGBA(g.Bounds(b))
	g.Draw(dst, src)
	return dst
}
