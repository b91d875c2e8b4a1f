package thermal

// RawFrame is one buffer read from the capture source: a visible image
// stacked on top of a thermal image, both 2 bytes per pixel.
type RawFrame struct {
	Data   []byte
	Width  int
	Height int
	Stride int // bytes per row
}

// NewRawFrame allocates a frame buffer for a width x height YUYV frame.
func NewRawFrame(width, height int) RawFrame {
	stride := width * BytesPerSample
	return RawFrame{
		Data:   make([]byte, stride*height),
		Width:  width,
		Height: height,
		Stride: stride,
	}
}

// Empty reports whether the frame carries no pixel data.
func (f RawFrame) Empty() bool {
	return len(f.Data) == 0 || f.Width == 0 || f.Height == 0
}

// Region is a read-only view into a RawFrame. It never owns its bytes.
type Region struct {
	Data   []byte
	Width  int
	Height int
	Stride int
}

// Row returns the packed bytes of row y.
func (r Region) Row(y int) []byte {
	off := y * r.Stride
	return r.Data[off : off+r.Width*BytesPerSample]
}

// check validates that r holds exactly Width*Height samples. Packed regions
// must match 2*W*H bytes; strided regions only need the last row to fit.
func (r Region) check(code string) error {
	rowBytes := r.Width * BytesPerSample
	switch {
	case r.Width <= 0 || r.Height <= 0:
		return newFrameError(code, "region has zero size %dx%d", r.Width, r.Height)
	case r.Stride < rowBytes:
		return newFrameError(code, "stride %d shorter than row of %d pixels", r.Stride, r.Width)
	case r.Stride == rowBytes && len(r.Data) != rowBytes*r.Height:
		return newFrameError(code, "region has %d bytes, want %d", len(r.Data), rowBytes*r.Height)
	case len(r.Data) < r.Stride*(r.Height-1)+rowBytes:
		return newFrameError(code, "region has %d bytes, want at least %d", len(r.Data), r.Stride*(r.Height-1)+rowBytes)
	}
	return nil
}

// Split partitions f into its upper visible half and lower thermal half.
// Both regions alias f.Data.
func Split(f RawFrame) (visible, therm Region, err error) {
	switch {
	case f.Width <= 0 || f.Height <= 0:
		return Region{}, Region{}, newFrameError(ErrCodeGeometry, "frame has zero size %dx%d", f.Width, f.Height)
	case f.Height%2 != 0:
		return Region{}, Region{}, newFrameError(ErrCodeGeometry, "frame height %d is odd", f.Height)
	case f.Stride < f.Width*BytesPerSample:
		return Region{}, Region{}, newFrameError(ErrCodeGeometry, "stride %d shorter than row of %d pixels", f.Stride, f.Width)
	case len(f.Data) < f.Stride*f.Height:
		return Region{}, Region{}, newFrameError(ErrCodeGeometry, "frame has %d bytes, want %d", len(f.Data), f.Stride*f.Height)
	}

	half := f.Height / 2
	split := half * f.Stride
	visible = Region{Data: f.Data[:split:split], Width: f.Width, Height: half, Stride: f.Stride}
	therm = Region{Data: f.Data[split : f.Stride*f.Height], Width: f.Width, Height: half, Stride: f.Stride}
	return visible, therm, nil
}
