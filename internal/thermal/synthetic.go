package thermal

// FillVisible paints the whole visible half of f with one YUYV color.
func FillVisible(f RawFrame, y, u, v byte) {
	for row := 0; row < f.Height/2; row++ {
		line := f.Data[row*f.Stride : row*f.Stride+f.Width*BytesPerSample]
		for i := 0; i+3 < len(line); i += 4 {
			line[i], line[i+1], line[i+2], line[i+3] = y, u, y, v
		}
	}
}

// SetRaw stores a raw thermal sample at grid cell (x, y) of f.
func SetRaw(f RawFrame, x, y int, raw uint16) {
	off := (f.Height/2+y)*f.Stride + x*BytesPerSample
	f.Data[off] = byte(raw)
	f.Data[off+1] = byte(raw >> 8)
}

// FillThermal sets every thermal cell of f to raw.
func FillThermal(f RawFrame, raw uint16) {
	for y := 0; y < f.Height/2; y++ {
		for x := 0; x < f.Width; x++ {
			SetRaw(f, x, y, raw)
		}
	}
}
