package thermal

// Grid holds calibrated temperatures in Celsius, row-major.
type Grid struct {
	Width  int
	Height int
	Values []float64
}

// NewGrid allocates a width x height grid.
func NewGrid(width, height int) *Grid {
	return &Grid{Width: width, Height: height, Values: make([]float64, width*height)}
}

// At returns the temperature at column x, row y.
func (g *Grid) At(x, y int) float64 {
	return g.Values[y*g.Width+x]
}

// Set stores the temperature at column x, row y.
func (g *Grid) Set(x, y int, celsius float64) {
	g.Values[y*g.Width+x] = celsius
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Values)
}

// Celsius converts one raw little-endian sample to degrees Celsius.
func Celsius(b0, b1 byte) float64 {
	raw := uint32(b1)<<8 | uint32(b0)
	return float64(raw)/RawScale - KelvinOffset
}

// RawFromCelsius is the inverse of Celsius, rounded to the nearest count.
// Used to build synthetic frames.
func RawFromCelsius(c float64) uint16 {
	v := (c + KelvinOffset) * RawScale
	switch {
	case v <= 0:
		return 0
	case v >= 0xffff:
		return 0xffff
	}
	return uint16(v + 0.5)
}

// Decode converts a thermal region into a fresh temperature grid.
func Decode(r Region) (*Grid, error) {
	if err := r.check(ErrCodeDecode); err != nil {
		return nil, err
	}
	g := NewGrid(r.Width, r.Height)
	decodeRows(r, g)
	return g, nil
}

// DecodeInto decodes r into g, resizing g when its dimensions differ.
func DecodeInto(r Region, g *Grid) error {
	if err := r.check(ErrCodeDecode); err != nil {
		return err
	}
	if g.Width != r.Width || g.Height != r.Height || len(g.Values) != r.Width*r.Height {
		g.Width, g.Height = r.Width, r.Height
		g.Values = make([]float64, r.Width*r.Height)
	}
	decodeRows(r, g)
	return nil
}

func decodeRows(r Region, g *Grid) {
	for y := 0; y < r.Height; y++ {
		row := r.Row(y)
		out := g.Values[y*g.Width : (y+1)*g.Width]
		for x := range out {
			out[x] = Celsius(row[2*x], row[2*x+1])
		}
	}
}
