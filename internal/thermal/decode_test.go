package thermal

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

const epsilon = 1e-9

func TestDecodeFormula(t *testing.T) {
	data := make([]byte, 2*GridWidth*GridHeight)
	rng := rand.New(rand.NewSource(1))
	rng.Read(data)

	grid, err := Decode(Region{Data: data, Width: GridWidth, Height: GridHeight, Stride: FrameRowBytes})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if grid.Len() != GridWidth*GridHeight {
		t.Fatalf("grid has %d cells, want %d", grid.Len(), GridWidth*GridHeight)
	}

	for i, got := range grid.Values {
		b0, b1 := data[2*i], data[2*i+1]
		want := float64(int(b1)*256+int(b0))/64.0 - 273.15
		if math.Abs(got-want) > epsilon {
			t.Fatalf("cell %d = %v, want %v", i, got, want)
		}
	}
}

func TestDecodeKnownValues(t *testing.T) {
	tests := []struct {
		name   string
		b0, b1 byte
		want   float64
	}{
		{"absolute zero", 0, 0, -273.15},
		{"raw 16384", 0, 64, -17.15},
		{"raw 20000", 0x20, 0x4E, 20000/64.0 - 273.15},
		{"max raw", 0xff, 0xff, 65535/64.0 - 273.15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Celsius(tt.b0, tt.b1); math.Abs(got-tt.want) > epsilon {
				t.Errorf("Celsius(%d, %d) = %v, want %v", tt.b0, tt.b1, got, tt.want)
			}
		})
	}
}

func TestDecodeAllZero(t *testing.T) {
	f := NewRawFrame(FrameWidth, FrameHeight)
	_, therm, err := Split(f)
	if err != nil {
		t.Fatal(err)
	}

	grid, err := Decode(therm)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, v := range grid.Values {
		if math.Abs(v+273.15) > epsilon {
			t.Fatalf("cell %d = %v, want -273.15", i, v)
		}
	}
}

func TestDecodeLengthMismatch(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"short", 2*4*4 - 1},
		{"long", 2*4*4 + 2},
		{"empty", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(Region{Data: make([]byte, tt.size), Width: 4, Height: 4, Stride: 8})
			if !errors.Is(err, ErrDecode) {
				t.Errorf("Decode error = %v, want ErrDecode", err)
			}
		})
	}
}

func TestDecodeIntoResizes(t *testing.T) {
	data := []byte{0, 64, 0, 0, 0, 0, 0, 0}
	g := NewGrid(1, 1)

	if err := DecodeInto(Region{Data: data, Width: 2, Height: 2, Stride: 4}, g); err != nil {
		t.Fatalf("DecodeInto: %v", err)
	}
	if g.Width != 2 || g.Height != 2 || g.Len() != 4 {
		t.Fatalf("grid = %dx%d (%d cells), want 2x2", g.Width, g.Height, g.Len())
	}
	if math.Abs(g.At(0, 0)+17.15) > epsilon {
		t.Errorf("At(0,0) = %v, want -17.15", g.At(0, 0))
	}
}

func TestRawFromCelsiusRoundTrip(t *testing.T) {
	for _, c := range []float64{-273.15, -17.15, 0, 36.6, 120} {
		raw := RawFromCelsius(c)
		got := Celsius(byte(raw), byte(raw>>8))
		if math.Abs(got-c) > 1.0/64 {
			t.Errorf("round trip %v -> %d -> %v", c, raw, got)
		}
	}
}
