package thermal

import (
	"errors"
	"testing"
)

func TestSplit(t *testing.T) {
	f := NewRawFrame(FrameWidth, FrameHeight)
	visible, therm, err := Split(f)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	if visible.Width != FrameWidth || visible.Height != GridHeight {
		t.Errorf("visible = %dx%d, want %dx%d", visible.Width, visible.Height, FrameWidth, GridHeight)
	}
	if therm.Width != FrameWidth || therm.Height != GridHeight {
		t.Errorf("thermal = %dx%d, want %dx%d", therm.Width, therm.Height, FrameWidth, GridHeight)
	}
	if len(visible.Data) != FrameRowBytes*GridHeight || len(therm.Data) != FrameRowBytes*GridHeight {
		t.Errorf("region lengths = %d/%d, want %d", len(visible.Data), len(therm.Data), FrameRowBytes*GridHeight)
	}

	// Regions are views: writes through the frame show up in both halves.
	f.Data[0] = 0xAB
	f.Data[FrameRowBytes*GridHeight] = 0xCD
	if visible.Data[0] != 0xAB {
		t.Error("visible region does not alias the frame")
	}
	if therm.Data[0] != 0xCD {
		t.Error("thermal region does not alias the frame")
	}
}

func TestSplitGeometryErrors(t *testing.T) {
	tests := []struct {
		name  string
		frame RawFrame
	}{
		{"odd height", NewRawFrame(4, 5)},
		{"zero width", RawFrame{Width: 0, Height: 4}},
		{"zero height", RawFrame{Data: make([]byte, 8), Width: 4, Height: 0, Stride: 8}},
		{"short buffer", RawFrame{Data: make([]byte, 10), Width: 4, Height: 2, Stride: 8}},
		{"short stride", RawFrame{Data: make([]byte, 32), Width: 4, Height: 4, Stride: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Split(tt.frame)
			if !errors.Is(err, ErrGeometry) {
				t.Fatalf("Split error = %v, want ErrGeometry", err)
			}
			if errors.Is(err, ErrDecode) {
				t.Error("geometry error must not match ErrDecode")
			}
		})
	}
}

func TestSplitHonorsStride(t *testing.T) {
	f := RawFrame{Data: make([]byte, 12*4), Width: 4, Height: 4, Stride: 12}
	f.Data[2*12] = 7 // first byte of row 2, the first thermal row

	_, therm, err := Split(f)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if got := therm.Row(0)[0]; got != 7 {
		t.Errorf("thermal row 0 byte 0 = %d, want 7", got)
	}
	if got := len(therm.Row(1)); got != 8 {
		t.Errorf("row length = %d, want 8 packed bytes", got)
	}
}

func TestFrameGeometry(t *testing.T) {
	if FrameWidth != 256 || FrameHeight != 384 {
		t.Errorf("frame = %dx%d, want 256x384", FrameWidth, FrameHeight)
	}
	if FrameRowBytes != 512 {
		t.Errorf("FrameRowBytes = %d, want 512", FrameRowBytes)
	}
}
