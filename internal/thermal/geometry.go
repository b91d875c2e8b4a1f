package thermal

// Fixed device geometry of the dual-plane 256x192 sensor.
const (
	GridWidth           = 256
	GridHeight          = 192
	UpscaleFactor       = 3
	CrosshairHalfLength = 5
	CrosshairWidth      = 3
	BytesPerSample      = 2
	FrameWidth          = GridWidth
	FrameHeight         = GridHeight * 2
	FrameRowBytes       = FrameWidth * BytesPerSample
)

// Calibration constants for raw/64 - 273.15.
const (
	RawScale     = 64.0
	KelvinOffset = 273.15
)

// Geometry groups the device-specific sizes used by the compositor.
type Geometry struct {
	GridWidth     int
	GridHeight    int
	Upscale       int
	CrosshairHalf int
	StrokeWidth   int
}

// DefaultGeometry returns the geometry of the supported camera.
func DefaultGeometry() Geometry {
	return Geometry{
		GridWidth:     GridWidth,
		GridHeight:    GridHeight,
		Upscale:       UpscaleFactor,
		CrosshairHalf: CrosshairHalfLength,
		StrokeWidth:   CrosshairWidth,
	}
}

// FrameSize returns the byte length of one raw frame for g.
func (g Geometry) FrameSize() int {
	return g.GridWidth * BytesPerSample * g.GridHeight * 2
}
