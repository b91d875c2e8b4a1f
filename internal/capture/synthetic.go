package capture

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/smazurov/thermview/internal/thermal"
)

// DefaultSyntheticRate is the synthetic source frame rate.
const DefaultSyntheticRate = 25

const (
	ambientCelsius = 22.0
	spotCelsius    = 15.0 // above ambient at the spot center
	spotSigma      = 10.0 // grid cells
)

var errSourceClosed = errors.New("source closed")

// SyntheticSource generates frames with a gray gradient visible plane and a
// warm spot wandering across the thermal plane. It stands in for a camera
// when none is attached.
type SyntheticSource struct {
	interval time.Duration
	next     time.Time
	tick     int
	closed   bool
}

// NewSyntheticSource paces frames at fps. fps <= 0 produces frames as fast
// as they are read.
func NewSyntheticSource(fps int) *SyntheticSource {
	s := &SyntheticSource{}
	if fps > 0 {
		s.interval = time.Second / time.Duration(fps)
	}
	return s
}

// SpotAt returns the hot spot center for frame number tick.
func SpotAt(tick int) (x, y int) {
	t := float64(tick)
	cx := float64(thermal.GridWidth)/2 + 0.4*float64(thermal.GridWidth)*math.Sin(t*0.031)
	cy := float64(thermal.GridHeight)/2 + 0.4*float64(thermal.GridHeight)*math.Sin(t*0.047)
	return int(math.Round(cx)), int(math.Round(cy))
}

// ReadFrame fills f with the next synthetic frame.
func (s *SyntheticSource) ReadFrame(ctx context.Context, f *thermal.RawFrame) error {
	if s.closed {
		return errSourceClosed
	}
	if err := s.wait(ctx); err != nil {
		return err
	}

	if f.Width != thermal.FrameWidth || f.Height != thermal.FrameHeight || len(f.Data) < thermal.FrameWidth*thermal.FrameHeight*thermal.BytesPerSample {
		*f = thermal.NewRawFrame(thermal.FrameWidth, thermal.FrameHeight)
	}

	fillGradient(*f)

	sx, sy := SpotAt(s.tick)
	for y := 0; y < thermal.GridHeight; y++ {
		for x := 0; x < thermal.GridWidth; x++ {
			dx, dy := float64(x-sx), float64(y-sy)
			c := ambientCelsius + spotCelsius*math.Exp(-(dx*dx+dy*dy)/(2*spotSigma*spotSigma))
			thermal.SetRaw(*f, x, y, thermal.RawFromCelsius(c))
		}
	}
	s.tick++
	return nil
}

func (s *SyntheticSource) wait(ctx context.Context) error {
	if s.interval <= 0 {
		return ctx.Err()
	}
	now := time.Now()
	if s.next.IsZero() || s.next.Before(now) {
		s.next = now
	}
	timer := time.NewTimer(s.next.Sub(now))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		s.next = s.next.Add(s.interval)
		return nil
	}
}

// fillGradient paints the visible plane with a left-to-right luma ramp.
func fillGradient(f thermal.RawFrame) {
	for row := 0; row < f.Height/2; row++ {
		line := f.Data[row*f.Stride : row*f.Stride+f.Width*thermal.BytesPerSample]
		for i := 0; i+3 < len(line); i += 4 {
			x := i / 2
			y0 := byte(x * 255 / (f.Width - 1))
			y1 := byte((x + 1) * 255 / (f.Width - 1))
			line[i], line[i+1], line[i+2], line[i+3] = y0, 128, y1, 128
		}
	}
}

// Close stops the source. Further reads fail.
func (s *SyntheticSource) Close() error {
	s.closed = true
	return nil
}
