package capture

import (
	"context"
	"image"
	"time"

	"github.com/smazurov/thermview/internal/thermal"
)

// DefaultPollInterval is how long the session waits for a stop signal
// between frames.
const DefaultPollInterval = 10 * time.Millisecond

// Frame is one composed heatmap handed to a Sink. Image is freshly
// allocated per frame and may be retained by the sink.
type Frame struct {
	Sequence uint64
	Image    *image.RGBA
	Peak     thermal.Peak
	Summary  thermal.Summary
	Captured time.Time
}

// Sink presents heatmaps and reports the user's stop request.
type Sink interface {
	Present(ctx context.Context, f Frame) error
	// Poll waits up to timeout for a stop signal.
	Poll(ctx context.Context, timeout time.Duration) (stop bool, err error)
}
