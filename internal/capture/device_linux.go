//go:build linux && (amd64 || arm64 || arm)

package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smazurov/thermview/internal/thermal"
	"github.com/smazurov/thermview/pkg/linuxav/v4l2"
)

// deviceSource reads frames from a V4L2 node in its native YUYV format.
// Requesting the native format is what keeps the driver and libv4l from
// converting to RGB, which would destroy the thermal samples.
type deviceSource struct {
	stream    *v4l2.Stream
	timeoutMs int
}

func openDevice(path string, timeoutMs int) (Source, error) {
	formats, err := v4l2.GetFormats(path)
	if err != nil {
		return nil, err
	}
	if _, ok := v4l2.NativeFormat(formats, v4l2.PixFmtYUYV); !ok {
		names := make([]string, 0, len(formats))
		for _, f := range formats {
			names = append(names, v4l2.FormatFourCC(f.PixelFormat))
		}
		return nil, fmt.Errorf("no native YUYV format, device offers [%s]", strings.Join(names, " "))
	}

	stream, err := v4l2.Open(path, v4l2.Config{
		Width:       thermal.FrameWidth,
		Height:      thermal.FrameHeight,
		PixelFormat: v4l2.PixFmtYUYV,
	})
	if err != nil {
		return nil, err
	}
	if stream.Width() != thermal.FrameWidth || stream.Height() != thermal.FrameHeight {
		_ = stream.Close()
		return nil, fmt.Errorf("driver negotiated %dx%d, want %dx%d",
			stream.Width(), stream.Height(), thermal.FrameWidth, thermal.FrameHeight)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, err
	}

	if timeoutMs <= 0 {
		timeoutMs = DefaultReadTimeoutMs
	}
	return &deviceSource{stream: stream, timeoutMs: timeoutMs}, nil
}

// ReadFrame waits for the next frame. A wait that times out reports
// ErrEmptyFrame so the session can poll for stop and retry.
func (d *deviceSource) ReadFrame(ctx context.Context, f *thermal.RawFrame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stride := d.stream.Stride()
	if stride < thermal.FrameRowBytes {
		stride = thermal.FrameRowBytes
	}
	if f.Width != d.stream.Width() || f.Height != d.stream.Height() || f.Stride != stride {
		*f = thermal.RawFrame{
			Data:   make([]byte, stride*d.stream.Height()),
			Width:  d.stream.Width(),
			Height: d.stream.Height(),
			Stride: stride,
		}
	}

	n, err := d.stream.Read(f.Data, d.timeoutMs)
	switch {
	case errors.Is(err, v4l2.ErrTimeout):
		return fmt.Errorf("%w: no frame within %dms", ErrEmptyFrame, d.timeoutMs)
	case err != nil:
		return err
	case n == 0:
		return ErrEmptyFrame
	case n < len(f.Data):
		return fmt.Errorf("short frame: %d of %d bytes", n, len(f.Data))
	}
	return nil
}

func (d *deviceSource) Close() error {
	return d.stream.Close()
}
