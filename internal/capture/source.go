package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/smazurov/thermview/internal/thermal"
)

const (
	// SyntheticDevice is the device path that selects the built-in generator.
	SyntheticDevice = "synthetic"
	// DefaultReadTimeoutMs bounds each wait for a device frame.
	DefaultReadTimeoutMs = 1000
)

var (
	// ErrDeviceOpen is returned when the capture device cannot be opened.
	ErrDeviceOpen = errors.New("device open failed")
	// ErrEmptyFrame marks a read that produced no data. It is transient.
	ErrEmptyFrame = errors.New("empty frame")
	// ErrUnsupported is returned for device capture on platforms without V4L2.
	ErrUnsupported = errors.New("device capture not supported on this platform")
)

// Source produces raw dual-plane frames.
type Source interface {
	// ReadFrame blocks until a frame is available and overwrites f with it.
	ReadFrame(ctx context.Context, f *thermal.RawFrame) error
	Close() error
}

// Opener opens the source for a device path.
type Opener func(path string) (Source, error)

// OpenSource opens a V4L2 device, or the synthetic generator for
// SyntheticDevice. Failures wrap ErrDeviceOpen.
func OpenSource(path string) (Source, error) {
	if path == SyntheticDevice {
		return NewSyntheticSource(DefaultSyntheticRate), nil
	}
	src, err := openDevice(path, DefaultReadTimeoutMs)
	if err != nil {
		return nil, deviceOpenError(path, err)
	}
	return src, nil
}

// DeviceOpener is OpenSource with a custom per-frame wait.
func DeviceOpener(readTimeoutMs int) Opener {
	return func(path string) (Source, error) {
		if path == SyntheticDevice {
			return NewSyntheticSource(DefaultSyntheticRate), nil
		}
		src, err := openDevice(path, readTimeoutMs)
		if err != nil {
			return nil, deviceOpenError(path, err)
		}
		return src, nil
	}
}

func deviceOpenError(path string, err error) error {
	if errors.Is(err, ErrDeviceOpen) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrDeviceOpen, path, err)
}
