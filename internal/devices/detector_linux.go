//go:build linux && (amd64 || arm64 || arm)

package devices

import (
	"github.com/smazurov/thermview/pkg/linuxav/v4l2"
)

type linuxDetector struct{}

func newDetector() Detector {
	return linuxDetector{}
}

// FindDevices returns all V4L2 capture devices.
func (linuxDetector) FindDevices() ([]DeviceInfo, error) {
	found, err := v4l2.FindDevices()
	if err != nil {
		return nil, err
	}

	out := make([]DeviceInfo, len(found))
	for i, d := range found {
		out[i] = DeviceInfo{
			DevicePath: d.DevicePath,
			DeviceName: d.DeviceName,
			DeviceID:   d.DeviceID,
			Caps:       d.Caps,
			Streaming:  d.Streaming(),
		}
	}
	return out, nil
}

// GetDeviceFormats returns supported formats for a device.
func (linuxDetector) GetDeviceFormats(devicePath string) ([]FormatInfo, error) {
	formats, err := v4l2.GetFormats(devicePath)
	if err != nil {
		return nil, err
	}

	out := make([]FormatInfo, len(formats))
	for i, f := range formats {
		out[i] = FormatInfo{
			PixelFormat: f.PixelFormat,
			FourCC:      v4l2.FormatFourCC(f.PixelFormat),
			FormatName:  f.FormatName,
			Emulated:    f.Emulated,
		}
	}
	return out, nil
}

// GetDeviceResolutions returns supported resolutions for a format.
func (linuxDetector) GetDeviceResolutions(devicePath string, pixelFormat uint32) ([]Resolution, error) {
	res, err := v4l2.GetResolutions(devicePath, pixelFormat)
	if err != nil {
		return nil, err
	}

	out := make([]Resolution, len(res))
	for i, r := range res {
		out[i] = Resolution{Width: r.Width, Height: r.Height}
	}
	return out, nil
}
