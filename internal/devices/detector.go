// Package devices lists V4L2 capture devices and reports which of them can
// feed the thermal pipeline.
package devices

import (
	"errors"

	"github.com/smazurov/thermview/internal/thermal"
)

// ErrUnsupported is returned on platforms without V4L2.
var ErrUnsupported = errors.New("device detection not supported on this platform")

// fourccYUYV is V4L2_PIX_FMT_YUYV.
const fourccYUYV = 0x56595559

// DeviceInfo describes one capture device.
type DeviceInfo struct {
	DevicePath string       `json:"device_path" example:"/dev/video0" doc:"Device node"`
	DeviceName string       `json:"device_name" example:"USB Camera: Thermal" doc:"Driver card name"`
	DeviceID   string       `json:"device_id" example:"usb-Thermal_Camera-video-index0" doc:"Stable device identifier"`
	Caps       uint32       `json:"caps" doc:"V4L2 device capability flags"`
	Streaming  bool         `json:"streaming" doc:"Supports memory-mapped streaming"`
	Thermal    bool         `json:"thermal" doc:"Offers native YUYV at the dual-plane thermal frame size"`
	Formats    []FormatInfo `json:"formats,omitempty" doc:"Supported pixel formats"`
}

// FormatInfo describes a pixel format.
type FormatInfo struct {
	PixelFormat uint32       `json:"pixel_format" doc:"V4L2 fourcc code"`
	FourCC      string       `json:"fourcc" example:"YUYV" doc:"Fourcc as text"`
	FormatName  string       `json:"format_name" example:"YUYV 4:2:2" doc:"Driver description"`
	Emulated    bool         `json:"emulated" doc:"Produced by software conversion"`
	Resolutions []Resolution `json:"resolutions,omitempty" doc:"Discrete frame sizes"`
}

// Resolution is a frame size.
type Resolution struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// Detector provides platform-specific device detection.
type Detector interface {
	// FindDevices returns all currently available capture devices.
	FindDevices() ([]DeviceInfo, error)

	// GetDeviceFormats returns supported formats for a device.
	GetDeviceFormats(devicePath string) ([]FormatInfo, error)

	// GetDeviceResolutions returns supported resolutions for a format.
	GetDeviceResolutions(devicePath string, pixelFormat uint32) ([]Resolution, error)
}

// NewDetector creates the detector for this platform.
func NewDetector() Detector {
	return newDetector()
}

// Describe lists devices with their formats and marks the ones that can
// deliver raw dual-plane frames. A device whose formats cannot be read is
// still listed.
func Describe(d Detector) ([]DeviceInfo, error) {
	found, err := d.FindDevices()
	if err != nil {
		return nil, err
	}

	for i := range found {
		formats, err := d.GetDeviceFormats(found[i].DevicePath)
		if err != nil {
			continue
		}
		for j := range formats {
			res, err := d.GetDeviceResolutions(found[i].DevicePath, formats[j].PixelFormat)
			if err == nil {
				formats[j].Resolutions = res
			}
		}
		found[i].Formats = formats
		found[i].Thermal = IsThermal(formats)
	}
	return found, nil
}

// IsThermal reports whether formats include native YUYV at the raw frame size.
func IsThermal(formats []FormatInfo) bool {
	for _, f := range formats {
		if f.PixelFormat != fourccYUYV || f.Emulated {
			continue
		}
		for _, r := range f.Resolutions {
			if r.Width == thermal.FrameWidth && r.Height == thermal.FrameHeight {
				return true
			}
		}
	}
	return false
}
