//go:build linux && (amd64 || arm64 || arm)

package v4l2

// DeviceInfo describes a video capture node.
type DeviceInfo struct {
	DevicePath string
	DeviceName string
	// DeviceID is the /dev/v4l/by-id name, or one built from the bus info
	// when udev created no link.
	DeviceID string
	Caps     uint32
}

// Streaming reports whether the device supports memory-mapped capture.
func (d DeviceInfo) Streaming() bool {
	return d.Caps&v4l2CapStreaming != 0
}

// FormatInfo is one entry of VIDIOC_ENUM_FMT.
type FormatInfo struct {
	PixelFormat uint32
	FormatName  string
	// Emulated formats are produced by libv4l conversion, not the driver.
	Emulated bool
}

// Resolution is a frame size in pixels.
type Resolution struct {
	Width  uint32
	Height uint32
}

const (
	v4l2CapVideoCapture = 0x00000001
	v4l2CapStreaming    = 0x04000000
	v4l2CapDeviceCaps   = 0x80000000

	v4l2FmtFlagEmulated = 0x0002
)

// Pixel formats as little-endian fourcc codes.
const (
	PixFmtYUYV  = 0x56595559 // 'YUYV'
	PixFmtMJPEG = 0x47504A4D // 'MJPG'
)

const (
	v4l2FrmsizeTypeDiscrete   = 1
	v4l2FrmsizeTypeContinuous = 2
	v4l2FrmsizeTypeStepwise   = 3
)

const (
	v4l2BufTypeVideoCapture = 1
	v4l2MemoryMmap          = 1
	v4l2FieldNone           = 1
)
