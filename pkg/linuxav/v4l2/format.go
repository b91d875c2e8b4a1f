//go:build linux && (amd64 || arm64 || arm)

package v4l2

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"
)

// Sizes offered for drivers that report a stepwise or continuous range.
// Dual-plane thermal cores report double-height frames.
var rangeCandidates = []Resolution{
	{160, 240},
	{256, 192},
	{256, 384},
	{320, 240},
	{384, 576},
	{640, 480},
	{640, 1024},
	{1280, 720},
}

// NativeFormat returns the first non-emulated entry of formats matching
// pixelFormat. Emulated formats are converted in userspace and would destroy
// packed sample data.
func NativeFormat(formats []FormatInfo, pixelFormat uint32) (FormatInfo, bool) {
	for _, f := range formats {
		if f.PixelFormat == pixelFormat && !f.Emulated {
			return f, true
		}
	}
	return FormatInfo{}, false
}

// enumerate calls query with index 0, 1, ... until the driver answers
// EINVAL. query returns false to stop early.
func enumerate(fd int, req uint, what string, query func(index uint32) (unsafe.Pointer, func() bool)) error {
	for i := uint32(0); ; i++ {
		arg, visit := query(i)
		err := ioctl(fd, req, arg)
		if errors.Is(err, syscall.EINVAL) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("enumerate %s %d: %w", what, i, err)
		}
		if !visit() {
			return nil
		}
	}
}

// GetFormats lists the capture pixel formats of a device.
func GetFormats(devicePath string) ([]FormatInfo, error) {
	fd, err := open(devicePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", devicePath, err)
	}
	defer close(fd)

	var formats []FormatInfo
	err = enumerate(fd, vidiocEnumFmt, "format", func(i uint32) (unsafe.Pointer, func() bool) {
		desc := &v4l2Fmtdesc{index: i, typ: v4l2BufTypeVideoCapture}
		return unsafe.Pointer(desc), func() bool {
			formats = append(formats, FormatInfo{
				PixelFormat: desc.pixelformat,
				FormatName:  cstr(desc.description[:]),
				Emulated:    desc.flags&v4l2FmtFlagEmulated != 0,
			})
			return true
		}
	})
	if err != nil {
		return nil, err
	}
	return formats, nil
}

// GetResolutions lists the frame sizes a device offers for pixelFormat.
// Drivers without frame size enumeration yield an empty list.
func GetResolutions(devicePath string, pixelFormat uint32) ([]Resolution, error) {
	fd, err := open(devicePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", devicePath, err)
	}
	defer close(fd)

	resolutions := []Resolution{}
	err = enumerate(fd, vidiocEnumFramesizes, "frame size", func(i uint32) (unsafe.Pointer, func() bool) {
		size := &v4l2Frmsizeenum{index: i, pixelFormat: pixelFormat}
		return unsafe.Pointer(size), func() bool {
			if size.typ == v4l2FrmsizeTypeDiscrete {
				resolutions = append(resolutions, Resolution{Width: size.discrete.width, Height: size.discrete.height})
				return true
			}
			// A range is reported once, at index 0.
			step := (*v4l2FrmsizeStepwise)(unsafe.Pointer(&size.discrete))
			resolutions = append(resolutions, withinRange(*step)...)
			return false
		}
	})
	if errors.Is(err, syscall.ENOTTY) {
		return []Resolution{}, nil
	}
	if err != nil {
		return nil, err
	}
	return resolutions, nil
}

func withinRange(r v4l2FrmsizeStepwise) []Resolution {
	var out []Resolution
	for _, c := range rangeCandidates {
		if c.Width >= r.minWidth && c.Width <= r.maxWidth && c.Height >= r.minHeight && c.Height <= r.maxHeight {
			out = append(out, c)
		}
	}
	return out
}

// FormatFourCC renders a pixel format code as its four characters.
func FormatFourCC(format uint32) string {
	return string([]byte{byte(format), byte(format >> 8), byte(format >> 16), byte(format >> 24)})
}
