//go:build linux && (amd64 || arm64 || arm)

// Package v4l2 provides pure Go bindings to the Video4Linux2 (V4L2) API
// for device enumeration, format queries and memory-mapped capture.
//
// This package does not use cgo. It supports Linux on amd64, arm64 and
// 32-bit arm.
//
// # Device Enumeration
//
// Use FindDevices to discover all V4L2 video capture devices:
//
//	devices, err := v4l2.FindDevices()
//	for _, dev := range devices {
//	    fmt.Printf("%s: %s\n", dev.DevicePath, dev.DeviceName)
//	}
//
// # Capture
//
// Open negotiates a pixel format and maps the driver's buffers. Frames are
// copied out of the mapped buffers so callers own what Read returns:
//
//	s, err := v4l2.Open("/dev/video0", v4l2.Config{Width: 256, Height: 384, PixelFormat: v4l2.PixFmtYUYV})
//	defer s.Close()
//	_ = s.Start()
//	n, err := s.Read(buf, 1000)
package v4l2
