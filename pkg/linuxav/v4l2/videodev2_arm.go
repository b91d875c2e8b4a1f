//go:build linux && arm

package v4l2

import (
	"syscall"
	"unsafe"
)

var (
	_ [204]byte = [unsafe.Sizeof(v4l2Format{})]byte{}
	_ [68]byte  = [unsafe.Sizeof(v4l2Buffer{})]byte{}
)

// Requests whose argument size depends on pointer width. The buffer layout
// uses the 32-bit time_t timeval that syscall.Timeval carries on arm.
const (
	vidiocGFmt     = 0xc0cc5604
	vidiocSFmt     = 0xc0cc5605
	vidiocQuerybuf = 0xc0445609
	vidiocQbuf     = 0xc044560f
	vidiocDqbuf    = 0xc0445611
)

// v4l2Format has size 204 bytes. Pointers in v4l2_window are 4 bytes, so
// the union follows the type field directly.
type v4l2Format struct {
	typ uint32        // offset 0
	pix v4l2PixFormat // offset 4 (union with raw_data[200])
	_   [152]byte     // rest of the union
}

type v4l2Buffer struct {
	index     uint32          // offset 0
	typ       uint32          // offset 4
	bytesused uint32          // offset 8
	flags     uint32          // offset 12
	field     uint32          // offset 16
	timestamp syscall.Timeval // offset 20
	timecode  [16]byte        // offset 28
	sequence  uint32          // offset 44
	memory    uint32          // offset 48
	m         uint32          // offset 52 (union: offset, userptr, planes, fd)
	length    uint32          // offset 56
	reserved2 uint32          // offset 60
	requestFD int32           // offset 64
}

// offset returns the mmap offset stored in the m union.
func (b *v4l2Buffer) offset() int64 {
	return int64(b.m)
}
