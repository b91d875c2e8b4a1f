//go:build linux && (amd64 || arm64)

package v4l2

import (
	"syscall"
	"unsafe"
)

var (
	_ [208]byte = [unsafe.Sizeof(v4l2Format{})]byte{}
	_ [88]byte  = [unsafe.Sizeof(v4l2Buffer{})]byte{}
)

// Requests whose argument size depends on pointer width.
const (
	vidiocGFmt     = 0xc0d05604
	vidiocSFmt     = 0xc0d05605
	vidiocQuerybuf = 0xc0585609
	vidiocQbuf     = 0xc058560f
	vidiocDqbuf    = 0xc0585611
)

// v4l2Format has size 208 bytes. The format union is 8-byte aligned
// because v4l2_window carries pointers.
type v4l2Format struct {
	typ uint32        // offset 0
	_   [4]byte       // padding
	pix v4l2PixFormat // offset 8 (union with raw_data[200])
	_   [152]byte     // rest of the union
}

type v4l2Buffer struct {
	index     uint32          // offset 0
	typ       uint32          // offset 4
	bytesused uint32          // offset 8
	flags     uint32          // offset 12
	field     uint32          // offset 16
	_         [4]byte         // padding
	timestamp syscall.Timeval // offset 24
	timecode  [16]byte        // offset 40
	sequence  uint32          // offset 56
	memory    uint32          // offset 60
	m         uint64          // offset 64 (union: offset, userptr, planes, fd)
	length    uint32          // offset 72
	reserved2 uint32          // offset 76
	requestFD int32           // offset 80
	_         [4]byte         // padding to 88
}

// offset returns the mmap offset stored in the m union.
func (b *v4l2Buffer) offset() int64 {
	return int64(uint32(b.m))
}
