//go:build linux && (amd64 || arm64 || arm)

package v4l2

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"
)

var (
	// ErrTimeout is returned by Read when no frame arrived in time.
	ErrTimeout = errors.New("v4l2: timed out waiting for frame")
	// ErrNotCapture is returned by Open for nodes without streaming capture.
	ErrNotCapture = errors.New("v4l2: device does not support streaming capture")
	// ErrShortBuffer is returned by Read when dst cannot hold a frame.
	ErrShortBuffer = errors.New("v4l2: destination buffer too small")
)

// DefaultBufferCount is the number of driver buffers requested by Open.
const DefaultBufferCount = 4

// Config selects the capture format. Zero Width or Height keeps the
// driver's current size.
type Config struct {
	Width       uint32
	Height      uint32
	PixelFormat uint32
	Buffers     int
}

// Stream is an open capture device with memory-mapped buffers.
// A Stream is not safe for concurrent use.
type Stream struct {
	fd        int
	path      string
	width     uint32
	height    uint32
	stride    uint32
	size      uint32
	format    uint32
	bufs      [][]byte
	streaming bool
}

// Open opens devicePath, applies cfg and maps the capture buffers.
func Open(devicePath string, cfg Config) (*Stream, error) {
	fd, err := open(devicePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open device %s: %w", devicePath, err)
	}

	s := &Stream{fd: fd, path: devicePath}
	if err := s.init(cfg); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Stream) init(cfg Config) error {
	cp := v4l2Capability{}
	if err := ioctl(s.fd, vidiocQuerycap, unsafe.Pointer(&cp)); err != nil {
		return fmt.Errorf("failed to query capabilities: %w", err)
	}
	caps := cp.effectiveCaps()
	if caps&v4l2CapVideoCapture == 0 || caps&v4l2CapStreaming == 0 {
		return ErrNotCapture
	}

	f := v4l2Format{typ: v4l2BufTypeVideoCapture}
	if err := ioctl(s.fd, vidiocGFmt, unsafe.Pointer(&f)); err != nil {
		return fmt.Errorf("failed to get format: %w", err)
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		f.pix.width = cfg.Width
		f.pix.height = cfg.Height
	}
	if cfg.PixelFormat != 0 {
		f.pix.pixelformat = cfg.PixelFormat
	}
	f.pix.field = v4l2FieldNone
	if err := ioctl(s.fd, vidiocSFmt, unsafe.Pointer(&f)); err != nil {
		return fmt.Errorf("failed to set format %s %dx%d: %w",
			FormatFourCC(f.pix.pixelformat), f.pix.width, f.pix.height, err)
	}
	if cfg.PixelFormat != 0 && f.pix.pixelformat != cfg.PixelFormat {
		return fmt.Errorf("driver selected %s instead of %s",
			FormatFourCC(f.pix.pixelformat), FormatFourCC(cfg.PixelFormat))
	}

	s.width = f.pix.width
	s.height = f.pix.height
	s.stride = f.pix.bytesperline
	s.size = f.pix.sizeimage
	s.format = f.pix.pixelformat

	count := cfg.Buffers
	if count <= 0 {
		count = DefaultBufferCount
	}
	req := v4l2RequestBuffers{
		count:  uint32(count),
		typ:    v4l2BufTypeVideoCapture,
		memory: v4l2MemoryMmap,
	}
	if err := ioctl(s.fd, vidiocReqbufs, unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("failed to request buffers: %w", err)
	}
	if req.count == 0 {
		return fmt.Errorf("driver granted no buffers")
	}

	for i := uint32(0); i < req.count; i++ {
		buf := v4l2Buffer{index: i, typ: v4l2BufTypeVideoCapture, memory: v4l2MemoryMmap}
		if err := ioctl(s.fd, vidiocQuerybuf, unsafe.Pointer(&buf)); err != nil {
			return fmt.Errorf("failed to query buffer %d: %w", i, err)
		}
		mem, err := syscall.Mmap(s.fd, buf.offset(), int(buf.length),
			syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
		if err != nil {
			return fmt.Errorf("failed to map buffer %d: %w", i, err)
		}
		s.bufs = append(s.bufs, mem)
	}

	return nil
}

// Width returns the negotiated frame width in pixels.
func (s *Stream) Width() int { return int(s.width) }

// Height returns the negotiated frame height in rows.
func (s *Stream) Height() int { return int(s.height) }

// Stride returns the number of bytes per row.
func (s *Stream) Stride() int { return int(s.stride) }

// FrameSize returns the driver's image size in bytes.
func (s *Stream) FrameSize() int { return int(s.size) }

// PixelFormat returns the negotiated pixel format.
func (s *Stream) PixelFormat() uint32 { return s.format }

// Path returns the device node the stream was opened from.
func (s *Stream) Path() string { return s.path }

// Start queues every buffer and turns streaming on.
func (s *Stream) Start() error {
	if s.streaming {
		return nil
	}
	for i := range s.bufs {
		if err := s.queue(uint32(i)); err != nil {
			return err
		}
	}
	typ := uint32(v4l2BufTypeVideoCapture)
	if err := ioctl(s.fd, vidiocStreamon, unsafe.Pointer(&typ)); err != nil {
		return fmt.Errorf("failed to start streaming: %w", err)
	}
	s.streaming = true
	return nil
}

func (s *Stream) queue(index uint32) error {
	buf := v4l2Buffer{index: index, typ: v4l2BufTypeVideoCapture, memory: v4l2MemoryMmap}
	if err := ioctl(s.fd, vidiocQbuf, unsafe.Pointer(&buf)); err != nil {
		return fmt.Errorf("failed to queue buffer %d: %w", index, err)
	}
	return nil
}

// Read waits up to timeoutMs for the next frame and copies it into dst.
// It returns the number of bytes written.
func (s *Stream) Read(dst []byte, timeoutMs int) (int, error) {
	ready, err := waitReadable(s.fd, timeoutMs)
	if err != nil {
		return 0, fmt.Errorf("failed to wait for frame: %w", err)
	}
	if !ready {
		return 0, ErrTimeout
	}

	buf := v4l2Buffer{typ: v4l2BufTypeVideoCapture, memory: v4l2MemoryMmap}
	if err := ioctl(s.fd, vidiocDqbuf, unsafe.Pointer(&buf)); err != nil {
		if errors.Is(err, syscall.EAGAIN) {
			return 0, ErrTimeout
		}
		return 0, fmt.Errorf("failed to dequeue buffer: %w", err)
	}
	if int(buf.index) >= len(s.bufs) {
		return 0, fmt.Errorf("driver returned unknown buffer %d", buf.index)
	}

	src := s.bufs[buf.index][:min(int(buf.bytesused), len(s.bufs[buf.index]))]
	n := copy(dst, src)
	if qerr := s.queue(buf.index); qerr != nil {
		return n, qerr
	}
	if n < len(src) {
		return n, ErrShortBuffer
	}
	return n, nil
}

// Close stops streaming, unmaps buffers and closes the device.
func (s *Stream) Close() error {
	var errs []error
	if s.streaming {
		typ := uint32(v4l2BufTypeVideoCapture)
		if err := ioctl(s.fd, vidiocStreamoff, unsafe.Pointer(&typ)); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop streaming: %w", err))
		}
		s.streaming = false
	}
	for _, mem := range s.bufs {
		if err := syscall.Munmap(mem); err != nil {
			errs = append(errs, err)
		}
	}
	if len(s.bufs) > 0 {
		req := v4l2RequestBuffers{typ: v4l2BufTypeVideoCapture, memory: v4l2MemoryMmap}
		_ = ioctl(s.fd, vidiocReqbufs, unsafe.Pointer(&req))
		s.bufs = nil
	}
	if s.fd >= 0 {
		if err := close(s.fd); err != nil {
			errs = append(errs, err)
		}
		s.fd = -1
	}
	return errors.Join(errs...)
}
