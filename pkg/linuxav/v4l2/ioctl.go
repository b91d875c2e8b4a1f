//go:build linux && (amd64 || arm64 || arm)

package v4l2

import (
	"errors"
	"syscall"
	"unsafe"
)

func ioctl(fd int, req uint, arg unsafe.Pointer) error {
	for {
		_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
		switch errno {
		case 0:
			return nil
		case syscall.EINTR:
			continue
		default:
			return errno
		}
	}
}

func open(path string) (int, error) {
	return syscall.Open(path, syscall.O_RDWR|syscall.O_NONBLOCK, 0)
}

func close(fd int) error {
	return syscall.Close(fd)
}

// fdBits is the width of one FdSet word: 64 on amd64 and arm64, 32 on arm.
const fdBits = int(unsafe.Sizeof(syscall.FdSet{}.Bits[0])) * 8

// waitReadable blocks until fd has a frame ready or timeoutMs elapses.
// It reports false on timeout or signal interruption.
func waitReadable(fd, timeoutMs int) (bool, error) {
	var readFds syscall.FdSet
	readFds.Bits[fd/fdBits] |= 1 << (uint(fd) % uint(fdBits))

	var tv *syscall.Timeval
	if timeoutMs > 0 {
		tv = makeTimeval(timeoutMs)
	}

	n, err := syscall.Select(fd+1, &readFds, nil, nil, tv)
	if err != nil {
		if errors.Is(err, syscall.EINTR) {
			return false, nil
		}
		return false, err
	}
	return n > 0, nil
}
