//go:build linux

// Package hotplug reads kernel uevents from a NETLINK_KOBJECT_UEVENT socket
// without libudev.
package hotplug

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"syscall"
)

// Uevent actions.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionChange = "change"
)

// SubsystemVideo4Linux is the subsystem of V4L2 device nodes.
const SubsystemVideo4Linux = "video4linux"

const (
	netlinkKobjectUEvent = 15
	kernelGroup          = 1
	recvTimeoutSec       = 1
)

// Uevent is one kernel device event.
type Uevent struct {
	Action    string
	DevPath   string
	Subsystem string
	DevName   string
	Props     map[string]string
}

// Listener receives uevents for a set of subsystems.
type Listener struct {
	fd         int
	subsystems []string
	buf        []byte
}

// Listen opens a uevent socket. With no subsystems every event is returned.
func Listen(subsystems ...string) (*Listener, error) {
	fd, err := syscall.Socket(syscall.AF_NETLINK, syscall.SOCK_DGRAM|syscall.SOCK_CLOEXEC, netlinkKobjectUEvent)
	if err != nil {
		return nil, fmt.Errorf("uevent socket: %w", err)
	}
	if err := syscall.Bind(fd, &syscall.SockaddrNetlink{Family: syscall.AF_NETLINK, Groups: kernelGroup}); err != nil {
		_ = syscall.Close(fd)
		return nil, fmt.Errorf("bind uevent socket: %w", err)
	}
	// The receive timeout bounds how long Next waits before checking ctx.
	tv := syscall.Timeval{Sec: recvTimeoutSec}
	if err := syscall.SetsockoptTimeval(fd, syscall.SOL_SOCKET, syscall.SO_RCVTIMEO, &tv); err != nil {
		_ = syscall.Close(fd)
		return nil, fmt.Errorf("set uevent timeout: %w", err)
	}
	return &Listener{fd: fd, subsystems: subsystems, buf: make([]byte, 8192)}, nil
}

// Next blocks until a matching uevent arrives or ctx is done.
func (l *Listener) Next(ctx context.Context) (Uevent, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Uevent{}, err
		}
		n, _, err := syscall.Recvfrom(l.fd, l.buf, 0)
		switch {
		case errors.Is(err, syscall.EAGAIN), errors.Is(err, syscall.EINTR):
			continue
		case err != nil:
			return Uevent{}, fmt.Errorf("read uevent: %w", err)
		}
		ev, ok := Parse(l.buf[:n])
		if !ok || !l.wants(ev.Subsystem) {
			continue
		}
		return ev, nil
	}
}

func (l *Listener) wants(subsystem string) bool {
	return len(l.subsystems) == 0 || slices.Contains(l.subsystems, subsystem)
}

// Close releases the socket.
func (l *Listener) Close() error {
	return syscall.Close(l.fd)
}

// Parse decodes a kernel uevent of the form "action@devpath\0KEY=VALUE\0...".
// Messages rebroadcast by udevd carry a binary "libudev" header and are
// rejected.
func Parse(msg []byte) (Uevent, bool) {
	if bytes.HasPrefix(msg, []byte("libudev")) {
		return Uevent{}, false
	}
	fields := bytes.Split(msg, []byte{0})
	action, devpath, ok := bytes.Cut(fields[0], []byte("@"))
	if !ok || len(action) == 0 || len(devpath) == 0 {
		return Uevent{}, false
	}

	ev := Uevent{
		Action:  string(action),
		DevPath: string(devpath),
		Props:   make(map[string]string, len(fields)-1),
	}
	for _, f := range fields[1:] {
		key, value, ok := bytes.Cut(f, []byte("="))
		if !ok || len(key) == 0 {
			continue
		}
		ev.Props[string(key)] = string(value)
	}
	ev.Subsystem = ev.Props["SUBSYSTEM"]
	ev.DevName = ev.Props["DEVNAME"]
	return ev, true
}
