//go:build linux && (amd64 || arm64 || arm)

package v4l2

import (
	"bytes"
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unsafe"
)

var (
	sysfsClassDir = "/sys/class/video4linux"
	byIDDir       = "/dev/v4l/by-id"
)

// FindDevices lists the video capture nodes, ordered by node number.
// Nodes that cannot be queried are skipped.
func FindDevices() ([]DeviceInfo, error) {
	entries, err := os.ReadDir(sysfsClassDir)
	if os.IsNotExist(err) {
		return []DeviceInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sysfsClassDir, err)
	}

	links := byIDLinks(byIDDir)
	devices := []DeviceInfo{}
	for _, entry := range entries {
		node := entry.Name()
		path := "/dev/" + node

		cp, err := queryCapability(path)
		if err != nil {
			slog.Debug("Skipping video node", "path", path, "error", err)
			continue
		}
		caps := cp.effectiveCaps()
		if caps&v4l2CapVideoCapture == 0 {
			continue
		}

		index := readIndex(filepath.Join(sysfsClassDir, node, "index"))
		devices = append(devices, DeviceInfo{
			DevicePath: path,
			DeviceName: cstr(cp.card[:]),
			DeviceID:   stableID(links, node, index, cstr(cp.busInfo[:])),
			Caps:       caps,
		})
	}

	slices.SortFunc(devices, func(a, b DeviceInfo) int {
		return cmp.Compare(nodeNumber(a.DevicePath), nodeNumber(b.DevicePath))
	})
	return devices, nil
}

// byIDLinks maps node names such as "video0" to the by-id link names that
// point at them.
func byIDLinks(dir string) map[string][]string {
	links := make(map[string][]string)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return links
	}
	for _, e := range entries {
		if e.Type()&os.ModeSymlink == 0 {
			continue
		}
		target, err := os.Readlink(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		node := filepath.Base(target)
		links[node] = append(links[node], e.Name())
	}
	return links
}

// stableID prefers the udev by-id link for node, then derives one from the
// bus info in the same "-video-indexN" shape.
func stableID(links map[string][]string, node string, index int, busInfo string) string {
	suffix := "-video-index" + strconv.Itoa(index)
	for _, name := range links[node] {
		if strings.HasSuffix(name, suffix) {
			return name
		}
	}
	if strings.HasPrefix(busInfo, "usb-") {
		return busInfo + suffix
	}
	return "platform-" + busInfo + suffix
}

func nodeNumber(path string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(path), "video"))
	if err != nil {
		return -1
	}
	return n
}

func readIndex(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	n, _ := strconv.Atoi(strings.TrimSpace(string(data)))
	return n
}

// cstr converts a NUL-terminated kernel string.
func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

func queryCapability(path string) (*v4l2Capability, error) {
	fd, err := open(path)
	if err != nil {
		return nil, err
	}
	defer close(fd)

	cp := &v4l2Capability{}
	if err := ioctl(fd, vidiocQuerycap, unsafe.Pointer(cp)); err != nil {
		return nil, err
	}
	return cp, nil
}
