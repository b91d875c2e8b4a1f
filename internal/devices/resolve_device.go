package devices

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// linkDirs are the udev directories searched for stable device names.
var linkDirs = []string{"/dev/v4l/by-id", "/dev/v4l/by-path"}

// ResolveDevicePath maps a stable device ID, as reported in DeviceInfo, to
// a path that opens the device. Absolute paths are returned unchanged.
func ResolveDevicePath(deviceID string) (string, error) {
	return resolveIn(linkDirs, deviceID)
}

func resolveIn(dirs []string, deviceID string) (string, error) {
	if strings.HasPrefix(deviceID, "/") {
		return deviceID, nil
	}
	if deviceID == "" || strings.ContainsRune(deviceID, filepath.Separator) {
		return "", fmt.Errorf("invalid device ID %q", deviceID)
	}
	for _, dir := range dirs {
		link := filepath.Join(dir, deviceID)
		if _, err := os.Stat(link); err == nil {
			return link, nil
		}
	}
	return "", fmt.Errorf("device ID %q not found under %s", deviceID, strings.Join(dirs, ", "))
}
