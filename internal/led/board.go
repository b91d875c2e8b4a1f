package led

import (
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// board maps a device tree model substring to the sysfs LED that shows
// capture status.
type board struct {
	match  string
	status string
}

var boards = []board{
	{match: "NanoPC-T6", status: "sys_led"},
	{match: "Orange Pi", status: "green_led"},
	{match: "Raspberry Pi", status: "ACT"},
}

// Detect returns a controller for the running board and the name of its
// status LED. Boards without a known LED get a no-op controller.
func Detect(logger *slog.Logger) (Controller, string) {
	model := readModel(deviceTreeModelPath)
	for _, b := range boards {
		if strings.Contains(model, b.match) {
			logger.Info("Using sysfs status LED", "board_model", model, "led", b.status)
			return newSysfs(sysfsLEDPath, b.status), b.status
		}
	}
	logger.Info("No status LED on this board", "board_model", model)
	return noop{}, ""
}

func readModel(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}
	// The device tree string is NUL terminated.
	return strings.TrimRight(string(data), "\x00\n")
}

type noop struct{}

func (noop) Set(string, string) error { return nil }
func (noop) Available() []string { return []string{} }
