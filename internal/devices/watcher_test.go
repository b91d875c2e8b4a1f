package devices

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/smazurov/thermview/internal/events"
)

type listDetector struct {
	mu      sync.Mutex
	devices []DeviceInfo
}

func (l *listDetector) set(devices ...DeviceInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.devices = devices
}

func (l *listDetector) FindDevices() ([]DeviceInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]DeviceInfo(nil), l.devices...), nil
}

func (l *listDetector) GetDeviceFormats(string) ([]FormatInfo, error) {
	return []FormatInfo{{PixelFormat: fourccYUYV, FourCC: "YUYV"}}, nil
}

func (l *listDetector) GetDeviceResolutions(string, uint32) ([]Resolution, error) {
	return []Resolution{{Width: 256, Height: 384}}, nil
}

type recorder struct {
	mu     sync.Mutex
	events []events.DeviceEvent
}

func (r *recorder) Publish(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if de, ok := ev.(events.DeviceEvent); ok {
		r.events = append(r.events, de)
	}
}

func TestWatcher_Rescan(t *testing.T) {
	thermalCam := DeviceInfo{DevicePath: "/dev/video0", DeviceID: "usb-thermal-index0", DeviceName: "thermal"}
	webcam := DeviceInfo{DevicePath: "/dev/video2", DeviceName: "webcam"}

	det := &listDetector{}
	det.set(webcam)
	rec := &recorder{}
	w := NewWatcher(det, rec, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := w.Prime(); err != nil {
		t.Fatalf("Prime: %v", err)
	}

	changes, err := w.Rescan()
	if err != nil {
		t.Fatalf("Rescan: %v", err)
	}
	if len(changes) != 0 {
		t.Errorf("unchanged list reported %v", changes)
	}

	det.set(webcam, thermalCam)
	changes, _ = w.Rescan()
	if len(changes) != 1 || changes[0].Action != ActionAdded || changes[0].DevicePath != "/dev/video0" {
		t.Fatalf("add: got %+v", changes)
	}
	if !changes[0].Thermal {
		t.Error("added device should be marked thermal")
	}

	// Renumbered node with the same stable ID is the same device.
	moved := thermalCam
	moved.DevicePath = "/dev/video4"
	det.set(moved)
	changes, _ = w.Rescan()
	if len(changes) != 1 || changes[0].Action != ActionRemoved || changes[0].DevicePath != "/dev/video2" {
		t.Fatalf("remove: got %+v", changes)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 2 {
		t.Errorf("published %d events, want 2", len(rec.events))
	}
}

func TestWatcher_RescanWithoutPrimeReportsAll(t *testing.T) {
	det := &listDetector{}
	det.set(DeviceInfo{DevicePath: "/dev/video1"}, DeviceInfo{DevicePath: "/dev/video0"})
	w := NewWatcher(det, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	changes, err := w.Rescan()
	if err != nil {
		t.Fatalf("Rescan: %v", err)
	}
	if len(changes) != 2 || changes[0].DevicePath != "/dev/video0" || changes[1].DevicePath != "/dev/video1" {
		t.Errorf("got %+v", changes)
	}
}
