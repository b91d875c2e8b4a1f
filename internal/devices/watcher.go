package devices

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/smazurov/thermview/internal/events"
)

// Watcher action names.
const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

// Publisher receives device events. *events.Bus satisfies it.
type Publisher interface {
	Publish(ev events.Event)
}

// Watcher publishes a DeviceEvent whenever the set of capture devices
// changes. Devices are keyed by their stable ID, falling back to the node.
type Watcher struct {
	detector Detector
	pub      Publisher
	logger   *slog.Logger

	mu    sync.Mutex
	known map[string]DeviceInfo
}

// NewWatcher creates a watcher. Call Prime before the first Rescan so
// devices present at startup are not reported as added.
func NewWatcher(detector Detector, pub Publisher, logger *slog.Logger) *Watcher {
	return &Watcher{
		detector: detector,
		pub:      pub,
		logger:   logger,
		known:    make(map[string]DeviceInfo),
	}
}

// Prime records the current devices without publishing.
func (w *Watcher) Prime() error {
	found, err := Describe(w.detector)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, d := range found {
		w.known[deviceKey(d)] = d
	}
	w.logger.Info("Device watcher primed", "devices", len(found))
	return nil
}

// Rescan lists devices again and publishes the differences.
func (w *Watcher) Rescan() ([]events.DeviceEvent, error) {
	found, err := Describe(w.detector)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	current := make(map[string]DeviceInfo, len(found))
	for _, d := range found {
		current[deviceKey(d)] = d
	}

	w.mu.Lock()
	var changes []events.DeviceEvent
	for key, d := range current {
		if _, ok := w.known[key]; !ok {
			changes = append(changes, deviceEvent(ActionAdded, d, now))
		}
	}
	for key, d := range w.known {
		if _, ok := current[key]; !ok {
			changes = append(changes, deviceEvent(ActionRemoved, d, now))
		}
	}
	w.known = current
	w.mu.Unlock()

	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Action != changes[j].Action {
			return changes[i].Action < changes[j].Action
		}
		return changes[i].DevicePath < changes[j].DevicePath
	})
	for _, ev := range changes {
		w.logger.Info("Capture device "+ev.Action, "device", ev.DevicePath, "name", ev.DeviceName, "thermal", ev.Thermal)
		if w.pub != nil {
			w.pub.Publish(ev)
		}
	}
	return changes, nil
}

func deviceKey(d DeviceInfo) string {
	if d.DeviceID != "" {
		return d.DeviceID
	}
	return d.DevicePath
}

func deviceEvent(action string, d DeviceInfo, ts string) events.DeviceEvent {
	return events.DeviceEvent{
		Action:     action,
		DevicePath: d.DevicePath,
		DeviceName: d.DeviceName,
		DeviceID:   d.DeviceID,
		Thermal:    d.Thermal,
		Timestamp:  ts,
	}
}
