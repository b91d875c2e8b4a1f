package led

import (
	"log/slog"
	"sync"

	"github.com/smazurov/thermview/internal/events"
)

// Indicator mirrors the capture session on a status LED: solid while
// frames flow, blinking while the device is connected but frames are
// being skipped, off when there is no session.
type Indicator struct {
	ctrl   Controller
	name   string
	bus    *events.Bus
	logger *slog.Logger

	mu        sync.Mutex
	connected bool
	degraded  bool
	pattern   string
	unsubs    []func()
}

// NewIndicator creates an indicator for the named LED.
func NewIndicator(ctrl Controller, name string, bus *events.Bus, logger *slog.Logger) *Indicator {
	return &Indicator{ctrl: ctrl, name: name, bus: bus, logger: logger}
}

// Start subscribes to session events and turns the LED off.
func (i *Indicator) Start() {
	i.mu.Lock()
	i.apply(PatternOff)
	i.mu.Unlock()

	i.unsubs = append(i.unsubs,
		i.bus.Subscribe(i.onState),
		i.bus.Subscribe(i.onFrameError),
		i.bus.Subscribe(i.onPeak),
	)
}

// Stop unsubscribes and turns the LED off.
func (i *Indicator) Stop() {
	for _, unsub := range i.unsubs {
		unsub()
	}
	i.unsubs = nil

	i.mu.Lock()
	defer i.mu.Unlock()
	i.connected = false
	i.apply(PatternOff)
}

// Pattern returns the pattern last written to the LED.
func (i *Indicator) Pattern() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.pattern
}

func (i *Indicator) onState(e events.SessionStateEvent) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.connected = e.State == "connected"
	i.degraded = false
	i.update()
}

func (i *Indicator) onFrameError(events.FrameErrorEvent) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.degraded = true
	i.update()
}

func (i *Indicator) onPeak(events.PeakEvent) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.degraded = false
	i.update()
}

// update must be called with mu held.
func (i *Indicator) update() {
	switch {
	case !i.connected:
		i.apply(PatternOff)
	case i.degraded:
		i.apply(PatternBlink)
	default:
		i.apply(PatternSolid)
	}
}

func (i *Indicator) apply(pattern string) {
	if pattern == i.pattern {
		return
	}
	if err := i.ctrl.Set(i.name, pattern); err != nil {
		i.logger.Warn("Failed to set status LED", "led", i.name, "pattern", pattern, "error", err)
		return
	}
	i.logger.Debug("Status LED changed", "led", i.name, "pattern", pattern)
	i.pattern = pattern
}
