package exporters

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/smazurov/thermview/internal/events"
	"github.com/smazurov/thermview/internal/metrics"
)

// DefaultInterval is how often the SSE exporter publishes snapshots.
const DefaultInterval = time.Second

// EventPublisher receives metric snapshots. *events.Bus satisfies it.
type EventPublisher interface {
	Publish(ev events.Event)
}

// SSEOption configures an SSEExporter.
type SSEOption func(*SSEExporter)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) SSEOption {
	return func(s *SSEExporter) {
		if d > 0 {
			s.interval = d
		}
	}
}

// SSEExporter turns the metrics cache into a CaptureMetricsEvent per device
// on every tick, for /api/metrics subscribers.
type SSEExporter struct {
	pub      EventPublisher
	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewSSEExporter creates an exporter publishing to pub.
func NewSSEExporter(pub EventPublisher, opts ...SSEOption) *SSEExporter {
	s := &SSEExporter{pub: pub, interval: DefaultInterval}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the export loop until ctx ends or Stop is called.
func (s *SSEExporter) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Publish()
			}
		}
	}()
}

// Stop ends the loop and waits for it. Safe to call without Start.
func (s *SSEExporter) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Publish sends one snapshot per device, in device order.
func (s *SSEExporter) Publish() {
	all := metrics.GetAllCaptureMetrics()
	devices := make([]string, 0, len(all))
	for device := range all {
		devices = append(devices, device)
	}
	slices.Sort(devices)

	for _, device := range devices {
		m := all[device]
		s.pub.Publish(events.CaptureMetricsEvent{
			Device:      device,
			Frames:      m.Frames,
			Skipped:     m.Skipped,
			FPS:         m.FPS,
			PeakCelsius: m.PeakCelsius,
		})
	}
}
