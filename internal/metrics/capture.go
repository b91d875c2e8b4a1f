// Package metrics provides Prometheus metrics for the capture session and
// the display surface, plus a local cache the SSE exporter reads from.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "thermview"

var (
	framesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "frames_total",
		Help:      "Frames decoded and presented",
	}, []string{"device"})

	framesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "frames_skipped_total",
		Help:      "Frames dropped by the skip error policy",
	}, []string{"device", "stage"})

	peakCelsius = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "peak_celsius",
		Help:      "Hottest temperature in the latest frame",
	}, []string{"device"})

	coldestCelsius = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "coldest_celsius",
		Help:      "Coldest temperature in the latest frame",
	}, []string{"device"})

	meanCelsius = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "mean_celsius",
		Help:      "Mean temperature of the latest frame",
	}, []string{"device"})

	captureFPS = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "fps",
		Help:      "Smoothed frames per second",
	}, []string{"device"})

	processSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "capture",
		Name:      "process_seconds",
		Help:      "Time spent turning one raw frame into a heatmap",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"device"})

	displayClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "display",
		Name:      "clients",
		Help:      "Connected MJPEG clients",
	})

	cache   = make(map[string]*CaptureMetrics)
	cacheMu sync.RWMutex
)

// CaptureMetrics holds current metric values for a device.
type CaptureMetrics struct {
	Frames         uint64
	Skipped        uint64
	PeakCelsius    float64
	ColdestCelsius float64
	MeanCelsius    float64
	FPS            float64
}

// ObserveFrame records one processed frame.
func ObserveFrame(device string, peak, coldest, mean float64, took time.Duration) {
	framesProcessed.WithLabelValues(device).Inc()
	peakCelsius.WithLabelValues(device).Set(peak)
	coldestCelsius.WithLabelValues(device).Set(coldest)
	meanCelsius.WithLabelValues(device).Set(mean)
	processSeconds.WithLabelValues(device).Observe(took.Seconds())

	updateCache(device, func(m *CaptureMetrics) {
		m.Frames++
		m.PeakCelsius = peak
		m.ColdestCelsius = coldest
		m.MeanCelsius = mean
	})
}

// ObserveSkip records one frame dropped at stage.
func ObserveSkip(device, stage string) {
	framesSkipped.WithLabelValues(device, stage).Inc()
	updateCache(device, func(m *CaptureMetrics) { m.Skipped++ })
}

// SetFPS sets the smoothed capture rate for a device.
func SetFPS(device string, fps float64) {
	captureFPS.WithLabelValues(device).Set(fps)
	updateCache(device, func(m *CaptureMetrics) { m.FPS = fps })
}

// SetDisplayClients sets the number of connected stream clients.
func SetDisplayClients(n int) {
	displayClients.Set(float64(n))
}

// DeleteCaptureMetrics removes all metrics for a device.
func DeleteCaptureMetrics(device string) {
	framesProcessed.DeleteLabelValues(device)
	framesSkipped.DeletePartialMatch(prometheus.Labels{"device": device})
	peakCelsius.DeleteLabelValues(device)
	coldestCelsius.DeleteLabelValues(device)
	meanCelsius.DeleteLabelValues(device)
	captureFPS.DeleteLabelValues(device)
	processSeconds.DeleteLabelValues(device)

	cacheMu.Lock()
	delete(cache, device)
	cacheMu.Unlock()
}

// GetCaptureMetrics returns a copy of the cached values for a device, or nil.
func GetCaptureMetrics(device string) *CaptureMetrics {
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	if m, ok := cache[device]; ok {
		dup := *m
		return &dup
	}
	return nil
}

// GetAllCaptureMetrics returns copies of the cached values for every device.
func GetAllCaptureMetrics() map[string]*CaptureMetrics {
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	result := make(map[string]*CaptureMetrics, len(cache))
	for device, m := range cache {
		dup := *m
		result[device] = &dup
	}
	return result
}

func updateCache(device string, update func(*CaptureMetrics)) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	m, ok := cache[device]
	if !ok {
		m = &CaptureMetrics{}
		cache[device] = m
	}
	update(m)
}
