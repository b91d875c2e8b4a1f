package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCaptureMetricsCache(t *testing.T) {
	device := "test-cache"
	DeleteCaptureMetrics(device)

	if m := GetCaptureMetrics(device); m != nil {
		t.Fatal("expected nil for unknown device")
	}

	ObserveFrame(device, 39.35, 20.0, 20.1, 2*time.Millisecond)
	ObserveFrame(device, 40.0, 19.5, 20.2, 3*time.Millisecond)
	ObserveSkip(device, "read")
	SetFPS(device, 25)

	m := GetCaptureMetrics(device)
	if m == nil {
		t.Fatal("expected cached metrics")
	}
	want := CaptureMetrics{Frames: 2, Skipped: 1, PeakCelsius: 40, ColdestCelsius: 19.5, MeanCelsius: 20.2, FPS: 25}
	if *m != want {
		t.Errorf("cache = %+v, want %+v", *m, want)
	}

	m.Frames = 999
	if again := GetCaptureMetrics(device); again.Frames != 2 {
		t.Errorf("cache was modified through returned copy")
	}

	DeleteCaptureMetrics(device)
	if GetCaptureMetrics(device) != nil {
		t.Error("expected nil after delete")
	}
}

func TestCapturePrometheusValues(t *testing.T) {
	device := "test-prom"
	DeleteCaptureMetrics(device)
	defer DeleteCaptureMetrics(device)

	ObserveFrame(device, 36.6, 18.0, 22.0, time.Millisecond)
	ObserveSkip(device, "process")
	ObserveSkip(device, "process")
	ObserveSkip(device, "read")

	if got := testutil.ToFloat64(framesProcessed.WithLabelValues(device)); got != 1 {
		t.Errorf("frames_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(peakCelsius.WithLabelValues(device)); got != 36.6 {
		t.Errorf("peak_celsius = %v, want 36.6", got)
	}
	if got := testutil.ToFloat64(framesSkipped.WithLabelValues(device, "process")); got != 2 {
		t.Errorf("frames_skipped_total{stage=process} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(framesSkipped.WithLabelValues(device, "read")); got != 1 {
		t.Errorf("frames_skipped_total{stage=read} = %v, want 1", got)
	}
}

func TestDisplayClients(t *testing.T) {
	SetDisplayClients(3)
	if got := testutil.ToFloat64(displayClients); got != 3 {
		t.Errorf("clients = %v, want 3", got)
	}
	SetDisplayClients(0)
}

func TestGetAllCaptureMetrics(t *testing.T) {
	DeleteCaptureMetrics("dev-a")
	DeleteCaptureMetrics("dev-b")
	defer DeleteCaptureMetrics("dev-a")
	defer DeleteCaptureMetrics("dev-b")

	SetFPS("dev-a", 9)
	SetFPS("dev-b", 25)

	all := GetAllCaptureMetrics()
	if all["dev-a"] == nil || all["dev-a"].FPS != 9 {
		t.Errorf("dev-a = %+v", all["dev-a"])
	}
	if all["dev-b"] == nil || all["dev-b"].FPS != 25 {
		t.Errorf("dev-b = %+v", all["dev-b"])
	}
}

func TestCaptureMetricsConcurrency(t *testing.T) {
	device := "test-concurrent"
	DeleteCaptureMetrics(device)
	defer DeleteCaptureMetrics(device)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			ObserveFrame(device, v, v, v, time.Microsecond)
			_ = GetCaptureMetrics(device)
			_ = GetAllCaptureMetrics()
		}(float64(i))
	}
	wg.Wait()

	if m := GetCaptureMetrics(device); m == nil || m.Frames != 50 {
		t.Errorf("Frames = %+v, want 50", m)
	}
}
