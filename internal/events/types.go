package events

// Event type constants for kelindar/event.
const (
	TypePeak uint32 = iota + 1
	TypeFrameError
	TypeSessionState
	TypeLogEntry
	TypeCaptureMetrics
	TypeDevice
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// PeakEvent is published for every processed frame.
type PeakEvent struct {
	Sequence  uint64  `json:"sequence" example:"1024" doc:"Frame sequence number within the session"`
	X         int     `json:"x" example:"120" doc:"Peak column in the thermal grid"`
	Y         int     `json:"y" example:"88" doc:"Peak row in the thermal grid"`
	Celsius   float64 `json:"celsius" example:"36.6" doc:"Peak temperature in Celsius"`
	Coldest   float64 `json:"coldest" example:"18.2" doc:"Lowest temperature in the frame"`
	Mean      float64 `json:"mean" example:"22.4" doc:"Mean temperature of valid samples"`
	Timestamp string  `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Frame timestamp"`
}

// Type returns the event type identifier for PeakEvent.
func (e PeakEvent) Type() uint32 { return TypePeak }

// FrameErrorEvent is published when a frame is skipped.
type FrameErrorEvent struct {
	Stage     string `json:"stage" example:"decode" doc:"Pipeline stage that failed: read, process or present"`
	Code      string `json:"code,omitempty" example:"GEOMETRY" doc:"Frame error code when known"`
	Error     string `json:"error" example:"frame geometry: odd height 383" doc:"Error description"`
	Skipped   uint64 `json:"skipped" example:"3" doc:"Frames skipped so far in this session"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for FrameErrorEvent.
func (e FrameErrorEvent) Type() uint32 { return TypeFrameError }

// SessionStateEvent is published on every capture session transition.
type SessionStateEvent struct {
	Device    string `json:"device" example:"/dev/video0" doc:"Capture device path"`
	State     string `json:"state" example:"connected" enum:"disconnected,connected,stopped" doc:"New session state"`
	Reason    string `json:"reason,omitempty" example:"stop requested" doc:"Why the session changed state"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SessionStateEvent.
func (e SessionStateEvent) Type() uint32 { return TypeSessionState }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2026-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"capture" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }

// CaptureMetricsEvent is a periodic snapshot of per-device capture metrics.
type CaptureMetricsEvent struct {
	Device      string  `json:"device" example:"/dev/video0" doc:"Capture device path"`
	Frames      uint64  `json:"frames" example:"1200" doc:"Frames processed"`
	Skipped     uint64  `json:"skipped" example:"2" doc:"Frames skipped"`
	FPS         float64 `json:"fps" example:"25" doc:"Smoothed frames per second"`
	PeakCelsius float64 `json:"peak_celsius" example:"36.6" doc:"Hottest temperature in the latest frame"`
}

// Type returns the event type identifier for CaptureMetricsEvent.
func (e CaptureMetricsEvent) Type() uint32 { return TypeCaptureMetrics }

// DeviceEvent is published when a capture device appears or disappears.
type DeviceEvent struct {
	Action     string `json:"action" example:"added" enum:"added,removed" doc:"What happened to the device"`
	DevicePath string `json:"device_path" example:"/dev/video2" doc:"Device node"`
	DeviceName string `json:"device_name" example:"USB Camera: Thermal" doc:"Driver card name"`
	DeviceID   string `json:"device_id" example:"usb-Thermal_Camera-video-index0" doc:"Stable device identifier"`
	Thermal    bool   `json:"thermal" doc:"Device can feed the thermal pipeline"`
	Timestamp  string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DeviceEvent.
func (e DeviceEvent) Type() uint32 { return TypeDevice }
