package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smazurov/thermview/internal/events"
	"github.com/smazurov/thermview/internal/logging"
	"github.com/smazurov/thermview/internal/metrics"
	"github.com/smazurov/thermview/internal/thermal"
)

// Pipeline stages reported in skip events and metrics.
const (
	StageRead    = "read"
	StageProcess = "process"
	StagePresent = "present"
	StagePoll    = "poll"
)

const fpsSmoothing = 0.1

var (
	// ErrAlreadyRun is returned by a second call to Run.
	ErrAlreadyRun = errors.New("session already run")
	// ErrNoSink is returned by Run when the session has nowhere to present.
	ErrNoSink = errors.New("session has no sink")
)

// Publisher receives session events. *events.Bus satisfies it.
type Publisher interface {
	Publish(ev events.Event)
}

// Config configures a Session.
type Config struct {
	Device       string
	Open         Opener
	Sink         Sink
	Pipeline     *thermal.Pipeline
	Policy       ErrorPolicy
	PollInterval time.Duration
	Events       Publisher
	Logger       *slog.Logger
}

// Stats are the session counters.
type Stats struct {
	Frames    uint64          `json:"frames"`
	Skipped   uint64          `json:"skipped"`
	FPS       float64         `json:"fps"`
	Summary   thermal.Summary `json:"summary"`
	LastFrame time.Time       `json:"last_frame"`
	LastError string          `json:"last_error,omitempty"`
}

// Session drives one capture device from open to stop. A session runs once.
type Session struct {
	cfg    Config
	logger *slog.Logger
	skips  *skipLogger

	ran atomic.Bool

	mu    sync.RWMutex
	state State
	stats Stats
}

// stageError tags a frame failure with the stage that produced it.
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.stage + ": " + e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

// New creates a disconnected session, filling zero config fields with
// defaults.
func New(cfg Config) *Session {
	if cfg.Open == nil {
		cfg.Open = OpenSource
	}
	if cfg.Pipeline == nil {
		cfg.Pipeline = thermal.NewPipeline(thermal.Options{})
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.GetLogger("capture")
	}
	logger := cfg.Logger.With("device", cfg.Device)
	return &Session{
		cfg:    cfg,
		logger: logger,
		skips:  newSkipLogger(logger, skipLogInterval),
		state:  Disconnected{},
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Device returns the configured device path.
func (s *Session) Device() string {
	return s.cfg.Device
}

// Run opens the device and processes frames until the sink asks to stop or
// ctx is canceled, both of which return nil. It returns an error wrapping
// ErrDeviceOpen when the device cannot be opened, and the first frame error
// under PolicyFatal. The source is closed on every exit path.
func (s *Session) Run(ctx context.Context) error {
	if !s.ran.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}
	if s.cfg.Sink == nil {
		s.stop(ErrNoSink.Error())
		return ErrNoSink
	}

	src, err := s.connect()
	if err != nil {
		s.stop(err.Error())
		return err
	}

	reason := "stop requested"
	defer func() {
		if err := src.Close(); err != nil {
			s.logger.Warn("Failed to close source", "error", err)
		}
		s.stop(reason)
	}()

	raw := thermal.NewRawFrame(thermal.FrameWidth, thermal.FrameHeight)
	var seq uint64
	for {
		if ctx.Err() != nil {
			reason = "context canceled"
			return nil
		}

		if err := s.step(ctx, src, &raw, seq); err != nil {
			if ctx.Err() != nil {
				reason = "context canceled"
				return nil
			}
			if errors.Is(err, ErrEmptyFrame) {
				s.logger.Debug("No frame available", "sequence", seq)
			} else if ferr := s.fail(err); ferr != nil {
				reason = ferr.Error()
				return ferr
			}
		} else {
			seq++
		}

		stop, err := s.cfg.Sink.Poll(ctx, s.cfg.PollInterval)
		if err != nil {
			if ctx.Err() != nil {
				reason = "context canceled"
				return nil
			}
			if ferr := s.fail(&stageError{stage: StagePoll, err: err}); ferr != nil {
				reason = ferr.Error()
				return ferr
			}
		}
		if stop {
			return nil
		}
	}
}

func (s *Session) connect() (Source, error) {
	src, err := s.cfg.Open(s.cfg.Device)
	if err != nil {
		return nil, deviceOpenError(s.cfg.Device, err)
	}
	s.setState(Connected{Source: src}, "")
	return src, nil
}

func (s *Session) stop(reason string) {
	s.setState(Stopped{Reason: reason}, reason)
}

func (s *Session) setState(st State, reason string) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	s.logger.Info("Capture session state changed", "state", st.String(), "reason", reason)
	s.publish(events.SessionStateEvent{
		Device:    s.cfg.Device,
		State:     st.String(),
		Reason:    reason,
		Timestamp: timestamp(time.Now()),
	})
}

// step reads, processes and presents one frame.
func (s *Session) step(ctx context.Context, src Source, raw *thermal.RawFrame, seq uint64) error {
	if err := src.ReadFrame(ctx, raw); err != nil {
		return &stageError{stage: StageRead, err: err}
	}
	if raw.Empty() {
		return &stageError{stage: StageRead, err: ErrEmptyFrame}
	}

	captured := time.Now()
	res, err := s.cfg.Pipeline.Process(*raw)
	if err != nil {
		return &stageError{stage: StageProcess, err: err}
	}
	took := time.Since(captured)

	frame := Frame{
		Sequence: seq,
		Image:    res.Image,
		Peak:     res.Peak,
		Summary:  res.Summary,
		Captured: captured,
	}
	if err := s.cfg.Sink.Present(ctx, frame); err != nil {
		return &stageError{stage: StagePresent, err: err}
	}

	s.record(frame, took)
	return nil
}

func (s *Session) record(f Frame, took time.Duration) {
	s.mu.Lock()
	if !s.stats.LastFrame.IsZero() {
		if dt := f.Captured.Sub(s.stats.LastFrame).Seconds(); dt > 0 {
			inst := 1 / dt
			if s.stats.FPS == 0 {
				s.stats.FPS = inst
			} else {
				s.stats.FPS += fpsSmoothing * (inst - s.stats.FPS)
			}
		}
	}
	s.stats.Frames++
	s.stats.Summary = f.Summary
	s.stats.LastFrame = f.Captured
	fps := s.stats.FPS
	s.mu.Unlock()

	metrics.ObserveFrame(s.cfg.Device, f.Summary.Hottest.Celsius, f.Summary.Coldest.Celsius, f.Summary.Mean, took)
	metrics.SetFPS(s.cfg.Device, fps)

	// JSON cannot carry NaN; a frame with no valid cell has no peak to report.
	if f.Summary.Valid == 0 || math.IsNaN(f.Peak.Celsius) {
		s.logger.Debug("Frame has no valid samples", "sequence", f.Sequence)
		return
	}
	s.publish(events.PeakEvent{
		Sequence:  f.Sequence,
		X:         f.Peak.X,
		Y:         f.Peak.Y,
		Celsius:   f.Peak.Celsius,
		Coldest:   f.Summary.Coldest.Celsius,
		Mean:      f.Summary.Mean,
		Timestamp: timestamp(f.Captured),
	})
}

// fail applies the error policy. It returns nil when the frame is skipped.
func (s *Session) fail(err error) error {
	stage := StageRead
	var se *stageError
	if errors.As(err, &se) {
		stage = se.stage
	}

	if s.cfg.Policy == PolicyFatal {
		s.logger.Error("Frame failed, stopping", "stage", stage, "error", err)
		return fmt.Errorf("frame %w", err)
	}

	code := ""
	var fe *thermal.FrameError
	if errors.As(err, &fe) {
		code = fe.Code
	}

	s.mu.Lock()
	s.stats.Skipped++
	s.stats.LastError = err.Error()
	skipped := s.stats.Skipped
	s.mu.Unlock()

	metrics.ObserveSkip(s.cfg.Device, stage)
	s.skips.Warn(stage+"/"+code, "Skipping frame", "stage", stage, "code", code, "error", err, "skipped", skipped)
	s.publish(events.FrameErrorEvent{
		Stage:     stage,
		Code:      code,
		Error:     err.Error(),
		Skipped:   skipped,
		Timestamp: timestamp(time.Now()),
	})
	return nil
}

func (s *Session) publish(ev events.Event) {
	if s.cfg.Events != nil {
		s.cfg.Events.Publish(ev)
	}
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
