package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/thermview/internal/events"
	"github.com/smazurov/thermview/internal/thermal"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fillHotFrame writes a 20C frame with a 50C cell at (10,10).
func fillHotFrame(f *thermal.RawFrame) {
	if f.Width != thermal.FrameWidth || f.Height != thermal.FrameHeight {
		*f = thermal.NewRawFrame(thermal.FrameWidth, thermal.FrameHeight)
	}
	thermal.FillVisible(*f, 0, 128, 128)
	thermal.FillThermal(*f, thermal.RawFromCelsius(20))
	thermal.SetRaw(*f, 10, 10, thermal.RawFromCelsius(50))
}

type fakeSource struct {
	mu     sync.Mutex
	steps  []func(*thermal.RawFrame) error
	reads  int
	closed bool
}

func (s *fakeSource) ReadFrame(ctx context.Context, f *thermal.RawFrame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.reads
	s.reads++
	if i < len(s.steps) && s.steps[i] != nil {
		return s.steps[i](f)
	}
	fillHotFrame(f)
	return nil
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeSink struct {
	mu         sync.Mutex
	frames     []Frame
	polls      int
	stopAfter  int // frames presented before Poll reports stop
	maxPolls   int
	presentErr error
}

func (s *fakeSink) Present(_ context.Context, f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.presentErr != nil {
		err := s.presentErr
		s.presentErr = nil
		return err
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *fakeSink) Poll(_ context.Context, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	if s.maxPolls > 0 && s.polls >= s.maxPolls {
		return true, nil
	}
	return s.stopAfter > 0 && len(s.frames) >= s.stopAfter, nil
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) states() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		if st, ok := ev.(events.SessionStateEvent); ok {
			out = append(out, st.State)
		}
	}
	return out
}

func (r *recorder) count(typ uint32) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type() == typ {
			n++
		}
	}
	return n
}

func newTestSession(device string, src Source, sink Sink, policy ErrorPolicy, pub Publisher) *Session {
	return New(Config{
		Device:       device,
		Open:         func(string) (Source, error) { return src, nil },
		Sink:         sink,
		Policy:       policy,
		PollInterval: time.Millisecond,
		Events:       pub,
		Logger:       discardLogger(),
	})
}

func TestSessionStopsOnSinkSignal(t *testing.T) {
	src := &fakeSource{}
	sink := &fakeSink{stopAfter: 3}
	rec := &recorder{}
	s := newTestSession("test-stop", src, sink, PolicySkip, rec)

	if _, ok := s.State().(Disconnected); !ok {
		t.Fatalf("initial state = %s, want disconnected", s.State())
	}

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !src.isClosed() {
		t.Error("source was not closed")
	}
	st, ok := s.State().(Stopped)
	if !ok {
		t.Fatalf("final state = %s, want stopped", s.State())
	}
	if st.Reason != "stop requested" {
		t.Errorf("stop reason = %q", st.Reason)
	}

	if len(sink.frames) != 3 {
		t.Fatalf("presented %d frames, want 3", len(sink.frames))
	}
	for i, f := range sink.frames {
		if f.Sequence != uint64(i) {
			t.Errorf("frame %d sequence = %d", i, f.Sequence)
		}
		if f.Peak.X != 10 || f.Peak.Y != 10 {
			t.Errorf("frame %d peak = (%d,%d), want (10,10)", i, f.Peak.X, f.Peak.Y)
		}
		if b := f.Image.Bounds(); b.Dx() != 768 || b.Dy() != 576 {
			t.Errorf("frame %d image = %v, want 768x576", i, b)
		}
	}

	stats := s.Stats()
	if stats.Frames != 3 || stats.Skipped != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if got := rec.states(); strings.Join(got, ",") != "connected,stopped" {
		t.Errorf("state events = %v", got)
	}
	if n := rec.count(events.TypePeak); n != 3 {
		t.Errorf("peak events = %d, want 3", n)
	}
}

func TestSessionContextCancel(t *testing.T) {
	src := &fakeSource{}
	s := newTestSession("test-cancel", src, &fakeSink{}, PolicyFatal, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if !src.isClosed() {
		t.Error("source was not closed")
	}
	if st, ok := s.State().(Stopped); !ok || st.Reason != "context canceled" {
		t.Errorf("final state = %#v", s.State())
	}
}

func TestSessionCancelWhileRunning(t *testing.T) {
	src := &fakeSource{}
	s := newTestSession("test-cancel-running", src, &fakeSink{}, PolicySkip, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for s.Stats().Frames == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if !src.isClosed() {
		t.Error("source was not closed")
	}
}

func TestSessionOpenFailure(t *testing.T) {
	rec := &recorder{}
	s := New(Config{
		Device: "/dev/video9",
		Open: func(string) (Source, error) {
			return nil, errors.New("no such device")
		},
		Sink:   &fakeSink{},
		Events: rec,
		Logger: discardLogger(),
	})

	err := s.Run(context.Background())
	if !errors.Is(err, ErrDeviceOpen) {
		t.Fatalf("Run() error = %v, want ErrDeviceOpen", err)
	}
	if !strings.Contains(err.Error(), "/dev/video9") {
		t.Errorf("error %q does not name the device", err)
	}
	if _, ok := s.State().(Stopped); !ok {
		t.Errorf("final state = %s, want stopped", s.State())
	}
	if got := rec.states(); len(got) != 1 || got[0] != "stopped" {
		t.Errorf("state events = %v, want [stopped]", got)
	}
}

func TestSessionErrorPolicy(t *testing.T) {
	badGeometry := func(f *thermal.RawFrame) error {
		*f = thermal.NewRawFrame(thermal.FrameWidth, thermal.FrameHeight-1)
		return nil
	}
	readFailure := func(*thermal.RawFrame) error {
		return errors.New("dequeue failed")
	}

	tests := []struct {
		name        string
		policy      ErrorPolicy
		step        func(*thermal.RawFrame) error
		wantErr     error
		wantFrames  uint64
		wantSkipped uint64
	}{
		{"skip geometry", PolicySkip, badGeometry, nil, 2, 1},
		{"fatal geometry", PolicyFatal, badGeometry, thermal.ErrGeometry, 0, 0},
		{"skip read", PolicySkip, readFailure, nil, 2, 1},
		{"fatal read", PolicyFatal, readFailure, nil, 0, 0},
		{"empty frame under fatal", PolicyFatal, func(*thermal.RawFrame) error { return ErrEmptyFrame }, nil, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{steps: []func(*thermal.RawFrame) error{tt.step}}
			sink := &fakeSink{stopAfter: 2}
			s := newTestSession("test-policy", src, sink, tt.policy, nil)

			err := s.Run(context.Background())
			fatal := tt.policy == PolicyFatal && tt.wantFrames == 0
			switch {
			case fatal && err == nil:
				t.Fatal("Run() error = nil, want failure")
			case !fatal && err != nil:
				t.Fatalf("Run() error = %v", err)
			case tt.wantErr != nil && !errors.Is(err, tt.wantErr):
				t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
			}

			stats := s.Stats()
			if stats.Frames != tt.wantFrames || stats.Skipped != tt.wantSkipped {
				t.Errorf("frames/skipped = %d/%d, want %d/%d", stats.Frames, stats.Skipped, tt.wantFrames, tt.wantSkipped)
			}
			if !src.isClosed() {
				t.Error("source was not closed")
			}
			if _, ok := s.State().(Stopped); !ok {
				t.Errorf("final state = %s", s.State())
			}
		})
	}
}

func TestSessionSkipPublishesFrameError(t *testing.T) {
	src := &fakeSource{steps: []func(*thermal.RawFrame) error{
		func(f *thermal.RawFrame) error {
			*f = thermal.NewRawFrame(thermal.FrameWidth, thermal.FrameHeight-1)
			return nil
		},
	}}
	rec := &recorder{}
	s := newTestSession("test-frame-error", src, &fakeSink{stopAfter: 1}, PolicySkip, rec)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var got []events.FrameErrorEvent
	for _, ev := range rec.events {
		if fe, ok := ev.(events.FrameErrorEvent); ok {
			got = append(got, fe)
		}
	}
	if len(got) != 1 {
		t.Fatalf("frame error events = %d, want 1", len(got))
	}
	if got[0].Stage != StageProcess || got[0].Code != thermal.ErrCodeGeometry || got[0].Skipped != 1 {
		t.Errorf("frame error event = %+v", got[0])
	}
	if s.Stats().LastError == "" {
		t.Error("LastError not recorded")
	}
}

func TestSessionEmptyFramesAreQuiet(t *testing.T) {
	empty := func(*thermal.RawFrame) error { return ErrEmptyFrame }
	src := &fakeSource{steps: []func(*thermal.RawFrame) error{empty, empty, empty}}
	rec := &recorder{}
	s := newTestSession("test-empty", src, &fakeSink{stopAfter: 1}, PolicySkip, rec)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	stats := s.Stats()
	if stats.Frames != 1 || stats.Skipped != 0 {
		t.Errorf("frames/skipped = %d/%d, want 1/0", stats.Frames, stats.Skipped)
	}
	if stats.LastError != "" {
		t.Errorf("LastError = %q, want empty", stats.LastError)
	}
	for _, ev := range rec.events {
		if fe, ok := ev.(events.FrameErrorEvent); ok {
			t.Errorf("unexpected frame error event %+v", fe)
		}
	}
}

func TestSessionPresentFailureSkipped(t *testing.T) {
	sink := &fakeSink{stopAfter: 1, presentErr: errors.New("client gone")}
	s := newTestSession("test-present", &fakeSource{}, sink, PolicySkip, nil)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	stats := s.Stats()
	if stats.Frames != 1 || stats.Skipped != 1 {
		t.Errorf("frames/skipped = %d/%d, want 1/1", stats.Frames, stats.Skipped)
	}
	// The failed frame does not consume a sequence number.
	if sink.frames[0].Sequence != 0 {
		t.Errorf("sequence = %d, want 0", sink.frames[0].Sequence)
	}
}

func TestSessionRunsOnce(t *testing.T) {
	s := newTestSession("test-once", &fakeSource{}, &fakeSink{stopAfter: 1}, PolicySkip, nil)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if err := s.Run(context.Background()); !errors.Is(err, ErrAlreadyRun) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRun", err)
	}
}

func TestSessionWithoutSink(t *testing.T) {
	src := &fakeSource{}
	s := newTestSession("test-nosink", src, nil, PolicySkip, nil)
	if err := s.Run(context.Background()); !errors.Is(err, ErrNoSink) {
		t.Errorf("Run() error = %v, want ErrNoSink", err)
	}
}

func TestParseErrorPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ErrorPolicy
		wantErr bool
	}{
		{"", PolicySkip, false},
		{"skip", PolicySkip, false},
		{"Fatal", PolicyFatal, false},
		{" fatal ", PolicyFatal, false},
		{"retry", PolicySkip, true},
	}
	for _, tt := range tests {
		got, err := ParseErrorPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseErrorPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseErrorPolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if PolicyFatal.String() != "fatal" || PolicySkip.String() != "skip" {
		t.Error("policy String() mismatch")
	}
}
