// Package display presents heatmaps over HTTP. It implements capture.Sink:
// every frame is encoded once to JPEG, kept as the latest snapshot, and
// offered to each connected MJPEG client through a one-slot mailbox. A slow
// client loses stale frames instead of holding up the capture loop.
package display

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/thermview/internal/capture"
	"github.com/smazurov/thermview/internal/logging"
	"github.com/smazurov/thermview/internal/metrics"
	"github.com/smazurov/thermview/internal/thermal"
)

// DefaultQuality is the JPEG quality used when Options.Quality is zero.
const DefaultQuality = 85

// ErrNoFrame is returned by Latest before the first frame is presented.
var ErrNoFrame = errors.New("no frame presented yet")

// Options configures a Sink.
type Options struct {
	Quality int
	Logger  *slog.Logger
}

// Snapshot describes the latest presented frame.
type Snapshot struct {
	Sequence uint64          `json:"sequence"`
	Peak     thermal.Peak    `json:"peak"`
	Summary  thermal.Summary `json:"summary"`
	Captured time.Time       `json:"captured"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
}

// Sink is the HTTP presentation surface.
type Sink struct {
	quality int
	logger  *slog.Logger

	mu       sync.RWMutex
	jpeg     []byte
	snapshot Snapshot
	clients  map[uint64]chan []byte
	nextID   uint64

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a sink with no clients.
func New(opts Options) *Sink {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetLogger("display")
	}
	return &Sink{
		quality: opts.Quality,
		logger:  opts.Logger,
		clients: make(map[uint64]chan []byte),
		stop:    make(chan struct{}),
	}
}

// Present encodes f and hands it to every client.
func (s *Sink) Present(_ context.Context, f capture.Frame) error {
	if f.Image == nil {
		return errors.New("frame has no image")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, f.Image, &jpeg.Options{Quality: s.quality}); err != nil {
		return err
	}
	data := buf.Bytes()
	b := f.Image.Bounds()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jpeg = data
	s.snapshot = Snapshot{
		Sequence: f.Sequence,
		Peak:     f.Peak,
		Summary:  f.Summary,
		Captured: f.Captured,
		Width:    b.Dx(),
		Height:   b.Dy(),
	}
	for _, mailbox := range s.clients {
		deliver(mailbox, data)
	}
	return nil
}

// deliver puts data in a one-slot mailbox, replacing any unread frame.
func deliver(mailbox chan []byte, data []byte) {
	select {
	case mailbox <- data:
		return
	default:
	}
	select {
	case <-mailbox:
	default:
	}
	select {
	case mailbox <- data:
	default:
	}
}

// Poll waits up to timeout for RequestStop.
func (s *Sink) Poll(ctx context.Context, timeout time.Duration) (bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.stop:
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-timer.C:
		return false, nil
	}
}

// RequestStop asks the capture session to end. Safe to call repeatedly.
func (s *Sink) RequestStop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stop requested")
		close(s.stop)
	})
}

// Done is closed once a stop has been requested.
func (s *Sink) Done() <-chan struct{} {
	return s.stop
}

// Latest returns the most recent JPEG and its description.
func (s *Sink) Latest() ([]byte, Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.jpeg == nil {
		return nil, Snapshot{}, ErrNoFrame
	}
	return s.jpeg, s.snapshot, nil
}

// Clients returns the number of connected stream clients.
func (s *Sink) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// subscribe registers a stream client. The latest frame, if any, is
// delivered immediately.
func (s *Sink) subscribe() (<-chan []byte, func()) {
	mailbox := make(chan []byte, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.clients[id] = mailbox
	if s.jpeg != nil {
		mailbox <- s.jpeg
	}
	n := len(s.clients)
	s.mu.Unlock()

	metrics.SetDisplayClients(n)
	s.logger.Debug("Stream client connected", "clients", n)

	return mailbox, func() {
		s.mu.Lock()
		delete(s.clients, id)
		n := len(s.clients)
		s.mu.Unlock()
		metrics.SetDisplayClients(n)
		s.logger.Debug("Stream client disconnected", "clients", n)
	}
}
