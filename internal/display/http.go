package display

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
)

// Boundary separates MJPEG parts.
const Boundary = "thermviewframe"

// Register mounts the stream and snapshot handlers on mux.
func (s *Sink) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /stream.mjpeg", s.ServeStream)
	mux.HandleFunc("GET /api/frame", s.ServeFrame)
}

// ServeFrame writes the latest heatmap as a single JPEG.
func (s *Sink) ServeFrame(w http.ResponseWriter, _ *http.Request) {
	data, snap, err := s.Latest()
	if errors.Is(err, ErrNoFrame) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Frame-Sequence", strconv.FormatUint(snap.Sequence, 10))
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("Failed to write frame", "error", err)
	}
}

// ServeStream writes heatmaps as multipart/x-mixed-replace until the client
// goes away or a stop is requested.
func (s *Sink) ServeStream(w http.ResponseWriter, r *http.Request) {
	mailbox, unsubscribe := s.subscribe()
	defer unsubscribe()

	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(Boundary); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+Boundary)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "close")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	_ = rc.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.stop:
			_ = mw.Close()
			return
		case data := <-mailbox:
			if err := writePart(mw, data); err != nil {
				s.logger.Debug("Stream client write failed", "error", err)
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writePart(mw *multipart.Writer, data []byte) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", "image/jpeg")
	header.Set("Content-Length", strconv.Itoa(len(data)))
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write jpeg: %w", err)
	}
	return nil
}
