package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/thermview/internal/api/models"
	"github.com/smazurov/thermview/internal/capture"
	"github.com/smazurov/thermview/internal/display"
	"github.com/smazurov/thermview/internal/thermal"
)

func point(p thermal.Peak) models.Point {
	return models.Point{X: p.X, Y: p.Y, Celsius: models.Finite(p.Celsius)}
}

// registerCaptureRoutes registers the peak, status and stop endpoints.
func (s *Server) registerCaptureRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-peak",
		Method:      http.MethodGet,
		Path:        "/api/peak",
		Summary:     "Peak Temperature",
		Description: "Hottest and coldest cell of the latest frame with frame statistics",
		Tags:        []string{"capture"},
		Security:    []map[string][]string{},
		Errors:      []int{503},
	}, func(_ context.Context, _ *struct{}) (*models.PeakResponse, error) {
		if s.options.Display == nil {
			return nil, huma.Error503ServiceUnavailable("display not configured")
		}
		_, snap, err := s.options.Display.Latest()
		if errors.Is(err, display.ErrNoFrame) {
			return nil, huma.Error503ServiceUnavailable("no frame captured yet")
		}
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to read latest frame", err)
		}

		return &models.PeakResponse{
			Body: models.PeakData{
				Sequence: snap.Sequence,
				Hottest:  point(snap.Summary.Hottest),
				Coldest:  point(snap.Summary.Coldest),
				Mean:     models.Finite(snap.Summary.Mean),
				Valid:    snap.Summary.Valid,
				Captured: snap.Captured,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Session Status",
		Description: "Capture session state and counters",
		Tags:        []string{"capture"},
		Security:    []map[string][]string{},
		Errors:      []int{503},
	}, func(_ context.Context, _ *struct{}) (*models.StatusResponse, error) {
		if s.options.Session == nil {
			return nil, huma.Error503ServiceUnavailable("no capture session")
		}

		state := s.options.Session.State()
		stats := s.options.Session.Stats()
		body := models.StatusData{
			Device:    s.options.Session.Device(),
			State:     state.String(),
			Frames:    stats.Frames,
			Skipped:   stats.Skipped,
			FPS:       stats.FPS,
			LastError: stats.LastError,
		}
		if st, ok := state.(capture.Stopped); ok {
			body.Reason = st.Reason
		}
		if !stats.LastFrame.IsZero() {
			last := stats.LastFrame
			body.LastFrame = &last
		}
		if s.options.Display != nil {
			body.Clients = s.options.Display.Clients()
		}
		return &models.StatusResponse{Body: body}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "stop-capture",
		Method:        http.MethodPost,
		Path:          "/api/stop",
		Summary:       "Stop Capture",
		Description:   "Signal the capture session to stop and the process to exit",
		Tags:          []string{"capture"},
		Security:      withAuth(),
		DefaultStatus: http.StatusAccepted,
		Errors:        []int{401, 503},
	}, func(_ context.Context, _ *struct{}) (*models.StopResponse, error) {
		if s.options.Display == nil {
			return nil, huma.Error503ServiceUnavailable("display not configured")
		}
		s.options.Display.RequestStop()
		return &models.StopResponse{Body: models.StopData{Status: "stopping"}}, nil
	})
}
