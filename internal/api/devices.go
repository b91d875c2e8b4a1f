package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/thermview/internal/api/models"
	"github.com/smazurov/thermview/internal/devices"
)

// registerDeviceRoutes registers the device listing endpoint.
func (s *Server) registerDeviceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-devices",
		Method:      http.MethodGet,
		Path:        "/api/devices",
		Summary:     "List Devices",
		Description: "List V4L2 capture devices, their formats, and whether they deliver raw thermal frames",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401, 500},
	}, func(_ context.Context, _ *struct{}) (*models.DevicesResponse, error) {
		detector := s.options.Detector
		if detector == nil {
			detector = devices.NewDetector()
		}

		found, err := devices.Describe(detector)
		if err != nil {
			s.logger.Error("Failed to list devices", "error", err)
			return nil, huma.Error500InternalServerError("failed to list devices", err)
		}
		if found == nil {
			found = []devices.DeviceInfo{}
		}

		return &models.DevicesResponse{
			Body: models.DevicesData{Devices: found, Count: len(found)},
		}, nil
	})
}
