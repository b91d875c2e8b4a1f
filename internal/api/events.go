package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/thermview/internal/events"
)

// forward relays events from ch to send until the client disconnects.
func forward(ctx context.Context, ch <-chan any, send sse.Sender) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			if err := send.Data(event); err != nil {
				return
			}
		}
	}
}

// registerSSERoutes registers the capture event stream.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time peak temperatures, skipped frames, session state changes and device hotplug",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"peak":          events.PeakEvent{},
		"frame-error":   events.FrameErrorEvent{},
		"session-state": events.SessionStateEvent{},
		"device":        events.DeviceEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.PeakEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.FrameErrorEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.SessionStateEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.DeviceEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Late subscribers learn the current state right away.
		if s.options.Session != nil {
			if err := send.Data(events.SessionStateEvent{
				Device: s.options.Session.Device(),
				State:  s.options.Session.State().String(),
			}); err != nil {
				return
			}
		}

		forward(ctx, eventCh, send)
	})
}
