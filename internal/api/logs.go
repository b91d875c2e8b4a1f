package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/thermview/internal/events"
	"github.com/smazurov/thermview/internal/logging"
)

// LogStreamInput selects how much history to replay.
type LogStreamInput struct {
	Tail int `query:"tail" minimum:"0" default:"0" doc:"Replay only the newest N buffered entries (0 replays all)"`
}

func (s *Server) registerLogRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "logs-stream",
		Method:      http.MethodGet,
		Path:        "/api/logs/stream",
		Summary:     "Log Stream",
		Description: "Buffered log history followed by live log entries",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"message": events.LogEntryEvent{},
	}, func(ctx context.Context, input *LogStreamInput, send sse.Sender) {
		// Subscribe before replaying so nothing falls between the two.
		eventCh := make(chan any, 100)
		unsubscribe := events.SubscribeToChannel[events.LogEntryEvent](s.eventBus, eventCh)
		defer unsubscribe()

		lastSeq, ok := replayLogs(input.Tail, send)
		if !ok {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				// Live entries already sent during replay.
				if entry, isLog := event.(events.LogEntryEvent); isLog && entry.Seq <= lastSeq {
					continue
				}
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}

// replayLogs sends buffered entries and returns the last sequence sent.
func replayLogs(tail int, send sse.Sender) (uint64, bool) {
	buffer := logging.GetBuffer()
	if buffer == nil {
		return 0, true
	}
	var lastSeq uint64
	for _, entry := range buffer.Tail(tail) {
		if err := send.Data(entry.Event()); err != nil {
			return lastSeq, false
		}
		lastSeq = entry.Seq
	}
	return lastSeq, true
}
