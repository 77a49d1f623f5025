package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/radionode/internal/events"
)

// registerSSERoutes registers the event stream.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of phase changes, xruns, faults, retunes and sound card hotplug",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"stream-state-changed": events.StreamStateChangedEvent{},
		"stream-xrun":          events.StreamXRunEvent{},
		"stream-fault":         events.StreamFaultEvent{},
		"frequency-changed":    events.FrequencyChangedEvent{},
		"sound-card":           events.SoundCardEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 32)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.StreamStateChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.StreamXRunEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.StreamFaultEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.FrequencyChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.SoundCardEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-eventCh:
				if err := send.Data(ev); err != nil {
					return
				}
			}
		}
	})
}
