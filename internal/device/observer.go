package device

import (
	"time"

	"github.com/smazurov/radionode/internal/events"
	"github.com/smazurov/radionode/internal/metrics"
	"github.com/smazurov/radionode/internal/stream"
	"github.com/smazurov/radionode/internal/transport"
)

// observer publishes session activity to metrics and the event bus.
type observer struct {
	eventBus *events.Bus
}

func newObserver(bus *events.Bus) *observer {
	return &observer{eventBus: bus}
}

func (o *observer) PhaseChanged(dir transport.Direction, from, to stream.Phase) {
	metrics.SetStreamPhase(dir.String(), int(to), to.String())
	o.publish(events.StreamStateChangedEvent{
		Direction: dir.String(),
		From:      from.String(),
		Phase:     to.String(),
		Timestamp: now(),
	})
}

func (o *observer) Transferred(dir transport.Direction, frames int) {
	metrics.AddStreamSamples(dir.String(), frames)
}

func (o *observer) TimedOut(dir transport.Direction) {
	metrics.IncStreamTimeouts(dir.String())
}

func (o *observer) Recovered(dir transport.Direction, cause error) {
	metrics.IncStreamXRuns(dir.String())
	kind := "overflow"
	if dir == transport.Playback {
		kind = "underflow"
	}
	o.publish(events.StreamXRunEvent{
		Direction: dir.String(),
		Kind:      kind,
		Cause:     errString(cause),
		Timestamp: now(),
	})
}

func (o *observer) Failed(dir transport.Direction, err error) {
	metrics.IncStreamFaults(dir.String())
	o.publish(events.StreamFaultEvent{
		Direction: dir.String(),
		Error:     errString(err),
		Timestamp: now(),
	})
}

func (o *observer) publish(ev events.Event) {
	if o.eventBus != nil {
		o.eventBus.Publish(ev)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func now() string {
	return time.Now().Format(time.RFC3339)
}
