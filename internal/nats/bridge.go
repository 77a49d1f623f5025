package nats

import (
	"log/slog"
	"sync"

	"github.com/smazurov/radionode/internal/events"
)

// Publisher sends a JSON-encodable payload on a subject.
type Publisher interface {
	Publish(subject string, v any)
}

// Bridge forwards event bus events to NATS.
type Bridge struct {
	pub      Publisher
	node     string
	eventBus *events.Bus
	logger   *slog.Logger

	mu     sync.Mutex
	unsubs []func()
}

// NewBridge creates a bridge publishing under node.
func NewBridge(pub Publisher, node string, eventBus *events.Bus, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		pub:      pub,
		node:     node,
		eventBus: eventBus,
		logger:   logger.With("component", "nats-bridge"),
	}
}

// Start subscribes to the event bus.
func (b *Bridge) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unsubs = append(b.unsubs,
		b.eventBus.Subscribe(b.onState),
		b.eventBus.Subscribe(b.onXRun),
		b.eventBus.Subscribe(b.onFault),
		b.eventBus.Subscribe(b.onFrequency),
	)
	b.logger.Info("NATS bridge started")
}

// Stop unsubscribes from the event bus.
func (b *Bridge) Stop() {
	b.mu.Lock()
	unsubs := b.unsubs
	b.unsubs = nil
	b.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
	b.logger.Info("NATS bridge stopped")
}

func (b *Bridge) onState(e events.StreamStateChangedEvent) {
	b.pub.Publish(SubjectStream(b.node, e.Direction, "state"), StateMessage{
		Node: b.node, Direction: e.Direction, From: e.From, Phase: e.Phase, Timestamp: e.Timestamp,
	})
}

func (b *Bridge) onXRun(e events.StreamXRunEvent) {
	b.pub.Publish(SubjectStream(b.node, e.Direction, "xrun"), XRunMessage{
		Node: b.node, Direction: e.Direction, Kind: e.Kind, Cause: e.Cause, Timestamp: e.Timestamp,
	})
}

func (b *Bridge) onFault(e events.StreamFaultEvent) {
	b.pub.Publish(SubjectStream(b.node, e.Direction, "fault"), FaultMessage{
		Node: b.node, Direction: e.Direction, Error: e.Error, Timestamp: e.Timestamp,
	})
}

func (b *Bridge) onFrequency(e events.FrequencyChangedEvent) {
	b.pub.Publish(SubjectFrequency(b.node), FrequencyMessage{
		Node: b.node, Name: e.Name, FrequencyHz: e.FrequencyHz, Timestamp: e.Timestamp,
	})
}
