package led

import (
	"log/slog"
	"sync"

	"github.com/smazurov/radionode/internal/events"
)

// Manager reflects stream activity on one LED: solid while samples flow,
// blinking while a stream recovers from an xrun, heartbeat after a fault,
// off when no stream runs.
type Manager struct {
	controller Controller
	ledType    string
	eventBus   *events.Bus
	logger     *slog.Logger

	mu      sync.Mutex
	phases  map[string]string // direction -> phase
	faulted map[string]bool
	pattern string
	unsubs  []func()
}

// NewManager creates a manager driving ledType on controller.
func NewManager(controller Controller, ledType string, eventBus *events.Bus, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		controller: controller,
		ledType:    ledType,
		eventBus:   eventBus,
		logger:     logger,
		phases:     make(map[string]string),
		faulted:    make(map[string]bool),
	}
}

// Start subscribes to stream events and switches the LED off.
func (m *Manager) Start() {
	m.mu.Lock()
	m.unsubs = append(m.unsubs,
		m.eventBus.Subscribe(m.handleState),
		m.eventBus.Subscribe(m.handleFault),
	)
	m.apply(true)
	m.mu.Unlock()
	m.logger.Info("LED manager started", "led", m.ledType)
}

// Stop unsubscribes and switches the LED off.
func (m *Manager) Stop() {
	m.mu.Lock()
	unsubs := m.unsubs
	m.unsubs = nil
	m.mu.Unlock()

	for _, u := range unsubs {
		u()
	}

	m.mu.Lock()
	m.phases = make(map[string]string)
	m.faulted = make(map[string]bool)
	m.apply(true)
	m.mu.Unlock()
	m.logger.Info("LED manager stopped")
}

// Pattern returns the current pattern, empty when off.
func (m *Manager) Pattern() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pattern
}

func (m *Manager) handleState(e events.StreamStateChangedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phases[e.Direction] = e.Phase
	if e.Phase == "running" {
		delete(m.faulted, e.Direction)
	}
	m.logger.Debug("Stream phase changed", "direction", e.Direction, "phase", e.Phase)
	m.apply(false)
}

func (m *Manager) handleFault(e events.StreamFaultEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faulted[e.Direction] = true
	m.apply(false)
}

// apply must hold m.mu.
func (m *Manager) apply(force bool) {
	pattern := m.desired()
	if pattern == m.pattern && !force {
		return
	}
	m.pattern = pattern

	enabled := pattern != ""
	if err := m.controller.Set(m.ledType, enabled, pattern); err != nil {
		m.logger.Warn("Failed to set LED", "led", m.ledType, "pattern", pattern, "error", err)
	}
}

func (m *Manager) desired() string {
	if len(m.faulted) > 0 {
		return PatternHeartbeat
	}
	running := false
	for _, phase := range m.phases {
		switch phase {
		case "recovering":
			return PatternBlink
		case "running":
			running = true
		}
	}
	if running {
		return PatternSolid
	}
	return ""
}
