package tuning

import (
	"log/slog"
	"sync"
)

// noop logs frequency changes on systems without a tuning control.
type noop struct {
	logger *slog.Logger
}

func newNoop(logger *slog.Logger) *noop {
	return &noop{logger: logger}
}

func (n *noop) WriteFrequency(hz int64) error {
	n.logger.Debug("Tuning control not available (no-op)", "frequency_hz", hz)
	return nil
}

func (n *noop) Close() error {
	return nil
}

// Memory records every write. It backs the simulated device.
type Memory struct {
	mu     sync.Mutex
	writes []int64
	err    error
	closed bool
}

// NewMemory creates an empty in-memory actuator.
func NewMemory() *Memory {
	return &Memory{}
}

// FailWith makes following writes fail with err. A nil err clears it.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *Memory) WriteFrequency(hz int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.err != nil {
		return m.err
	}
	m.writes = append(m.writes, hz)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Writes returns every frequency written, oldest first.
func (m *Memory) Writes() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.writes...)
}

// Closed reports whether Close was called.
func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
