//go:build !linux

// Package hotplug watches kernel uevents over netlink and reports sound card
// arrivals and departures.
package hotplug

import (
	"context"
	"errors"
)

// Monitor is unavailable off Linux.
type Monitor struct{}

// NewMonitor always fails off Linux.
func NewMonitor() (*Monitor, error) {
	return nil, errors.ErrUnsupported
}

// AddSubsystemFilter is a no-op.
func (m *Monitor) AddSubsystemFilter(string) {}

// Close is a no-op.
func (m *Monitor) Close() error { return nil }

// Run closes events and returns immediately.
func (m *Monitor) Run(_ context.Context, events chan<- Event) error {
	close(events)
	return errors.ErrUnsupported
}
