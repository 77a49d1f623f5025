//go:build linux

package hotplug

import (
	"context"
	"errors"
	"testing"
)

func TestMonitorFilters(t *testing.T) {
	m := &Monitor{filters: make(map[string]struct{})}
	if !m.accept("usb") {
		t.Error("an unfiltered monitor should accept everything")
	}
	m.AddSubsystemFilter(SubsystemSound)
	if !m.accept(SubsystemSound) || m.accept("usb") {
		t.Error("filter not applied")
	}
}

func TestMonitorRunCancelled(t *testing.T) {
	m, err := NewMonitor()
	if err != nil {
		t.Skipf("netlink unavailable: %v", err)
	}
	defer func() { _ = m.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := make(chan Event, 1)
	if err := m.Run(ctx, events); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if _, open := <-events; open {
		t.Error("events channel should be closed")
	}
}
