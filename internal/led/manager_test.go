package led

import (
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/radionode/internal/events"
)

type setCall struct {
	ledType string
	enabled bool
	pattern string
}

type mockController struct {
	mu    sync.Mutex
	calls []setCall
}

func (m *mockController) Set(ledType string, enabled bool, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, setCall{ledType, enabled, pattern})
	return nil
}

func (m *mockController) Available() []string { return []string{"user"} }
func (m *mockController) Patterns() []string  { return []string{PatternSolid, PatternBlink} }

func (m *mockController) last() (setCall, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return setCall{}, 0
	}
	return m.calls[len(m.calls)-1], len(m.calls)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// waitPattern polls until the manager settles on want.
func waitPattern(t *testing.T, m *Manager, want string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if m.Pattern() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Pattern() = %q, want %q", m.Pattern(), want)
}

func phase(dir, p string) events.StreamStateChangedEvent {
	return events.StreamStateChangedEvent{Direction: dir, Phase: p}
}

func TestManagerStartsOff(t *testing.T) {
	ctrl := &mockController{}
	mgr := NewManager(ctrl, "user", events.New(), testLogger())
	mgr.Start()
	defer mgr.Stop()

	call, n := ctrl.last()
	if n != 1 || call != (setCall{"user", false, ""}) {
		t.Errorf("first Set() = %+v (calls=%d), want user off", call, n)
	}
}

func TestManagerFollowsStreamPhases(t *testing.T) {
	ctrl := &mockController{}
	bus := events.New()
	mgr := NewManager(ctrl, "user", bus, testLogger())
	mgr.Start()
	defer mgr.Stop()

	steps := []struct {
		name string
		ev   any
		want string
	}{
		{"running", phase("capture", "running"), PatternSolid},
		{"recovering", phase("capture", "recovering"), PatternBlink},
		{"recovered", phase("capture", "running"), PatternSolid},
		{"fault", events.StreamFaultEvent{Direction: "capture", Error: "closed"}, PatternHeartbeat},
		{"running clears fault", phase("capture", "running"), PatternSolid},
		{"configured", phase("capture", "configured"), ""},
	}
	for _, st := range steps {
		switch ev := st.ev.(type) {
		case events.StreamStateChangedEvent:
			bus.Publish(ev)
		case events.StreamFaultEvent:
			bus.Publish(ev)
		}
		waitPattern(t, mgr, st.want)
	}

	call, _ := ctrl.last()
	if call.enabled {
		t.Errorf("last Set() = %+v, want LED off", call)
	}
}

func TestManagerOneDirectionRunning(t *testing.T) {
	ctrl := &mockController{}
	bus := events.New()
	mgr := NewManager(ctrl, "user", bus, testLogger())
	mgr.Start()
	defer mgr.Stop()

	bus.Publish(phase("capture", "running"))
	waitPattern(t, mgr, PatternSolid)
	bus.Publish(phase("playback", "configured"))
	time.Sleep(20 * time.Millisecond)
	if got := mgr.Pattern(); got != PatternSolid {
		t.Errorf("Pattern() = %q, an idle direction must not switch the LED off", got)
	}
}

func TestManagerStopTurnsOff(t *testing.T) {
	ctrl := &mockController{}
	bus := events.New()
	mgr := NewManager(ctrl, "user", bus, testLogger())
	mgr.Start()

	bus.Publish(phase("capture", "running"))
	waitPattern(t, mgr, PatternSolid)
	mgr.Stop()

	call, _ := ctrl.last()
	if call.enabled {
		t.Errorf("Set() after Stop = %+v, want off", call)
	}

	_, before := ctrl.last()
	bus.Publish(phase("capture", "running"))
	time.Sleep(20 * time.Millisecond)
	if _, after := ctrl.last(); after != before {
		t.Error("manager reacted to events after Stop")
	}
}
