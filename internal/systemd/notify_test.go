package systemd

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

type recorder struct {
	mu     sync.Mutex
	states []string
	err    error
}

func (r *recorder) send(state string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
	return r.err == nil, r.err
}

func (r *recorder) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.states)
}

func TestNotifierStates(t *testing.T) {
	rec := &recorder{}
	n := NewNotifier(nil)
	n.send = rec.send

	n.Ready()
	n.Status("capture running")
	n.Stopping()

	want := []string{daemon.SdNotifyReady, "STATUS=capture running", daemon.SdNotifyStopping}
	if got := rec.sent(); !slices.Equal(got, want) {
		t.Errorf("sent %v, want %v", got, want)
	}
}

func TestNotifierSendError(t *testing.T) {
	rec := &recorder{err: errors.New("socket gone")}
	n := NewNotifier(nil)
	n.send = rec.send

	n.Ready()
	if got := len(rec.sent()); got != 1 {
		t.Errorf("sent %d messages, want 1", got)
	}
}

func TestRunWatchdog(t *testing.T) {
	rec := &recorder{}
	n := NewNotifier(nil)
	n.send = rec.send

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.runWatchdog(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for len(rec.sent()) < 2 {
		select {
		case <-deadline:
			t.Fatal("watchdog did not ping")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	for _, s := range rec.sent() {
		if s != daemon.SdNotifyWatchdog {
			t.Errorf("unexpected state %q", s)
		}
	}
}

func TestRunWatchdogDisabled(t *testing.T) {
	t.Setenv("WATCHDOG_USEC", "")
	rec := &recorder{}
	n := NewNotifier(nil)
	n.send = rec.send

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	n.RunWatchdog(ctx)
	if ctx.Err() != nil {
		t.Error("RunWatchdog should return at once without a watchdog")
	}
	if got := len(rec.sent()); got != 0 {
		t.Errorf("sent %d messages, want 0", got)
	}
}
