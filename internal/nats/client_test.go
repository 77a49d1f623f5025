package nats

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/smazurov/radionode/internal/events"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSubjects(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{SubjectStream("shack", "capture", "state"), "radionode.shack.stream.capture.state"},
		{SubjectStream("shack", "playback", "xrun"), "radionode.shack.stream.playback.xrun"},
		{SubjectFrequency("shack"), "radionode.shack.tuner.frequency"},
		{SubjectTune("shack"), "radionode.shack.control.tune"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("subject = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestClientOfflineMode(t *testing.T) {
	client := NewClient("nats://127.0.0.1:1", "test", testLogger())
	if err := client.Connect(); err == nil {
		t.Fatal("Connect() should fail without a server")
	}
	client.Publish(SubjectFrequency("test"), FrequencyMessage{FrequencyHz: 1})
	client.OnTune(func(float64) error { return nil })
	if client.IsConnected() {
		t.Error("IsConnected() = true in offline mode")
	}
	client.Close()
}

func TestClientTune(t *testing.T) {
	client := NewClient("", "test", testLogger())
	var got float64
	apply := func(hz float64) error {
		if hz > 45e6 {
			return errors.New("out of range")
		}
		got = hz
		return nil
	}

	tests := []struct {
		name    string
		fn      TuneFunc
		payload string
		wantOK  bool
		wantErr bool
	}{
		{"applied", apply, `{"frequency_hz": 7074000}`, true, false},
		{"rejected", apply, `{"frequency_hz": 5e7}`, false, true},
		{"negative", apply, `{"frequency_hz": -5}`, false, true},
		{"garbage", apply, `not json`, false, true},
		{"no handler", nil, `{"frequency_hz": 1000}`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := client.tune(tt.fn, []byte(tt.payload))
			if reply.OK != tt.wantOK || (reply.Error != "") != tt.wantErr {
				t.Errorf("tune() = %+v", reply)
			}
		})
	}
	if got != 7074000 {
		t.Errorf("applied frequency = %v", got)
	}
}

type published struct {
	subject string
	v       any
}

type fakePublisher struct {
	out chan published
}

func (f *fakePublisher) Publish(subject string, v any) {
	f.out <- published{subject, v}
}

func TestBridgeForwardsEvents(t *testing.T) {
	bus := events.New()
	pub := &fakePublisher{out: make(chan published, 8)}
	bridge := NewBridge(pub, "shack", bus, testLogger())
	bridge.Start()
	defer bridge.Stop()

	bus.Publish(events.StreamStateChangedEvent{Direction: "capture", From: "configured", Phase: "running"})
	expect(t, pub, "radionode.shack.stream.capture.state", func(v any) bool {
		m, ok := v.(StateMessage)
		return ok && m.Phase == "running" && m.Node == "shack"
	})

	bus.Publish(events.StreamXRunEvent{Direction: "capture", Kind: "overflow"})
	expect(t, pub, "radionode.shack.stream.capture.xrun", func(v any) bool {
		m, ok := v.(XRunMessage)
		return ok && m.Kind == "overflow"
	})

	bus.Publish(events.StreamFaultEvent{Direction: "capture", Error: "stream: closed"})
	expect(t, pub, "radionode.shack.stream.capture.fault", func(v any) bool {
		m, ok := v.(FaultMessage)
		return ok && m.Error == "stream: closed"
	})

	bus.Publish(events.FrequencyChangedEvent{Name: "RF", FrequencyHz: 14074000})
	expect(t, pub, "radionode.shack.tuner.frequency", func(v any) bool {
		m, ok := v.(FrequencyMessage)
		return ok && m.FrequencyHz == 14074000
	})
}

func TestBridgeStop(t *testing.T) {
	bus := events.New()
	pub := &fakePublisher{out: make(chan published, 8)}
	bridge := NewBridge(pub, "shack", bus, testLogger())
	bridge.Start()
	bridge.Stop()

	bus.Publish(events.FrequencyChangedEvent{Name: "RF", FrequencyHz: 1})
	select {
	case p := <-pub.out:
		t.Errorf("published %q after Stop", p.subject)
	case <-time.After(50 * time.Millisecond):
	}
}

func expect(t *testing.T, pub *fakePublisher, subject string, check func(any) bool) {
	t.Helper()
	select {
	case p := <-pub.out:
		if p.subject != subject {
			t.Fatalf("subject = %q, want %q", p.subject, subject)
		}
		if !check(p.v) {
			t.Errorf("unexpected payload %#v", p.v)
		}
	case <-time.After(time.Second):
		t.Fatalf("nothing published on %s", subject)
	}
}
