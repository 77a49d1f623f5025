package events

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan FrequencyChangedEvent, 1)

	unsub := bus.Subscribe(func(e FrequencyChangedEvent) {
		received <- e
	})
	defer unsub()

	event := FrequencyChangedEvent{
		Name:        "RF",
		FrequencyHz: 7_074_000,
		Timestamp:   "2025-01-27T10:30:00Z",
	}
	bus.Publish(event)

	got := <-received
	if got.FrequencyHz != event.FrequencyHz {
		t.Errorf("Expected frequency %v, got %v", event.FrequencyHz, got.FrequencyHz)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan StreamXRunEvent, 1)
	received2 := make(chan StreamXRunEvent, 1)

	unsub1 := bus.Subscribe(func(e StreamXRunEvent) {
		received1 <- e
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(e StreamXRunEvent) {
		received2 <- e
	})
	defer unsub2()

	bus.Publish(StreamXRunEvent{Direction: "capture", Kind: "overflow"})

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan StreamFaultEvent, 1)

	unsub := bus.Subscribe(func(e StreamFaultEvent) {
		received <- e
	})

	bus.Publish(StreamFaultEvent{Direction: "capture"})
	<-received

	unsub()

	bus.Publish(StreamFaultEvent{Direction: "playback"})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	xrunReceived := make(chan bool, 1)
	freqReceived := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ StreamXRunEvent) {
		xrunReceived <- true
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(_ FrequencyChangedEvent) {
		freqReceived <- true
	})
	defer unsub2()

	bus.Publish(StreamXRunEvent{Direction: "capture"})
	<-xrunReceived

	select {
	case <-freqReceived:
		t.Fatal("Frequency subscriber should NOT have received StreamXRunEvent")
	case <-time.After(10 * time.Millisecond):
	}

	bus.Publish(FrequencyChangedEvent{Name: "RF"})
	<-freqReceived

	select {
	case <-xrunReceived:
		t.Fatal("XRun subscriber should NOT have received FrequencyChangedEvent")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_ThreadSafety(_ *testing.T) {
	bus := New()
	var wg sync.WaitGroup
	numGoroutines := 10
	eventsPerGoroutine := 100
	expected := numGoroutines * eventsPerGoroutine

	receivedCh := make(chan bool, expected)

	unsub := bus.Subscribe(func(_ SoundCardEvent) {
		receivedCh <- true
	})
	defer unsub()

	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range eventsPerGoroutine {
				bus.Publish(SoundCardEvent{
					Action:    "add",
					Timestamp: time.Now().Format(time.RFC3339),
				})
			}
		}()
	}

	wg.Wait()

	for range expected {
		<-receivedCh
	}
}

func TestBus_AllEventTypes(t *testing.T) {
	bus := New()

	tests := []struct {
		name  string
		event Event
	}{
		{"StreamStateChanged", StreamStateChangedEvent{Direction: "capture", Phase: "running"}},
		{"StreamXRun", StreamXRunEvent{Direction: "capture"}},
		{"StreamFault", StreamFaultEvent{Direction: "playback"}},
		{"FrequencyChanged", FrequencyChangedEvent{Name: "RF"}},
		{"SoundCard", SoundCardEvent{Action: "remove"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(_ *testing.T) {
			received := make(chan Event, 1)

			var unsub func()
			switch tt.event.(type) {
			case StreamStateChangedEvent:
				unsub = bus.Subscribe(func(e StreamStateChangedEvent) { received <- e })
			case StreamXRunEvent:
				unsub = bus.Subscribe(func(e StreamXRunEvent) { received <- e })
			case StreamFaultEvent:
				unsub = bus.Subscribe(func(e StreamFaultEvent) { received <- e })
			case FrequencyChangedEvent:
				unsub = bus.Subscribe(func(e FrequencyChangedEvent) { received <- e })
			case SoundCardEvent:
				unsub = bus.Subscribe(func(e SoundCardEvent) { received <- e })
			}
			defer unsub()

			bus.Publish(tt.event)
			<-received
		})
	}
}

func TestBus_UnknownHandler(_ *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	unsub()
}

func TestEventJSONSerialization(t *testing.T) {
	tests := []struct {
		name  string
		event any
		key   string
	}{
		{"StreamStateChangedEvent", StreamStateChangedEvent{Direction: "capture", Phase: "running"}, "phase"},
		{"StreamXRunEvent", StreamXRunEvent{Direction: "capture", Kind: "overflow"}, "kind"},
		{"FrequencyChangedEvent", FrequencyChangedEvent{Name: "RF", FrequencyHz: 1e6}, "frequency_hz"},
		{"SoundCardEvent", SoundCardEvent{Action: "add", Card: 1}, "card"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.event)
			if err != nil {
				t.Fatalf("Failed to marshal: %v", err)
			}

			var result map[string]any
			if unmarshalErr := json.Unmarshal(data, &result); unmarshalErr != nil {
				t.Fatalf("Failed to unmarshal: %v", unmarshalErr)
			}
			if _, ok := result[tt.key]; !ok {
				t.Errorf("Expected key %q in %s", tt.key, data)
			}
		})
	}
}

func TestStreamStateChangedEvent_Interface(t *testing.T) {
	tests := []struct {
		phase   string
		enabled bool
	}{
		{"running", true},
		{"recovering", true},
		{"configured", false},
		{"closed", false},
	}
	for _, tt := range tests {
		event := StreamStateChangedEvent{Direction: "capture", Phase: tt.phase}
		if event.GetStreamID() != "capture" {
			t.Errorf("Expected stream id capture, got %s", event.GetStreamID())
		}
		if event.IsEnabled() != tt.enabled {
			t.Errorf("IsEnabled() for phase %s = %v, want %v", tt.phase, event.IsEnabled(), tt.enabled)
		}
	}
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan any, 10)

	unsub := SubscribeToChannel[FrequencyChangedEvent](bus, ch)
	defer unsub()

	bus.Publish(FrequencyChangedEvent{Name: "RF", FrequencyHz: 14e6})

	received := <-ch
	ev, ok := received.(FrequencyChangedEvent)
	if !ok {
		t.Fatalf("Expected FrequencyChangedEvent, got %T", received)
	}
	if ev.FrequencyHz != 14e6 {
		t.Errorf("Expected 14e6, got %v", ev.FrequencyHz)
	}
}

func TestSubscribeToChannel_NonBlocking(_ *testing.T) {
	bus := New()
	ch := make(chan any)

	unsub := SubscribeToChannel[StreamXRunEvent](bus, ch)
	defer unsub()

	done := make(chan bool, 1)
	go func() {
		bus.Publish(StreamXRunEvent{Direction: "capture"})
		done <- true
	}()

	<-done
}
