package hotplug

import "testing"

func TestParseUEvent(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  *Event
	}{
		{name: "empty", input: nil},
		{name: "no separator", input: []byte("invalid")},
		{name: "missing action", input: []byte("@/devices/foo")},
		{name: "only nulls", input: []byte{0, 0, 0}},
		{
			name:  "card add",
			input: []byte("add@/devices/platform/tujasdr/sound/card1\x00ACTION=add\x00DEVPATH=/devices/platform/tujasdr/sound/card1\x00SUBSYSTEM=sound\x00SEQNUM=1822\x00"),
			want: &Event{
				Action:    "add",
				KObj:      "/devices/platform/tujasdr/sound/card1",
				Subsystem: "sound",
				DevPath:   "/devices/platform/tujasdr/sound/card1",
				Env: map[string]string{
					"ACTION":    "add",
					"DEVPATH":   "/devices/platform/tujasdr/sound/card1",
					"SUBSYSTEM": "sound",
					"SEQNUM":    "1822",
				},
			},
		},
		{
			name:  "pcm node with value containing equals",
			input: []byte("remove@/devices/sound/card1/pcmC1D0c\x00SUBSYSTEM=sound\x00DEVNAME=snd/pcmC1D0c\x00TAG=a=b\x00\x00"),
			want: &Event{
				Action:    "remove",
				KObj:      "/devices/sound/card1/pcmC1D0c",
				Subsystem: "sound",
				DevName:   "snd/pcmC1D0c",
				Env: map[string]string{
					"SUBSYSTEM": "sound",
					"DEVNAME":   "snd/pcmC1D0c",
					"TAG":       "a=b",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseUEvent(tt.input)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("ParseUEvent() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("ParseUEvent() = nil")
			}
			if got.Action != tt.want.Action || got.KObj != tt.want.KObj ||
				got.Subsystem != tt.want.Subsystem || got.DevName != tt.want.DevName ||
				got.DevPath != tt.want.DevPath {
				t.Errorf("ParseUEvent() = %+v, want %+v", got, tt.want)
			}
			if len(got.Env) != len(tt.want.Env) {
				t.Errorf("Env = %v, want %v", got.Env, tt.want.Env)
			}
			for k, v := range tt.want.Env {
				if got.Env[k] != v {
					t.Errorf("Env[%s] = %q, want %q", k, got.Env[k], v)
				}
			}
		})
	}
}

func TestParseUEventUdevHeader(t *testing.T) {
	msg := append([]byte("libudev\x00\xfe\xed\x00"), []byte("change@/devices/sound/card0\x00SUBSYSTEM=sound\x00")...)
	ev := ParseUEvent(msg)
	if ev == nil || ev.Action != "change" || ev.Subsystem != SubsystemSound {
		t.Fatalf("ParseUEvent() = %+v", ev)
	}
}

func TestEventCard(t *testing.T) {
	tests := []struct {
		name   string
		ev     Event
		want   int
		wantOK bool
	}{
		{"card via devpath", Event{Subsystem: "sound", DevPath: "/devices/x/sound/card2"}, 2, true},
		{"card via kobj", Event{Subsystem: "sound", KObj: "/devices/sound/card0"}, 0, true},
		{"pcm node", Event{Subsystem: "sound", DevPath: "/devices/sound/card1/pcmC1D0c"}, 0, false},
		{"control node", Event{Subsystem: "sound", DevPath: "/devices/sound/card1/controlC1"}, 0, false},
		{"other subsystem", Event{Subsystem: "usb", DevPath: "/devices/usb/card1"}, 0, false},
		{"bad number", Event{Subsystem: "sound", DevPath: "/devices/sound/cardX"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.ev.Card()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Card() = %d, %v, want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
