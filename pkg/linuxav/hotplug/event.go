package hotplug

import (
	"bytes"
	"strconv"
	"strings"
)

// Uevent actions.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionChange = "change"
)

// SubsystemSound is the ALSA uevent subsystem.
const SubsystemSound = "sound"

// Event is a parsed kernel uevent.
type Event struct {
	Action    string
	KObj      string // /devices/.../sound/card1
	Subsystem string
	DevName   string // snd/pcmC1D0c for device nodes
	DevPath   string
	Env       map[string]string
}

// Card returns the ALSA card number when the event describes a card itself
// rather than one of its pcm or control nodes.
func (e Event) Card() (int, bool) {
	if e.Subsystem != SubsystemSound {
		return 0, false
	}
	path := e.DevPath
	if path == "" {
		path = e.KObj
	}
	idx := strings.LastIndexByte(path, '/')
	last := path[idx+1:]
	if !strings.HasPrefix(last, "card") {
		return 0, false
	}
	n, err := strconv.Atoi(last[len("card"):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ParseUEvent decodes "ACTION@KOBJ\0KEY=VALUE\0...". Messages rebroadcast by
// udev carry a binary header that is skipped. Returns nil for malformed input.
func ParseUEvent(data []byte) *Event {
	if bytes.HasPrefix(data, []byte("libudev")) {
		data = skipUdevHeader(data)
	}

	parts := bytes.Split(data, []byte{0})
	if len(parts) == 0 || len(parts[0]) == 0 {
		return nil
	}

	action, kobj, ok := strings.Cut(string(parts[0]), "@")
	if !ok || action == "" {
		return nil
	}

	ev := &Event{Action: action, KObj: kobj, Env: make(map[string]string)}
	for _, part := range parts[1:] {
		key, value, ok := strings.Cut(string(part), "=")
		if !ok || key == "" {
			continue
		}
		ev.Env[key] = value

		switch key {
		case "SUBSYSTEM":
			ev.Subsystem = value
		case "DEVNAME":
			ev.DevName = value
		case "DEVPATH":
			ev.DevPath = value
		}
	}
	return ev
}

func skipUdevHeader(data []byte) []byte {
	for i := 0; i < len(data)-1; i++ {
		if data[i] != 0 {
			continue
		}
		rest := data[i+1:]
		at := bytes.IndexByte(rest, '@')
		nul := bytes.IndexByte(rest, 0)
		if at > 0 && at < 20 && (nul < 0 || at < nul) {
			return rest
		}
	}
	return data
}
