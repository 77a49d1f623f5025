package events

// Event type constants for kelindar/event.
const (
	TypeStreamStateChanged uint32 = iota + 1
	TypeStreamXRun
	TypeStreamFault
	TypeFrequencyChanged
	TypeSoundCard
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// StreamStateChangedEvent reports a stream session phase change.
// Used for LED control and other reactive subsystems.
type StreamStateChangedEvent struct {
	Direction string `json:"direction" example:"capture" doc:"Stream direction"`
	From      string `json:"from" example:"configured" doc:"Previous phase"`
	Phase     string `json:"phase" example:"running" doc:"Current phase"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for StreamStateChangedEvent.
func (e StreamStateChangedEvent) Type() uint32 { return TypeStreamStateChanged }

// GetStreamID implements the StreamStateEvent interface for LED manager.
func (e StreamStateChangedEvent) GetStreamID() string {
	return e.Direction
}

// IsEnabled implements the StreamStateEvent interface for LED manager.
// A stream counts as enabled while it is moving samples or recovering.
func (e StreamStateChangedEvent) IsEnabled() bool {
	return e.Phase == "running" || e.Phase == "recovering"
}

// StreamXRunEvent reports an overrun or underrun that the transport recovered from.
type StreamXRunEvent struct {
	Direction string `json:"direction" example:"capture" doc:"Stream direction"`
	Kind      string `json:"kind" example:"overflow" doc:"overflow or underflow"`
	Cause     string `json:"cause" example:"transport: xrun" doc:"Transport error that triggered recovery"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for StreamXRunEvent.
func (e StreamXRunEvent) Type() uint32 { return TypeStreamXRun }

// StreamFaultEvent reports a fatal stream error.
type StreamFaultEvent struct {
	Direction string `json:"direction" example:"capture" doc:"Stream direction"`
	Error     string `json:"error" example:"stream closed" doc:"Error description"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for StreamFaultEvent.
func (e StreamFaultEvent) Type() uint32 { return TypeStreamFault }

// FrequencyChangedEvent reports a new center frequency written to the actuator.
type FrequencyChangedEvent struct {
	Name        string  `json:"name" example:"RF" doc:"Tuning element"`
	FrequencyHz float64 `json:"frequency_hz" example:"7074000" doc:"Center frequency in Hz"`
	Timestamp   string  `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for FrequencyChangedEvent.
func (e FrequencyChangedEvent) Type() uint32 { return TypeFrequencyChanged }

// SoundCardEvent represents sound card hotplug events.
type SoundCardEvent struct {
	Action    string `json:"action" example:"add" doc:"Action type: add, remove, change"`
	Card      int    `json:"card" example:"1" doc:"ALSA card number"`
	DevPath   string `json:"devpath" example:"/devices/platform/sound/card1" doc:"Kernel device path"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SoundCardEvent.
func (e SoundCardEvent) Type() uint32 { return TypeSoundCard }
