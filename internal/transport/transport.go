// Package transport defines the block-oriented hardware handle consumed by
// stream sessions and the factories that open it.
//
// A Handle wraps one direction of a period/ring transport. The ALSA factory
// drives real PCM substreams; the simulated factory provides a deterministic
// ring with fault injection for tests and for running without hardware.
package transport

import (
	"errors"
	"fmt"
	"time"
)

// Direction selects capture (device to host) or playback (host to device).
type Direction int

const (
	Capture Direction = iota
	Playback
)

func (d Direction) String() string {
	switch d {
	case Capture:
		return "capture"
	case Playback:
		return "playback"
	default:
		return "unknown"
	}
}

// ParseDirection accepts "capture"/"rx" and "playback"/"tx".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "capture", "rx", "RX":
		return Capture, nil
	case "playback", "tx", "TX":
		return Playback, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// State is the transfer state reported by a handle. Values follow the
// kernel PCM state numbering.
type State int

const (
	StateOpen State = iota
	StateSetup
	StatePrepared
	StateRunning
	StateXRun
	StateDraining
	StatePaused
	StateSuspended
	StateDisconnected
)

var stateNames = [...]string{
	StateOpen:         "open",
	StateSetup:        "setup",
	StatePrepared:     "prepared",
	StateRunning:      "running",
	StateXRun:         "xrun",
	StateDraining:     "draining",
	StatePaused:       "paused",
	StateSuspended:    "suspended",
	StateDisconnected: "disconnected",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Errors reported by handles. Implementations wrap the driver cause.
var (
	// ErrXRun marks an overrun or underrun on a transfer.
	ErrXRun = errors.New("transport: xrun")
	// ErrSuspended marks a stream stopped by system suspend.
	ErrSuspended = errors.New("transport: suspended")
	// ErrBadState marks a transfer issued in a state that cannot transfer.
	ErrBadState = errors.New("transport: bad state")
	// ErrDisconnected marks hardware that went away.
	ErrDisconnected = errors.New("transport: device disconnected")
	// ErrHandleClosed marks a handle that was closed or torn down underneath
	// the caller. Recovery never clears it.
	ErrHandleClosed = errors.New("transport: handle closed")
)

// Params is the negotiation request for one handle.
type Params struct {
	Device       string
	Direction    Direction
	SampleRate   int
	Periods      int
	PeriodFrames int
	// AvailMin is the readiness watermark in frames. Zero means one period.
	AvailMin int
}

// Channels is fixed: I/Q pairs are carried as interleaved stereo.
const Channels = 2

// DefaultAvailMin is the wakeup watermark used when Params leaves it unset.
const DefaultAvailMin = 256

// Handle is an open, configured transport ring. A Handle is owned by a single
// session and is not safe for concurrent use.
type Handle interface {
	// State returns the current transfer state.
	State() State
	Prepare() error
	Start() error
	// Drop stops the ring and discards queued frames.
	Drop() error
	// Wait blocks until the ring is ready or timeout elapses. It returns
	// false with a nil error on timeout.
	Wait(timeout time.Duration) (bool, error)
	// ReadBlock moves up to frames interleaved pairs into buf.
	ReadBlock(buf []int32, frames int) (int, error)
	// WriteBlock moves up to frames interleaved pairs from buf.
	WriteBlock(buf []int32, frames int) (int, error)
	// Recover clears the condition behind a transfer error. It fails when the
	// condition is not recoverable.
	Recover(err error) error
	Close() error
}

// Factory opens handles. A failed negotiation returns an error and no handle.
type Factory interface {
	Open(p Params) (Handle, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(p Params) (Handle, error)

// Open calls f(p).
func (f FactoryFunc) Open(p Params) (Handle, error) {
	return f(p)
}
