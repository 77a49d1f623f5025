package device

import (
	"errors"
	"fmt"

	"github.com/smazurov/radionode/internal/transport"
)

// Range is a closed interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within r.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Profile describes the fixed hardware characteristics of a radio.
type Profile struct {
	Name        string
	DriverKey   string
	HardwareKey string
	// SampleRate is the only rate the hardware clock runs at.
	SampleRate   int
	PeriodFrames int
	Periods      int
	AvailMin     int
	Capture      bool
	Playback     bool
	Frequency    Range
	Gain         Range
}

// TujaSDR returns the profile of the TujaSDR receiver board.
func TujaSDR() Profile {
	return Profile{
		Name:         "TujaSDR",
		DriverKey:    "TujaSDRDriver",
		HardwareKey:  "TujaSDRHW",
		SampleRate:   89286,
		PeriodFrames: 2048,
		Periods:      2,
		AvailMin:     transport.DefaultAvailMin,
		Capture:      true,
		Frequency:    Range{Min: 0, Max: 45_000_000},
		Gain:         Range{Min: 0, Max: 100},
	}
}

// Validate checks the ring geometry.
func (p Profile) Validate() error {
	switch {
	case p.SampleRate <= 0:
		return fmt.Errorf("invalid sample rate %d", p.SampleRate)
	case p.PeriodFrames <= 0:
		return fmt.Errorf("invalid period size %d", p.PeriodFrames)
	case p.Periods < 2:
		return fmt.Errorf("ring needs at least 2 periods, got %d", p.Periods)
	case p.AvailMin < 0 || p.AvailMin > p.PeriodFrames:
		return fmt.Errorf("avail_min %d outside 0..%d", p.AvailMin, p.PeriodFrames)
	case !p.Capture && !p.Playback:
		return errors.New("profile enables no direction")
	}
	return nil
}

// Enabled reports whether the hardware supports dir.
func (p Profile) Enabled(dir transport.Direction) bool {
	switch dir {
	case transport.Capture:
		return p.Capture
	case transport.Playback:
		return p.Playback
	default:
		return false
	}
}
