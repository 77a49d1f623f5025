package device

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/smazurov/radionode/internal/convert"
	"github.com/smazurov/radionode/internal/transport"
)

// DriverKey identifies the driver implementation.
func (d *Device) DriverKey() string {
	return d.profile.DriverKey
}

// HardwareKey identifies the hardware model.
func (d *Device) HardwareKey() string {
	return d.profile.HardwareKey
}

// HardwareInfo returns descriptive key/value pairs for the device.
func (d *Device) HardwareInfo() map[string]string {
	return map[string]string{
		"name":          d.profile.Name,
		"alsa_device":   d.alsaDevice,
		"sample_rate":   strconv.Itoa(d.profile.SampleRate),
		"period_frames": strconv.Itoa(d.profile.PeriodFrames),
		"periods":       strconv.Itoa(d.profile.Periods),
		"native_format": string(convert.Native),
	}
}

// NumChannels is 1 for an enabled direction and 0 otherwise.
func (d *Device) NumChannels(dir transport.Direction) int {
	if d.profile.Enabled(dir) {
		return 1
	}
	return 0
}

// TuningDirection is the direction whose channel 0 carries the RF element:
// capture when it is enabled, playback otherwise.
func (d *Device) TuningDirection() transport.Direction {
	if d.NumChannels(transport.Capture) > 0 {
		return transport.Capture
	}
	return transport.Playback
}

// FullDuplex is always false.
func (d *Device) FullDuplex(transport.Direction) bool {
	return false
}

// StreamFormats lists the caller formats the registry can serve for dir.
func (d *Device) StreamFormats(dir transport.Direction) []convert.Format {
	if !d.profile.Enabled(dir) {
		return nil
	}
	if dir == transport.Playback {
		return d.registry.Sources(convert.Native)
	}
	return d.registry.Targets(convert.Native)
}

// NativeStreamFormat returns the wire format and its full-scale magnitude.
func (d *Device) NativeStreamFormat(transport.Direction) (convert.Format, float64) {
	return convert.Native, convert.Native.FullScale()
}

// ListAntennas returns the single fixed port for dir.
func (d *Device) ListAntennas(dir transport.Direction) []string {
	switch {
	case !d.profile.Enabled(dir):
		return nil
	case dir == transport.Playback:
		return []string{"TX"}
	default:
		return []string{"RX"}
	}
}

// Antenna returns the selected port for dir.
func (d *Device) Antenna(dir transport.Direction) string {
	if names := d.ListAntennas(dir); len(names) > 0 {
		return names[0]
	}
	return ""
}

// SetAntenna accepts only the fixed port.
func (d *Device) SetAntenna(dir transport.Direction, name string) error {
	if !slices.Contains(d.ListAntennas(dir), name) {
		return fmt.Errorf("%w: %q", ErrUnknownAntenna, name)
	}
	return nil
}

// ListGains is empty: the board has no adjustable gain stage.
func (d *Device) ListGains(transport.Direction) []string {
	return []string{}
}

// HasGainMode is false: there is no automatic gain control.
func (d *Device) HasGainMode(transport.Direction) bool {
	return false
}

// GainRange returns the nominal overall gain range.
func (d *Device) GainRange(transport.Direction) Range {
	return d.profile.Gain
}

// ListFrequencies names the tunable elements.
func (d *Device) ListFrequencies(transport.Direction) []string {
	return []string{FrequencyRF}
}

// FrequencyRange returns the tuning range of name, or nil for an unknown element.
func (d *Device) FrequencyRange(_ transport.Direction, name string) []Range {
	if name != FrequencyRF {
		return nil
	}
	return []Range{d.profile.Frequency}
}

// SampleRate returns the fixed hardware rate.
func (d *Device) SampleRate(transport.Direction) float64 {
	return float64(d.profile.SampleRate)
}

// ListSampleRates returns the single supported rate.
func (d *Device) ListSampleRates(transport.Direction) []float64 {
	return []float64{float64(d.profile.SampleRate)}
}

// SetSampleRate accepts only the fixed hardware rate.
func (d *Device) SetSampleRate(_ transport.Direction, rate float64) error {
	if rate != float64(d.profile.SampleRate) {
		return fmt.Errorf("%w: %.0f (hardware runs at %d)", ErrInvalidRate, rate, d.profile.SampleRate)
	}
	return nil
}

// Bandwidth equals the sample rate.
func (d *Device) Bandwidth(transport.Direction) float64 {
	return float64(d.profile.SampleRate)
}

// ListBandwidths returns the single analog bandwidth.
func (d *Device) ListBandwidths(transport.Direction) []float64 {
	return []float64{float64(d.profile.SampleRate)}
}
