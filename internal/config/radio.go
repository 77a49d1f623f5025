package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/smazurov/radionode/internal/device"
	"github.com/smazurov/radionode/internal/logging"
)

// RadioConfig is the [radio] table.
type RadioConfig struct {
	ALSADevice    string  `toml:"alsa_device" json:"alsa_device"`
	SampleRate    int     `toml:"sample_rate" json:"sample_rate"`
	PeriodFrames  int     `toml:"period_frames" json:"period_frames"`
	Periods       int     `toml:"periods" json:"periods"`
	AvailMin      int     `toml:"avail_min" json:"avail_min"`
	FrequencyHz   float64 `toml:"frequency_hz" json:"frequency_hz"`
	FrequencyPath string  `toml:"frequency_path" json:"frequency_path"`
	Playback      bool    `toml:"playback" json:"playback"`
	Simulate      bool    `toml:"simulate" json:"simulate"`
}

// DefaultRadio returns the TujaSDR defaults.
func DefaultRadio() RadioConfig {
	p := device.TujaSDR()
	return RadioConfig{
		ALSADevice:   "hw:CARD=tujasdr,DEV=0",
		SampleRate:   p.SampleRate,
		PeriodFrames: p.PeriodFrames,
		Periods:      p.Periods,
		AvailMin:     p.AvailMin,
	}
}

// Profile overlays the configured ring geometry on base. Zero values keep
// the base setting.
func (c RadioConfig) Profile(base device.Profile) device.Profile {
	if c.SampleRate > 0 {
		base.SampleRate = c.SampleRate
	}
	if c.PeriodFrames > 0 {
		base.PeriodFrames = c.PeriodFrames
	}
	if c.Periods > 0 {
		base.Periods = c.Periods
	}
	if c.AvailMin > 0 {
		base.AvailMin = c.AvailMin
	}
	base.Playback = base.Playback || c.Playback
	return base
}

// Reloadable is the part of the file applied without a restart.
type Reloadable struct {
	Radio   RadioConfig
	Logging logging.Config
}

// LoadRadioConfig reads [radio] over DefaultRadio. A missing file yields
// the defaults.
func LoadRadioConfig(path string) (RadioConfig, error) {
	doc := struct {
		Radio RadioConfig `toml:"radio"`
	}{Radio: DefaultRadio()}

	if path == "" {
		return doc.Radio, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return doc.Radio, nil
	}
	if err != nil {
		return doc.Radio, fmt.Errorf("read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return DefaultRadio(), fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Radio.FrequencyHz < 0 {
		return DefaultRadio(), fmt.Errorf("parse %s: negative radio.frequency_hz", path)
	}
	return doc.Radio, nil
}

// LoadReloadable is the loader used by the config watcher.
func LoadReloadable(path string) (Reloadable, error) {
	radio, err := LoadRadioConfig(path)
	if err != nil {
		return Reloadable{}, err
	}
	return Reloadable{Radio: radio, Logging: LoadLoggingConfig(path)}, nil
}
