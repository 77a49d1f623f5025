// Package cmd holds the radionode subcommands and the pieces the serve
// command wires together.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/smazurov/radionode/internal/config"
	"github.com/smazurov/radionode/internal/device"
	"github.com/smazurov/radionode/internal/driver"
	"github.com/smazurov/radionode/internal/events"
	"github.com/smazurov/radionode/internal/transport"
	"github.com/smazurov/radionode/internal/tuning"
	"github.com/spf13/cobra"
)

// simulatedToneHz offsets the simulated carrier from the center frequency.
const simulatedToneHz = 10_000

// NewDriverRegistry registers the drivers configured by radio.
func NewDriverRegistry(radio config.RadioConfig, bus *events.Bus, logger *slog.Logger) (*driver.Registry, error) {
	profile := radio.Profile(device.TujaSDR())
	opts := driver.TujaSDROptions{
		Profile:      &profile,
		ActuatorPath: radio.FrequencyPath,
		EventBus:     bus,
		Logger:       logger,
	}
	if radio.Simulate {
		opts.Factory = transport.NewSimFactory(transport.SimOptions{
			Realtime: true,
			Signal:   transport.Tone(simulatedToneHz, profile.SampleRate, 0.25),
		})
		opts.NewActuator = func(string) tuning.Actuator { return tuning.NewMemory() }
		opts.Probe = func() ([]driver.Card, error) { return nil, nil }
	}

	reg := driver.NewRegistry()
	if err := reg.Register(driver.TujaSDR(opts)); err != nil {
		return nil, err
	}
	return reg, nil
}

// OpenRadio builds the device for radio and applies its startup frequency.
func OpenRadio(radio config.RadioConfig, bus *events.Bus, logger *slog.Logger) (*device.Device, error) {
	reg, err := NewDriverRegistry(radio, bus, logger)
	if err != nil {
		return nil, err
	}
	dev, err := reg.Make(driver.Args{driver.KeyALSADevice: radio.ALSADevice})
	if err != nil {
		return nil, fmt.Errorf("open radio %s: %w", radio.ALSADevice, err)
	}
	if radio.FrequencyHz > 0 {
		if err := Tune(dev, radio.FrequencyHz); err != nil {
			_ = dev.Close()
			return nil, err
		}
	}
	return dev, nil
}

// Tune sets the RF center frequency.
func Tune(dev *device.Device, hz float64) error {
	return dev.SetFrequency(dev.TuningDirection(), 0, device.FrequencyRF, hz)
}

// loadRadio reads the [radio] table from the file named by the inherited
// --config flag.
func loadRadio(c *cobra.Command) (config.RadioConfig, error) {
	path := ""
	if f := c.Flag("config"); f != nil {
		path = f.Value.String()
	}
	return config.LoadRadioConfig(path)
}
