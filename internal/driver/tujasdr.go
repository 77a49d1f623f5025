package driver

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/smazurov/radionode/internal/convert"
	"github.com/smazurov/radionode/internal/device"
	"github.com/smazurov/radionode/internal/events"
	"github.com/smazurov/radionode/internal/transport"
	"github.com/smazurov/radionode/internal/tuning"
)

// TujaSDR driver identity.
const (
	TujaSDRName       = "tujasdr"
	TujaSDRCardID     = "tujasdr"
	TujaSDRDevice     = "TujaSDR"
	TujaSDRALSADevice = "hw:CARD=tujasdr,DEV=0"
)

// Card is a capture-capable ALSA PCM found by a probe.
type Card struct {
	ID     string
	Number int
	Device int
}

// TujaSDROptions configures the TujaSDR entry. Zero fields get the
// production defaults.
type TujaSDROptions struct {
	Profile  *device.Profile
	Factory  transport.Factory
	Registry *convert.Registry
	// ActuatorPath is the tuning control file, tuning.DefaultPath when empty.
	ActuatorPath string
	// NewActuator overrides actuator construction.
	NewActuator func(path string) tuning.Actuator
	EventBus    *events.Bus
	Logger      *slog.Logger
	// Probe lists ALSA capture PCMs. Defaults to the system probe.
	Probe func() ([]Card, error)
}

// TujaSDR returns the registry entry for the TujaSDR receiver.
func TujaSDR(opts TujaSDROptions) Entry {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Probe == nil {
		opts.Probe = probeCards
	}
	return Entry{
		Name: TujaSDRName,
		Find: func(hint Args) ([]Args, error) { return findTujaSDR(opts, hint) },
		Make: func(args Args) (*device.Device, error) { return makeTujaSDR(opts, args) },
	}
}

func findTujaSDR(opts TujaSDROptions, hint Args) ([]Args, error) {
	found := []Args{{KeyDevice: TujaSDRDevice, KeyALSADevice: TujaSDRALSADevice}}

	cards, err := opts.Probe()
	if err != nil {
		opts.Logger.Debug("ALSA probe failed, returning default descriptor", "error", err)
	}
	for _, c := range cards {
		if c.ID != TujaSDRCardID {
			continue
		}
		name := fmt.Sprintf("hw:CARD=%s,DEV=%d", c.ID, c.Device)
		if slices.ContainsFunc(found, func(a Args) bool { return a[KeyALSADevice] == name }) {
			continue
		}
		found = append(found, Args{KeyDevice: TujaSDRDevice, KeyALSADevice: name})
	}

	if want := hint[KeyALSADevice]; want != "" {
		found = slices.DeleteFunc(found, func(a Args) bool { return a[KeyALSADevice] != want })
	}
	return found, nil
}

func makeTujaSDR(opts TujaSDROptions, args Args) (*device.Device, error) {
	alsaDevice := args[KeyALSADevice]
	if alsaDevice == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingArg, KeyALSADevice)
	}

	profile := device.TujaSDR()
	if opts.Profile != nil {
		profile = *opts.Profile
	}
	factory := opts.Factory
	if factory == nil {
		factory = transport.NewALSAFactory(opts.Logger)
	}
	registry := opts.Registry
	if registry == nil {
		registry = convert.NewDefaultRegistry()
	}

	var actuator tuning.Actuator
	if opts.NewActuator != nil {
		actuator = opts.NewActuator(opts.ActuatorPath)
	} else {
		actuator = tuning.New(opts.ActuatorPath, opts.Logger)
	}

	dev, err := device.New(device.Config{
		ALSADevice: alsaDevice,
		Profile:    profile,
		Factory:    factory,
		Registry:   registry,
		Actuator:   actuator,
		EventBus:   opts.EventBus,
		Logger:     opts.Logger,
	})
	if err != nil {
		_ = actuator.Close()
		return nil, err
	}
	opts.Logger.Info("Device created", "driver", TujaSDRName, "alsa_device", alsaDevice)
	return dev, nil
}
