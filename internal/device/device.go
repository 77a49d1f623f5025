// Package device binds a radio's identity and tuning controls to at most one
// stream session per direction.
package device

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/radionode/internal/convert"
	"github.com/smazurov/radionode/internal/events"
	"github.com/smazurov/radionode/internal/metrics"
	"github.com/smazurov/radionode/internal/stream"
	"github.com/smazurov/radionode/internal/transport"
	"github.com/smazurov/radionode/internal/tuning"
)

// Setup and control errors.
var (
	ErrInvalidDirection  = errors.New("device: direction not supported")
	ErrInvalidChannel    = errors.New("device: invalid channel selection")
	ErrUnsupportedFormat = errors.New("device: unsupported stream format")
	// ErrStreamBusy rejects a second setup for a direction that already has
	// an open session. Close the first session before setting up again.
	ErrStreamBusy       = errors.New("device: stream already open for direction")
	ErrClosed           = errors.New("device: closed")
	ErrUnknownFrequency = errors.New("device: unknown frequency element")
	ErrFrequencyRange   = errors.New("device: frequency out of range")
	ErrInvalidRate      = errors.New("device: sample rate not supported")
	ErrUnknownAntenna   = errors.New("device: unknown antenna")
)

// FrequencyRF is the only tunable element.
const FrequencyRF = "RF"

// Config wires a Device to its collaborators. Factory, Registry and Actuator
// are required.
type Config struct {
	// ALSADevice is the transport address, e.g. hw:CARD=tujasdr,DEV=0.
	ALSADevice string
	Profile    Profile
	Factory    transport.Factory
	Registry   *convert.Registry
	Actuator   tuning.Actuator
	// EventBus receives stream and tuning events. Optional.
	EventBus *events.Bus
	Logger   *slog.Logger
}

// Device is the radio facade. Setup, close and tuning calls are safe from
// any goroutine; reads and writes go straight to the session, which has a
// single owner per direction.
type Device struct {
	alsaDevice string
	profile    Profile
	factory    transport.Factory
	registry   *convert.Registry
	actuator   tuning.Actuator
	eventBus   *events.Bus
	logger     *slog.Logger

	mu        sync.Mutex
	sessions  map[transport.Direction]*stream.Session
	frequency float64
	closed    bool
}

// New validates cfg and returns an idle device.
func New(cfg Config) (*Device, error) {
	switch {
	case cfg.Factory == nil:
		return nil, errors.New("device: nil transport factory")
	case cfg.Registry == nil:
		return nil, errors.New("device: nil converter registry")
	case cfg.Actuator == nil:
		return nil, errors.New("device: nil tuning actuator")
	}
	if err := cfg.Profile.Validate(); err != nil {
		return nil, fmt.Errorf("device: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Device{
		alsaDevice: cfg.ALSADevice,
		profile:    cfg.Profile,
		factory:    cfg.Factory,
		registry:   cfg.Registry,
		actuator:   cfg.Actuator,
		eventBus:   cfg.EventBus,
		logger:     logger.With("device", cfg.ALSADevice),
		sessions:   make(map[transport.Direction]*stream.Session),
	}, nil
}

// Profile returns the hardware profile.
func (d *Device) Profile() Profile {
	return d.profile
}

// ALSADevice returns the transport address the device was built with.
func (d *Device) ALSADevice() string {
	return d.alsaDevice
}

// SetupStream opens a session for dir delivering (capture) or accepting
// (playback) samples in format. channels may be empty or [0].
//
// Nothing is retained on failure. A direction with an open session is
// rejected with ErrStreamBusy.
func (d *Device) SetupStream(dir transport.Direction, format convert.Format, channels []int) (*stream.Session, error) {
	if !d.profile.Enabled(dir) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDirection, dir)
	}
	if len(channels) > 1 || (len(channels) == 1 && channels[0] != 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChannel, channels)
	}
	f, err := convert.ParseFormat(string(format))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	src, dst := convert.Native, f
	if dir == transport.Playback {
		src, dst = f, convert.Native
	}
	conv, err := d.registry.Lookup(src, dst)
	if err != nil {
		return nil, fmt.Errorf("setup %s stream: %w", dir, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	if _, busy := d.sessions[dir]; busy {
		return nil, fmt.Errorf("%w: %s", ErrStreamBusy, dir)
	}

	h, err := d.factory.Open(transport.Params{
		Device:       d.alsaDevice,
		Direction:    dir,
		SampleRate:   d.profile.SampleRate,
		Periods:      d.profile.Periods,
		PeriodFrames: d.profile.PeriodFrames,
		AvailMin:     d.profile.AvailMin,
	})
	if err != nil {
		return nil, fmt.Errorf("setup %s stream: open transport: %w", dir, err)
	}

	s, err := stream.New(stream.Config{
		Direction:    dir,
		Format:       f,
		Handle:       h,
		Converter:    conv,
		PeriodFrames: d.profile.PeriodFrames,
		Logger:       d.logger,
		Observer:     newObserver(d.eventBus),
	})
	if err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("setup %s stream: %w", dir, err)
	}

	d.sessions[dir] = s
	d.logger.Info("Stream set up", "direction", dir.String(), "format", string(f),
		"rate", d.profile.SampleRate, "period_frames", d.profile.PeriodFrames)
	return s, nil
}

// CloseStream releases the session's transport and frees its direction.
// Closing a session twice, or a nil session, is a no-op.
func (d *Device) CloseStream(s *stream.Session) error {
	if s == nil {
		return nil
	}

	d.mu.Lock()
	if cur, ok := d.sessions[s.Direction()]; ok && cur == s {
		delete(d.sessions, s.Direction())
	}
	d.mu.Unlock()

	if err := s.Close(); err != nil {
		return err
	}
	d.logger.Info("Stream closed", "direction", s.Direction().String())
	return nil
}

// ActivateStream starts or readies the ring.
func (d *Device) ActivateStream(s *stream.Session) error {
	if s == nil {
		return nil
	}
	return s.Activate()
}

// DeactivateStream stops the ring and discards pending frames.
func (d *Device) DeactivateStream(s *stream.Session) error {
	if s == nil {
		return nil
	}
	return s.Deactivate()
}

// ReadStream reads up to one period of capture samples into buf.
func (d *Device) ReadStream(s *stream.Session, buf any, maxSamples int, timeout time.Duration) (int, error) {
	if s == nil {
		return 0, nil
	}
	return s.Read(buf, maxSamples, timeout)
}

// WriteStream writes up to one period of playback samples from buf.
func (d *Device) WriteStream(s *stream.Session, buf any, maxSamples int, timeout time.Duration) (int, error) {
	if s == nil {
		return 0, nil
	}
	return s.Write(buf, maxSamples, timeout)
}

// StreamMTU is the largest transfer in frames: one period.
func (d *Device) StreamMTU(s *stream.Session) int {
	if s == nil {
		return d.profile.PeriodFrames
	}
	return s.MTU()
}

// StreamPhase returns the phase of the open session for dir, or PhaseClosed.
func (d *Device) StreamPhase(dir transport.Direction) stream.Phase {
	d.mu.Lock()
	s := d.sessions[dir]
	d.mu.Unlock()
	if s == nil {
		return stream.PhaseClosed
	}
	return s.Phase()
}

// SetFrequency tunes the named element. Only FrequencyRF exists. The
// actuator is written only when hz differs from the cached value.
func (d *Device) SetFrequency(dir transport.Direction, channel int, name string, hz float64) error {
	if err := d.checkChannel(dir, channel); err != nil {
		return err
	}
	if name != FrequencyRF {
		return fmt.Errorf("%w: %q", ErrUnknownFrequency, name)
	}
	if !d.profile.Frequency.Contains(hz) {
		return fmt.Errorf("%w: %.0f Hz outside %.0f..%.0f", ErrFrequencyRange, hz,
			d.profile.Frequency.Min, d.profile.Frequency.Max)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if hz == d.frequency {
		return nil
	}
	if err := d.actuator.WriteFrequency(int64(hz)); err != nil {
		return fmt.Errorf("set frequency: %w", err)
	}
	d.frequency = hz

	metrics.SetTunerFrequency(hz)
	d.logger.Info("Frequency changed", "frequency_hz", int64(hz))
	if d.eventBus != nil {
		d.eventBus.Publish(events.FrequencyChangedEvent{
			Name:        name,
			FrequencyHz: hz,
			Timestamp:   time.Now().Format(time.RFC3339),
		})
	}
	return nil
}

// Frequency returns the cached center frequency of the named element.
func (d *Device) Frequency(dir transport.Direction, channel int, name string) (float64, error) {
	if err := d.checkChannel(dir, channel); err != nil {
		return 0, err
	}
	if name != FrequencyRF {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFrequency, name)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frequency, nil
}

func (d *Device) checkChannel(dir transport.Direction, channel int) error {
	if !d.profile.Enabled(dir) {
		return fmt.Errorf("%w: %s", ErrInvalidDirection, dir)
	}
	if channel != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, channel)
	}
	return nil
}

// Close closes every open session and the tuning actuator. Further setup
// and tuning calls fail with ErrClosed.
func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	sessions := d.sessions
	d.sessions = make(map[transport.Direction]*stream.Session)
	d.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.actuator.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close actuator: %w", err))
	}
	return errors.Join(errs...)
}
