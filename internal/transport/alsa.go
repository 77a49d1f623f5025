//go:build linux

package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sys/unix"

	"github.com/smazurov/radionode/pkg/linuxav/alsa"
)

// ALSAFactory opens S32_LE interleaved stereo PCM substreams.
type ALSAFactory struct {
	logger *slog.Logger
}

// NewALSAFactory creates a factory backed by the kernel PCM interface.
func NewALSAFactory(logger *slog.Logger) *ALSAFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &ALSAFactory{logger: logger.With("component", "alsa")}
}

// Open negotiates p exactly. A rate, period size or period count the driver
// cannot provide fails the open.
func (f *ALSAFactory) Open(p Params) (Handle, error) {
	stream := alsa.StreamCapture
	if p.Direction == Playback {
		stream = alsa.StreamPlayback
	}

	availMin := p.AvailMin
	if availMin == 0 {
		availMin = DefaultAvailMin
	}

	pcm, err := alsa.OpenPCM(p.Device, stream, alsa.Config{
		Channels:       Channels,
		Rate:           uint32(p.SampleRate),
		Format:         alsa.FormatS32LE,
		PeriodSize:     uint32(p.PeriodFrames),
		Periods:        uint32(p.Periods),
		AvailMin:       uint32(availMin),
		StartThreshold: uint32(p.Periods * p.PeriodFrames),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s %s: %w", p.Direction, p.Device, err)
	}

	f.logger.Debug("PCM opened",
		"device", p.Device,
		"direction", p.Direction.String(),
		"rate", p.SampleRate,
		"period_frames", p.PeriodFrames,
		"periods", p.Periods)

	return &alsaHandle{pcm: pcm}, nil
}

// pcmDevice is the part of *alsa.PCM a handle drives.
type pcmDevice interface {
	State() alsa.PCMState
	Prepare() error
	Start() error
	Drop() error
	Wait(timeout time.Duration) (bool, error)
	ReadI(buf []int32, frames int) (int, error)
	WriteI(buf []int32, frames int) (int, error)
	Recover(err error) error
	Close() error
}

type alsaHandle struct {
	pcm pcmDevice
}

func (h *alsaHandle) State() State {
	return State(h.pcm.State())
}

func (h *alsaHandle) Prepare() error { return mapErr(h.pcm.Prepare()) }
func (h *alsaHandle) Start() error   { return mapErr(h.pcm.Start()) }
func (h *alsaHandle) Drop() error    { return mapErr(h.pcm.Drop()) }

func (h *alsaHandle) Wait(timeout time.Duration) (bool, error) {
	ready, err := h.pcm.Wait(timeout)
	return ready, mapErr(err)
}

func (h *alsaHandle) ReadBlock(buf []int32, frames int) (int, error) {
	n, err := h.pcm.ReadI(buf, frames)
	return n, mapErr(err)
}

func (h *alsaHandle) WriteBlock(buf []int32, frames int) (int, error) {
	n, err := h.pcm.WriteI(buf, frames)
	return n, mapErr(err)
}

// Recover runs xrun/suspend recovery on the errno behind err. EBADFD means
// the substream left the transferable states behind our back (dropped or
// closed concurrently) and is reported as ErrHandleClosed.
func (h *alsaHandle) Recover(err error) error {
	return mapErr(h.pcm.Recover(recoveryCause(err)))
}

// recoveryCause gives the bare ErrXRun and ErrSuspended sentinels, raised
// when the status page shows the state before any transfer failed, the
// errno PCM.Recover dispatches on.
func recoveryCause(err error) error {
	switch {
	case errors.Is(err, unix.EPIPE), errors.Is(err, unix.ESTRPIPE):
		return err
	case errors.Is(err, ErrXRun):
		return fmt.Errorf("%w: %w", err, unix.EPIPE)
	case errors.Is(err, ErrSuspended):
		return fmt.Errorf("%w: %w", err, unix.ESTRPIPE)
	default:
		return err
	}
}

func (h *alsaHandle) Close() error {
	return h.pcm.Close()
}

// mapErr tags kernel errnos with the transport sentinel errors while
// keeping the errno in the chain for Recover.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, alsa.ErrClosed), errors.Is(err, unix.EBADFD), errors.Is(err, unix.EBADF):
		return fmt.Errorf("%w: %w", ErrHandleClosed, err)
	case errors.Is(err, unix.EPIPE):
		return fmt.Errorf("%w: %w", ErrXRun, err)
	case errors.Is(err, unix.ESTRPIPE):
		return fmt.Errorf("%w: %w", ErrSuspended, err)
	case errors.Is(err, unix.ENODEV):
		return fmt.Errorf("%w: %w", ErrDisconnected, err)
	default:
		return err
	}
}
