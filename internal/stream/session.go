// Package stream drives one direction of a transport ring through its
// lifecycle and turns every transfer into a deterministic outcome.
package stream

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/smazurov/radionode/internal/convert"
	"github.com/smazurov/radionode/internal/transport"
)

// Observer receives session events. Implementations must not block.
type Observer interface {
	PhaseChanged(dir transport.Direction, from, to Phase)
	Transferred(dir transport.Direction, frames int)
	TimedOut(dir transport.Direction)
	Recovered(dir transport.Direction, cause error)
	Failed(dir transport.Direction, err error)
}

type nopObserver struct{}

func (nopObserver) PhaseChanged(transport.Direction, Phase, Phase) {}
func (nopObserver) Transferred(transport.Direction, int)           {}
func (nopObserver) TimedOut(transport.Direction)                   {}
func (nopObserver) Recovered(transport.Direction, error)           {}
func (nopObserver) Failed(transport.Direction, error)              {}

// Config binds the parts a session owns.
type Config struct {
	Direction transport.Direction
	// Format is the caller-side sample format.
	Format    convert.Format
	Handle    transport.Handle
	Converter convert.Func
	// PeriodFrames caps every transfer and sizes the wire buffer.
	PeriodFrames int
	Logger       *slog.Logger
	Observer     Observer
}

// Session owns a transport handle, its converter and a one-period wire
// buffer for one direction.
//
// A Session is driven by a single caller. Read, Write, Activate, Deactivate
// and Close must not run concurrently on the same session, and closing a
// session while another goroutine is blocked in Read or Write is not safe.
// Capture and playback sessions are independent of each other.
type Session struct {
	dir          transport.Direction
	format       convert.Format
	handle       transport.Handle
	conv         convert.Func
	buf          []int32
	periodFrames int
	phase        atomic.Int32
	logger       *slog.Logger
	obs          Observer
}

// New wraps a configured handle. The session starts in PhaseConfigured.
func New(cfg Config) (*Session, error) {
	switch {
	case cfg.Handle == nil:
		return nil, errors.New("stream: nil transport handle")
	case cfg.Converter == nil:
		return nil, errors.New("stream: nil converter")
	case cfg.PeriodFrames <= 0:
		return nil, fmt.Errorf("stream: invalid period of %d frames", cfg.PeriodFrames)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	obs := cfg.Observer
	if obs == nil {
		obs = nopObserver{}
	}

	s := &Session{
		dir:          cfg.Direction,
		format:       cfg.Format,
		handle:       cfg.Handle,
		conv:         cfg.Converter,
		buf:          make([]int32, cfg.PeriodFrames*transport.Channels),
		periodFrames: cfg.PeriodFrames,
		logger:       logger.With("direction", cfg.Direction.String()),
		obs:          obs,
	}
	s.setPhase(PhaseConfigured)
	return s, nil
}

// Direction returns the session's direction.
func (s *Session) Direction() transport.Direction {
	return s.dir
}

// Format returns the caller-side sample format.
func (s *Session) Format() convert.Format {
	return s.format
}

// MTU is the largest transfer in frames: one period.
func (s *Session) MTU() int {
	return s.periodFrames
}

// Phase returns the lifecycle phase. Safe to call from any goroutine.
func (s *Session) Phase() Phase {
	return Phase(s.phase.Load())
}

func (s *Session) setPhase(p Phase) {
	if from := Phase(s.phase.Swap(int32(p))); from != p {
		s.obs.PhaseChanged(s.dir, from, p)
	}
}

// Activate readies the ring. Capture is prepared and started unless already
// running. Playback is prepared only and autostarts once its ring fills.
// Driver errors are returned unclassified; the caller may retry.
func (s *Session) Activate() error {
	if s.handle == nil {
		return ErrStreamClosed
	}

	st := s.handle.State()
	if st == transport.StateRunning {
		return nil
	}

	if err := s.handle.Prepare(); err != nil {
		return fmt.Errorf("activate %s: prepare: %w", s.dir, err)
	}
	if s.dir == transport.Capture {
		if err := s.handle.Start(); err != nil {
			return fmt.Errorf("activate %s: start: %w", s.dir, err)
		}
		s.setPhase(PhaseRunning)
		return nil
	}
	s.setPhase(PhaseConfigured)
	return nil
}

// Deactivate drops the ring, discarding frames not yet transferred, and
// prepares it again so the next Activate or lazy transfer starts clean. It
// is a no-op when the ring is already stopped and empty.
func (s *Session) Deactivate() error {
	if s.handle == nil {
		return nil
	}

	switch st := s.handle.State(); {
	case st == transport.StateOpen, st == transport.StateSetup:
		s.setPhase(PhaseConfigured)
		return nil
	case st == transport.StatePrepared && s.dir == transport.Capture:
		s.setPhase(PhaseConfigured)
		return nil
	}

	if err := s.handle.Drop(); err != nil {
		return fmt.Errorf("deactivate %s: drop: %w", s.dir, err)
	}
	if err := s.handle.Prepare(); err != nil {
		return fmt.Errorf("deactivate %s: prepare: %w", s.dir, err)
	}
	s.setPhase(PhaseConfigured)
	return nil
}

// Read transfers at most one period of capture frames into buf, which must
// be the Go slice type for the session format with room for maxSamples pairs.
// It blocks for at most timeout; a negative timeout is treated as zero.
//
// It returns the number of pairs written, or one of ErrTimeout,
// ErrOverflow, or a fatal error (ErrStreamClosed, ErrTransportFault,
// ErrInvalidState). A session without a handle returns 0 and nil.
func (s *Session) Read(buf any, maxSamples int, timeout time.Duration) (int, error) {
	if s.handle == nil {
		return 0, nil
	}
	if s.dir != transport.Capture {
		return 0, ErrDirection
	}
	return s.run(buf, maxSamples, timeout)
}

// Write transfers at most one period of playback frames from buf. It may
// accept fewer frames than offered. Outcomes mirror Read with ErrUnderflow
// in place of ErrOverflow.
func (s *Session) Write(buf any, maxSamples int, timeout time.Duration) (int, error) {
	if s.handle == nil {
		return 0, nil
	}
	if s.dir != transport.Playback {
		return 0, ErrDirection
	}
	return s.run(buf, maxSamples, timeout)
}

func (s *Session) run(buf any, maxSamples int, timeout time.Duration) (int, error) {
	// A negative timeout polls once instead of waiting without bound.
	timeout = max(timeout, 0)
	frames := min(s.periodFrames, maxSamples)
	if frames <= 0 {
		return 0, nil
	}
	if err := convert.CheckBuffer(s.format, buf, frames); err != nil {
		return 0, err
	}

	started := false
	for {
		st := s.handle.State()
		switch next(s.dir, st) {
		case stepStartup:
			if started {
				return 0, s.invalid(st)
			}
			started = true
			if err := s.startup(st); err != nil {
				return 0, s.recover(err)
			}

		case stepWait:
			ready, err := s.handle.Wait(timeout)
			if err != nil {
				return 0, s.recover(err)
			}
			if !ready {
				s.obs.TimedOut(s.dir)
				return 0, ErrTimeout
			}
			return s.transfer(buf, frames)

		case stepTransfer:
			return s.transfer(buf, frames)

		case stepRecover:
			return 0, s.recover(transport.ErrXRun)

		default:
			return 0, s.invalid(st)
		}
	}
}

func (s *Session) startup(st transport.State) error {
	if st != transport.StatePrepared {
		if err := s.handle.Prepare(); err != nil {
			return err
		}
	}
	if s.dir == transport.Capture {
		return s.handle.Start()
	}
	return nil
}

func (s *Session) transfer(buf any, frames int) (int, error) {
	var (
		n   int
		err error
	)
	if s.dir == transport.Capture {
		n, err = s.handle.ReadBlock(s.buf, frames)
		if err == nil && n > 0 {
			s.conv(s.buf, buf, n, 1.0)
		}
	} else {
		s.conv(buf, s.buf, frames, 1.0)
		n, err = s.handle.WriteBlock(s.buf, frames)
	}
	if err != nil {
		return 0, s.recover(err)
	}

	if s.dir == transport.Capture || s.handle.State() == transport.StateRunning {
		s.setPhase(PhaseRunning)
	}
	s.obs.Transferred(s.dir, n)
	return n, nil
}

// recover runs transport recovery for cause and classifies the outcome.
func (s *Session) recover(cause error) error {
	s.setPhase(PhaseRecovering)

	rerr := s.handle.Recover(cause)
	if rerr == nil {
		s.setPhase(PhaseConfigured)
		s.obs.Recovered(s.dir, cause)
		s.logger.Warn("Stream recovered", "cause", cause)
		if s.dir == transport.Capture {
			return ErrOverflow
		}
		return ErrUnderflow
	}

	var err error
	if errors.Is(rerr, transport.ErrHandleClosed) {
		err = fmt.Errorf("%w: %w", ErrStreamClosed, rerr)
		s.logger.Info("Stream closed underneath transfer", "cause", cause)
	} else {
		err = fmt.Errorf("%w: %w", ErrTransportFault, rerr)
		s.logger.Error("Stream recovery failed", "cause", cause, "error", rerr)
	}
	s.obs.Failed(s.dir, err)
	return err
}

func (s *Session) invalid(st transport.State) error {
	err := fmt.Errorf("%w: %s", ErrInvalidState, st)
	s.logger.Error("Unexpected transport state", "state", st.String())
	s.obs.Failed(s.dir, err)
	return err
}

// Close releases the transport handle and converter. Closing twice is a no-op.
func (s *Session) Close() error {
	if s.handle == nil {
		return nil
	}
	err := s.handle.Close()
	s.handle = nil
	s.conv = nil
	s.setPhase(PhaseClosed)
	if err != nil {
		return fmt.Errorf("close %s: %w", s.dir, err)
	}
	return nil
}
