package transport

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// Signal produces the I/Q sample for an absolute capture frame index.
type Signal func(frame int64) (i, q int32)

// Ramp is the default capture signal: I counts up by 256 per frame, Q mirrors it.
func Ramp(frame int64) (int32, int32) {
	v := int32(frame << 8)
	return v, -v
}

// Tone returns a complex exponential at freq Hz with the given amplitude as a
// fraction of full scale.
func Tone(freq float64, sampleRate int, amplitude float64) Signal {
	step := 2 * math.Pi * freq / float64(sampleRate)
	peak := amplitude * math.MaxInt32
	return func(frame int64) (int32, int32) {
		phase := step * float64(frame)
		return int32(peak * math.Cos(phase)), int32(peak * math.Sin(phase))
	}
}

// SimOptions configures simulated handles.
type SimOptions struct {
	// Realtime paces the ring at the sample rate. When false, frames move
	// only through Feed (capture) and Consume (playback), and Wait never sleeps.
	Realtime bool
	// Signal generates capture samples. Defaults to Ramp.
	Signal Signal
	// Preroll is the number of capture frames already available when a
	// manual (non-realtime) capture ring starts.
	Preroll int
}

// SimFactory opens in-memory handles that behave like an ALSA ring.
type SimFactory struct {
	opts SimOptions

	mu       sync.Mutex
	handles  []*SimHandle
	openErr  error
	openRate int
}

// NewSimFactory creates a simulated transport factory.
func NewSimFactory(opts SimOptions) *SimFactory {
	if opts.Signal == nil {
		opts.Signal = Ramp
	}
	return &SimFactory{opts: opts}
}

// FailOpen makes every following Open fail with err. A nil err clears it.
func (f *SimFactory) FailOpen(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openErr = err
}

// RequireRate makes Open reject any rate other than rate, like hardware
// with a single fixed clock. Zero accepts any rate.
func (f *SimFactory) RequireRate(rate int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openRate = rate
}

// Open validates p and returns a handle in the setup state.
func (f *SimFactory) Open(p Params) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.openErr != nil {
		return nil, f.openErr
	}
	if p.SampleRate <= 0 || p.Periods <= 0 || p.PeriodFrames <= 0 {
		return nil, fmt.Errorf("sim: invalid params rate=%d periods=%d period_frames=%d",
			p.SampleRate, p.Periods, p.PeriodFrames)
	}
	if f.openRate != 0 && p.SampleRate != f.openRate {
		return nil, fmt.Errorf("sim: rate %d not supported", p.SampleRate)
	}

	h := &SimHandle{
		params: p,
		opts:   f.opts,
		state:  StateSetup,
	}
	f.handles = append(f.handles, h)
	return h, nil
}

// Handles returns every handle opened so far, in open order.
func (f *SimFactory) Handles() []*SimHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*SimHandle(nil), f.handles...)
}

// Last returns the most recently opened handle for dir, or nil.
func (f *SimFactory) Last(dir Direction) *SimHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.handles) - 1; i >= 0; i-- {
		if f.handles[i].params.Direction == dir {
			return f.handles[i]
		}
	}
	return nil
}

// SimCounts records the control operations a handle received.
type SimCounts struct {
	Prepares int
	Starts   int
	Drops    int
	Recovers int
	Waits    int
}

// SimHandle is a simulated ring. Capture frames become available over time
// (or via Feed); playback frames are queued until consumed. Overfilling a
// capture ring or draining a playback ring dry raises an xrun.
type SimHandle struct {
	params Params
	opts   SimOptions

	mu         sync.Mutex
	state      State
	closed     bool
	fill       int // capture: frames ready; playback: frames queued
	next       int64
	written    []int32
	lastTick   time.Time
	pendingErr error
	recoverErr error
	counts     SimCounts
}

// Params returns the parameters the handle was opened with.
func (h *SimHandle) Params() Params {
	return h.params
}

func (h *SimHandle) bufferFrames() int {
	return h.params.Periods * h.params.PeriodFrames
}

func (h *SimHandle) availMin() int {
	if !h.opts.Realtime {
		return 1
	}
	if h.params.AvailMin > 0 {
		return min(h.params.AvailMin, h.params.PeriodFrames)
	}
	return h.params.PeriodFrames
}

// advance moves the simulated hardware pointer in realtime mode.
func (h *SimHandle) advance() {
	if !h.opts.Realtime || h.state != StateRunning {
		return
	}
	rate := h.params.SampleRate
	elapsed := int(time.Since(h.lastTick).Seconds() * float64(rate))
	if elapsed <= 0 {
		return
	}
	h.lastTick = h.lastTick.Add(time.Duration(elapsed) * time.Second / time.Duration(rate))
	h.move(elapsed)
}

func (h *SimHandle) move(frames int) {
	if h.params.Direction == Capture {
		h.fill += frames
		if h.fill >= h.bufferFrames() {
			h.fill = 0
			h.state = StateXRun
		}
		return
	}
	h.fill -= frames
	if h.fill <= 0 {
		h.fill = 0
		h.state = StateXRun
	}
}

func (h *SimHandle) ready() bool {
	if h.params.Direction == Capture {
		return h.state == StateRunning && h.fill >= h.availMin()
	}
	return (h.state == StateRunning || h.state == StatePrepared) &&
		h.bufferFrames()-h.fill >= h.availMin()
}

// State returns the simulated transfer state.
func (h *SimHandle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return StateDisconnected
	}
	h.advance()
	return h.state
}

func (h *SimHandle) Prepare() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHandleClosed
	}
	h.counts.Prepares++
	h.state = StatePrepared
	h.fill = 0
	return nil
}

func (h *SimHandle) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHandleClosed
	}
	h.counts.Starts++
	if h.state != StatePrepared {
		return fmt.Errorf("%w: start in state %s", ErrBadState, h.state)
	}
	h.state = StateRunning
	h.lastTick = time.Now()
	if !h.opts.Realtime && h.params.Direction == Capture && h.opts.Preroll > 0 {
		h.move(h.opts.Preroll)
	}
	return nil
}

func (h *SimHandle) Drop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHandleClosed
	}
	h.counts.Drops++
	h.state = StateSetup
	h.fill = 0
	return nil
}

func (h *SimHandle) Wait(timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		h.mu.Lock()
		if h.closed {
			h.mu.Unlock()
			return false, ErrHandleClosed
		}
		h.counts.Waits++
		h.advance()
		if err := stateErr(h.state); err != nil {
			h.mu.Unlock()
			return false, err
		}
		if h.ready() {
			h.mu.Unlock()
			return true, nil
		}
		realtime := h.opts.Realtime && h.state == StateRunning
		rate := h.params.SampleRate
		need := h.availMin() - h.fill
		if h.params.Direction == Playback {
			need = h.fill + h.availMin() - h.bufferFrames()
		}
		h.mu.Unlock()

		remaining := time.Until(deadline)
		if !realtime || remaining <= 0 {
			return false, nil
		}
		pause := time.Duration(max(need, 1)) * time.Second / time.Duration(rate)
		time.Sleep(min(pause, remaining))
	}
}

func stateErr(s State) error {
	switch s {
	case StateXRun:
		return ErrXRun
	case StateSuspended:
		return ErrSuspended
	case StateDisconnected:
		return ErrDisconnected
	}
	return nil
}

// takeErr returns and clears an injected transfer failure.
func (h *SimHandle) takeErr() error {
	err := h.pendingErr
	h.pendingErr = nil
	if errors.Is(err, ErrXRun) {
		h.state = StateXRun
	}
	return err
}

func (h *SimHandle) ReadBlock(buf []int32, frames int) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, ErrHandleClosed
	}
	if err := h.takeErr(); err != nil {
		return 0, err
	}
	h.advance()
	if err := stateErr(h.state); err != nil {
		return 0, err
	}
	if h.state != StateRunning {
		return 0, fmt.Errorf("%w: read in state %s", ErrBadState, h.state)
	}
	if len(buf) < frames*Channels {
		return 0, fmt.Errorf("sim: buffer holds %d samples, need %d", len(buf), frames*Channels)
	}

	n := min(frames, h.fill)
	for k := range n {
		buf[2*k], buf[2*k+1] = h.opts.Signal(h.next + int64(k))
	}
	h.fill -= n
	h.next += int64(n)
	return n, nil
}

func (h *SimHandle) WriteBlock(buf []int32, frames int) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, ErrHandleClosed
	}
	if err := h.takeErr(); err != nil {
		return 0, err
	}
	h.advance()
	if err := stateErr(h.state); err != nil {
		return 0, err
	}
	if h.state != StateRunning && h.state != StatePrepared {
		return 0, fmt.Errorf("%w: write in state %s", ErrBadState, h.state)
	}
	if len(buf) < frames*Channels {
		return 0, fmt.Errorf("sim: buffer holds %d samples, need %d", len(buf), frames*Channels)
	}

	n := min(frames, h.bufferFrames()-h.fill)
	h.written = append(h.written, buf[:n*Channels]...)
	h.fill += n
	if h.state == StatePrepared && h.fill >= h.bufferFrames() {
		h.state = StateRunning
		h.lastTick = time.Now()
	}
	return n, nil
}

func (h *SimHandle) Recover(err error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts.Recovers++
	if h.closed {
		return ErrHandleClosed
	}
	if h.recoverErr != nil {
		rerr := h.recoverErr
		h.recoverErr = nil
		return rerr
	}
	switch {
	case errors.Is(err, ErrXRun), errors.Is(err, ErrSuspended):
		h.state = StatePrepared
		h.fill = 0
		return nil
	default:
		return err
	}
}

func (h *SimHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// Closed reports whether Close was called.
func (h *SimHandle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Feed makes frames of capture data available. Overfilling the ring xruns.
func (h *SimHandle) Feed(frames int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateRunning {
		h.move(frames)
	}
}

// Consume drains frames from the playback queue as the hardware would.
// Draining past the queued frames xruns.
func (h *SimHandle) Consume(frames int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateRunning {
		h.move(frames)
	}
}

// Queued returns frames ready (capture) or frames queued (playback).
func (h *SimHandle) Queued() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fill
}

// Written returns a copy of every sample accepted by WriteBlock.
func (h *SimHandle) Written() []int32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int32(nil), h.written...)
}

// Counts returns the control operation counters.
func (h *SimHandle) Counts() SimCounts {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts
}

// SetState forces the transfer state, as an external event would.
func (h *SimHandle) SetState(s State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = s
}

// InjectXRun raises an xrun between calls.
func (h *SimHandle) InjectXRun() {
	h.SetState(StateXRun)
}

// FailNextTransfer makes the next ReadBlock or WriteBlock fail with err.
// Injecting ErrXRun also moves the ring to the xrun state.
func (h *SimHandle) FailNextTransfer(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pendingErr = err
}

// FailNextRecover makes the next Recover fail with err.
func (h *SimHandle) FailNextRecover(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recoverErr = err
}
