//go:build linux

package alsa

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrClosed is returned by every PCM operation after Close.
var ErrClosed = errors.New("alsa: pcm closed")

// resumeRetries bounds how long Recover waits on a suspended stream.
const resumeRetries = 10

// Config describes the negotiated PCM parameters. Interleaved access is implied.
type Config struct {
	Channels   uint32
	Rate       uint32
	Format     int
	PeriodSize uint32
	Periods    uint32
	// AvailMin is the wakeup watermark in frames. Zero means one period.
	AvailMin uint32
	// StartThreshold is the number of queued frames that autostarts the
	// stream. Zero means the full ring.
	StartThreshold uint32
}

// FrameBytes returns the byte size of one interleaved frame.
func (c Config) FrameBytes() int {
	return formatBytes(c.Format) * int(c.Channels)
}

// PCM is an open, configured PCM substream.
type PCM struct {
	file   *os.File
	stream int
	config Config
	status []byte
	state  atomic.Int32
	xruns  atomic.Int64
}

// OpenPCM opens the named device for the given stream direction and applies
// cfg exactly. The returned PCM is in the SETUP state.
func OpenPCM(name string, stream int, cfg Config) (*PCM, error) {
	card, device, err := ParseDeviceName(name)
	if err != nil {
		return nil, err
	}
	return OpenPCMDevice(card, device, stream, cfg)
}

// OpenPCMDevice is OpenPCM for an already resolved card and device number.
func OpenPCMDevice(card, device, stream int, cfg Config) (*PCM, error) {
	path := pcmPath(card, device, stream)

	// Open non-blocking so a busy device fails fast, then switch to blocking I/O.
	file, err := os.OpenFile(path, os.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open PCM device %s: %w", path, err)
	}

	flags, err := unix.FcntlInt(file.Fd(), unix.F_GETFL, 0)
	if err == nil {
		_, err = unix.FcntlInt(file.Fd(), unix.F_SETFL, flags&^unix.O_NONBLOCK)
	}
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to set blocking mode on %s: %w", path, err)
	}

	var info sndPCMInfo
	if err := ioctl(file.Fd(), sndrvPCMIoctlInfo, unsafe.Pointer(&info)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("ioctl INFO failed on %s: %w", path, err)
	}

	p := &PCM{file: file, stream: stream}
	p.state.Store(int32(StateOpen))

	if err := p.configure(cfg); err != nil {
		_ = p.Close()
		return nil, err
	}

	p.mapStatus()

	tstamp := int32(sndrvPCMTstampTypeMonotonic)
	if err := ioctl(file.Fd(), sndrvPCMIoctlTTStamp, unsafe.Pointer(&tstamp)); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("ioctl TTSTAMP failed: %w", err)
	}

	return p, nil
}

func (p *PCM) configure(cfg Config) error {
	if cfg.Channels == 0 || cfg.Rate == 0 || cfg.PeriodSize == 0 || cfg.Periods == 0 {
		return fmt.Errorf("invalid PCM configuration (channels=%d rate=%d period=%d periods=%d)",
			cfg.Channels, cfg.Rate, cfg.PeriodSize, cfg.Periods)
	}

	hw := sndPCMHwParams{}
	hw.init()
	hw.setMask(sndrvPCMHwParamAccess, sndrvPCMAccessRwInterleaved)
	hw.setMask(sndrvPCMHwParamFormat, uint32(cfg.Format))
	hw.setMask(sndrvPCMHwParamSubformat, 0)
	hw.setInteger(sndrvPCMHwParamChannels, cfg.Channels)
	hw.setInteger(sndrvPCMHwParamRate, cfg.Rate)
	hw.setInteger(sndrvPCMHwParamPeriodSize, cfg.PeriodSize)
	hw.setInteger(sndrvPCMHwParamPeriods, cfg.Periods)

	if err := ioctl(p.file.Fd(), sndrvPCMIoctlHwParams, unsafe.Pointer(&hw)); err != nil {
		return fmt.Errorf("ioctl HW_PARAMS failed (rate=%d period=%d periods=%d): %w",
			cfg.Rate, cfg.PeriodSize, cfg.Periods, err)
	}

	// An exact request can still be refined to a range on some drivers.
	if minRate, maxRate := hw.getInterval(sndrvPCMHwParamRate); minRate != cfg.Rate || maxRate != cfg.Rate {
		return fmt.Errorf("driver refused exact rate %d (got %d-%d)", cfg.Rate, minRate, maxRate)
	}

	bufferSize := cfg.PeriodSize * cfg.Periods
	if cfg.AvailMin == 0 {
		cfg.AvailMin = cfg.PeriodSize
	}
	if cfg.StartThreshold == 0 {
		cfg.StartThreshold = bufferSize
	}

	sw := sndPCMSwParams{
		tstampMode:     sndrvPCMTstampEnable,
		tstampType:     sndrvPCMTstampTypeMonotonic,
		periodStep:     1,
		availMin:       sndUframes(cfg.AvailMin),
		startThreshold: sndUframes(cfg.StartThreshold),
		stopThreshold:  sndUframes(bufferSize),
	}
	if err := ioctl(p.file.Fd(), sndrvPCMIoctlSwParams, unsafe.Pointer(&sw)); err != nil {
		return fmt.Errorf("ioctl SW_PARAMS failed: %w", err)
	}

	p.config = cfg
	p.state.Store(int32(StateSetup))
	return nil
}

// mapStatus maps the kernel status page. When the driver refuses, State falls
// back to the state tracked by this handle.
func (p *PCM) mapStatus() {
	buf, err := unix.Mmap(int(p.file.Fd()), sndrvPCMMmapOffsetStatus, os.Getpagesize(), unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		p.status = buf
	}
}

// Config returns the negotiated configuration.
func (p *PCM) Config() Config {
	return p.config
}

// Stream returns StreamCapture or StreamPlayback.
func (p *PCM) Stream() int {
	return p.stream
}

// Xruns returns the number of overruns or underruns recovered so far.
func (p *PCM) Xruns() int64 {
	return p.xruns.Load()
}

// State returns the kernel's view of the stream state.
func (p *PCM) State() PCMState {
	if p.file == nil {
		return StateDisconnected
	}
	if p.status != nil {
		return PCMState(atomic.LoadInt32((*int32)(unsafe.Pointer(&p.status[0]))))
	}
	return PCMState(p.state.Load())
}

func (p *PCM) do(req uintptr, name string, next PCMState) error {
	if p.file == nil {
		return ErrClosed
	}
	if err := ioctl(p.file.Fd(), req, nil); err != nil {
		return fmt.Errorf("ioctl %s failed: %w", name, err)
	}
	p.state.Store(int32(next))
	return nil
}

// Prepare moves the stream to PREPARED.
func (p *PCM) Prepare() error {
	return p.do(sndrvPCMIoctlPrepare, "PREPARE", StatePrepared)
}

// Start starts a prepared stream.
func (p *PCM) Start() error {
	return p.do(sndrvPCMIoctlStart, "START", StateRunning)
}

// Drop stops the stream immediately, discarding pending frames.
func (p *PCM) Drop() error {
	return p.do(sndrvPCMIoctlDrop, "DROP", StateSetup)
}

// Reset discards queued frames without changing the state.
func (p *PCM) Reset() error {
	return p.do(sndrvPCMIoctlReset, "RESET", p.State())
}

// Resume resumes a suspended stream.
func (p *PCM) Resume() error {
	return p.do(sndrvPCMIoctlResume, "RESUME", StatePrepared)
}

// Wait blocks until the ring has avail_min frames ready or timeout elapses.
// It reports false with a nil error on timeout. A negative timeout waits forever.
func (p *PCM) Wait(timeout time.Duration) (bool, error) {
	if p.file == nil {
		return false, ErrClosed
	}

	switch p.State() {
	case StateXRun:
		return false, unix.EPIPE
	case StateSuspended:
		return false, unix.ESTRPIPE
	case StateDisconnected:
		return false, unix.ENODEV
	}

	events := int16(unix.POLLOUT)
	if p.stream == StreamCapture {
		events = unix.POLLIN
	}
	pfd := []unix.PollFd{{
		Fd:     int32(p.file.Fd()),
		Events: events | unix.POLLERR | unix.POLLNVAL | unix.POLLHUP,
	}}

	timeoutMs := -1
	if timeout >= 0 {
		timeoutMs = int(timeout / time.Millisecond)
	}

	for {
		_, err := unix.Poll(pfd, timeoutMs)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.EINTR) {
			return false, fmt.Errorf("poll failed: %w", err)
		}
	}

	revents := pfd[0].Revents
	if revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		switch s := p.State(); s {
		case StateXRun:
			return false, unix.EPIPE
		case StateSuspended:
			return false, unix.ESTRPIPE
		case StateDisconnected:
			return false, unix.ENODEV
		default:
			return false, fmt.Errorf("poll error in state %s: %w", s, unix.EBADFD)
		}
	}

	return revents&(unix.POLLIN|unix.POLLOUT) != 0, nil
}

// ReadI reads up to frames interleaved frames into buf. buf must hold at
// least frames*Channels samples.
func (p *PCM) ReadI(buf []int32, frames int) (int, error) {
	return p.transfer(sndrvPCMIoctlReadI, buf, frames)
}

// WriteI writes up to frames interleaved frames from buf.
func (p *PCM) WriteI(buf []int32, frames int) (int, error) {
	n, err := p.transfer(sndrvPCMIoctlWriteI, buf, frames)
	if err == nil && p.status == nil && p.state.Load() == int32(StatePrepared) {
		if n >= int(p.config.StartThreshold) {
			p.state.Store(int32(StateRunning))
		}
	}
	return n, err
}

func (p *PCM) transfer(req uintptr, buf []int32, frames int) (int, error) {
	if p.file == nil {
		return 0, ErrClosed
	}
	if frames <= 0 {
		return 0, nil
	}
	if need := frames * int(p.config.Channels); len(buf) < need {
		return 0, fmt.Errorf("buffer holds %d samples, need %d", len(buf), need)
	}

	x := sndXferi{
		buf:    uintptr(unsafe.Pointer(&buf[0])),
		frames: sndUframes(frames),
	}
	err := ioctl(p.file.Fd(), req, unsafe.Pointer(&x))
	runtime.KeepAlive(buf)
	if err != nil {
		if errors.Is(err, unix.EPIPE) {
			p.state.Store(int32(StateXRun))
		}
		return 0, err
	}
	return int(x.result), nil
}

// Recover applies the standard xrun and suspend recovery for an error
// returned by a transfer or Wait. EPIPE prepares the stream again. ESTRPIPE
// resumes, falling back to prepare when the driver cannot resume. Any other
// error, EBADFD included, is returned unchanged.
func (p *PCM) Recover(err error) error {
	if p.file == nil {
		return ErrClosed
	}

	switch {
	case errors.Is(err, unix.EINTR):
		return nil
	case errors.Is(err, unix.EPIPE):
		p.xruns.Add(1)
		if perr := p.Prepare(); perr != nil {
			return fmt.Errorf("cannot recover from xrun: %w", perr)
		}
		return nil
	case errors.Is(err, unix.ESTRPIPE):
		var rerr error
		for range resumeRetries {
			rerr = p.Resume()
			if !errors.Is(rerr, unix.EAGAIN) {
				break
			}
			time.Sleep(100 * time.Millisecond)
		}
		if rerr != nil {
			if perr := p.Prepare(); perr != nil {
				return fmt.Errorf("cannot recover from suspend: %w", perr)
			}
		}
		return nil
	default:
		return err
	}
}

// Close releases the substream. Further calls return ErrClosed.
func (p *PCM) Close() error {
	if p.file == nil {
		return nil
	}
	if p.status != nil {
		_ = unix.Munmap(p.status)
		p.status = nil
	}
	err := p.file.Close()
	p.file = nil
	p.state.Store(int32(StateDisconnected))
	return err
}

func formatBytes(format int) int {
	switch format {
	case FormatS8, FormatU8, FormatMuLaw, FormatALaw:
		return 1
	case FormatS16LE, FormatS16BE, FormatU16LE, FormatU16BE:
		return 2
	case FormatFloat64LE, FormatFloat64BE:
		return 8
	default:
		return 4
	}
}
