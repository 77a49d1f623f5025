// Package pump moves capture samples from a device to a byte sink and
// keeps running signal statistics.
package pump

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/smazurov/radionode/internal/convert"
	"github.com/smazurov/radionode/internal/device"
	"github.com/smazurov/radionode/internal/metrics"
	"github.com/smazurov/radionode/internal/stream"
	"github.com/smazurov/radionode/internal/transport"
)

const (
	defaultTimeout  = 100 * time.Millisecond
	defaultFFTSize  = 1024
	defaultInterval = time.Second
)

// Config describes one capture run.
type Config struct {
	Device *device.Device
	Format convert.Format
	// Sink receives little-endian interleaved samples.
	Sink io.Writer
	// Limit stops the run after this many pairs. Zero runs until the
	// context ends.
	Limit int64
	// Timeout bounds each read. Defaults to 100ms.
	Timeout time.Duration
	// StatsInterval enables signal statistics at this period.
	StatsInterval time.Duration
	// FFTSize is the analyzer length in pairs. Defaults to 1024.
	FFTSize int
	Logger  *slog.Logger
}

// Result counts what a run did.
type Result struct {
	Frames    int64 `json:"frames"`
	Overflows int   `json:"overflows"`
	Timeouts  int   `json:"timeouts"`
	// Stats is the last computed signal summary, zero without statistics.
	Stats Stats `json:"stats"`
}

// Pump reads capture blocks and writes them to a sink.
type Pump struct {
	cfg      Config
	analyzer *Analyzer
	logger   *slog.Logger
}

// New validates cfg.
func New(cfg Config) (*Pump, error) {
	if cfg.Device == nil {
		return nil, errors.New("pump: nil device")
	}
	if cfg.Sink == nil {
		return nil, errors.New("pump: nil sink")
	}
	if _, err := convert.ParseFormat(string(cfg.Format)); err != nil {
		return nil, fmt.Errorf("pump: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.FFTSize <= 0 {
		cfg.FFTSize = defaultFFTSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pump{cfg: cfg, logger: logger}
	if cfg.StatsInterval > 0 {
		p.analyzer = NewAnalyzer(cfg.FFTSize, cfg.Device.SampleRate(transport.Capture))
	}
	return p, nil
}

// Run sets up a capture stream and copies samples until the limit is
// reached, ctx ends, or the stream fails. Overflows and timeouts are
// counted and skipped. A cancelled context is a clean stop.
func (p *Pump) Run(ctx context.Context) (Result, error) {
	var res Result
	dev := p.cfg.Device

	s, err := dev.SetupStream(transport.Capture, p.cfg.Format, nil)
	if err != nil {
		return res, err
	}
	defer func() {
		if cerr := dev.CloseStream(s); cerr != nil {
			p.logger.Warn("Failed to close capture stream", "error", cerr)
		}
	}()
	if err := dev.ActivateStream(s); err != nil {
		return res, fmt.Errorf("activate capture: %w", err)
	}

	mtu := dev.StreamMTU(s)
	buf, err := convert.NewBuffer(p.cfg.Format, mtu)
	if err != nil {
		return res, err
	}

	p.logger.Info("Capture started", "format", string(p.cfg.Format), "mtu", mtu, "limit", p.cfg.Limit)
	var lastStats time.Time

	for p.cfg.Limit == 0 || res.Frames < p.cfg.Limit {
		if ctx.Err() != nil {
			p.logger.Info("Capture stopped", "frames", res.Frames)
			return res, nil
		}

		want := mtu
		if p.cfg.Limit > 0 {
			want = int(min(int64(mtu), p.cfg.Limit-res.Frames))
		}

		n, err := dev.ReadStream(s, buf, want, p.cfg.Timeout)
		switch {
		case errors.Is(err, stream.ErrTimeout):
			res.Timeouts++
			continue
		case stream.IsTransient(err):
			res.Overflows++
			p.logger.Warn("Capture overflow, samples dropped", "overflows", res.Overflows)
			continue
		case err != nil:
			return res, fmt.Errorf("capture: %w", err)
		}
		if n == 0 {
			continue
		}

		if err := binary.Write(p.cfg.Sink, binary.LittleEndian, head(buf, n)); err != nil {
			return res, fmt.Errorf("write sink: %w", err)
		}
		res.Frames += int64(n)

		if p.analyzer != nil && time.Since(lastStats) >= p.cfg.StatsInterval {
			lastStats = time.Now()
			res.Stats = p.analyzer.Analyze(buf, n)
			metrics.SetSignalStats(res.Stats.PowerDBFS, res.Stats.PeakOffsetHz)
			p.logger.Debug("Signal stats", "power_dbfs", res.Stats.PowerDBFS,
				"peak_dbfs", res.Stats.PeakDBFS, "peak_offset_hz", res.Stats.PeakOffsetHz)
		}
	}

	p.logger.Info("Capture complete", "frames", res.Frames, "overflows", res.Overflows)
	return res, nil
}

// head returns the first pairs interleaved pairs of buf.
func head(buf any, pairs int) any {
	switch b := buf.(type) {
	case []float32:
		return b[:2*pairs]
	case []int16:
		return b[:2*pairs]
	case []int32:
		return b[:2*pairs]
	}
	return buf
}
