package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smazurov/radionode/internal/convert"
	"github.com/smazurov/radionode/internal/events"
	"github.com/smazurov/radionode/internal/logging"
	"github.com/smazurov/radionode/internal/pump"
	"github.com/spf13/cobra"
)

// CreateCaptureCmd creates the capture command.
func CreateCaptureCmd() *cobra.Command {
	var (
		count     int64
		format    string
		output    string
		stats     bool
		interval  time.Duration
		fftSize   int
		frequency float64
		simulate  bool
	)

	c := &cobra.Command{
		Use:   "capture",
		Short: "Capture samples to a file",
		Long: "Captures interleaved I/Q samples from the radio and writes them little-endian to a file or stdout. " +
			"Runs until -n pairs are captured or the process is interrupted.",
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			logger := logging.GetLogger("capture")

			f, err := convert.ParseFormat(format)
			if err != nil {
				return err
			}
			radio, err := loadRadio(c)
			if err != nil {
				return err
			}
			if c.Flags().Changed("frequency") {
				radio.FrequencyHz = frequency
			}
			radio.Simulate = radio.Simulate || simulate

			dev, err := OpenRadio(radio, events.New(), logger)
			if err != nil {
				return err
			}
			defer func() { _ = dev.Close() }()

			sink, closeSink, err := openSink(output)
			if err != nil {
				return err
			}
			buffered := bufio.NewWriterSize(sink, 1<<16)

			cfg := pump.Config{
				Device:  dev,
				Format:  f,
				Sink:    buffered,
				Limit:   count,
				FFTSize: fftSize,
				Logger:  logger,
			}
			if stats {
				cfg.StatsInterval = interval
			}
			p, err := pump.New(cfg)
			if err != nil {
				_ = closeSink()
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, runErr := p.Run(ctx)
			if err := buffered.Flush(); err != nil && runErr == nil {
				runErr = err
			}
			if err := closeSink(); err != nil && runErr == nil {
				runErr = err
			}

			logger.Info("Capture finished", "frames", res.Frames, "overflows", res.Overflows, "timeouts", res.Timeouts)
			if stats {
				enc := json.NewEncoder(c.ErrOrStderr())
				if err := enc.Encode(res); err != nil && runErr == nil {
					runErr = err
				}
			}
			return runErr
		},
	}

	c.Flags().Int64VarP(&count, "count", "n", 0, "Sample pairs to capture (0 = until interrupted)")
	c.Flags().StringVar(&format, "format", string(convert.CF32), "Sample format (CF32, CS16, CS32)")
	c.Flags().StringVarP(&output, "output", "o", "-", "Output file, - for stdout")
	c.Flags().BoolVar(&stats, "stats", false, "Compute signal statistics and print a JSON summary to stderr")
	c.Flags().DurationVar(&interval, "stats-interval", time.Second, "Statistics period")
	c.Flags().IntVar(&fftSize, "fft-size", 1024, "Spectrum analyzer length in pairs")
	c.Flags().Float64Var(&frequency, "frequency", 0, "Tune to this center frequency in Hz before capturing")
	c.Flags().BoolVar(&simulate, "simulate", false, "Capture from a simulated receiver")
	return c
}

// openSink opens path for writing. "-" is stdout, which is never closed.
func openSink(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open output: %w", err)
	}
	return f, f.Close, nil
}
