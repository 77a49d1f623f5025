// Package collectors polls kernel status files into Prometheus metrics.
package collectors

import (
	"bufio"
	"context"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smazurov/radionode/internal/logging"
	"github.com/smazurov/radionode/internal/metrics"
)

// ALSACollector samples a PCM substream status file such as
// /proc/asound/card1/pcm0c/sub0/status.
type ALSACollector struct {
	logger     logging.Logger
	device     string
	statusPath string
	interval   time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewALSACollector creates a collector labelled with device.
func NewALSACollector(device, statusPath string) *ALSACollector {
	return &ALSACollector{
		logger:     logging.GetLogger("alsa"),
		device:     device,
		statusPath: statusPath,
		interval:   5 * time.Second,
	}
}

// Start begins collecting substream status.
func (c *ALSACollector) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)
	go c.run()
	return nil
}

// Stop stops the collector and drops its series.
func (c *ALSACollector) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	metrics.DeleteALSAStatus(c.device)
	return nil
}

func (c *ALSACollector) run() {
	c.logger.Info("Starting ALSA status collection", "path", c.statusPath, "interval", c.interval)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.collect()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.collect()
		}
	}
}

func (c *ALSACollector) collect() {
	file, err := os.Open(c.statusPath)
	if err != nil {
		c.logger.Debug("ALSA status not readable", "error", err)
		return
	}
	defer file.Close()

	st, err := parseStatus(file)
	if err != nil {
		c.logger.Warn("Failed to parse ALSA status", "error", err)
		return
	}
	metrics.SetALSAStatus(c.device, st.State == "RUNNING", float64(st.Avail))
}

type substreamStatus struct {
	State   string
	Avail   int64
	HwPtr   int64
	ApplPtr int64
}

// parseStatus reads "key : value" lines. A closed substream reports only
// the word "closed".
func parseStatus(r io.Reader) (substreamStatus, error) {
	var st substreamStatus
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "closed" {
			st.State = "CLOSED"
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "state":
			st.State = value
		case "avail":
			st.Avail, _ = strconv.ParseInt(value, 10, 64)
		case "hw_ptr":
			st.HwPtr, _ = strconv.ParseInt(value, 10, 64)
		case "appl_ptr":
			st.ApplPtr, _ = strconv.ParseInt(value, 10, 64)
		}
	}

	return st, scanner.Err()
}
