// Package tuning forwards the receiver center frequency to the hardware
// control path.
package tuning

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultPath is the frequency attribute exposed by the vfzsdr kernel driver.
const DefaultPath = "/sys/class/sdr/vfzsdr/frequency"

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("tuning: actuator closed")

// Actuator accepts a center frequency in Hz.
type Actuator interface {
	WriteFrequency(hz int64) error
	Close() error
}

// New returns a sysfs actuator for path, or a no-op actuator when the control
// directory does not exist on this system.
func New(path string, logger *slog.Logger) Actuator {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		logger.Info("Tuning control not found, using no-op actuator", "path", path)
		return newNoop(logger)
	}
	logger.Info("Using sysfs tuning actuator", "path", path)
	return newSysfs(path)
}
