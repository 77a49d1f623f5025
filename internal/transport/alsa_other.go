//go:build !linux

package transport

import (
	"errors"
	"log/slog"
)

// ErrUnsupportedPlatform is returned when opening ALSA outside Linux.
var ErrUnsupportedPlatform = errors.New("transport: ALSA requires linux")

// ALSAFactory is unavailable on this platform; use the simulated factory.
type ALSAFactory struct{}

// NewALSAFactory returns a factory whose Open always fails.
func NewALSAFactory(_ *slog.Logger) *ALSAFactory {
	return &ALSAFactory{}
}

// Open always returns ErrUnsupportedPlatform.
func (f *ALSAFactory) Open(_ Params) (Handle, error) {
	return nil, ErrUnsupportedPlatform
}
