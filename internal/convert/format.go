// Package convert maps between the CS32 wire format carried by the transport
// and the I/Q formats handed to callers.
package convert

import (
	"errors"
	"fmt"
	"strings"
)

// Format identifies an interleaved I/Q sample encoding.
type Format string

// Supported formats. The hardware's native format is always CS32.
const (
	CS16 Format = "CS16"
	CS32 Format = "CS32"
	CF32 Format = "CF32"
)

// Native is the wire format every conversion pivots through.
const Native = CS32

// Full-scale magnitudes of the integer encodings.
const (
	FullScaleCS16 = 1 << 15
	FullScaleCS32 = 1 << 31
)

var (
	// ErrUnknownFormat is returned for a format name outside CS16, CS32 and CF32.
	ErrUnknownFormat = errors.New("convert: unknown format")
	// ErrBufferType is returned when a buffer does not match its format.
	ErrBufferType = errors.New("convert: buffer does not match format")
	// ErrShortBuffer is returned when a buffer cannot hold the requested pairs.
	ErrShortBuffer = errors.New("convert: buffer too short")
)

// ParseFormat resolves a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToUpper(s)); f {
	case CS16, CS32, CF32:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// SampleBytes returns the size of one I/Q pair.
func (f Format) SampleBytes() int {
	switch f {
	case CS16:
		return 4
	case CS32, CF32:
		return 8
	default:
		return 0
	}
}

// FullScale returns the magnitude that maps to 1.0 for f.
func (f Format) FullScale() float64 {
	switch f {
	case CS16:
		return FullScaleCS16
	case CS32:
		return FullScaleCS32
	default:
		return 1.0
	}
}

// NewBuffer allocates a buffer of the Go type that carries f, sized for pairs
// I/Q pairs: []int16 for CS16, []int32 for CS32, []float32 for CF32.
func NewBuffer(f Format, pairs int) (any, error) {
	switch f {
	case CS16:
		return make([]int16, 2*pairs), nil
	case CS32:
		return make([]int32, 2*pairs), nil
	case CF32:
		return make([]float32, 2*pairs), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// CheckBuffer verifies that buf is the Go type for f and holds pairs I/Q pairs.
func CheckBuffer(f Format, buf any, pairs int) error {
	var n int
	switch b := buf.(type) {
	case []int16:
		if f != CS16 {
			return fmt.Errorf("%w: []int16 for %s", ErrBufferType, f)
		}
		n = len(b)
	case []int32:
		if f != CS32 {
			return fmt.Errorf("%w: []int32 for %s", ErrBufferType, f)
		}
		n = len(b)
	case []float32:
		if f != CF32 {
			return fmt.Errorf("%w: []float32 for %s", ErrBufferType, f)
		}
		n = len(b)
	default:
		return fmt.Errorf("%w: %T for %s", ErrBufferType, buf, f)
	}
	if n < 2*pairs {
		return fmt.Errorf("%w: %d samples for %d pairs", ErrShortBuffer, n, pairs)
	}
	return nil
}
