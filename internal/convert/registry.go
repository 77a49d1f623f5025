package convert

import (
	"errors"
	"fmt"
	"sync"
)

// Func converts pairs interleaved I/Q pairs from src to dst, multiplying by
// scale where the destination is floating point. Buffers must already have
// passed CheckBuffer for their formats.
type Func func(src, dst any, pairs int, scale float64)

var (
	// ErrNoConverter is returned by Lookup when no function is registered.
	ErrNoConverter = errors.New("convert: no converter")
	// ErrDuplicate is returned when a pair is registered twice.
	ErrDuplicate = errors.New("convert: converter already registered")
)

type pair struct {
	src, dst Format
}

// Registry holds converters keyed by (source, destination). Registration
// order is preserved and reported by Targets and Sources.
type Registry struct {
	mu    sync.RWMutex
	funcs map[pair]Func
	order []pair
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[pair]Func)}
}

// NewDefaultRegistry returns a registry populated by RegisterDefaults.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = RegisterDefaults(r) // cannot collide on an empty registry
	return r
}

// Register adds fn for src to dst.
func (r *Registry) Register(src, dst Format, fn Func) error {
	if fn == nil {
		return fmt.Errorf("convert: nil converter for %s->%s", src, dst)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := pair{src, dst}
	if _, ok := r.funcs[k]; ok {
		return fmt.Errorf("%w: %s->%s", ErrDuplicate, src, dst)
	}
	r.funcs[k] = fn
	r.order = append(r.order, k)
	return nil
}

// Lookup returns the converter for src to dst.
func (r *Registry) Lookup(src, dst Format) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[pair{src, dst}]
	if !ok {
		return nil, fmt.Errorf("%w: %s->%s", ErrNoConverter, src, dst)
	}
	return fn, nil
}

// Targets lists the formats src converts to, in registration order.
func (r *Registry) Targets(src Format) []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Format
	for _, k := range r.order {
		if k.src == src {
			out = append(out, k.dst)
		}
	}
	return out
}

// Sources lists the formats that convert to dst, in registration order.
func (r *Registry) Sources(dst Format) []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Format
	for _, k := range r.order {
		if k.dst == dst {
			out = append(out, k.src)
		}
	}
	return out
}

// RegisterDefaults installs the CS32 pivot conversions: CS32 to CS16, CS32
// and CF32 for capture, and the reverse for playback.
func RegisterDefaults(r *Registry) error {
	defaults := []struct {
		src, dst Format
		fn       Func
	}{
		{CS32, CF32, CS32ToCF32},
		{CS32, CS16, CS32ToCS16},
		{CS32, CS32, CS32ToCS32},
		{CF32, CS32, CF32ToCS32},
		{CS16, CS32, CS16ToCS32},
	}
	for _, d := range defaults {
		if err := r.Register(d.src, d.dst, d.fn); err != nil {
			return err
		}
	}
	return nil
}
