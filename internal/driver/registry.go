// Package driver keeps the directory of radio drivers: discovery of
// attachable hardware and construction of devices from string arguments.
package driver

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/smazurov/radionode/internal/device"
)

// Well-known argument keys.
const (
	KeyDriver     = "driver"
	KeyDevice     = "device"
	KeyALSADevice = "alsadevice"
)

var (
	ErrUnknownDriver = errors.New("driver: unknown driver")
	ErrDuplicate     = errors.New("driver: already registered")
	ErrMissingArg    = errors.New("driver: missing argument")
)

// Args is a flat string map describing one attachable device.
type Args map[string]string

// Clone returns a copy of a.
func (a Args) Clone() Args {
	return maps.Clone(a)
}

// Entry binds discovery and construction for one driver.
type Entry struct {
	Name string
	// Find lists descriptors for attachable hardware matching hint.
	Find func(hint Args) ([]Args, error)
	// Make builds a device from a descriptor.
	Make func(args Args) (*device.Device, error)
}

// Registry is an explicit set of driver entries.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds e. Names are unique.
func (r *Registry) Register(e Entry) error {
	if e.Name == "" || e.Find == nil || e.Make == nil {
		return fmt.Errorf("driver: incomplete entry %q", e.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[e.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, e.Name)
	}
	r.entries[e.Name] = e
	r.order = append(r.order, e.Name)
	return nil
}

// Names returns registered driver names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Find runs discovery on every driver, or only on hint["driver"] when set.
// Every result carries its driver name.
func (r *Registry) Find(hint Args) ([]Args, error) {
	entries, err := r.lookup(hint[KeyDriver])
	if err != nil {
		return nil, err
	}

	var (
		out  []Args
		errs []error
	)
	for _, e := range entries {
		found, err := e.Find(hint)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.Name, err))
			continue
		}
		for _, a := range found {
			a = a.Clone()
			a[KeyDriver] = e.Name
			out = append(out, a)
		}
	}
	return out, errors.Join(errs...)
}

// Make builds a device from args. The driver key may be omitted when
// exactly one driver is registered.
func (r *Registry) Make(args Args) (*device.Device, error) {
	name := args[KeyDriver]
	if name == "" {
		names := r.Names()
		if len(names) != 1 {
			return nil, fmt.Errorf("%w: %q required with %d drivers registered", ErrMissingArg, KeyDriver, len(names))
		}
		name = names[0]
	}

	entries, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	return entries[0].Make(args)
}

func (r *Registry) lookup(name string) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name != "" {
		e, ok := r.entries[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, name)
		}
		return []Entry{e}, nil
	}
	out := make([]Entry, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.entries[n])
	}
	return out, nil
}
