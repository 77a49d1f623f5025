package tuning

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// sysfs writes the frequency as a decimal integer to a control file.
type sysfs struct {
	path string

	mu     sync.Mutex
	closed bool
}

func newSysfs(path string) *sysfs {
	return &sysfs{path: path}
}

func (s *sysfs) WriteFrequency(hz int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := os.WriteFile(s.path, []byte(strconv.FormatInt(hz, 10)), 0644); err != nil {
		return fmt.Errorf("failed to write frequency to %s: %w", s.path, err)
	}
	return nil
}

func (s *sysfs) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
