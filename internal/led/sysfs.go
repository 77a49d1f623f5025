package led

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

const sysfsLEDPath = "/sys/class/leds"

// triggers maps patterns to kernel LED triggers.
var triggers = map[string]string{
	PatternSolid:     "none",
	PatternBlink:     "timer",
	PatternHeartbeat: "heartbeat",
}

// sysfs drives LEDs through /sys/class/leds/<name>/{trigger,brightness}.
type sysfs struct {
	root string
	leds map[string]string // LED type -> sysfs name
}

func newSysfs(root string, leds map[string]string) *sysfs {
	if root == "" {
		root = sysfsLEDPath
	}
	return &sysfs{root: root, leds: leds}
}

func (s *sysfs) Set(ledType string, enabled bool, pattern string) error {
	name, ok := s.leds[ledType]
	if !ok {
		return fmt.Errorf("LED type %q not supported on this board", ledType)
	}
	dir := filepath.Join(s.root, name)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("LED %q not found at %s: %w", ledType, dir, err)
	}

	if pattern != "" && enabled {
		trigger, ok := triggers[pattern]
		if !ok {
			trigger = pattern
		}
		if err := os.WriteFile(filepath.Join(dir, "trigger"), []byte(trigger), 0o644); err != nil {
			return fmt.Errorf("set LED trigger: %w", err)
		}
	}
	if !enabled {
		// A running trigger would turn the LED back on.
		if err := os.WriteFile(filepath.Join(dir, "trigger"), []byte("none"), 0o644); err != nil {
			return fmt.Errorf("set LED trigger: %w", err)
		}
	}

	brightness := "0"
	if enabled {
		brightness = "1"
	}
	if err := os.WriteFile(filepath.Join(dir, "brightness"), []byte(brightness), 0o644); err != nil {
		return fmt.Errorf("set LED brightness: %w", err)
	}
	return nil
}

func (s *sysfs) Available() []string {
	types := make([]string, 0, len(s.leds))
	for t := range s.leds {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

func (s *sysfs) Patterns() []string {
	return []string{PatternSolid, PatternBlink, PatternHeartbeat}
}
