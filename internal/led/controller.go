// Package led shows radio activity on a board status LED.
package led

// Patterns understood by every controller.
const (
	PatternSolid     = "solid"
	PatternBlink     = "blink"
	PatternHeartbeat = "heartbeat"
)

// Controller abstracts LED hardware across boards.
type Controller interface {
	// Set switches the LED identified by ledType. An empty pattern keeps the
	// current trigger.
	Set(ledType string, enabled bool, pattern string) error

	// Available returns the LED types on this board.
	Available() []string

	// Patterns returns the supported patterns.
	Patterns() []string
}
