package led

import (
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// board maps a device-tree model substring to its LED names. The first
// entry is the one the manager drives.
type board struct {
	match string
	leds  map[string]string
	main  string
}

var boards = []board{
	{match: "NanoPC-T6", leds: map[string]string{"user": "usr_led", "system": "sys_led"}, main: "user"},
	{match: "Orange Pi", leds: map[string]string{"blue": "blue_led", "green": "green_led"}, main: "green"},
	{match: "Raspberry Pi", leds: map[string]string{"act": "ACT"}, main: "act"},
}

// New returns a sysfs controller for a known board, or a no-op controller,
// together with the LED type that indicates radio activity.
func New(logger *slog.Logger) (Controller, string) {
	if logger == nil {
		logger = slog.Default()
	}
	return forModel(detectBoard(), sysfsLEDPath, logger)
}

func forModel(model, root string, logger *slog.Logger) (Controller, string) {
	for _, b := range boards {
		if strings.Contains(model, b.match) {
			logger.Info("Using sysfs LED controller", "board_model", model, "led", b.main)
			return newSysfs(root, b.leds), b.main
		}
	}
	logger.Info("No LED support detected, using no-op controller", "board_model", model)
	return newNoop(logger), ""
}

func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}
	return strings.TrimRight(string(data), "\x00")
}
