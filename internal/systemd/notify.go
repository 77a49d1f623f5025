// Package systemd reports service state to the systemd service manager.
package systemd

import (
	"context"
	"log/slog"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Notifier sends sd_notify messages. Outside a Type=notify unit every call
// is a no-op.
type Notifier struct {
	logger *slog.Logger
	send   func(state string) (bool, error)
}

// NewNotifier creates a notifier that writes to $NOTIFY_SOCKET.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger: logger,
		send:   func(state string) (bool, error) { return daemon.SdNotify(false, state) },
	}
}

func (n *Notifier) notify(state string) {
	sent, err := n.send(state)
	if err != nil {
		n.logger.Warn("sd_notify failed", "state", state, "error", err)
		return
	}
	if sent {
		n.logger.Debug("sd_notify sent", "state", state)
	}
}

// Ready marks startup complete.
func (n *Notifier) Ready() {
	n.notify(daemon.SdNotifyReady)
}

// Stopping marks the start of shutdown.
func (n *Notifier) Stopping() {
	n.notify(daemon.SdNotifyStopping)
}

// Status sets the free-form status line shown by systemctl status.
func (n *Notifier) Status(msg string) {
	n.notify("STATUS=" + msg)
}

// RunWatchdog pings the watchdog at half of WatchdogSec until ctx ends. It
// returns immediately when the unit has no watchdog.
func (n *Notifier) RunWatchdog(ctx context.Context) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		n.logger.Warn("Watchdog configuration invalid", "error", err)
		return
	}
	if interval == 0 {
		return
	}
	n.runWatchdog(ctx, interval/2)
}

func (n *Notifier) runWatchdog(ctx context.Context, every time.Duration) {
	n.logger.Info("systemd watchdog enabled", "interval", every)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.notify(daemon.SdNotifyWatchdog)
		}
	}
}
