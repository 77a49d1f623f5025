// Package logging configures log/slog for radionode with one logger per
// module and levels that can change while the process runs.
//
// Call [Initialize] once from main, then fetch loggers by module name:
//
//	logger := logging.GetLogger("stream").With("direction", "capture")
//	logger.Warn("Stream recovered", "cause", err)
//
// Loggers are cached per module and hold a [slog.LevelVar], so a logger taken
// before Initialize or before a [SetLevels] call follows the new level
// without being fetched again. The config watcher calls SetLevels when the
// [logging] table changes:
//
//	[logging]
//	level = "info"
//	format = "json"
//
//	[logging.modules]
//	stream = "debug"
//	nats = "warn"
//
// Output goes to stdout as text or JSON when stdout is usable, to the systemd
// journal when its socket exists, and to both through [Tee] on a
// typical service install. Journal entries carry SYSLOG_IDENTIFIER=radionode
// and every attribute as an upper-cased field, so a capture fault can be found
// with:
//
//	journalctl -t radionode MODULE=stream DIRECTION=capture -p warning
package logging
