// Package logging provides structured logging with per-module log levels.
//
// Records go to stdout (text or json), to the systemd journal when it is
// reachable, and to an in-memory ring buffer that backs the log endpoint.
//
// Initialize once at startup, then ask for a logger per module:
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		Modules: map[string]string{"capture": "debug"},
//	})
//	logger := logging.GetLogger("capture")
//	logger.Info("Session connected", "device", path)
//
// SetLevels applies new levels to every module at runtime. It is wired to
// the config watcher so editing the [logging] table takes effect without a
// restart:
//
//	[logging]
//	level = "info"
//	capture = "debug"
//	api = "warn"
//
// In the journal, entries carry SYSLOG_IDENTIFIER=thermview and one field
// per attribute:
//
//	journalctl -t thermview MODULE=capture
package logging
