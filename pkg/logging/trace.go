// Package logging configures slog for the generator and records flight events.
package logging

import "log/slog"

// EnableTrace turns on per-step trace lines. Set from log.trace by Init.
var EnableTrace = false

// Trace logs a message at DEBUG level, but only if EnableTrace is true.
func Trace(logger *slog.Logger, msg string, args ...any) {
	if EnableTrace {
		logger.Debug(msg, args...)
	}
}
