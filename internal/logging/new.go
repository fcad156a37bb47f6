package logging

import "io"

// New returns the logger for the configured output format: "json" gives
// slog JSON lines, anything else the zerolog console format.
func New(w io.Writer, level, format string) Logger {
	if format == "json" {
		return NewJSON(w, level)
	}
	return NewConsole(w, level)
}
