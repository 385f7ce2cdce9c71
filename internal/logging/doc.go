// Package logging assembles structured slog loggers and formatting helpers used
// across connect2vid.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the run id, the Connect session id and the current stage. The
// package also provides a no-op logger for tests.
//
// Relayed tool output does not pass through these loggers; it is written raw
// by the runner so it looks the way it does in a terminal.
package logging
