// Package logging builds the slog loggers used across reelgate.
//
// Loggers write to stdout/stderr plus the daemon log file, in console or JSON
// format per config. Attr helpers keep call sites terse and NewNop provides a
// silent logger for tests.
package logging
