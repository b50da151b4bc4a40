// Package logging provides structured logging utilities for ketchup.
//
// The package wraps the standard library slog package with project defaults:
// JSON output to stderr, environment-based level configuration (LOG_LEVEL),
// module/version context on every record, and source location tracking when
// running at debug level.
//
// Typical usage:
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("ketchup", version)
//
//	    slog.Info("collection started", "namespaces", nsList)
//	    slog.Debug("resolved custom resource", "plural", plural, "group", group)
//	}
//
// Supported values for LOG_LEVEL (case-insensitive): DEBUG, INFO, WARN,
// WARNING, ERROR. Anything else falls back to INFO.
package logging
