// Package logging wires log/slog with the handlers and helpers the daemon and
// CLI share.
//
// Key responsibilities:
//   - Console and JSON handlers with consistent timestamp, level, and source
//     formatting across every output path.
//   - Attr helpers and standardized field names so refresh cycles, auth
//     failures, and now-playing changes stay greppable.
//   - Context-aware loggers that stamp correlation ids and trigger sources.
//   - Retention pruning for per-run daemon log files.
//
// Construct loggers through New or NewFromConfig instead of slog directly so
// every binary emits the same shape.
package logging
