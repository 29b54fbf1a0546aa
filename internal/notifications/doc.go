// Package notifications delivers refresh-pipeline alerts via pluggable
// notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Enumerated event types cover the alert causes (expired session
// token, unmatched now-playing game, failed refresh) so pipeline code emits
// consistent, user-friendly messages without duplicating HTTP glue. Each event
// carries a stable identifier used to suppress repeats inside the configured
// dedup window.
//
// Extend this package if you need alternative transports; all pipeline code
// depends only on the simple Service interface.
package notifications
