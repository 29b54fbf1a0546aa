// Package refresh owns the fetch-cache-parse cycle.
//
// A Controller decides on every cycle whether the cached export may be
// re-downloaded (24 hour freshness window, sticky auth-failure flag), performs
// the authenticated download, persists valid exports atomically, and always
// parses whatever is on disk so a broken credential degrades to last-known-good
// statistics instead of an outage. The freshness window is an anti-abuse
// policy toward the upstream service, not a performance optimization: manual
// refresh requests do not bypass it.
//
// Refreshes are serialized; RequestRefresh is the re-entrant-safe trigger
// shared by the interval ticker, the now-playing watcher, and manual requests,
// coalescing bursts into a single pending cycle.
package refresh
