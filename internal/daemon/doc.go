// Package daemon coordinates the long-running stats process and its
// integration points.
//
// It wires configuration, the refresh controller, the now-playing
// watcher, and notifications into a single lifecycle with flock-based
// locking to prevent multiple instances. The daemon also serves a
// localhost HTTP API for dashboards and scripts.
//
// Keep orchestration logic here: refresh semantics live in the refresh
// package while the daemon focuses on startup, shutdown, and high
// level coordination.
package daemon
