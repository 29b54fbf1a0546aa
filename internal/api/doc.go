// Package api defines wire-format types and converters for the IPC and
// HTTP API layer. It translates internal refresh and stats models into
// transport-friendly DTOs that dashboards and the CLI can render
// without coupling to internal types.
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers.
// Timestamps use RFC3339 with milliseconds; the snapshot's lastUpdate
// field keeps the export stamp format its upstream consumers expect.
package api
