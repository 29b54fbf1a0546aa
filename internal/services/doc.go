// Package services defines shared utilities consumed by the refresh pipeline
// and the external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers and refresh trigger
//     sources for logging.
//   - Structured error markers plus the Wrap helper that let callers classify
//     failures (auth denial vs transient network trouble) without string
//     matching.
//
// Use these helpers when wiring new integrations so error handling and
// observability stay uniform across the pipeline.
package services
