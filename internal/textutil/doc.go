// Package textutil provides text normalization utilities for the export
// parser and the notification layer.
//
// The primary use cases are:
//   - Stripping vendor quoting and stray whitespace from CSV headers and cells
//   - Splitting comma-separated configuration lists into normalized terms
//   - Sanitizing game names into stable notification identifiers
//
// Normalization lowercases where the callers compare case-insensitively; the
// helpers never allocate beyond the returned values.
package textutil
