// Package nowplaying resolves the externally reported current game and turns
// its state changes into refresh triggers.
//
// The Resolver reads one configured Home Assistant sensor entity, treats the
// idle states as "not playing", derives an image reference from the sibling
// image entity, and applies the configured rename table so the name can be
// looked up in the export. The Watcher polls the resolver and kicks the
// refresh controller whenever the reported game appears, disappears, or
// changes.
package nowplaying
