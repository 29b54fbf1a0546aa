// Package stats parses the cached TrueAchievements export into aggregate and
// per-game statistics.
//
// The engine is deliberately forgiving: a missing or corrupt export degrades
// to a zeroed snapshot, quote-littered headers and cells are normalized before
// lookup, and numeric cells that fail to parse coerce to zero. The export is
// the only input; nothing here talks to the network.
package stats
