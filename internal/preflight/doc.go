// Package preflight provides readiness checks for external services
// and filesystem paths the stats daemon depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and logs any failures before
//     entering its refresh loop; a bad data directory or unreachable
//     Home Assistant is cheaper to see at boot than mid-cycle.
//   - The CLI "tastats status" command uses individual check functions
//     (CheckHomeAssistant, CheckDirectoryAccess) to display health.
//
// Each check is gated by its config toggle -- unconfigured features are
// skipped. The TrueAchievements site itself is never probed.
package preflight
