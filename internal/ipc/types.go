package ipc

import "github.com/dckiller51/trueachievements/internal/api"

// StartRequest triggers daemon refresh-loop startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops the daemon refresh loop.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status. WithChecks also runs the
// preflight checks, which may contact Home Assistant.
type StatusRequest struct {
	WithChecks bool `json:"with_checks"`
}

// HealthCheck mirrors the HTTP API health DTO for internal IPC callers.
type HealthCheck = api.HealthCheck

// StatusResponse represents combined daemon status information.
type StatusResponse struct {
	Running    bool          `json:"running"`
	PID        int           `json:"pid"`
	Gamertag   string        `json:"gamertag"`
	GamesFile  string        `json:"games_file"`
	LockPath   string        `json:"lock_path"`
	AuthFailed bool          `json:"auth_failed"`
	LastUpdate string        `json:"last_update"`
	Checks     []HealthCheck `json:"checks,omitempty"`
}

// SnapshotRequest fetches the current statistics snapshot.
type SnapshotRequest struct{}

// SnapshotResponse carries the statistics snapshot DTO.
type SnapshotResponse struct {
	Snapshot api.Snapshot `json:"snapshot"`
}

// RefreshRequest asks the daemon to run a refresh cycle soon.
type RefreshRequest struct{}

// RefreshResponse acknowledges the refresh request.
type RefreshResponse struct {
	Requested bool `json:"requested"`
}

// ClearAuthRequest clears the sticky auth-failure flag.
type ClearAuthRequest struct{}

// ClearAuthResponse reports the flag state after clearing.
type ClearAuthResponse struct {
	AuthFailed bool `json:"auth_failed"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
