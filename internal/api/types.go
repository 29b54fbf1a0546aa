package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Snapshot describes the aggregate statistics plus the correlated
// current game in a transport-friendly format.
type Snapshot struct {
	Gamerscore        int                `json:"gamerscore"`
	TrueAchievement   int                `json:"trueAchievement"`
	TotalGames        int                `json:"totalGames"`
	CompletedGames    int                `json:"completedGames"`
	TotalAchievements int                `json:"totalAchievements"`
	CompletionPct     float64            `json:"completionPct"`
	CurrentGameName   string             `json:"currentGameName"`
	CurrentGame       *CurrentGameDetail `json:"currentGame,omitempty"`
	LastUpdate        string             `json:"lastUpdate"`
	AuthFailed        bool               `json:"authFailed"`
}

// CurrentGameDetail carries the per-game columns for whatever the
// player is reported to be playing right now.
type CurrentGameDetail struct {
	Name            string `json:"name"`
	Platform        string `json:"platform,omitempty"`
	Achievements    string `json:"achievements,omitempty"`
	Gamerscore      string `json:"gamerscore,omitempty"`
	TrueAchievement string `json:"trueAchievement,omitempty"`
	HoursPlayed     string `json:"hoursPlayed,omitempty"`
	Completion      string `json:"completion,omitempty"`
	Ratio           string `json:"ratio,omitempty"`
	URL             string `json:"url,omitempty"`
	WalkthroughURL  string `json:"walkthroughUrl,omitempty"`
	Image           string `json:"image,omitempty"`
}

// HealthCheck mirrors a single preflight check result.
type HealthCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool          `json:"running"`
	PID          int           `json:"pid"`
	Gamertag     string        `json:"gamertag"`
	GamesFile    string        `json:"gamesFilePath"`
	LockFilePath string        `json:"lockFilePath"`
	AuthFailed   bool          `json:"authFailed"`
	LastUpdate   string        `json:"lastUpdate"`
	NextRefresh  string        `json:"nextRefresh,omitempty"`
	Checks       []HealthCheck `json:"checks,omitempty"`
}

// StatusLine is a labeled severity line for status UIs.
type StatusLine struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// RefreshResponse acknowledges a manual refresh request.
type RefreshResponse struct {
	Requested bool `json:"requested"`
}

// LogTailResponse returns a window of log lines.
type LogTailResponse struct {
	Path   string   `json:"path"`
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}
