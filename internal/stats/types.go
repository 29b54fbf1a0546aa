package stats

// Snapshot aggregates every export row with at least one achievement won.
// It is recomputed from scratch on each parse pass, never merged.
type Snapshot struct {
	Gamerscore        int
	TAScore           int
	TotalGames        int
	CompletedGames    int
	TotalAchievements int
	CompletionPct     float64
}

// CurrentGame is the display-formatted detail for the export row matching the
// now-playing lookup name. Image is filled by the caller from the now-playing
// source; the export carries no artwork.
type CurrentGame struct {
	Name           string
	Platform       string
	Achievements   string // "50 / 100"
	Gamerscore     string // "500 G"
	TAScore        string // "120 TA"
	HoursPlayed    string // "12.5 h"
	Completion     string // "50%"
	Ratio          string
	URL            string
	WalkthroughURL string
	Image          string
}
