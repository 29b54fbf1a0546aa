package api

import (
	"time"

	"github.com/dckiller51/trueachievements/internal/preflight"
	"github.com/dckiller51/trueachievements/internal/refresh"
	"github.com/dckiller51/trueachievements/internal/stats"
)

// FromSnapshot converts a refresh snapshot to its API representation.
func FromSnapshot(snap refresh.Snapshot) Snapshot {
	dto := Snapshot{
		Gamerscore:        snap.Stats.Gamerscore,
		TrueAchievement:   snap.Stats.TAScore,
		TotalGames:        snap.Stats.TotalGames,
		CompletedGames:    snap.Stats.CompletedGames,
		TotalAchievements: snap.Stats.TotalAchievements,
		CompletionPct:     snap.Stats.CompletionPct,
		CurrentGameName:   snap.CurrentGameName,
		LastUpdate:        snap.LastUpdate,
		AuthFailed:        snap.AuthFailed,
	}
	if snap.CurrentGame != nil {
		detail := FromCurrentGame(snap.CurrentGame)
		dto.CurrentGame = &detail
	}
	return dto
}

// FromCurrentGame converts a per-game record to its API representation.
func FromCurrentGame(game *stats.CurrentGame) CurrentGameDetail {
	if game == nil {
		return CurrentGameDetail{}
	}
	return CurrentGameDetail{
		Name:            game.Name,
		Platform:        game.Platform,
		Achievements:    game.Achievements,
		Gamerscore:      game.Gamerscore,
		TrueAchievement: game.TAScore,
		HoursPlayed:     game.HoursPlayed,
		Completion:      game.Completion,
		Ratio:           game.Ratio,
		URL:             game.URL,
		WalkthroughURL:  game.WalkthroughURL,
		Image:           game.Image,
	}
}

// FromPreflightResults converts preflight checks to API health entries.
func FromPreflightResults(results []preflight.Result) []HealthCheck {
	if len(results) == 0 {
		return nil
	}
	out := make([]HealthCheck, 0, len(results))
	for _, r := range results {
		out = append(out, HealthCheck{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
	}
	return out
}

// FormatTime renders a timestamp for API payloads, empty for zero times.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
