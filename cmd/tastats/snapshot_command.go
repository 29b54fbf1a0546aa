package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dckiller51/trueachievements/internal/api"
	"github.com/dckiller51/trueachievements/internal/ipc"
	"github.com/dckiller51/trueachievements/internal/refresh"
)

func newSnapshotCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Show the latest statistics snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Snapshot()
				if err != nil {
					return fmt.Errorf("fetch snapshot: %w", err)
				}
				if resp == nil {
					return fmt.Errorf("snapshot response missing")
				}
				if asJSON {
					return writeJSON(cmd, resp.Snapshot)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderSnapshotTable(resp.Snapshot))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output snapshot as JSON")
	return cmd
}

func renderSnapshotTable(snap api.Snapshot) string {
	rows := [][]string{
		{"Gamerscore", strconv.Itoa(snap.Gamerscore)},
		{"TrueAchievement", strconv.Itoa(snap.TrueAchievement)},
		{"Total games", strconv.Itoa(snap.TotalGames)},
		{"Completed games", strconv.Itoa(snap.CompletedGames)},
		{"Total achievements", strconv.Itoa(snap.TotalAchievements)},
		{"Completion", fmt.Sprintf("%.2f%%", snap.CompletionPct)},
		{"Current game", displayGameName(snap.CurrentGameName)},
		{"Last update", snap.LastUpdate},
		{"Auth failed", yesNo(snap.AuthFailed)},
	}

	out := renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
	if snap.CurrentGame != nil {
		out += "\n" + renderCurrentGameTable(*snap.CurrentGame)
	}
	return out
}

func renderCurrentGameTable(game api.CurrentGameDetail) string {
	rows := make([][]string, 0, 8)
	appendRow := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		rows = append(rows, []string{label, value})
	}
	appendRow("Name", game.Name)
	appendRow("Platform", game.Platform)
	appendRow("Achievements", game.Achievements)
	appendRow("Gamerscore", game.Gamerscore)
	appendRow("TrueAchievement", game.TrueAchievement)
	appendRow("Hours played", game.HoursPlayed)
	appendRow("Completion", game.Completion)
	appendRow("Ratio", game.Ratio)
	if len(rows) == 0 {
		return ""
	}
	return renderTable([]string{"Current Game", ""}, rows, []columnAlignment{alignLeft, alignRight})
}

func displayGameName(name string) string {
	if name == refresh.OfflineStatus || strings.TrimSpace(name) == "" {
		return "Offline"
	}
	return name
}
