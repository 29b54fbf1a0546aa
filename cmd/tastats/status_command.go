package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dckiller51/trueachievements/internal/api"
	"github.com/dckiller51/trueachievements/internal/daemonctl"
	"github.com/dckiller51/trueachievements/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and statistics status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			statusResp, err := daemonctl.BuildStatusSnapshot(ctx.socketPath(), cfg)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("System Status", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range daemonctl.BuildSystemChecks(cfg, statusResp) {
				fmt.Fprintln(stdout, renderStatusLine(line.Label, statusKindFromSeverity(line.Severity), line.Detail, colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Paths", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range daemonctl.BuildPathChecks(cfg) {
				fmt.Fprintln(stdout, renderStatusLine(line.Label, statusKindFromSeverity(line.Severity), line.Detail, colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Statistics", colorize) {
				fmt.Fprintln(stdout, line)
			}
			if !statusResp.Running {
				fmt.Fprintln(stdout, "Daemon not running; statistics unavailable")
				return nil
			}

			var snapshot *api.Snapshot
			snapErr := ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Snapshot()
				if err != nil {
					return err
				}
				if resp != nil {
					snapshot = &resp.Snapshot
				}
				return nil
			})
			if snapErr != nil || snapshot == nil {
				fmt.Fprintln(stdout, "Statistics unavailable")
				return nil
			}

			fmt.Fprintln(stdout, renderSnapshotTable(*snapshot))
			return nil
		},
	}
}
