package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dckiller51/trueachievements/internal/ipc"
)

func newRefreshCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Request a refresh cycle and show the resulting figures",
		Long: "Requests a refresh cycle from the daemon. The download freshness window " +
			"still applies: a cached export newer than 24 hours is re-parsed rather " +
			"than re-downloaded.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Refresh(); err != nil {
					return fmt.Errorf("request refresh: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Refresh requested")

				resp, err := client.Snapshot()
				if err != nil || resp == nil {
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderSnapshotTable(resp.Snapshot))
				return nil
			})
		},
	}
}
