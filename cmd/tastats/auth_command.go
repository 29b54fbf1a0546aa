package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dckiller51/trueachievements/internal/ipc"
)

func newAuthCommand(ctx *commandContext) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication utilities",
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the auth-failed flag after replacing the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ClearAuth()
				if err != nil {
					return fmt.Errorf("clear auth flag: %w", err)
				}
				stdout := cmd.OutOrStdout()
				if resp != nil && resp.AuthFailed {
					fmt.Fprintln(stdout, "Auth-failed flag still set")
					return nil
				}
				fmt.Fprintln(stdout, "Auth-failed flag cleared; downloads resume on the next cycle")
				return nil
			})
		},
	}

	authCmd.AddCommand(clearCmd)
	return authCmd
}
