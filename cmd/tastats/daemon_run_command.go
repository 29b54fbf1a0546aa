package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dckiller51/trueachievements/internal/daemonrun"
)

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:          "daemon",
		Short:        "Run the daemon in the foreground",
		Hidden:       true,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts := daemonrun.Options{
				LogLevel:   strings.TrimSpace(logLevel),
				SocketPath: ctx.socketPath(),
			}
			if ctx.configFlag != nil {
				opts.ConfigPath = strings.TrimSpace(*ctx.configFlag)
			}
			return daemonrun.Run(cmd.Context(), cfg, opts)
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	return cmd
}
