package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dckiller51/trueachievements/internal/config"
	"github.com/dckiller51/trueachievements/internal/daemonrun"
)

func newDaemonCommand() *cobra.Command {
	var configPath string
	var socketPath string
	var logLevel string

	cmd := &cobra.Command{
		Use:           "tastatsd",
		Short:         "TrueAchievements statistics daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(strings.TrimSpace(configPath))
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				ConfigPath: strings.TrimSpace(configPath),
				SocketPath: strings.TrimSpace(socketPath),
				LogLevel:   strings.TrimSpace(logLevel),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&socketPath, "socket", "", "Path to the IPC socket (defaults to <log_dir>/tastats.sock)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	return cmd
}
