package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dckiller51/trueachievements/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set gamer.gamertag, gamer.gamer_id, and gamer.token (or export TRUEACHIEVEMENTS_TOKEN).")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", resolved)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show resolved configuration values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gamer.gamertag        %s\n", cfg.Gamer.Gamertag)
			fmt.Fprintf(out, "gamer.gamer_id        %s\n", cfg.Gamer.GamerID)
			fmt.Fprintf(out, "gamer.token           %s\n", redactSecret(cfg.Gamer.Token))
			fmt.Fprintf(out, "paths.data_dir        %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "paths.games_file      %s\n", cfg.Paths.GamesFile)
			fmt.Fprintf(out, "paths.log_dir         %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "refresh.interval      %dm\n", cfg.Refresh.IntervalMinutes)
			fmt.Fprintf(out, "refresh.strict        %s\n", yesNo(cfg.Refresh.StrictFailures))
			fmt.Fprintf(out, "stats.excluded_apps   %s\n", cfg.Stats.ExcludedApps)
			fmt.Fprintf(out, "nowplaying.entity     %s\n", cfg.NowPlaying.Entity)
			fmt.Fprintf(out, "nowplaying.poll       %ds\n", cfg.NowPlaying.PollSeconds)
			fmt.Fprintf(out, "homeassistant.url     %s\n", cfg.HomeAssistant.URL)
			fmt.Fprintf(out, "homeassistant.token   %s\n", redactSecret(cfg.HomeAssistant.Token))
			fmt.Fprintf(out, "notifications.topic   %s\n", cfg.Notifications.NtfyTopic)
			fmt.Fprintf(out, "logging.format        %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "logging.level         %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "logging.retention     %dd\n", cfg.Logging.RetentionDays)
			fmt.Fprintf(out, "daemon.api_bind       %s\n", cfg.Daemon.APIBind)
			fmt.Fprintf(out, "daemon.api_token      %s\n", redactSecret(cfg.Daemon.APIToken))
			return nil
		},
	}
}

func redactSecret(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(unset)"
	}
	return "(set)"
}
