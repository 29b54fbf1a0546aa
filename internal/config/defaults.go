package config

const (
	defaultDataDir            = "~/.local/share/tastats"
	defaultRefreshMinutes     = 30
	defaultPollSeconds        = 30
	defaultNotifyTimeout      = 10
	defaultDedupWindowSeconds = 600
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 60
	defaultAPIBind            = "127.0.0.1:7787"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Refresh: Refresh{
			IntervalMinutes: defaultRefreshMinutes,
		},
		NowPlaying: NowPlaying{
			PollSeconds: defaultPollSeconds,
		},
		Notifications: Notifications{
			RequestTimeout:     defaultNotifyTimeout,
			DedupWindowSeconds: defaultDedupWindowSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Daemon: Daemon{
			APIBind: defaultAPIBind,
		},
	}
}
