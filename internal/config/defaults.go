package config

// Defaults
const (
	DefaultDays          = 30
	DefaultTopCategories = 6
)

// SuggestedDays are the thresholds offered by the CLI help and the TUI
var SuggestedDays = []int{7, 14, 21, 30, 60, 90}

// GetDefault returns the default configuration
func GetDefault() *Config {
	return &Config{
		Days:      DefaultDays,
		SizeProbe: "blocks",
		ExcludePatterns: []string{
			"*.keep",
		},
		KeepPaths:      []string{},
		ProtectedPaths: []string{},
		LogLevel:       "info",
		TopCategories:  DefaultTopCategories,
		Daemon: DaemonConfig{
			PidFile:     "",
			MetricsAddr: "",
			Schedules:   []CleanupSchedule{},
		},
	}
}

// GetExampleConfig returns an example configuration with comments
func GetExampleConfig() string {
	return `# cache-cleaner configuration
# Location: ~/.config/cache-cleaner/config.yaml

# Only items last modified more than this many days ago are touched.
# Common choices: 7, 14, 21, 30, 60, 90
days: 30

# How item sizes are measured:
#   blocks - allocated blocks via lstat, hard links counted once (default)
#   du     - ask du(1)
size_probe: blocks

# Items whose path or name matches one of these globs are never scanned or cleaned
exclude_patterns:
  - "*.keep"

# Items at or below these paths are never scanned or cleaned
keep_paths: []
#  - "~/Library/Caches/com.important.app"

# Extra system paths the cleaner must refuse to delete
protected_paths: []

# Additional cache locations, visited after the built-in ones.
# A location with the name of a built-in one replaces it.
# With a pattern set, every directory with that name below the paths is an item.
extra_locations: []
#  - name: "Cargo targets"
#    paths: ["~/Code"]
#    pattern: "target"
#  - name: "Bazel"
#    paths: ["~/.cache/bazel"]

# debug, info, warn or error
log_level: info

# How many categories the summary report lists
top_categories: 6

daemon:
  # pid_file: "~/.config/cache-cleaner/daemon.pid"
  pid_file: ""

  # Serve Prometheus metrics on this address, e.g. "127.0.0.1:9310"
  metrics_addr: ""

  # Cron expressions use the standard five fields or descriptors like @daily
  schedules: []
  #  - name: weekly
  #    schedule: "0 3 * * 0"
  #    days: 30
  #    dry_run: false

  notifications:
    enabled: false
    webhook:
      url: ""
`
}
