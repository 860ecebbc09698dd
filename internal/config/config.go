package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fenilsonani/cache-cleaner/internal/platform"
	"github.com/fenilsonani/cache-cleaner/internal/registry"
	"github.com/fenilsonani/cache-cleaner/internal/scanner"
	"github.com/fenilsonani/cache-cleaner/internal/security"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDays is returned for a negative age threshold
var ErrInvalidDays = errors.New("days must be >= 0")

// Config represents the application configuration
type Config struct {
	Days            int                 `yaml:"days"`
	SizeProbe       string              `yaml:"size_probe"`
	ExcludePatterns []string            `yaml:"exclude_patterns"`
	KeepPaths       []string            `yaml:"keep_paths"`
	ProtectedPaths  []string            `yaml:"protected_paths"`
	ExtraLocations  []registry.Location `yaml:"extra_locations"`
	LogLevel        string              `yaml:"log_level"`
	TopCategories   int                 `yaml:"top_categories"`
	Daemon          DaemonConfig        `yaml:"daemon"`
}

// DaemonConfig holds daemon mode configuration
type DaemonConfig struct {
	PidFile       string             `yaml:"pid_file"`
	MetricsAddr   string             `yaml:"metrics_addr"`
	Schedules     []CleanupSchedule  `yaml:"schedules"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// CleanupSchedule defines a scheduled clean
type CleanupSchedule struct {
	Name     string `yaml:"name"`
	Schedule string `yaml:"schedule"` // Cron expression
	Days     int    `yaml:"days,omitempty"`
	DryRun   bool   `yaml:"dry_run"`
}

// NotificationConfig holds notification settings
type NotificationConfig struct {
	Enabled bool          `yaml:"enabled"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// WebhookConfig holds webhook notification settings
type WebhookConfig struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// ScheduleDays returns the age threshold of s, falling back to the global one
func (c *Config) ScheduleDays(s CleanupSchedule) int {
	if s.Days > 0 {
		return s.Days
	}
	return c.Days
}

// Locations returns the built-in registry for p followed by the configured
// extra locations
func (c *Config) Locations(p platform.Platform) []registry.Location {
	return registry.Merge(registry.Default(p), c.ExtraLocations)
}

// Excluder builds the item excluder from exclude_patterns and keep_paths
func (c *Config) Excluder(home string) *scanner.Excluder {
	keep := make([]string, len(c.KeepPaths))
	for i, p := range c.KeepPaths {
		keep[i] = registry.Expand(p, home)
	}
	return scanner.NewExcluder(c.ExcludePatterns, keep)
}

// Load loads configuration from a file. A missing file yields the defaults;
// keys absent from the file keep their default values.
func Load(configPath string) (*Config, error) {
	config := GetDefault()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save saves configuration to a file
func Save(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Days < 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidDays, c.Days)
	}

	switch c.SizeProbe {
	case "", scanner.ProbeBlocks, scanner.ProbeDu:
	default:
		return fmt.Errorf("size_probe must be %q or %q, got %q", scanner.ProbeBlocks, scanner.ProbeDu, c.SizeProbe)
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if c.TopCategories < 0 {
		return fmt.Errorf("top_categories must be >= 0")
	}

	for _, pattern := range c.ExcludePatterns {
		if err := security.ValidateGlobPattern(pattern); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	for _, path := range c.KeepPaths {
		if !filepath.IsAbs(path) && !strings.HasPrefix(path, registry.HomePlaceholder) {
			return fmt.Errorf("keep path must be absolute or start with ~: %s", path)
		}
	}

	for _, path := range c.ProtectedPaths {
		if !filepath.IsAbs(path) {
			return fmt.Errorf("protected path must be absolute: %s", path)
		}
	}

	for _, loc := range c.ExtraLocations {
		if err := validateLocation(loc); err != nil {
			return err
		}
	}

	return c.Daemon.validate()
}

func validateLocation(loc registry.Location) error {
	if loc.Name == "" {
		return fmt.Errorf("extra location needs a name")
	}
	if len(loc.BasePaths) == 0 {
		return fmt.Errorf("extra location %q has no paths", loc.Name)
	}
	for _, p := range loc.BasePaths {
		if !filepath.IsAbs(p) && !strings.HasPrefix(p, registry.HomePlaceholder) {
			return fmt.Errorf("extra location %q: path must be absolute or start with ~: %s", loc.Name, p)
		}
	}
	if strings.ContainsRune(loc.Pattern, filepath.Separator) {
		return fmt.Errorf("extra location %q: pattern must be a single directory name", loc.Name)
	}
	return nil
}

func (d DaemonConfig) validate() error {
	seen := make(map[string]bool)
	for _, s := range d.Schedules {
		if s.Name == "" {
			return fmt.Errorf("schedule needs a name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate schedule name %q", s.Name)
		}
		seen[s.Name] = true

		if s.Days < 0 {
			return fmt.Errorf("schedule %q: %w", s.Name, ErrInvalidDays)
		}
		if _, err := cron.ParseStandard(s.Schedule); err != nil {
			return fmt.Errorf("schedule %q: invalid cron expression %q: %w", s.Name, s.Schedule, err)
		}
	}

	if d.Notifications.Enabled && d.Notifications.Webhook.URL != "" {
		u, err := url.Parse(d.Notifications.Webhook.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("webhook url must be an http(s) URL: %s", d.Notifications.Webhook.URL)
		}
	}

	return nil
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	configDir, err := platform.GetUserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// EnsureConfigExists creates a default config file if it doesn't exist
func EnsureConfigExists() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return "", fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := os.WriteFile(configPath, []byte(GetExampleConfig()), 0644); err != nil {
			return "", fmt.Errorf("failed to write config file: %w", err)
		}
	}

	return configPath, nil
}
