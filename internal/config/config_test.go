package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fenilsonani/cache-cleaner/internal/platform"
	"github.com/fenilsonani/cache-cleaner/internal/registry"
)

// =============================================================================
// GetDefault Tests
// =============================================================================

func TestGetDefault(t *testing.T) {
	cfg := GetDefault()

	if cfg == nil {
		t.Fatal("GetDefault returned nil")
	}
	if cfg.Days != 30 {
		t.Errorf("expected Days 30, got %d", cfg.Days)
	}
	if cfg.TopCategories != 6 {
		t.Errorf("expected TopCategories 6, got %d", cfg.TopCategories)
	}
	if cfg.SizeProbe != "blocks" {
		t.Errorf("expected SizeProbe blocks, got %q", cfg.SizeProbe)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestExampleConfigIsValid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(GetExampleConfig()), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("example config does not load: %v", err)
	}
	if cfg.Days != DefaultDays {
		t.Errorf("expected Days %d, got %d", DefaultDays, cfg.Days)
	}
}

// =============================================================================
// Load Tests
// =============================================================================

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("Load should not error for non-existent file: %v", err)
	}

	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.Days != DefaultDays {
		t.Errorf("expected default Days, got %d", cfg.Days)
	}
}

func TestLoadValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
days: 14
size_probe: du
exclude_patterns:
  - "*.important"
keep_paths:
  - "~/Library/Caches/com.example.keep"
extra_locations:
  - name: Cargo targets
    paths: ["~/Code"]
    pattern: target
log_level: debug
top_categories: 3
daemon:
  metrics_addr: "127.0.0.1:9310"
  schedules:
    - name: weekly
      schedule: "0 3 * * 0"
      days: 60
      dry_run: true
  notifications:
    enabled: true
    webhook:
      url: "https://hooks.example.com/cache"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Days != 14 {
		t.Errorf("expected Days 14, got %d", cfg.Days)
	}
	if cfg.SizeProbe != "du" {
		t.Errorf("expected SizeProbe du, got %q", cfg.SizeProbe)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected LogLevel debug, got %q", cfg.LogLevel)
	}
	if cfg.TopCategories != 3 {
		t.Errorf("expected TopCategories 3, got %d", cfg.TopCategories)
	}
	if len(cfg.ExtraLocations) != 1 || cfg.ExtraLocations[0].Pattern != "target" {
		t.Errorf("unexpected extra locations: %+v", cfg.ExtraLocations)
	}
	if cfg.ExtraLocations[0].BasePaths[0] != "~/Code" {
		t.Errorf("expected paths to load into BasePaths, got %v", cfg.ExtraLocations[0].BasePaths)
	}
	if len(cfg.Daemon.Schedules) != 1 {
		t.Fatalf("expected 1 schedule, got %d", len(cfg.Daemon.Schedules))
	}
	s := cfg.Daemon.Schedules[0]
	if s.Name != "weekly" || !s.DryRun || cfg.ScheduleDays(s) != 60 {
		t.Errorf("unexpected schedule: %+v", s)
	}
	if cfg.Daemon.MetricsAddr != "127.0.0.1:9310" {
		t.Errorf("unexpected metrics addr %q", cfg.Daemon.MetricsAddr)
	}
	if cfg.Daemon.Notifications.Webhook.URL != "https://hooks.example.com/cache" {
		t.Errorf("unexpected webhook url %q", cfg.Daemon.Notifications.Webhook.URL)
	}
}

func TestLoadPartialConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("days: 7\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Days != 7 {
		t.Errorf("expected Days 7, got %d", cfg.Days)
	}
	// unspecified keys keep their defaults
	if cfg.TopCategories != DefaultTopCategories {
		t.Errorf("expected default TopCategories, got %d", cfg.TopCategories)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default LogLevel, got %q", cfg.LogLevel)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("days: [unclosed\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadNegativeDays(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("days: -1\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if !errors.Is(err, ErrInvalidDays) {
		t.Errorf("expected ErrInvalidDays, got %v", err)
	}
}

// =============================================================================
// Save Tests
// =============================================================================

func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := GetDefault()
	cfg.Days = 90
	cfg.ExtraLocations = []registry.Location{{Name: "Bazel", BasePaths: []string{"~/.cache/bazel"}}}

	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loadedCfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}

	if loadedCfg.Days != 90 {
		t.Errorf("expected Days 90 after save/load, got %d", loadedCfg.Days)
	}
	if len(loadedCfg.ExtraLocations) != 1 || loadedCfg.ExtraLocations[0].Name != "Bazel" {
		t.Errorf("extra locations lost: %+v", loadedCfg.ExtraLocations)
	}
}

// =============================================================================
// Validate Tests
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"zero days", func(c *Config) { c.Days = 0 }, ""},
		{"negative days", func(c *Config) { c.Days = -3 }, "days must be >= 0"},
		{"unknown size probe", func(c *Config) { c.SizeProbe = "magic" }, "size_probe"},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
		{"negative top categories", func(c *Config) { c.TopCategories = -1 }, "top_categories"},
		{"bad exclude pattern", func(c *Config) { c.ExcludePatterns = []string{"[unclosed"} }, "exclude pattern"},
		{"traversal exclude pattern", func(c *Config) { c.ExcludePatterns = []string{"../*"} }, "exclude pattern"},
		{"relative keep path", func(c *Config) { c.KeepPaths = []string{"relative"} }, "keep path"},
		{"home keep path", func(c *Config) { c.KeepPaths = []string{"~/keep"} }, ""},
		{"relative protected path", func(c *Config) { c.ProtectedPaths = []string{"etc"} }, "protected path"},
		{"unnamed location", func(c *Config) {
			c.ExtraLocations = []registry.Location{{BasePaths: []string{"/x"}}}
		}, "needs a name"},
		{"location without paths", func(c *Config) {
			c.ExtraLocations = []registry.Location{{Name: "X"}}
		}, "no paths"},
		{"location with nested pattern", func(c *Config) {
			c.ExtraLocations = []registry.Location{{Name: "X", BasePaths: []string{"~/x"}, Pattern: "a/b"}}
		}, "single directory name"},
		{"bad cron", func(c *Config) {
			c.Daemon.Schedules = []CleanupSchedule{{Name: "x", Schedule: "every tuesday"}}
		}, "invalid cron"},
		{"descriptor cron", func(c *Config) {
			c.Daemon.Schedules = []CleanupSchedule{{Name: "x", Schedule: "@daily"}}
		}, ""},
		{"duplicate schedule", func(c *Config) {
			c.Daemon.Schedules = []CleanupSchedule{{Name: "x", Schedule: "@daily"}, {Name: "x", Schedule: "@weekly"}}
		}, "duplicate"},
		{"unnamed schedule", func(c *Config) {
			c.Daemon.Schedules = []CleanupSchedule{{Schedule: "@daily"}}
		}, "needs a name"},
		{"bad webhook", func(c *Config) {
			c.Daemon.Notifications = NotificationConfig{Enabled: true, Webhook: WebhookConfig{URL: "ftp://x"}}
		}, "webhook"},
		{"disabled bad webhook", func(c *Config) {
			c.Daemon.Notifications = NotificationConfig{Enabled: false, Webhook: WebhookConfig{URL: "ftp://x"}}
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefault()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestScheduleDays(t *testing.T) {
	cfg := GetDefault()
	cfg.Days = 21

	if got := cfg.ScheduleDays(CleanupSchedule{Days: 7}); got != 7 {
		t.Errorf("expected schedule days 7, got %d", got)
	}
	if got := cfg.ScheduleDays(CleanupSchedule{}); got != 21 {
		t.Errorf("expected fallback to global days 21, got %d", got)
	}
}

func TestLocations(t *testing.T) {
	cfg := GetDefault()
	cfg.ExtraLocations = []registry.Location{
		{Name: "Logs", BasePaths: []string{"~/my/logs"}},
		{Name: "Bazel", BasePaths: []string{"~/.cache/bazel"}},
	}

	locs := cfg.Locations(platform.Linux)
	builtin := registry.Default(platform.Linux)
	if len(locs) != len(builtin)+1 {
		t.Fatalf("expected %d locations, got %d", len(builtin)+1, len(locs))
	}
	if locs[len(locs)-1].Name != "Bazel" {
		t.Errorf("expected Bazel last, got %s", locs[len(locs)-1].Name)
	}
	for _, l := range locs {
		if l.Name == "Logs" && l.BasePaths[0] != "~/my/logs" {
			t.Errorf("expected Logs to be replaced, got %v", l.BasePaths)
		}
	}
}

func TestExcluder(t *testing.T) {
	cfg := GetDefault()
	cfg.ExcludePatterns = []string{"*.keep"}
	cfg.KeepPaths = []string{"~/Library/Caches/precious"}

	x := cfg.Excluder("/home/dev")
	if !x.Match("/home/dev/Library/Caches/precious") {
		t.Error("expected keep path to be expanded and matched")
	}
	if !x.Match("/home/dev/Library/Caches/data.keep") {
		t.Error("expected pattern match")
	}
	if x.Match("/home/dev/Library/Caches/other") {
		t.Error("unexpected match")
	}
}

// =============================================================================
// GetConfigPath Tests
// =============================================================================

func TestGetConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}

	if !filepath.IsAbs(path) {
		t.Error("GetConfigPath should return absolute path")
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("expected path to end with config.yaml, got %s", filepath.Base(path))
	}
	if filepath.Base(filepath.Dir(path)) != "cache-cleaner" {
		t.Errorf("expected cache-cleaner config dir, got %s", path)
	}
}

func TestEnsureConfigExists(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := EnsureConfigExists()
	if err != nil {
		t.Fatalf("EnsureConfigExists failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config not created: %v", err)
	}
	if !strings.Contains(string(data), "days: 30") {
		t.Error("expected the example config to be written")
	}

	// second call leaves the file alone
	if err := os.WriteFile(path, []byte("days: 9\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := EnsureConfigExists(); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "days: 9\n" {
		t.Error("existing config was overwritten")
	}
}
