package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fenilsonani/cache-cleaner/internal/config"
	"github.com/fenilsonani/cache-cleaner/internal/daemon"
	"github.com/fenilsonani/cache-cleaner/internal/logger"
	"github.com/fenilsonani/cache-cleaner/internal/progress"
	"github.com/fenilsonani/cache-cleaner/internal/reporter"
	"github.com/fenilsonani/cache-cleaner/internal/ui"
	"github.com/fenilsonani/cache-cleaner/internal/ui/styles"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	configPath   string
	logLevel     string
	noTUI        bool
	days         int
	dryRun       bool
	force        bool
	outputFmt    string
	outputFile   string
	manifestFile string
	historyLimit int
	historyKeepN int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cachecleaner",
	Short: "Find and remove stale developer caches",
	Long: `cachecleaner finds developer caches (Xcode, npm, node_modules, Docker,
Homebrew, Gradle, pip and more) that have not been touched for a number of
days, reports how much space they take, and removes them on request.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Report stale cache without deleting anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		d, err := resolveDays(cmd.Flags().Changed("days"), days, cfg.Days)
		if err != nil {
			return err
		}
		format, err := reporter.ParseFormat(outputFmt)
		if err != nil {
			return err
		}

		a, err := newApp(cfg, false)
		if err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		// the TUI only fronts the human summary
		tui := useTUI(noTUI) && format == reporter.FormatSummary && outputFile == ""
		report, err := a.scan(ctx, d, tui, os.Stderr)
		if err != nil {
			return err
		}

		if outputFile != "" {
			if err := reporter.SaveToFile(report, outputFile, format); err != nil {
				return fmt.Errorf("failed to save report: %w", err)
			}
			fmt.Printf("Report saved to: %s\n", outputFile)
			return nil
		}

		space, spaceErr := a.engine.DiskSpace()
		if tui {
			if spaceErr == nil {
				fmt.Println(reporter.DiskLine(space, report.TotalSize))
			}
			return nil
		}

		rptr := reporter.New(os.Stdout, format).WithTop(cfg.TopCategories)
		if spaceErr == nil {
			rptr.WithDiskSpace(space)
		}
		if err := rptr.Report(report); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
		return nil
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete stale cache",
	Long: `Scans first, shows what would be removed, asks for confirmation and
then deletes. Use --dry-run to see what a clean would free, --force to skip
the question.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		d, err := resolveDays(cmd.Flags().Changed("days"), days, cfg.Days)
		if err != nil {
			return err
		}

		a, err := newApp(cfg, dryRun)
		if err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()
		tui := useTUI(noTUI)

		if !force && !dryRun {
			if !ui.IsTerminal(os.Stdin) {
				return fmt.Errorf("refusing to clean without --force when stdin is not a terminal")
			}

			report, err := a.scan(ctx, d, tui, os.Stderr)
			if err != nil {
				return err
			}
			if !tui {
				if err := reporter.New(os.Stdout, reporter.FormatSummary).WithTop(cfg.TopCategories).Report(report); err != nil {
					return err
				}
			}
			if report.Cancelled || report.TotalSize == 0 {
				return nil
			}
			if !confirm(os.Stdin, os.Stdout, fmt.Sprintf("\nDelete %s of cache?", progress.FormatBytes(report.TotalSize))) {
				fmt.Println("Clean cancelled")
				return nil
			}
		}

		result, err := a.clean(ctx, d, tui, os.Stderr)
		if err != nil {
			return err
		}

		rptr := reporter.New(os.Stdout, reporter.FormatSummary)
		if space, err := a.engine.DiskSpace(); err == nil {
			rptr.WithDiskSpace(space)
		}
		if err := rptr.ReportClean(result); err != nil {
			return err
		}

		if manifestFile != "" && !dryRun {
			if err := a.cleaner.Manifest().Save(manifestFile); err != nil {
				return err
			}
			fmt.Printf("Deletion manifest saved to: %s\n", manifestFile)
		}
		return nil
	},
}

var diskCmd = &cobra.Command{
	Use:   "disk",
	Short: "Show free space on the home volume",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cfg, false)
		if err != nil {
			return err
		}

		space, err := a.engine.DiskSpace()
		if err != nil {
			return fmt.Errorf("failed to read disk space: %w", err)
		}

		// the last scan, if any, tells what a clean could free
		var reclaimable int64
		if runs, err := a.history.List(); err == nil {
			for _, r := range runs {
				if r.Kind == config.RunScan && !r.Cancelled {
					reclaimable = r.TotalSize
					break
				}
			}
		}

		fmt.Println(reporter.DiskLine(space, reclaimable))
		fmt.Printf("   %s used of %s (%.0f%%)\n",
			progress.FormatBytes(int64(space.Used())), progress.FormatBytes(int64(space.Total)),
			float64(space.Used())*100/float64(max(space.Total, 1)))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past scans and cleans",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := config.DefaultHistory()
		if err != nil {
			return err
		}
		runs, err := h.List()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet")
			return nil
		}
		if historyLimit > 0 && len(runs) > historyLimit {
			runs = runs[:historyLimit]
		}
		fmt.Println(historyTable(runs))
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := config.DefaultHistory()
		if err != nil {
			return err
		}
		n, err := h.Prune(historyKeepN)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d runs\n", n)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the example configuration if none exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.EnsureConfigExists()
		if err != nil {
			return err
		}
		fmt.Printf("Config file: %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			fmt.Printf("# %s does not exist, showing defaults\n", path)
		} else {
			fmt.Printf("# %s\n", path)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List the cache locations that are scanned",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cfg, false)
		if err != nil {
			return err
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(styles.Border)).
			Headers("CATEGORY", "MATCH", "PATHS")
		for _, loc := range a.engine.Locations() {
			match := "children"
			if loc.IsPattern() {
				match = loc.Pattern + "/"
			}
			t.Row(loc.Name, match, strings.Join(loc.BasePaths, "\n"))
		}
		fmt.Println(t.Render())
		return nil
	},
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run scheduled cleans in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cfg, false)
		if err != nil {
			return err
		}

		log := logger.Component("daemon")
		d, err := daemon.New(cfg, a.engine, a.history, notifier(cfg, log), logger.Logger())
		if err != nil {
			return err
		}

		for _, s := range cfg.Daemon.Schedules {
			fmt.Printf("  - %s: %s (days: %d, dry run: %v)\n", s.Name, s.Schedule, cfg.ScheduleDays(s), s.DryRun)
		}
		return d.Start(cmd.Context())
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noTUI, "no-tui", false, "print plain progress lines instead of the interactive view")
	rootCmd.PersistentPreRunE = setupLogging

	daysHelp := fmt.Sprintf("only touch items older than this many days (suggested: %s; default from config)", suggestedDays())

	// Scan command flags
	scanCmd.Flags().IntVar(&days, "days", config.DefaultDays, daysHelp)
	scanCmd.Flags().StringVarP(&outputFmt, "output", "o", "summary", "output format (summary, table, json, yaml)")
	scanCmd.Flags().StringVar(&outputFile, "file", "", "save report to file")

	// Clean command flags
	cleanCmd.Flags().IntVar(&days, "days", config.DefaultDays, daysHelp)
	cleanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be deleted without deleting")
	cleanCmd.Flags().BoolVar(&force, "force", false, "skip the confirmation prompt")
	cleanCmd.Flags().StringVar(&manifestFile, "manifest", "", "write the list of deleted paths to this file")

	// History command flags
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to show (0 for all)")
	historyPruneCmd.Flags().IntVar(&historyKeepN, "keep", 50, "number of runs to keep")
	historyCmd.AddCommand(historyPruneCmd)

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(diskCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(locationsCmd)
	rootCmd.AddCommand(daemonCmd)
}

// setupLogging configures zerolog before any command runs. Terminals get
// the console writer, everything else JSON.
func setupLogging(cmd *cobra.Command, args []string) error {
	level := logLevel
	if level == "" {
		level = "warn"
		if cmd == daemonCmd {
			level = config.GetDefault().LogLevel
			if cfg, err := loadConfig(); err == nil {
				level = cfg.LogLevel
			}
		}
	}
	logger.Init(level, ui.IsTerminal(os.Stderr))
	return nil
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

func loadConfig() (*config.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM, which cancels the
// running operation in plain mode
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func historyTable(runs []*config.Run) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Border)).
		Headers("WHEN", "KIND", "TRIGGER", "DAYS", "SIZE", "ITEMS", "NOTE")
	for _, r := range runs {
		t.Row(
			r.Timestamp.Local().Format(time.DateTime),
			r.Kind,
			r.Trigger,
			fmt.Sprint(r.Days),
			progress.FormatBytes(r.TotalSize),
			fmt.Sprint(r.Items),
			runNote(r),
		)
	}
	return t.Render()
}

func runNote(r *config.Run) string {
	var notes []string
	if r.DryRun {
		notes = append(notes, "dry run")
	}
	if r.Cancelled {
		notes = append(notes, "cancelled")
	}
	if r.Failed > 0 {
		notes = append(notes, fmt.Sprintf("%d failed", r.Failed))
	}
	return strings.Join(notes, ", ")
}

func suggestedDays() string {
	parts := make([]string, len(config.SuggestedDays))
	for i, d := range config.SuggestedDays {
		parts[i] = fmt.Sprint(d)
	}
	return strings.Join(parts, ", ")
}
