package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fenilsonani/cache-cleaner/internal/cleaner"
	"github.com/fenilsonani/cache-cleaner/internal/config"
	"github.com/fenilsonani/cache-cleaner/internal/engine"
	"github.com/fenilsonani/cache-cleaner/internal/logger"
	"github.com/fenilsonani/cache-cleaner/internal/metrics"
	"github.com/fenilsonani/cache-cleaner/internal/notify"
	"github.com/fenilsonani/cache-cleaner/internal/platform"
	"github.com/fenilsonani/cache-cleaner/internal/registry"
	"github.com/fenilsonani/cache-cleaner/internal/scanner"
	"github.com/fenilsonani/cache-cleaner/internal/security"
	"github.com/fenilsonani/cache-cleaner/internal/ui"
	"github.com/rs/zerolog"
)

// historyKeep is how many runs the CLI keeps on disk
const historyKeep = 200

// app wires one engine and its collaborators from a loaded config
type app struct {
	cfg     *config.Config
	engine  *engine.Engine
	cleaner *cleaner.Cleaner
	history *config.History
	log     zerolog.Logger
}

func newApp(cfg *config.Config, dryRun bool) (*app, error) {
	home, err := platform.HomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to find home directory: %w", err)
	}
	return newAppAt(cfg, home, dryRun, nil)
}

// newAppAt builds the app against an explicit home and history store. A nil
// store opens the default one.
func newAppAt(cfg *config.Config, home string, dryRun bool, history *config.History) (*app, error) {
	probe, err := scanner.NewSizeProbe(cfg.SizeProbe)
	if err != nil {
		return nil, err
	}

	log := logger.Logger()

	validator := security.NewPathValidator()
	if info, err := platform.InfoFor(platform.Detect(), home, ""); err == nil {
		for _, p := range info.ProtectedPaths {
			validator.AddProtectedPath(p)
		}
	}
	for _, p := range cfg.ProtectedPaths {
		validator.AddProtectedPath(registry.Expand(p, home))
	}
	cl := cleaner.New(validator, log)

	e, err := engine.New(cfg.Locations(platform.Detect()), probe, cl,
		engine.WithHome(home),
		engine.WithLogger(log),
		engine.WithMetrics(metrics.Prometheus{}),
		engine.WithExcluder(cfg.Excluder(home)),
		engine.WithDryRun(dryRun),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	// nothing outside a cache location is ever deleted
	validator.AllowRoots(registry.Roots(e.Locations())...)

	if history == nil {
		history, err = config.DefaultHistory()
		if err != nil {
			return nil, err
		}
	}

	return &app{cfg: cfg, engine: e, cleaner: cl, history: history, log: log}, nil
}

// scan runs a scan, showing progress on the TUI or as plain lines on progressOut
func (a *app) scan(ctx context.Context, days int, tui bool, progressOut io.Writer) (*engine.ScanReport, error) {
	op, ok := a.engine.Scan(ctx, days)
	if !ok {
		return nil, fmt.Errorf("another scan or clean is already running")
	}

	if tui {
		if err := ui.Run(ui.NewScanModel(op, a.engine.Cancel, a.cfg.TopCategories)); err != nil {
			a.engine.Cancel()
			op.Wait()
			return nil, err
		}
	} else {
		ui.NewLinePrinter(progressOut).Follow(op.Events())
	}

	report := op.Wait()
	a.record(config.NewScanRun(report, "cli"))
	return report, nil
}

// clean runs a clean the same way scan does
func (a *app) clean(ctx context.Context, days int, tui bool, progressOut io.Writer) (*engine.CleanResult, error) {
	op, ok := a.engine.Clean(ctx, days)
	if !ok {
		return nil, fmt.Errorf("another scan or clean is already running")
	}

	if tui {
		if err := ui.Run(ui.NewCleanModel(op, a.engine.Cancel)); err != nil {
			a.engine.Cancel()
			op.Wait()
			return nil, err
		}
	} else {
		ui.NewLinePrinter(progressOut).Follow(op.Events())
	}

	result := op.Wait()
	a.record(config.NewCleanRun(result, "cli"))
	return result, nil
}

// record saves a run and trims old ones. History is best effort.
func (a *app) record(run *config.Run) {
	if err := a.history.Save(run); err != nil {
		a.log.Warn().Err(err).Msg("failed to record run")
		return
	}
	if _, err := a.history.Prune(historyKeep); err != nil {
		a.log.Warn().Err(err).Msg("failed to prune history")
	}
}

// notifier builds the daemon's notifier from config. Runs are always logged;
// a webhook is added when enabled.
func notifier(cfg *config.Config, log zerolog.Logger) notify.Notifier {
	n := notify.Multi{notify.NewLogNotifier(log)}
	if cfg.Daemon.Notifications.Enabled && cfg.Daemon.Notifications.Webhook.URL != "" {
		n = append(n, notify.NewWebhookNotifier(cfg.Daemon.Notifications.Webhook.URL, cfg.Daemon.Notifications.Webhook.Headers))
	}
	return n
}

// resolveDays picks the --days flag when set, otherwise the config value
func resolveDays(flagSet bool, flagDays, cfgDays int) (int, error) {
	days := cfgDays
	if flagSet {
		days = flagDays
	}
	if days < 0 {
		return 0, fmt.Errorf("%w: got %d", config.ErrInvalidDays, days)
	}
	return days, nil
}

// confirm asks a yes/no question; anything but y or yes is no
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s (y/N): ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// useTUI reports whether the interactive view should be used
func useTUI(noTUI bool) bool {
	return !noTUI && ui.IsTerminal(os.Stdout) && ui.IsTerminal(os.Stdin)
}
