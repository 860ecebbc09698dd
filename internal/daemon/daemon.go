// Package daemon runs scheduled cleans in the background.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fenilsonani/cache-cleaner/internal/config"
	"github.com/fenilsonani/cache-cleaner/internal/engine"
	"github.com/fenilsonani/cache-cleaner/internal/metrics"
	"github.com/fenilsonani/cache-cleaner/internal/notify"
	"github.com/fenilsonani/cache-cleaner/internal/platform"
	"github.com/fenilsonani/cache-cleaner/internal/registry"
	"github.com/rs/zerolog"
)

// ErrBusy is returned when a job fires while another operation is running
var ErrBusy = errors.New("another scan or clean is running")

// Runner is the part of the engine the daemon drives
type Runner interface {
	Scan(ctx context.Context, days int) (*engine.Operation[*engine.ScanReport], bool)
	Clean(ctx context.Context, days int) (*engine.Operation[*engine.CleanResult], bool)
	Cancel()
}

// RunStore persists finished runs
type RunStore interface {
	Save(run *config.Run) error
}

// Daemon represents the cleanup daemon
type Daemon struct {
	config    *config.Config
	runner    Runner
	store     RunStore
	notifier  notify.Notifier
	scheduler *Scheduler
	logger    zerolog.Logger
	observe   func(schedule, outcome string)

	mu          sync.RWMutex
	running     bool
	shutdownCtx context.Context
	cancelFunc  context.CancelFunc
	metricsAddr net.Addr
}

// New creates a new daemon instance. notifier may be nil.
func New(cfg *config.Config, runner Runner, store RunStore, notifier notify.Notifier, logger zerolog.Logger) (*Daemon, error) {
	if len(cfg.Daemon.Schedules) == 0 {
		return nil, fmt.Errorf("no schedules configured under daemon.schedules")
	}
	if runner == nil || store == nil {
		return nil, fmt.Errorf("daemon needs a runner and a run store")
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Daemon{
		config:      cfg,
		runner:      runner,
		store:       store,
		notifier:    notifier,
		logger:      logger.With().Str("component", "daemon").Logger(),
		observe:     metrics.ObserveScheduledRun,
		shutdownCtx: ctx,
		cancelFunc:  cancel,
	}
	d.scheduler = NewScheduler(d, cfg.Daemon.Schedules)

	return d, nil
}

// Scheduler returns the daemon's job scheduler
func (d *Daemon) Scheduler() *Scheduler {
	return d.scheduler
}

// Start runs the daemon until ctx is done, Stop is called, or SIGINT/SIGTERM
// arrives. The running operation is cancelled on the way out.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon already running")
	}
	d.running = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	d.logger.Info().Int("schedules", len(d.config.Daemon.Schedules)).Msg("Starting cleanup daemon")

	pidFile, err := d.pidFilePath()
	if err != nil {
		return err
	}
	if pidFile != "" {
		if err := writePidFile(pidFile); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer removePidFile(pidFile)
	}

	stopSignals := d.setupSignalHandlers()
	defer stopSignals()

	go func() {
		select {
		case <-ctx.Done():
			d.Stop()
		case <-d.shutdownCtx.Done():
		}
	}()

	var srv *http.Server
	if addr := d.config.Daemon.MetricsAddr; addr != "" {
		srv, err = d.startMetricsServer(addr)
		if err != nil {
			return err
		}
	}

	if err := d.scheduler.Start(); err != nil {
		d.shutdownMetricsServer(srv)
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	d.logger.Info().Msg("Daemon started successfully")

	<-d.shutdownCtx.Done()

	d.logger.Info().Msg("Daemon shutting down")
	d.runner.Cancel()
	d.scheduler.Stop()
	d.shutdownMetricsServer(srv)

	return nil
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	if d.cancelFunc != nil {
		d.cancelFunc()
	}
}

// IsRunning returns whether the daemon is running
func (d *Daemon) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// MetricsAddr returns the address the metrics server listens on, or nil
func (d *Daemon) MetricsAddr() net.Addr {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.metricsAddr
}

func (d *Daemon) jobContext() context.Context {
	return d.shutdownCtx
}

// jobFor resolves a schedule against the global config
func (d *Daemon) jobFor(s config.CleanupSchedule) *CleanupJob {
	return &CleanupJob{
		Name:     s.Name,
		Schedule: s.Schedule,
		Days:     d.config.ScheduleDays(s),
		DryRun:   s.DryRun,
	}
}

// RunJob executes one job. A dry-run job scans and reports what a clean
// would free. It returns ErrBusy without doing anything when the engine is
// already running.
func (d *Daemon) RunJob(ctx context.Context, job *CleanupJob) error {
	var (
		run         *config.Run
		title, body string
	)

	if job.DryRun {
		op, ok := d.runner.Scan(ctx, job.Days)
		if !ok {
			return d.skip(job)
		}
		report := op.Wait()
		run = config.NewScanRun(report, job.Name)
		title, body = notify.ScanMessage(report)
	} else {
		op, ok := d.runner.Clean(ctx, job.Days)
		if !ok {
			return d.skip(job)
		}
		result := op.Wait()
		run = config.NewCleanRun(result, job.Name)
		title, body = notify.CleanMessage(result)
	}

	outcome := metrics.OutcomeCompleted
	if run.Cancelled {
		outcome = metrics.OutcomeCancelled
	}
	d.observe(job.Name, outcome)

	d.logger.Info().
		Str("job", job.Name).
		Str("kind", run.Kind).
		Int64("bytes", run.TotalSize).
		Int("items", run.Items).
		Int("failed", run.Failed).
		Bool("cancelled", run.Cancelled).
		Msg("Job finished")

	var errs []error
	if err := d.store.Save(run); err != nil {
		errs = append(errs, fmt.Errorf("failed to record run: %w", err))
	}

	if d.notifier != nil && !run.Cancelled {
		// the shutdown context may already be done; delivery gets its own deadline
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := d.notifier.Notify(nctx, title, body); err != nil {
			errs = append(errs, fmt.Errorf("failed to send notification: %w", err))
		}
	}

	for _, err := range errs {
		d.logger.Error().Str("job", job.Name).Err(err).Msg("Job follow-up failed")
	}

	return errors.Join(errs...)
}

func (d *Daemon) skip(job *CleanupJob) error {
	d.observe(job.Name, metrics.OutcomeSkipped)
	d.logger.Info().Str("job", job.Name).Msg("Engine busy, skipping job")
	return ErrBusy
}

// startMetricsServer serves /metrics on addr until shutdown
func (d *Daemon) startMetricsServer(addr string) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	d.mu.Lock()
	d.metricsAddr = ln.Addr()
	d.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	d.logger.Info().Str("addr", ln.Addr().String()).Msg("Serving metrics")
	return srv, nil
}

func (d *Daemon) shutdownMetricsServer(srv *http.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		d.logger.Warn().Err(err).Msg("Metrics server shutdown")
	}
}

// setupSignalHandlers stops the daemon on SIGINT or SIGTERM. The returned
// func detaches the handler.
func (d *Daemon) setupSignalHandlers() func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigChan:
			d.logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			d.Stop()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}

// pidFilePath expands a leading ~ in the configured PID file
func (d *Daemon) pidFilePath() (string, error) {
	path := d.config.Daemon.PidFile
	if path == "" || !strings.HasPrefix(path, registry.HomePlaceholder) {
		return path, nil
	}
	home, err := platform.HomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand PID file path: %w", err)
	}
	return registry.Expand(path, home), nil
}

// writePidFile refuses to start over the PID file of a live process
func writePidFile(path string) error {
	if data, err := os.ReadFile(path); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && processAlive(pid) {
			return fmt.Errorf("daemon already running with pid %d", pid)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644)
}

func removePidFile(path string) {
	_ = os.Remove(path)
}

func processAlive(pid int) bool {
	if pid <= 0 || pid == os.Getpid() {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
