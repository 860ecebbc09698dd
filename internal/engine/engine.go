// Package engine runs scans and cleans over the cache location registry.
//
// An Engine allows one operation at a time. Scan and Clean start work on a
// background goroutine and return an Operation that streams one progress
// event per category and then delivers the result. Cancellation is
// cooperative: it is observed before every base path, pattern match and
// direct item, but never interrupts a size probe or a deletion in flight.
package engine

//go:generate mockgen -destination=./mocks/engine.go -package=mocks . Remover

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"time"

	"github.com/fenilsonani/cache-cleaner/internal/cleaner"
	"github.com/fenilsonani/cache-cleaner/internal/metrics"
	"github.com/fenilsonani/cache-cleaner/internal/platform"
	"github.com/fenilsonani/cache-cleaner/internal/progress"
	"github.com/fenilsonani/cache-cleaner/internal/registry"
	"github.com/fenilsonani/cache-cleaner/internal/scanner"
	"github.com/rs/zerolog"
)

// Remover deletes one cache item, recursively.
type Remover interface {
	RemoveAll(path string) error
}

// Engine owns the running guard and the cancel function of the current
// operation. Independent engines share nothing.
type Engine struct {
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc

	locations []registry.Location
	probe     scanner.SizeProbe
	remover   Remover
	exclude   *scanner.Excluder
	now       func() time.Time
	dryRun    bool
	home      string
	log       zerolog.Logger
	metrics   metrics.Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithExcluder keeps matching items out of both scan and clean.
func WithExcluder(x *scanner.Excluder) Option {
	return func(e *Engine) { e.exclude = x }
}

// WithDryRun makes Clean measure and report without deleting.
func WithDryRun(dryRun bool) Option {
	return func(e *Engine) { e.dryRun = dryRun }
}

// WithHome sets the directory "~" expands to. It defaults to the user's home.
func WithHome(home string) Option {
	return func(e *Engine) { e.home = home }
}

// New creates an engine over locations, expanding their base paths once.
func New(locations []registry.Location, probe scanner.SizeProbe, remover Remover, opts ...Option) (*Engine, error) {
	if probe == nil {
		return nil, errors.New("engine: size probe is required")
	}
	if remover == nil {
		return nil, errors.New("engine: remover is required")
	}

	e := &Engine{
		probe:   probe,
		remover: remover,
		now:     time.Now,
		log:     zerolog.Nop(),
		metrics: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.home == "" {
		home, err := platform.HomeDir()
		if err != nil {
			return nil, err
		}
		e.home = home
	}
	e.locations = registry.ExpandAll(locations, e.home)

	return e, nil
}

// Locations returns the expanded registry in visiting order.
func (e *Engine) Locations() []registry.Location {
	out := make([]registry.Location, len(e.locations))
	copy(out, e.locations)
	return out
}

// Running reports whether a scan or clean is in progress.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Cancel asks the running operation to stop. It is a no-op when idle.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// DiskSpace reports capacity of the volume holding the home directory. It
// may be called at any time, including while an operation runs.
func (e *Engine) DiskSpace() (platform.Space, error) {
	return platform.DiskSpace(e.home)
}

// Scan measures stale items in every location. It returns false without
// starting anything if another operation is running.
func (e *Engine) Scan(ctx context.Context, days int) (*Operation[*ScanReport], bool) {
	runCtx, ok := e.begin(ctx)
	if !ok {
		return nil, false
	}

	op := newOperation[*ScanReport](len(e.locations))
	go func() {
		report := e.scan(runCtx, days, op)
		e.finish()
		op.complete(report)
	}()

	return op, true
}

// Clean deletes stale items in every location. It shares the running guard
// with Scan.
func (e *Engine) Clean(ctx context.Context, days int) (*Operation[*CleanResult], bool) {
	runCtx, ok := e.begin(ctx)
	if !ok {
		return nil, false
	}

	op := newOperation[*CleanResult](len(e.locations))
	go func() {
		result := e.clean(runCtx, days, op)
		e.finish()
		op.complete(result)
	}()

	return op, true
}

func (e *Engine) begin(parent context.Context) (context.Context, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return nil, false
	}

	ctx, cancel := context.WithCancel(parent)
	e.running = true
	e.cancel = cancel
	return ctx, true
}

func (e *Engine) finish() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		e.cancel()
	}
	e.cancel = nil
	e.running = false
}

func (e *Engine) scan(ctx context.Context, days int, op *Operation[*ScanReport]) *ScanReport {
	start := e.now()
	days = clampDays(days)
	cutoff := scanner.Cutoff(start, days)
	log := e.log.With().Str("op", metrics.KindScan).Int("days", days).Logger()

	var categories []Category
	cancelled := false

	for i, loc := range e.locations {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		op.emit(progress.Event{
			Phase:    progress.PhaseScanning,
			Category: loc.Name,
			Index:    i,
			Total:    len(e.locations),
		})

		cat := Category{Name: loc.Name}
		complete := e.visit(ctx, loc, cutoff, func(path string) {
			size, err := e.probe.Size(path)
			if err != nil {
				log.Debug().Str("path", path).Err(err).Msg("size probe failed, skipping")
				return
			}
			cat.Size += size
			cat.Count++
		})
		if !complete {
			// partial totals would misreport the category
			cancelled = true
			break
		}

		categories = append(categories, cat)
	}

	report := &ScanReport{Days: days, Cutoff: cutoff, Cancelled: cancelled}
	report.Categories, report.TotalSize, report.TotalItems = finalize(categories)
	report.Duration = e.now().Sub(start)

	outcome := metrics.OutcomeCompleted
	if cancelled {
		outcome = metrics.OutcomeCancelled
	} else {
		e.metrics.SetReclaimable(report.Sizes())
	}
	e.metrics.ObserveOperation(metrics.KindScan, outcome, report.Duration)

	log.Info().
		Int64("total_size", report.TotalSize).
		Int("items", report.TotalItems).
		Int("categories", len(report.Categories)).
		Bool("cancelled", cancelled).
		Dur("duration", report.Duration).
		Msg("scan finished")

	return report
}

func (e *Engine) clean(ctx context.Context, days int, op *Operation[*CleanResult]) *CleanResult {
	start := e.now()
	days = clampDays(days)
	cutoff := scanner.Cutoff(start, days)
	log := e.log.With().Str("op", metrics.KindClean).Int("days", days).Bool("dry_run", e.dryRun).Logger()

	result := &CleanResult{Days: days, DryRun: e.dryRun}
	var categories []Category

	for i, loc := range e.locations {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}

		op.emit(progress.Event{
			Phase:    progress.PhaseCleaning,
			Category: loc.Name,
			Index:    i,
			Total:    len(e.locations),
			Freed:    result.FreedBytes,
		})

		cat := Category{Name: loc.Name}
		complete := e.visit(ctx, loc, cutoff, func(path string) {
			size, err := e.probe.Size(path)
			if err != nil {
				log.Debug().Str("path", path).Err(err).Msg("size probe failed, skipping")
				return
			}

			if !e.dryRun {
				if err := e.remover.RemoveAll(path); err != nil {
					delErr := cleaner.AsDeletionError(path, err)
					result.Failed = append(result.Failed, delErr)
					e.metrics.IncDeleteFailure(delErr.Reason.Label())
					log.Debug().Str("path", path).Str("reason", delErr.Reason.String()).Msg("item left in place")
					return
				}
			}

			cat.Size += size
			cat.Count++
			result.FreedBytes += size
			result.Deleted++
		})

		// deletions already done stay counted
		categories = append(categories, cat)
		if !complete {
			result.Cancelled = true
			break
		}
	}

	result.Categories, _, _ = finalize(categories)
	result.Duration = e.now().Sub(start)

	outcome := metrics.OutcomeCompleted
	if result.Cancelled {
		outcome = metrics.OutcomeCancelled
	}
	if !e.dryRun {
		e.metrics.AddFreed(result.FreedBytes)
	}
	e.metrics.ObserveOperation(metrics.KindClean, outcome, result.Duration)

	log.Info().
		Int64("freed", result.FreedBytes).
		Int("deleted", result.Deleted).
		Int("failed", len(result.Failed)).
		Bool("cancelled", result.Cancelled).
		Dur("duration", result.Duration).
		Msg("clean finished")

	return result
}

// visit calls fn for every eligible item of loc. It returns false when ctx
// was cancelled before the location was fully visited.
func (e *Engine) visit(ctx context.Context, loc registry.Location, cutoff time.Time, fn func(path string)) bool {
	item := func(path string, info fs.FileInfo) error {
		if !scanner.Eligible(info.ModTime(), cutoff) {
			return nil
		}
		if e.exclude.Match(path) {
			e.log.Debug().Str("path", path).Msg("excluded")
			return nil
		}
		fn(path)
		return nil
	}

	for _, base := range loc.BasePaths {
		if ctx.Err() != nil {
			return false
		}

		var err error
		if loc.IsPattern() {
			err = scanner.FindPattern(ctx, base, loc.Pattern, item)
		} else {
			err = scanner.ListDirect(ctx, base, item)
		}
		if err != nil {
			return false
		}
	}

	return true
}

func clampDays(days int) int {
	if days < 0 {
		return 0
	}
	return days
}
