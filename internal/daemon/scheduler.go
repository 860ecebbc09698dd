package daemon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fenilsonani/cache-cleaner/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// CleanupJob is one scheduled clean resolved against the global config
type CleanupJob struct {
	Name     string
	Schedule string
	Days     int
	DryRun   bool
}

// Scheduler manages scheduled cleanup jobs
type Scheduler struct {
	daemon    *Daemon
	cron      *cron.Cron
	jobs      map[string]cron.EntryID
	specs     map[string]*CleanupJob
	jobsMu    sync.RWMutex
	running   bool
	schedules []config.CleanupSchedule
	stopWait  time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(daemon *Daemon, schedules []config.CleanupSchedule) *Scheduler {
	parser := cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)

	log := cronLogger{daemon.logger}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log)),
	)

	return &Scheduler{
		daemon:    daemon,
		cron:      c,
		jobs:      make(map[string]cron.EntryID),
		specs:     make(map[string]*CleanupJob),
		schedules: schedules,
		stopWait:  10 * time.Second,
	}
}

// Start registers every configured schedule and starts cron
func (s *Scheduler) Start() error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	for _, schedule := range s.schedules {
		if err := s.addJobInternal(schedule); err != nil {
			return fmt.Errorf("failed to add schedule %s: %w", schedule.Name, err)
		}
	}

	s.cron.Start()
	s.running = true

	s.daemon.logger.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
	return nil
}

// Stop stops cron and waits for a running job, up to stopWait
func (s *Scheduler) Stop() {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(s.stopWait):
		s.daemon.logger.Warn().Dur("timeout", s.stopWait).Msg("Scheduler stop timed out")
	}

	s.running = false
	s.daemon.logger.Info().Msg("Scheduler stopped")
}

// addJobInternal adds a job (internal, no lock)
func (s *Scheduler) addJobInternal(schedule config.CleanupSchedule) error {
	if _, exists := s.jobs[schedule.Name]; exists {
		return fmt.Errorf("job %s already exists", schedule.Name)
	}

	job := s.daemon.jobFor(schedule)

	id, err := s.cron.AddFunc(schedule.Schedule, func() {
		s.daemon.logger.Info().Str("job", job.Name).Msg("Executing scheduled job")
		if err := s.daemon.RunJob(s.daemon.jobContext(), job); err != nil {
			s.daemon.logger.Warn().Str("job", job.Name).Err(err).Msg("Scheduled job did not run")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.jobs[schedule.Name] = id
	s.specs[schedule.Name] = job

	s.daemon.logger.Info().
		Str("job", schedule.Name).
		Str("schedule", schedule.Schedule).
		Int("days", job.Days).
		Bool("dry_run", job.DryRun).
		Time("next_run", s.cron.Entry(id).Next).
		Msg("Added job")
	return nil
}

// AddJob adds a new job to the scheduler
func (s *Scheduler) AddJob(schedule config.CleanupSchedule) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	return s.addJobInternal(schedule)
}

// RemoveJob removes a job from the scheduler
func (s *Scheduler) RemoveJob(name string) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	id, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.cron.Remove(id)
	delete(s.jobs, name)
	delete(s.specs, name)

	s.daemon.logger.Info().Str("job", name).Msg("Removed job")
	return nil
}

// GetNextRun returns the next run time for a job. It is zero until the
// scheduler has started.
func (s *Scheduler) GetNextRun(name string) (time.Time, error) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	id, exists := s.jobs[name]
	if !exists {
		return time.Time{}, fmt.Errorf("job %s not found", name)
	}

	return s.cron.Entry(id).Next, nil
}

// ListJobs returns information about all jobs
func (s *Scheduler) ListJobs() []JobInfo {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	names := make(map[cron.EntryID]string, len(s.jobs))
	for name, id := range s.jobs {
		names[id] = name
	}

	jobs := make([]JobInfo, 0, len(s.jobs))
	for _, entry := range s.cron.Entries() {
		name, ok := names[entry.ID]
		if !ok {
			continue
		}
		jobs = append(jobs, JobInfo{
			Name:    name,
			NextRun: entry.Next,
			PrevRun: entry.Prev,
		})
	}

	return jobs
}

// TriggerJob runs a job now, outside its schedule
func (s *Scheduler) TriggerJob(ctx context.Context, name string) error {
	s.jobsMu.RLock()
	job, exists := s.specs[name]
	s.jobsMu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.daemon.logger.Info().Str("job", name).Msg("Manually triggering job")
	return s.daemon.RunJob(ctx, job)
}

// JobInfo contains information about a scheduled job
type JobInfo struct {
	Name    string
	NextRun time.Time
	PrevRun time.Time
}

// cronLogger sends cron's own logging to zerolog
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
