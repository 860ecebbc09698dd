package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fenilsonani/cache-cleaner/internal/engine"
	"github.com/fenilsonani/cache-cleaner/internal/platform"
)

// ErrNoHistory is returned by Latest when nothing has been recorded yet
var ErrNoHistory = errors.New("no runs recorded")

// Run kinds
const (
	RunScan  = "scan"
	RunClean = "clean"
)

// Run is one recorded scan or clean
type Run struct {
	ID         string        `json:"id"`
	Kind       string        `json:"kind"`
	Trigger    string        `json:"trigger,omitempty"` // cli or schedule name
	Timestamp  time.Time     `json:"timestamp"`
	Days       int           `json:"days"`
	TotalSize  int64         `json:"total_size"`
	Items      int           `json:"items"`
	Failed     int           `json:"failed,omitempty"`
	DryRun     bool          `json:"dry_run,omitempty"`
	Cancelled  bool          `json:"cancelled,omitempty"`
	Categories []RunCategory `json:"categories"`
}

// RunCategory is the per-category part of a Run
type RunCategory struct {
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	Count int    `json:"count"`
}

// NewScanRun records a scan report
func NewScanRun(report *engine.ScanReport, trigger string) *Run {
	return &Run{
		Kind:       RunScan,
		Trigger:    trigger,
		Days:       report.Days,
		TotalSize:  report.TotalSize,
		Items:      report.TotalItems,
		Cancelled:  report.Cancelled,
		Categories: runCategories(report.Categories),
	}
}

// NewCleanRun records a clean result
func NewCleanRun(result *engine.CleanResult, trigger string) *Run {
	return &Run{
		Kind:       RunClean,
		Trigger:    trigger,
		Days:       result.Days,
		TotalSize:  result.FreedBytes,
		Items:      result.Deleted,
		Failed:     len(result.Failed),
		DryRun:     result.DryRun,
		Cancelled:  result.Cancelled,
		Categories: runCategories(result.Categories),
	}
}

func runCategories(categories []engine.Category) []RunCategory {
	out := make([]RunCategory, 0, len(categories))
	for _, c := range categories {
		out = append(out, RunCategory{Name: c.Name, Size: c.Size, Count: c.Count})
	}
	return out
}

// History persists runs as one JSON file each
type History struct {
	dir string
}

// NewHistory creates a history store rooted at dir
func NewHistory(dir string) (*History, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &History{dir: dir}, nil
}

// DefaultHistory opens the store under the user config directory
func DefaultHistory() (*History, error) {
	configDir, err := platform.GetUserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	return NewHistory(filepath.Join(configDir, "history"))
}

// Dir returns the history directory path
func (h *History) Dir() string {
	return h.dir
}

// Save writes run to disk, filling in ID and Timestamp when unset
func (h *History) Save(run *Run) error {
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}
	if run.ID == "" {
		run.ID = generateRunID(run.Kind, run.Timestamp)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	filename := filepath.Join(h.dir, run.ID+".json")
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write run file: %w", err)
	}

	return nil
}

// Load reads a run by ID
func (h *History) Load(id string) (*Run, error) {
	data, err := os.ReadFile(filepath.Join(h.dir, id+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}

	return &run, nil
}

// List returns all recorded runs, newest first. Unreadable files are skipped.
func (h *History) List() ([]*Run, error) {
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	var runs []*Run
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		run, err := h.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		runs = append(runs, run)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})

	return runs, nil
}

// Latest returns the most recent run
func (h *History) Latest() (*Run, error) {
	runs, err := h.List()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNoHistory
	}
	return runs[0], nil
}

// Delete removes a run by ID
func (h *History) Delete(id string) error {
	if err := os.Remove(filepath.Join(h.dir, id+".json")); err != nil {
		return fmt.Errorf("failed to delete run file: %w", err)
	}
	return nil
}

// Prune keeps the newest keep runs and deletes the rest. It returns the
// number of runs removed.
func (h *History) Prune(keep int) (int, error) {
	runs, err := h.List()
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}

	removed := 0
	for _, run := range runs[min(keep, len(runs)):] {
		if err := h.Delete(run.ID); err != nil {
			continue
		}
		removed++
	}

	return removed, nil
}

// sortable by name, unique per nanosecond
func generateRunID(kind string, ts time.Time) string {
	if kind == "" {
		kind = "run"
	}
	return fmt.Sprintf("%s_%d", kind, ts.UnixNano())
}
