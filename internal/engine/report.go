package engine

import (
	"sort"
	"time"

	"github.com/fenilsonani/cache-cleaner/internal/cleaner"
)

// Category is the stale data found in one registry location.
type Category struct {
	Name  string `json:"name" yaml:"name"`
	Size  int64  `json:"size" yaml:"size"`
	Count int    `json:"count" yaml:"count"`
}

// ScanReport is the result of a scan. Categories are sorted by size,
// largest first, and never contain a zero-size entry.
type ScanReport struct {
	Categories []Category    `json:"categories" yaml:"categories"`
	TotalSize  int64         `json:"total_size" yaml:"total_size"`
	TotalItems int           `json:"total_items" yaml:"total_items"`
	Days       int           `json:"days" yaml:"days"`
	Cutoff     time.Time     `json:"cutoff" yaml:"cutoff"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	Cancelled  bool          `json:"cancelled" yaml:"cancelled"`
}

// Top returns at most n of the largest categories.
func (r *ScanReport) Top(n int) []Category {
	if n <= 0 || n >= len(r.Categories) {
		return r.Categories
	}
	return r.Categories[:n]
}

// Sizes returns category sizes keyed by name.
func (r *ScanReport) Sizes() map[string]int64 {
	sizes := make(map[string]int64, len(r.Categories))
	for _, c := range r.Categories {
		sizes[c.Name] = c.Size
	}
	return sizes
}

// CleanResult is the outcome of a clean. FreedBytes only counts items that
// were actually removed, or would have been on a dry run.
type CleanResult struct {
	FreedBytes int64                    `json:"freed_bytes" yaml:"freed_bytes"`
	Deleted    int                      `json:"deleted" yaml:"deleted"`
	Failed     []*cleaner.DeletionError `json:"-" yaml:"-"`
	Categories []Category               `json:"categories" yaml:"categories"`
	Days       int                      `json:"days" yaml:"days"`
	DryRun     bool                     `json:"dry_run" yaml:"dry_run"`
	Duration   time.Duration            `json:"duration" yaml:"duration"`
	Cancelled  bool                     `json:"cancelled" yaml:"cancelled"`
}

// finalize drops empty categories, sorts by size descending and fills the
// totals. Ties keep registry order.
func finalize(categories []Category) ([]Category, int64, int) {
	kept := make([]Category, 0, len(categories))
	var size int64
	var items int
	for _, c := range categories {
		if c.Size <= 0 {
			continue
		}
		kept = append(kept, c)
		size += c.Size
		items += c.Count
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Size > kept[j].Size
	})

	return kept, size, items
}
