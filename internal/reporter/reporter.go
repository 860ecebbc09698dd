package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fenilsonani/cache-cleaner/internal/cleaner"
	"github.com/fenilsonani/cache-cleaner/internal/engine"
	"github.com/fenilsonani/cache-cleaner/internal/platform"
	"github.com/fenilsonani/cache-cleaner/internal/progress"
	"github.com/fenilsonani/cache-cleaner/internal/ui/styles"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatSummary OutputFormat = "summary"
)

// ParseFormat validates a format name from the command line
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatTable, FormatJSON, FormatYAML, FormatSummary:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat
	top    int
	disk   *platform.Space
	now    func() time.Time
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
		now:    time.Now,
	}
}

// WithTop limits the summary to the n largest categories. Zero lists all.
func (r *Reporter) WithTop(n int) *Reporter {
	r.top = n
	return r
}

// WithDiskSpace adds free space context to the summary
func (r *Reporter) WithDiskSpace(space platform.Space) *Reporter {
	r.disk = &space
	return r
}

// Report renders a scan report
func (r *Reporter) Report(report *engine.ScanReport) error {
	switch r.format {
	case FormatTable:
		return r.scanTable(report)
	case FormatJSON:
		return r.encodeJSON(r.scanDocument(report))
	case FormatYAML:
		return r.encodeYAML(r.scanDocument(report))
	case FormatSummary:
		return r.scanSummary(report)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// ReportClean renders a clean result
func (r *Reporter) ReportClean(result *engine.CleanResult) error {
	switch r.format {
	case FormatTable, FormatSummary:
		return r.cleanSummary(result)
	case FormatJSON:
		return r.encodeJSON(r.cleanDocument(result))
	case FormatYAML:
		return r.encodeYAML(r.cleanDocument(result))
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// scanSummary generates a summary report
func (r *Reporter) scanSummary(report *engine.ScanReport) error {
	fmt.Fprintf(r.writer, "=== Cache older than %d days ===\n", report.Days)

	if report.TotalSize <= 0 {
		fmt.Fprintln(r.writer, "No old cache found")
	} else {
		fmt.Fprintf(r.writer, "Total: %s (%d items)\n", progress.FormatBytes(report.TotalSize), report.TotalItems)

		shown := report.Top(r.top)
		for _, c := range shown {
			fmt.Fprintf(r.writer, "  %s: %s\n", c.Name, progress.FormatBytes(c.Size))
		}
		if rest := len(report.Categories) - len(shown); rest > 0 {
			fmt.Fprintf(r.writer, "  ... and %d more\n", rest)
		}
	}

	if r.disk != nil {
		fmt.Fprintf(r.writer, "\n%s\n", DiskLine(*r.disk, report.TotalSize))
	}

	if report.Cancelled {
		fmt.Fprintln(r.writer, "\nScan cancelled; only finished categories are shown.")
	}

	return nil
}

// scanTable renders every category with its share of the total
func (r *Reporter) scanTable(report *engine.ScanReport) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Border)).
		Headers("CATEGORY", "SIZE", "ITEMS", "SHARE").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.BoldStyle.Padding(0, 1)
			case col == 1:
				return styles.FileSizeStyle.Padding(0, 1)
			default:
				return lipgloss.NewStyle().Padding(0, 1)
			}
		})

	for _, c := range report.Categories {
		t.Row(c.Name, progress.FormatBytes(c.Size), fmt.Sprint(c.Count), share(c.Size, report.TotalSize))
	}

	fmt.Fprintln(r.writer, t.Render())
	fmt.Fprintf(r.writer, "Total: %s (%d items) older than %d days\n",
		progress.FormatBytes(report.TotalSize), report.TotalItems, report.Days)
	if r.disk != nil {
		fmt.Fprintln(r.writer, DiskLine(*r.disk, report.TotalSize))
	}

	return nil
}

func (r *Reporter) cleanSummary(result *engine.CleanResult) error {
	verb := "Cleaned"
	if result.DryRun {
		verb = "Would clean"
	}
	fmt.Fprintf(r.writer, "✓ %s %s (%d items)\n", verb, progress.FormatBytes(result.FreedBytes), result.Deleted)

	for _, c := range result.Categories {
		fmt.Fprintf(r.writer, "  %s: %s\n", c.Name, progress.FormatBytes(c.Size))
	}

	if summary := cleaner.FormatErrorSummary(result.Failed); summary != "" {
		fmt.Fprint(r.writer, summary)
	}

	if r.disk != nil {
		fmt.Fprintf(r.writer, "\n%s\n", DiskLine(*r.disk, 0))
	}

	if result.Cancelled {
		fmt.Fprintln(r.writer, "\nClean cancelled; items already deleted stay deleted.")
	}

	return nil
}

type scanDocument struct {
	Timestamp          string            `json:"timestamp" yaml:"timestamp"`
	Days               int               `json:"days" yaml:"days"`
	TotalSize          int64             `json:"total_size" yaml:"total_size"`
	TotalSizeFormatted string            `json:"total_size_formatted" yaml:"total_size_formatted"`
	TotalItems         int               `json:"total_items" yaml:"total_items"`
	Cancelled          bool              `json:"cancelled" yaml:"cancelled"`
	Categories         []engine.Category `json:"categories" yaml:"categories"`
	Disk               *diskDocument     `json:"disk,omitempty" yaml:"disk,omitempty"`
}

type cleanDocument struct {
	Timestamp           string            `json:"timestamp" yaml:"timestamp"`
	Days                int               `json:"days" yaml:"days"`
	DryRun              bool              `json:"dry_run" yaml:"dry_run"`
	FreedBytes          int64             `json:"freed_bytes" yaml:"freed_bytes"`
	FreedBytesFormatted string            `json:"freed_bytes_formatted" yaml:"freed_bytes_formatted"`
	Deleted             int               `json:"deleted" yaml:"deleted"`
	Cancelled           bool              `json:"cancelled" yaml:"cancelled"`
	Categories          []engine.Category `json:"categories" yaml:"categories"`
	Failed              []failureDocument `json:"failed,omitempty" yaml:"failed,omitempty"`
}

type failureDocument struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

type diskDocument struct {
	Total uint64 `json:"total" yaml:"total"`
	Free  uint64 `json:"free" yaml:"free"`
}

func (r *Reporter) scanDocument(report *engine.ScanReport) scanDocument {
	doc := scanDocument{
		Timestamp:          r.now().Format(time.RFC3339),
		Days:               report.Days,
		TotalSize:          report.TotalSize,
		TotalSizeFormatted: progress.FormatBytes(report.TotalSize),
		TotalItems:         report.TotalItems,
		Cancelled:          report.Cancelled,
		Categories:         report.Categories,
	}
	if doc.Categories == nil {
		doc.Categories = []engine.Category{}
	}
	if r.disk != nil {
		doc.Disk = &diskDocument{Total: r.disk.Total, Free: r.disk.Free}
	}
	return doc
}

func (r *Reporter) cleanDocument(result *engine.CleanResult) cleanDocument {
	doc := cleanDocument{
		Timestamp:           r.now().Format(time.RFC3339),
		Days:                result.Days,
		DryRun:              result.DryRun,
		FreedBytes:          result.FreedBytes,
		FreedBytesFormatted: progress.FormatBytes(result.FreedBytes),
		Deleted:             result.Deleted,
		Cancelled:           result.Cancelled,
		Categories:          result.Categories,
	}
	if doc.Categories == nil {
		doc.Categories = []engine.Category{}
	}
	for _, f := range result.Failed {
		doc.Failed = append(doc.Failed, failureDocument{Path: f.Path, Reason: f.Reason.Label()})
	}
	return doc
}

func (r *Reporter) encodeJSON(v interface{}) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (r *Reporter) encodeYAML(v interface{}) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(v)
}

// DiskLine describes free space, and what it would be after freeing
// reclaimable bytes when that is positive
func DiskLine(space platform.Space, reclaimable int64) string {
	free := progress.FormatBytes(int64(space.Free))
	if reclaimable > 0 {
		after := progress.FormatBytes(int64(space.Free) + reclaimable)
		return fmt.Sprintf("💾 %s free → %s after clean", free, after)
	}
	return fmt.Sprintf("💾 %s free of %s", free, progress.FormatBytes(int64(space.Total)))
}

// share renders part/total as a ten-cell bar and a percentage
func share(part, total int64) string {
	if total <= 0 {
		return ""
	}
	const cells = 10
	filled := int(part * cells / total)
	return fmt.Sprintf("%s%s %3.0f%%",
		strings.Repeat("█", filled), strings.Repeat("░", cells-filled),
		float64(part)*100/float64(total))
}

// SaveToFile saves the report to a file
func SaveToFile(report *engine.ScanReport, path string, format OutputFormat) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	return New(file, format).Report(report)
}
