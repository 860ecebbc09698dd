package progress

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Phase represents the current phase of operation
type Phase string

const (
	PhaseScanning  Phase = "scanning"
	PhaseCleaning  Phase = "cleaning"
	PhaseComplete  Phase = "complete"
	PhaseCancelled Phase = "cancelled"
)

// Event is emitted once per category, before the category is processed
type Event struct {
	Phase    Phase
	Category string
	Index    int   // zero-based position in the registry
	Total    int   // number of categories in the registry
	Freed    int64 // bytes freed so far; cleaning only
}

// Fraction returns the share of categories already finished, in [0, 1]
func (e Event) Fraction() float64 {
	if e.Total <= 0 {
		return 0
	}
	return float64(e.Index) / float64(e.Total)
}

// FormatEvent returns a human-readable progress line
func FormatEvent(e Event) string {
	switch e.Phase {
	case PhaseScanning:
		return fmt.Sprintf("[%d/%d] Scanning %s...", e.Index+1, e.Total, e.Category)
	case PhaseCleaning:
		return fmt.Sprintf("[%d/%d] Cleaning %s... %s freed so far",
			e.Index+1, e.Total, e.Category, FormatBytes(e.Freed))
	case PhaseCancelled:
		return "Cancelled"
	case PhaseComplete:
		return "Complete"
	default:
		return "Preparing..."
	}
}

// FormatBytes formats bytes in human-readable IEC units
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatDuration formats duration in human-readable format
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
