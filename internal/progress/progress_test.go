package progress

import (
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{4096, "4.0 KiB"},
		{1536 * 1024, "1.5 MiB"},
		{3 << 30, "3.0 GiB"},
		{-2048, "-2.0 KiB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{400 * time.Millisecond, "0s"},
		{42 * time.Second, "42s"},
		{3*time.Minute + 5*time.Second, "3m5s"},
		{2*time.Hour + 30*time.Second, "2h0m30s"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name string
		in   Event
		want string
	}{
		{"scanning", Event{Phase: PhaseScanning, Category: "Xcode", Index: 1, Total: 12}, "[2/12] Scanning Xcode..."},
		{"cleaning", Event{Phase: PhaseCleaning, Category: "Logs", Index: 11, Total: 12, Freed: 4096}, "[12/12] Cleaning Logs... 4.0 KiB freed so far"},
		{"cancelled", Event{Phase: PhaseCancelled}, "Cancelled"},
		{"unknown", Event{}, "Preparing..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatEvent(tt.in); got != tt.want {
				t.Errorf("FormatEvent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventFraction(t *testing.T) {
	if got := (Event{Index: 3, Total: 12}).Fraction(); got != 0.25 {
		t.Errorf("Fraction() = %v, want 0.25", got)
	}
	if got := (Event{}).Fraction(); got != 0 {
		t.Errorf("Fraction() with no total = %v, want 0", got)
	}
}
