package scanner

import "time"

// Cutoff returns the instant days whole days before now.
func Cutoff(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}

// Eligible reports whether an entry last modified at mod is older than cutoff.
// An entry modified exactly at cutoff is not eligible.
func Eligible(mod, cutoff time.Time) bool {
	return mod.Before(cutoff)
}
