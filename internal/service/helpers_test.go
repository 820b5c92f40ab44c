package service

import "time"

func f64(v float64) *float64 { return &v }
func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

// fixedClock returns a now func pinned to t
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
