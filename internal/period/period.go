// Package period computes the date windows the compliance and reporting
// layers share: the current-period compliance reference date and the
// fixed bucket sequences behind the evolution charts.
package period

import (
	"time"
)

// DayFormat labels daily buckets and reference dates.
const DayFormat = "2006-01-02"

// MonthStart returns midnight on the first day of t's calendar month, in
// t's location. Month boundaries are calendar-accurate, never a 30-day
// approximation.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// DayStart truncates t to midnight in its location.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ReferenceDate returns the earliest date a collection must have occurred
// to count toward current-period compliance of an assignment:
// max(assignment start, start of the current calendar month), at day
// granularity. An assignment created mid-month is judged from its own
// start; older assignments are re-evaluated from each month's first day.
func ReferenceDate(assignmentStart, now time.Time) time.Time {
	start := DayStart(assignmentStart)
	monthStart := MonthStart(now)
	if start.After(monthStart) {
		return start
	}
	return monthStart
}

// Window is a half-open [Start, End) reporting bucket with a stable chart
// label. Empty buckets must still be emitted zero-valued so chart x-axes
// keep their shape.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// ContainsTime reports whether t falls inside the window.
func (w Window) ContainsTime(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// DailyWindows returns n single-day buckets ending today, oldest first.
func DailyWindows(now time.Time, n int) []Window {
	if n <= 0 {
		return nil
	}
	today := DayStart(now)
	windows := make([]Window, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := today.AddDate(0, 0, -i)
		windows = append(windows, Window{
			Start: start,
			End:   start.AddDate(0, 0, 1),
			Label: start.Format(DayFormat),
		})
	}
	return windows
}

// WeeklyWindows returns n contiguous 7-day buckets, the last one ending
// at the end of today, oldest first.
func WeeklyWindows(now time.Time, n int) []Window {
	if n <= 0 {
		return nil
	}
	end := DayStart(now).AddDate(0, 0, 1)
	windows := make([]Window, 0, n)
	for i := n - 1; i >= 0; i-- {
		wEnd := end.AddDate(0, 0, -7*i)
		wStart := wEnd.AddDate(0, 0, -7)
		windows = append(windows, Window{
			Start: wStart,
			End:   wEnd,
			Label: wStart.Format(DayFormat),
		})
	}
	return windows
}

// MonthlyWindows returns n contiguous calendar-month buckets ending with
// the current month, oldest first. Buckets follow real month boundaries,
// so bucket widths vary with month length.
func MonthlyWindows(now time.Time, n int) []Window {
	if n <= 0 {
		return nil
	}
	current := MonthStart(now)
	windows := make([]Window, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		windows = append(windows, Window{
			Start: start,
			End:   start.AddDate(0, 1, 0),
			Label: start.Format("2006-01"),
		})
	}
	return windows
}
