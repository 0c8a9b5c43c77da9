package model

import "time"

// Window is an inclusive range of calendar dates.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a Window truncated to whole days, rejecting end < start.
func NewWindow(start, end time.Time) (Window, error) {
	w := Window{Start: Day(start), End: Day(end)}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate rejects windows with a zero bound or whose end precedes the start.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return NewConfigError("window", "start and end dates are required")
	}
	if w.End.Before(w.Start) {
		return NewConfigError("window", "end %s is before start %s", w.End.Format(DateFormat), w.Start.Format(DateFormat))
	}
	return nil
}

// Contains reports whether t falls on a day within the window. Undated rows
// are never contained.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	d := Day(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Days returns the number of calendar days from Start to End, exclusive of
// the start day. A single-day window has zero days.
func (w Window) Days() int {
	return DaysBetween(w.Start, w.End)
}

// DateFormat is the canonical date layout for configuration and output.
const DateFormat = "2006-01-02"

// DaysBetween returns the signed whole-day difference b - a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
