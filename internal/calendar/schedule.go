package calendar

import (
	"fmt"
	"time"
)

// BillingPeriod is how often an obligation recurs.
type BillingPeriod string

const (
	Monthly  BillingPeriod = "monthly"
	Yearly   BillingPeriod = "yearly"
	Weekly   BillingPeriod = "weekly"
	Biweekly BillingPeriod = "biweekly"
)

// Periods lists every supported billing period.
var Periods = []BillingPeriod{Monthly, Yearly, Weekly, Biweekly}

// Valid reports whether p is a supported billing period.
func (p BillingPeriod) Valid() bool {
	switch p {
	case Monthly, Yearly, Weekly, Biweekly:
		return true
	}
	return false
}

// ParseBillingPeriod validates s as a billing period.
func ParseBillingPeriod(s string) (BillingPeriod, error) {
	p := BillingPeriod(s)
	if !p.Valid() {
		return "", fmt.Errorf("unsupported billing period %q", s)
	}
	return p, nil
}

// stepDays returns the fixed day step for weekly schedules, 0 otherwise.
func (p BillingPeriod) stepDays() int {
	switch p {
	case Weekly:
		return 7
	case Biweekly:
		return 14
	}
	return 0
}

// Step advances d by one period. Monthly keeps the day of month clamped to
// the target month; yearly keeps month and day, clamping Feb 29.
func (p BillingPeriod) Step(d Date) Date {
	switch p {
	case Monthly:
		return d.AddMonthsClamped(1)
	case Yearly:
		return d.AddYearsClamped(1)
	case Weekly, Biweekly:
		return d.AddDays(p.stepDays())
	}
	return d
}

// Window is an inclusive range of dates.
type Window struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// MonthWindow returns the window covering a whole calendar month.
func MonthWindow(year int, month time.Month) Window {
	return Window{
		Start: Date{Year: year, Month: month, Day: 1},
		End:   Date{Year: year, Month: month, Day: DaysIn(year, month)},
	}
}

// Contains reports whether d lies inside the window.
func (w Window) Contains(d Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

func (w Window) String() string {
	return w.Start.String() + ".." + w.End.String()
}

// Occurrences returns every date in w on which an obligation anchored at
// anchor with the given period falls due. Monthly and yearly schedules
// project the anchor's day (and month) onto the window's month; weekly
// schedules step from the anchor in either direction.
func Occurrences(anchor Date, period BillingPeriod, w Window) []Date {
	switch period {
	case Monthly:
		d := Clamp(w.Start.Year, w.Start.Month, anchor.Day)
		if w.Contains(d) {
			return []Date{d}
		}
		return nil

	case Yearly:
		if anchor.Month != w.Start.Month {
			return nil
		}
		d := Clamp(w.Start.Year, anchor.Month, anchor.Day)
		if w.Contains(d) {
			return []Date{d}
		}
		return nil

	case Weekly, Biweekly:
		step := period.stepDays()
		cur := anchor
		for cur.After(w.End) {
			cur = cur.AddDays(-step)
		}
		for cur.Before(w.Start) {
			cur = cur.AddDays(step)
		}
		var out []Date
		for ; !cur.After(w.End); cur = cur.AddDays(step) {
			out = append(out, cur)
		}
		return out
	}
	return nil
}
