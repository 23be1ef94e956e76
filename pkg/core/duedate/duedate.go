// Package duedate computes expected future filing due dates from a company's
// fiscal year end, using the standard SEC deadline offsets for
// non-accelerated filers.
package duedate

import (
	"sort"
	"time"
)

const (
	// Deadline offsets relative to period end.
	annualDeadlineDays    = 90 // 10-K
	quarterlyDeadlineDays = 45 // 10-Q
)

// DueDate is one expected filing obligation.
type DueDate struct {
	FormType  string
	PeriodEnd time.Time
	DueDate   time.Time
}

// ComputeDueDates returns the company's filing obligations with period ends
// in the twelve months after from: one 10-K for the fiscal year end and a
// 10-Q for each interim quarter end (fiscal year end +3, +6, +9 months).
// Results are ordered by period end.
func ComputeDueDates(fyeMonth time.Month, fyeDay int, from time.Time) []DueDate {
	if fyeMonth < time.January || fyeMonth > time.December || fyeDay < 1 || fyeDay > 31 {
		return nil
	}

	from = from.UTC()
	horizon := from.AddDate(1, 0, 0)

	// Walk fiscal year ends around the window so quarter ends both before and
	// after the next annual close are covered.
	var due []DueDate
	for year := from.Year() - 1; year <= horizon.Year(); year++ {
		fye := fiscalDate(year, fyeMonth, fyeDay)

		periods := []struct {
			form string
			end  time.Time
			days int
		}{
			{"10-Q", addMonthsClamped(fye, 3), quarterlyDeadlineDays},
			{"10-Q", addMonthsClamped(fye, 6), quarterlyDeadlineDays},
			{"10-Q", addMonthsClamped(fye, 9), quarterlyDeadlineDays},
			{"10-K", fiscalDate(year+1, fyeMonth, fyeDay), annualDeadlineDays},
		}
		for _, p := range periods {
			if p.end.After(from) && !p.end.After(horizon) {
				due = append(due, DueDate{
					FormType:  p.form,
					PeriodEnd: p.end,
					DueDate:   p.end.AddDate(0, 0, p.days),
				})
			}
		}
	}

	// Years overlap at the annual boundary; drop duplicates by (form, period).
	seen := make(map[string]bool, len(due))
	out := due[:0]
	for _, d := range due {
		key := d.FormType + d.PeriodEnd.Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].PeriodEnd.Before(out[j].PeriodEnd) })
	return out
}

// fiscalDate clamps the day for short months (a Feb 30 year end does not
// exist; use the month's last day).
func fiscalDate(year int, month time.Month, day int) time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Month() != month {
		d = time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	}
	return d
}

// addMonthsClamped shifts a date by whole months, clamping the day so a
// Dec 31 fiscal year end yields Jun 30, not Jul 1.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	d := time.Date(year, month+time.Month(months), day, 0, 0, 0, 0, time.UTC)
	if d.Month() != (month+time.Month(months)-1)%12+1 {
		d = time.Date(year, month+time.Month(months)+1, 0, 0, 0, 0, 0, time.UTC)
	}
	return d
}
