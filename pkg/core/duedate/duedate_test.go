package duedate

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeDueDatesCalendarYearEnd(t *testing.T) {
	// FYE Dec 31, looking forward from Jan 1 2024: three interim quarters
	// plus the annual close, each with its deadline offset.
	due := ComputeDueDates(time.December, 31, date(2024, time.January, 1))

	if len(due) != 4 {
		t.Fatalf("expected 4 obligations, got %d: %+v", len(due), due)
	}

	expected := []DueDate{
		{"10-Q", date(2024, time.March, 31), date(2024, time.May, 15)},
		{"10-Q", date(2024, time.June, 30), date(2024, time.August, 14)},
		{"10-Q", date(2024, time.September, 30), date(2024, time.November, 14)},
		{"10-K", date(2024, time.December, 31), date(2025, time.March, 31)},
	}
	for i, want := range expected {
		got := due[i]
		if got.FormType != want.FormType || !got.PeriodEnd.Equal(want.PeriodEnd) || !got.DueDate.Equal(want.DueDate) {
			t.Errorf("obligation %d = %s %s due %s, want %s %s due %s",
				i, got.FormType, got.PeriodEnd.Format("2006-01-02"), got.DueDate.Format("2006-01-02"),
				want.FormType, want.PeriodEnd.Format("2006-01-02"), want.DueDate.Format("2006-01-02"))
		}
	}
}

func TestComputeDueDatesOffCalendarYearEnd(t *testing.T) {
	// FYE Mar 31 (common for BDCs): quarters end Jun/Sep/Dec 30-31.
	due := ComputeDueDates(time.March, 31, date(2024, time.April, 1))

	if len(due) != 4 {
		t.Fatalf("expected 4 obligations, got %d", len(due))
	}

	var annual *DueDate
	for i := range due {
		if due[i].FormType == "10-K" {
			annual = &due[i]
		}
	}
	if annual == nil {
		t.Fatal("expected a 10-K obligation")
	}
	if !annual.PeriodEnd.Equal(date(2025, time.March, 31)) {
		t.Errorf("annual period end = %s, want 2025-03-31", annual.PeriodEnd.Format("2006-01-02"))
	}
	if !annual.DueDate.Equal(date(2025, time.June, 29)) {
		t.Errorf("annual due = %s, want 2025-06-29 (90 days)", annual.DueDate.Format("2006-01-02"))
	}

	// Quarter ends must be clamped to real month ends, never rolled over.
	for _, d := range due {
		next := d.PeriodEnd.AddDate(0, 0, 1)
		if next.Day() != 1 && d.PeriodEnd.Day() < 28 {
			t.Errorf("suspicious period end %s", d.PeriodEnd.Format("2006-01-02"))
		}
	}
}

func TestComputeDueDatesOrdered(t *testing.T) {
	due := ComputeDueDates(time.June, 30, date(2024, time.February, 10))
	for i := 1; i < len(due); i++ {
		if due[i].PeriodEnd.Before(due[i-1].PeriodEnd) {
			t.Errorf("obligations out of order at %d: %s before %s",
				i, due[i].PeriodEnd.Format("2006-01-02"), due[i-1].PeriodEnd.Format("2006-01-02"))
		}
	}
}

func TestComputeDueDatesInvalidFYE(t *testing.T) {
	if due := ComputeDueDates(0, 0, date(2024, time.January, 1)); due != nil {
		t.Errorf("expected nil for missing fiscal year end, got %v", due)
	}
	if due := ComputeDueDates(time.Month(13), 5, date(2024, time.January, 1)); due != nil {
		t.Errorf("expected nil for invalid month, got %v", due)
	}
}
