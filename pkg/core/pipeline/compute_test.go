package pipeline

import (
	"testing"
	"time"
)

func floatPtr(f float64) *float64 { return &f }

func TestComputeMark(t *testing.T) {
	tests := []struct {
		name      string
		fairValue *float64
		principal *float64
		expected  *float64
	}{
		{"standard mark", floatPtr(950000), floatPtr(1000000), floatPtr(0.95)},
		{"par", floatPtr(500000), floatPtr(500000), floatPtr(1.0)},
		{"principal absent", floatPtr(950000), nil, nil},
		{"principal zero", floatPtr(950000), floatPtr(0), nil},
		{"fair value absent", nil, floatPtr(1000000), nil},
		{"both absent", nil, nil, nil},
	}

	for _, tc := range tests {
		got := ComputeMark(tc.fairValue, tc.principal)
		if tc.expected == nil {
			if got != nil {
				t.Errorf("%s: expected nil mark, got %f", tc.name, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("%s: expected %f, got nil", tc.name, *tc.expected)
		} else if *got != *tc.expected {
			t.Errorf("%s: expected %f, got %f", tc.name, *tc.expected, *got)
		}
	}
}

func TestIsNonAccrual(t *testing.T) {
	tests := []struct {
		description string
		expected    bool
	}{
		{"Senior secured loan, on non-accrual status", true},
		{"Non-Accrual as of period end", true},
		{"Software services", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := IsNonAccrual(tc.description); got != tc.expected {
			t.Errorf("IsNonAccrual(%q) = %v, want %v", tc.description, got, tc.expected)
		}
	}
}

func TestQuarterYear(t *testing.T) {
	tests := []struct {
		form     string
		date     time.Time
		expected string
	}{
		// Annual filings always bucket to Q4 of the filing year.
		{"10-K", time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), "Q4-2024"},
		{"10-K", time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC), "Q4-2024"},
		{"10-K/A", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "Q4-2024"},
		// Quarterly filings bucket by filing month.
		{"10-Q", time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), "Q2-2024"},
		{"10-Q", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "Q1-2024"},
		{"10-Q", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), "Q1-2024"},
		{"10-Q", time.Date(2024, 8, 9, 0, 0, 0, 0, time.UTC), "Q3-2024"},
		{"10-Q", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), "Q4-2024"},
	}
	for _, tc := range tests {
		if got := QuarterYear(tc.form, tc.date); got != tc.expected {
			t.Errorf("QuarterYear(%q, %s) = %q, want %q", tc.form, tc.date.Format("2006-01-02"), got, tc.expected)
		}
	}
}
