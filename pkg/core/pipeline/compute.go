package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tjbakshi/bdch-folio-tracker-sub000/pkg/core/schedule"
	"github.com/tjbakshi/bdch-folio-tracker-sub000/pkg/core/store"
)

// ComputeMark returns fair value / principal, or nil when either side is
// absent or principal is zero. Absent is nil, never zero.
func ComputeMark(fairValue, principal *float64) *float64 {
	if fairValue == nil || principal == nil || *principal == 0 {
		return nil
	}
	mark := *fairValue / *principal
	return &mark
}

// IsNonAccrual reports whether the business description flags the holding as
// non-accrual. Textual heuristic; case-insensitive.
func IsNonAccrual(description string) bool {
	return strings.Contains(strings.ToLower(description), "non-accrual")
}

// QuarterYear assigns the fiscal quarter bucket for time-series aggregation.
// Annual filings always bucket to Q4 of the filing year; quarterly filings
// bucket by filing month. Bucketing uses the filing date, not the
// period-of-report date, to match how the aggregates have always been built;
// a late-filed quarterly can therefore land one quarter late.
func QuarterYear(formType string, filingDate time.Time) string {
	year := filingDate.Year()
	if strings.HasPrefix(formType, "10-K") {
		return fmt.Sprintf("Q4-%d", year)
	}
	quarter := (int(filingDate.Month())-1)/3 + 1
	return fmt.Sprintf("Q%d-%d", quarter, year)
}

// buildRecords converts extracted investments into raw/computed record pairs
// for one filing. Every raw record gets exactly one computed counterpart.
func buildRecords(filing store.FilingRecord, investments []schedule.Investment) ([]store.RawInvestmentRecord, []store.ComputedInvestmentRecord) {
	raws := make([]store.RawInvestmentRecord, 0, len(investments))
	computed := make([]store.ComputedInvestmentRecord, 0, len(investments))

	for _, inv := range investments {
		raw := store.RawInvestmentRecord{
			ID:              uuid.New(),
			FilingID:        filing.ID,
			Issuer:          inv.Issuer,
			Description:     inv.Description,
			Tranche:         inv.Tranche,
			Coupon:          inv.Coupon,
			Spread:          inv.Spread,
			ReferenceRate:   inv.ReferenceRate,
			AcquisitionDate: inv.AcquisitionDate,
			Principal:       inv.Principal,
			Cost:            inv.Cost,
			FairValue:       inv.FairValue,
			RawRow:          inv.RawRow,
		}
		raws = append(raws, raw)

		computed = append(computed, store.ComputedInvestmentRecord{
			ID:           uuid.New(),
			RawRecordID:  raw.ID,
			FilingID:     filing.ID,
			Mark:         ComputeMark(inv.FairValue, inv.Principal),
			IsNonAccrual: IsNonAccrual(inv.Description),
			QuarterYear:  QuarterYear(filing.FormType, filing.FilingDate),
		})
	}
	return raws, computed
}
