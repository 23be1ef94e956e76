package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// InvestmentRepo persists extracted investment rows. Raw and computed records
// are written pairwise inside one transaction: a failure writes neither.
type InvestmentRepo struct{}

func NewInvestmentRepo() *InvestmentRepo { return &InvestmentRepo{} }

// SaveRows writes all raw/computed pairs for one filing atomically.
func (r *InvestmentRepo) SaveRows(ctx context.Context, raws []RawInvestmentRecord, computed []ComputedInvestmentRecord) error {
	if len(raws) != len(computed) {
		return &PersistenceError{Op: "investment save", Err: fmt.Errorf("raw/computed count mismatch: %d vs %d", len(raws), len(computed))}
	}
	if len(raws) == 0 {
		return nil
	}

	pool := GetPool()
	if pool == nil {
		return &PersistenceError{Op: "investment save", Err: fmt.Errorf("database pool not initialized")}
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return &PersistenceError{Op: "investment save begin", Err: err}
	}
	defer tx.Rollback(ctx)

	rawQuery := `
		INSERT INTO raw_investments
			(id, filing_id, issuer, description, tranche, coupon, spread, reference_rate,
			 acquisition_date, principal, cost, fair_value, raw_row)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	computedQuery := `
		INSERT INTO computed_investments
			(id, raw_record_id, filing_id, mark, is_non_accrual, quarter_year)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for i := range raws {
		raw := raws[i]
		rawRowJSON, err := json.Marshal(raw.RawRow)
		if err != nil {
			return &PersistenceError{Op: "investment save marshal", Err: err}
		}

		if _, err := tx.Exec(ctx, rawQuery,
			raw.ID, raw.FilingID, raw.Issuer, raw.Description, raw.Tranche, raw.Coupon,
			raw.Spread, raw.ReferenceRate, raw.AcquisitionDate, raw.Principal, raw.Cost,
			raw.FairValue, rawRowJSON,
		); err != nil {
			return &PersistenceError{Op: "investment save raw", Err: err}
		}

		comp := computed[i]
		if _, err := tx.Exec(ctx, computedQuery,
			comp.ID, comp.RawRecordID, comp.FilingID, comp.Mark, comp.IsNonAccrual, comp.QuarterYear,
		); err != nil {
			return &PersistenceError{Op: "investment save computed", Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &PersistenceError{Op: "investment save commit", Err: err}
	}
	return nil
}
