package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CompanyRepo handles the tracked-company universe.
type CompanyRepo struct{}

func NewCompanyRepo() *CompanyRepo { return &CompanyRepo{} }

// Upsert inserts or updates a company keyed by ticker and returns its id.
func (r *CompanyRepo) Upsert(ctx context.Context, c Company) (uuid.UUID, error) {
	pool := GetPool()
	if pool == nil {
		return uuid.Nil, &PersistenceError{Op: "company upsert", Err: fmt.Errorf("database pool not initialized")}
	}

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	query := `
		INSERT INTO companies (id, ticker, cik, name, active, fiscal_year_end_mon, fiscal_year_end_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker)
		DO UPDATE SET
			cik = EXCLUDED.cik,
			name = EXCLUDED.name,
			active = EXCLUDED.active,
			fiscal_year_end_mon = EXCLUDED.fiscal_year_end_mon,
			fiscal_year_end_day = EXCLUDED.fiscal_year_end_day
		RETURNING id;
	`

	var id uuid.UUID
	err := pool.QueryRow(ctx, query,
		c.ID, c.Ticker, c.CIK, c.Name, c.Active, c.FiscalYearEndMon, c.FiscalYearEndDay,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, &PersistenceError{Op: "company upsert", Err: err}
	}
	return id, nil
}

// ListActive returns all active tracked companies.
func (r *CompanyRepo) ListActive(ctx context.Context) ([]Company, error) {
	pool := GetPool()
	if pool == nil {
		return nil, &PersistenceError{Op: "company list", Err: fmt.Errorf("database pool not initialized")}
	}

	rows, err := pool.Query(ctx, `
		SELECT id, ticker, cik, name, active,
		       COALESCE(fiscal_year_end_mon, 0), COALESCE(fiscal_year_end_day, 0)
		FROM companies WHERE active ORDER BY ticker`)
	if err != nil {
		return nil, &PersistenceError{Op: "company list", Err: err}
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Ticker, &c.CIK, &c.Name, &c.Active,
			&c.FiscalYearEndMon, &c.FiscalYearEndDay); err != nil {
			return nil, &PersistenceError{Op: "company scan", Err: err}
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// GetByTicker returns the company for a ticker, or nil when untracked.
func (r *CompanyRepo) GetByTicker(ctx context.Context, ticker string) (*Company, error) {
	pool := GetPool()
	if pool == nil {
		return nil, &PersistenceError{Op: "company lookup", Err: fmt.Errorf("database pool not initialized")}
	}

	var c Company
	err := pool.QueryRow(ctx, `
		SELECT id, ticker, cik, name, active,
		       COALESCE(fiscal_year_end_mon, 0), COALESCE(fiscal_year_end_day, 0)
		FROM companies WHERE ticker = $1`, ticker,
	).Scan(&c.ID, &c.Ticker, &c.CIK, &c.Name, &c.Active, &c.FiscalYearEndMon, &c.FiscalYearEndDay)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "company lookup", Err: err}
	}
	return &c, nil
}
