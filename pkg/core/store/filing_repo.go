package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FilingRepo handles filing metadata and the processing-status column.
type FilingRepo struct{}

func NewFilingRepo() *FilingRepo { return &FilingRepo{} }

// Upsert stores a discovered filing keyed by accession number. Re-discovering
// a known filing refreshes its metadata but never resets its status or
// creates a duplicate. Returns the filing id and its current status.
func (r *FilingRepo) Upsert(ctx context.Context, f FilingRecord) (uuid.UUID, FilingStatus, error) {
	pool := GetPool()
	if pool == nil {
		return uuid.Nil, "", &PersistenceError{Op: "filing upsert", Err: fmt.Errorf("database pool not initialized")}
	}

	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.Status == "" {
		f.Status = FilingPending
	}

	query := `
		INSERT INTO filings (id, company_id, accession_number, form_type, filing_date, report_date, document_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (accession_number)
		DO UPDATE SET
			form_type = EXCLUDED.form_type,
			filing_date = EXCLUDED.filing_date,
			report_date = EXCLUDED.report_date,
			document_url = EXCLUDED.document_url
		RETURNING id, status;
	`

	var id uuid.UUID
	var status FilingStatus
	err := pool.QueryRow(ctx, query,
		f.ID, f.CompanyID, f.AccessionNumber, f.FormType, f.FilingDate, f.ReportDate, f.DocumentURL, f.Status,
	).Scan(&id, &status)
	if err != nil {
		return uuid.Nil, "", &PersistenceError{Op: "filing upsert", Err: err}
	}
	return id, status, nil
}

// GetByAccession returns the filing for an accession number, or nil when the
// filing has not been seen before.
func (r *FilingRepo) GetByAccession(ctx context.Context, accession string) (*FilingRecord, error) {
	return r.getOne(ctx, `WHERE accession_number = $1`, accession)
}

// GetByID returns the filing by primary key, or nil.
func (r *FilingRepo) GetByID(ctx context.Context, id uuid.UUID) (*FilingRecord, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *FilingRepo) getOne(ctx context.Context, where string, arg interface{}) (*FilingRecord, error) {
	pool := GetPool()
	if pool == nil {
		return nil, &PersistenceError{Op: "filing lookup", Err: fmt.Errorf("database pool not initialized")}
	}

	query := `
		SELECT id, company_id, accession_number, form_type, filing_date, report_date, document_url, status, error_message
		FROM filings ` + where

	var f FilingRecord
	err := pool.QueryRow(ctx, query, arg).Scan(
		&f.ID, &f.CompanyID, &f.AccessionNumber, &f.FormType, &f.FilingDate,
		&f.ReportDate, &f.DocumentURL, &f.Status, &f.ErrorMessage,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "filing lookup", Err: err}
	}
	return &f, nil
}

// UpdateStatus moves a filing through its state machine, recording the
// triggering error message on a failed transition.
func (r *FilingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status FilingStatus, errMsg *string) error {
	pool := GetPool()
	if pool == nil {
		return &PersistenceError{Op: "filing status update", Err: fmt.Errorf("database pool not initialized")}
	}

	_, err := pool.Exec(ctx,
		`UPDATE filings SET status = $2, error_message = $3 WHERE id = $1`,
		id, status, errMsg)
	if err != nil {
		return &PersistenceError{Op: "filing status update", Err: err}
	}
	return nil
}

// LatestFilingDate returns the most recent stored filing date for one
// (company, form type) pair, or nil when none exists. Drives the incremental
// cutoff.
func (r *FilingRepo) LatestFilingDate(ctx context.Context, companyID uuid.UUID, formType string) (*time.Time, error) {
	pool := GetPool()
	if pool == nil {
		return nil, &PersistenceError{Op: "filing latest date", Err: fmt.Errorf("database pool not initialized")}
	}

	var latest *time.Time
	err := pool.QueryRow(ctx,
		`SELECT MAX(filing_date) FROM filings WHERE company_id = $1 AND form_type = $2`,
		companyID, formType,
	).Scan(&latest)
	if err != nil {
		return nil, &PersistenceError{Op: "filing latest date", Err: err}
	}
	return latest, nil
}

// ListByStatus returns a company's filings in the given status, oldest first.
func (r *FilingRepo) ListByStatus(ctx context.Context, companyID uuid.UUID, status FilingStatus) ([]FilingRecord, error) {
	pool := GetPool()
	if pool == nil {
		return nil, &PersistenceError{Op: "filing list", Err: fmt.Errorf("database pool not initialized")}
	}

	rows, err := pool.Query(ctx, `
		SELECT id, company_id, accession_number, form_type, filing_date, report_date, document_url, status, error_message
		FROM filings WHERE company_id = $1 AND status = $2 ORDER BY filing_date`,
		companyID, status)
	if err != nil {
		return nil, &PersistenceError{Op: "filing list", Err: err}
	}
	defer rows.Close()

	var filings []FilingRecord
	for rows.Next() {
		var f FilingRecord
		if err := rows.Scan(&f.ID, &f.CompanyID, &f.AccessionNumber, &f.FormType, &f.FilingDate,
			&f.ReportDate, &f.DocumentURL, &f.Status, &f.ErrorMessage); err != nil {
			return nil, &PersistenceError{Op: "filing scan", Err: err}
		}
		filings = append(filings, f)
	}
	return filings, rows.Err()
}
