package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tjbakshi/bdch-folio-tracker-sub000/pkg/core/edgar"
	"github.com/tjbakshi/bdch-folio-tracker-sub000/pkg/core/store"
)

// memStore is an in-memory implementation of the pipeline's store interfaces.
type memStore struct {
	companies []store.Company
	filings   map[string]*store.FilingRecord // keyed by accession number
	raws      []store.RawInvestmentRecord
	computed  []store.ComputedInvestmentRecord
	checks    []store.ScheduledCheck
	opEntries []store.OpLogEntry

	saveRowsErr error
	honorCtx    bool // writes fail once the context is cancelled, like pgx
}

func newMemStore() *memStore {
	return &memStore{filings: make(map[string]*store.FilingRecord)}
}

func (m *memStore) ListActive(ctx context.Context) ([]store.Company, error) {
	var active []store.Company
	for _, c := range m.companies {
		if c.Active {
			active = append(active, c)
		}
	}
	return active, nil
}

func (m *memStore) GetByTicker(ctx context.Context, ticker string) (*store.Company, error) {
	for i := range m.companies {
		if m.companies[i].Ticker == ticker {
			return &m.companies[i], nil
		}
	}
	return nil, nil
}

func (m *memStore) Upsert(ctx context.Context, f store.FilingRecord) (uuid.UUID, store.FilingStatus, error) {
	if existing, ok := m.filings[f.AccessionNumber]; ok {
		existing.FormType = f.FormType
		existing.FilingDate = f.FilingDate
		existing.ReportDate = f.ReportDate
		existing.DocumentURL = f.DocumentURL
		return existing.ID, existing.Status, nil
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.Status == "" {
		f.Status = store.FilingPending
	}
	copied := f
	m.filings[f.AccessionNumber] = &copied
	return f.ID, f.Status, nil
}

func (m *memStore) GetByAccession(ctx context.Context, accession string) (*store.FilingRecord, error) {
	if f, ok := m.filings[accession]; ok {
		copied := *f
		return &copied, nil
	}
	return nil, nil
}

func (m *memStore) GetByID(ctx context.Context, id uuid.UUID) (*store.FilingRecord, error) {
	for _, f := range m.filings {
		if f.ID == id {
			copied := *f
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdateStatus(ctx context.Context, id uuid.UUID, status store.FilingStatus, errMsg *string) error {
	if m.honorCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	for _, f := range m.filings {
		if f.ID == id {
			f.Status = status
			f.ErrorMessage = errMsg
			return nil
		}
	}
	return fmt.Errorf("filing %s not found", id)
}

func (m *memStore) LatestFilingDate(ctx context.Context, companyID uuid.UUID, formType string) (*time.Time, error) {
	var latest *time.Time
	for _, f := range m.filings {
		if f.CompanyID != companyID || f.FormType != formType {
			continue
		}
		if latest == nil || f.FilingDate.After(*latest) {
			d := f.FilingDate
			latest = &d
		}
	}
	return latest, nil
}

func (m *memStore) ListByStatus(ctx context.Context, companyID uuid.UUID, status store.FilingStatus) ([]store.FilingRecord, error) {
	var out []store.FilingRecord
	for _, f := range m.filings {
		if f.CompanyID == companyID && f.Status == status {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FilingDate.Before(out[j].FilingDate) })
	return out, nil
}

func (m *memStore) SaveRows(ctx context.Context, raws []store.RawInvestmentRecord, computed []store.ComputedInvestmentRecord) error {
	if m.saveRowsErr != nil {
		return m.saveRowsErr
	}
	m.raws = append(m.raws, raws...)
	m.computed = append(m.computed, computed...)
	return nil
}

func (m *memStore) UpsertCheck(ctx context.Context, check store.ScheduledCheck) error {
	for i := range m.checks {
		if m.checks[i].CompanyID == check.CompanyID &&
			m.checks[i].FormType == check.FormType &&
			m.checks[i].PeriodEnd.Equal(check.PeriodEnd) {
			m.checks[i].DueDate = check.DueDate
			return nil
		}
	}
	m.checks = append(m.checks, check)
	return nil
}

func (m *memStore) Write(ctx context.Context, level, message string, detail map[string]interface{}) error {
	m.opEntries = append(m.opEntries, store.OpLogEntry{Level: level, Message: message, Detail: detail})
	return nil
}

// checkStore adapts memStore's UpsertCheck to the CheckStore interface.
type checkStore struct{ m *memStore }

func (c checkStore) Upsert(ctx context.Context, check store.ScheduledCheck) error {
	return c.m.UpsertCheck(ctx, check)
}

// fakeDiscoverer serves canned filings per CIK, with optional per-CIK errors.
type fakeDiscoverer struct {
	filings map[string][]edgar.Filing
	errs    map[string]error
}

func (d *fakeDiscoverer) DiscoverFilings(ctx context.Context, cik string, yearsBack int) ([]edgar.Filing, error) {
	if err := d.errs[cik]; err != nil {
		return nil, err
	}
	return d.filings[cik], nil
}

// fakeFetcher serves canned documents per URL.
type fakeFetcher struct {
	docs map[string]string
	errs map[string]error
}

func (f *fakeFetcher) FetchDocument(ctx context.Context, url string) (string, error) {
	if err := f.errs[url]; err != nil {
		return "", err
	}
	if doc, ok := f.docs[url]; ok {
		return doc, nil
	}
	return "", fmt.Errorf("no fixture for %s", url)
}
