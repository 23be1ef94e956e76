package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tjbakshi/bdch-folio-tracker-sub000/pkg/core/duedate"
	"github.com/tjbakshi/bdch-folio-tracker-sub000/pkg/core/store"
)

const (
	// Full backfills cover the whole practical filing history.
	fullBackfillYears = 9
	// Incremental checks without a stored cutoff look back one year.
	incrementalDefaultYears = 1
)

// CompanyOutcome is the per-company result of a backfill run.
type CompanyOutcome struct {
	Ticker    string
	Stored    int
	Extracted int
	Err       string // empty on success
}

// BackfillResult summarizes a backfill run. Partial failures are reported
// here, never raised: one bad company must not block the rest.
type BackfillResult struct {
	CompaniesProcessed int
	CompaniesErrored   int
	FilingsStored      int
	FilingsExtracted   int
	Outcomes           []CompanyOutcome
}

// IncrementalResult summarizes one incremental check.
type IncrementalResult struct {
	Ticker    string
	FormType  string
	Cutoff    time.Time
	NewStored int
	Extracted int
}

// ScheduleResult summarizes a due-date recomputation.
type ScheduleResult struct {
	CompaniesScheduled int
	CompaniesSkipped   int
	ChecksWritten      int
}

// Controller is the top-level driver: it iterates tracked companies, invokes
// discovery and extraction, and aggregates outcomes. Processing is sequential
// by design; the upstream index enforces a request-rate ceiling that a
// concurrent fan-out would violate.
type Controller struct {
	companies     CompanyStore
	filings       FilingStore
	checks        CheckStore
	discoverer    Discoverer
	orchestrator  *Orchestrator
	oplog         OpLog
	backfillYears int
	log           *logrus.Entry
}

// NewController wires the top-level pipeline driver.
func NewController(companies CompanyStore, filings FilingStore, checks CheckStore, discoverer Discoverer, orchestrator *Orchestrator, oplog OpLog) *Controller {
	return &Controller{
		companies:     companies,
		filings:       filings,
		checks:        checks,
		discoverer:    discoverer,
		orchestrator:  orchestrator,
		oplog:         oplog,
		backfillYears: fullBackfillYears,
		log:           logrus.WithField("component", "controller"),
	}
}

// SetBackfillYears overrides the default full-backfill lookback window.
func (c *Controller) SetBackfillYears(years int) {
	if years > 0 {
		c.backfillYears = years
	}
}

// RunFullBackfill discovers and extracts the filing history for every active
// tracked company. Per-company failures are logged and counted without
// aborting the loop. Cancellation is honored between companies so an
// operator-triggered stop never strands a filing mid-flight.
func (c *Controller) RunFullBackfill(ctx context.Context) (*BackfillResult, error) {
	companies, err := c.companies.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tracked companies: %w", err)
	}

	result := &BackfillResult{}
	for _, company := range companies {
		if ctx.Err() != nil {
			c.log.Warn("backfill cancelled between companies")
			return result, ctx.Err()
		}

		outcome := c.backfillCompany(ctx, company, c.backfillYears)
		result.Outcomes = append(result.Outcomes, outcome)
		result.FilingsStored += outcome.Stored
		result.FilingsExtracted += outcome.Extracted
		if outcome.Err != "" {
			result.CompaniesErrored++
		} else {
			result.CompaniesProcessed++
		}
	}

	c.logOp(ctx, "info", "full backfill finished", map[string]interface{}{
		"processed": result.CompaniesProcessed,
		"errored":   result.CompaniesErrored,
		"stored":    result.FilingsStored,
		"extracted": result.FilingsExtracted,
	})
	return result, nil
}

// RunTickerBackfill backfills a single company over the given lookback.
func (c *Controller) RunTickerBackfill(ctx context.Context, ticker string, yearsBack int) (*BackfillResult, error) {
	company, err := c.companies.GetByTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("ticker %s is not tracked", ticker)
	}
	if yearsBack <= 0 {
		yearsBack = c.backfillYears
	}

	result := &BackfillResult{}
	outcome := c.backfillCompany(ctx, *company, yearsBack)
	result.Outcomes = append(result.Outcomes, outcome)
	result.FilingsStored = outcome.Stored
	result.FilingsExtracted = outcome.Extracted
	if outcome.Err != "" {
		result.CompaniesErrored = 1
	} else {
		result.CompaniesProcessed = 1
	}
	return result, nil
}

// backfillCompany discovers, stores and extracts one company's filings.
// Errors are captured in the outcome, not returned: the partial-failure
// boundary lives here.
func (c *Controller) backfillCompany(ctx context.Context, company store.Company, yearsBack int) CompanyOutcome {
	log := c.log.WithField("ticker", company.Ticker)
	outcome := CompanyOutcome{Ticker: company.Ticker}

	discovered, err := c.discoverer.DiscoverFilings(ctx, company.CIK, yearsBack)
	if err != nil {
		log.WithError(err).Error("filing discovery failed")
		c.logOp(ctx, "error", "filing discovery failed", map[string]interface{}{
			"ticker": company.Ticker, "error": err.Error(),
		})
		outcome.Err = err.Error()
		return outcome
	}

	for _, f := range discovered {
		record := store.FilingRecord{
			CompanyID:       company.ID,
			AccessionNumber: f.AccessionNumber,
			FormType:        f.FormType,
			FilingDate:      f.FilingDate,
			DocumentURL:     f.DocumentURL,
		}
		if !f.ReportDate.IsZero() {
			rd := f.ReportDate
			record.ReportDate = &rd
		}
		if _, _, err := c.filings.Upsert(ctx, record); err != nil {
			log.WithError(err).Error("filing upsert failed")
			outcome.Err = err.Error()
			return outcome
		}
		outcome.Stored++
	}

	pending, err := c.filings.ListByStatus(ctx, company.ID, store.FilingPending)
	if err != nil {
		outcome.Err = err.Error()
		return outcome
	}
	for _, filing := range pending {
		if _, err := c.orchestrator.ExtractFiling(ctx, filing); err != nil {
			// The filing itself carries the failure; keep going.
			log.WithError(err).WithField("accession", filing.AccessionNumber).
				Warn("filing extraction failed during backfill")
			continue
		}
		outcome.Extracted++
	}

	log.WithFields(logrus.Fields{
		"stored": outcome.Stored, "extracted": outcome.Extracted,
	}).Info("company backfill finished")
	return outcome
}

// RunIncrementalCheck looks for filings of one form type newer than the most
// recent one stored for the company, storing and extracting each new filing
// synchronously in discovery order.
func (c *Controller) RunIncrementalCheck(ctx context.Context, ticker, formType string) (*IncrementalResult, error) {
	company, err := c.companies.GetByTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("ticker %s is not tracked", ticker)
	}

	cutoff, err := c.filings.LatestFilingDate(ctx, company.ID, formType)
	if err != nil {
		return nil, err
	}
	effectiveCutoff := time.Now().UTC().AddDate(-incrementalDefaultYears, 0, 0)
	if cutoff != nil {
		effectiveCutoff = *cutoff
	}

	discovered, err := c.discoverer.DiscoverFilings(ctx, company.CIK, c.backfillYears)
	if err != nil {
		return nil, err
	}

	result := &IncrementalResult{Ticker: ticker, FormType: formType, Cutoff: effectiveCutoff}
	for _, f := range discovered {
		if f.FormType != formType || !f.FilingDate.After(effectiveCutoff) {
			continue
		}
		existing, err := c.filings.GetByAccession(ctx, f.AccessionNumber)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}

		record := store.FilingRecord{
			CompanyID:       company.ID,
			AccessionNumber: f.AccessionNumber,
			FormType:        f.FormType,
			FilingDate:      f.FilingDate,
			DocumentURL:     f.DocumentURL,
		}
		if !f.ReportDate.IsZero() {
			rd := f.ReportDate
			record.ReportDate = &rd
		}
		id, _, err := c.filings.Upsert(ctx, record)
		if err != nil {
			return nil, err
		}
		result.NewStored++

		record.ID = id
		if _, err := c.orchestrator.ExtractFiling(ctx, record); err != nil {
			c.log.WithError(err).WithField("accession", f.AccessionNumber).
				Warn("incremental extraction failed")
			continue
		}
		result.Extracted++
	}

	c.logOp(ctx, "info", "incremental check finished", map[string]interface{}{
		"ticker": ticker, "form": formType,
		"stored": result.NewStored, "extracted": result.Extracted,
	})
	return result, nil
}

// ExtractSingleFiling re-runs extraction for one stored filing by id.
// Callers re-extracting a completed filing should expect duplicated rows;
// the incremental path guards against that by accession number.
func (c *Controller) ExtractSingleFiling(ctx context.Context, filingID uuid.UUID) (int, error) {
	filing, err := c.filings.GetByID(ctx, filingID)
	if err != nil {
		return 0, err
	}
	if filing == nil {
		return 0, fmt.Errorf("filing %s not found", filingID)
	}
	return c.orchestrator.ExtractFiling(ctx, *filing)
}

// RecomputeSchedule recomputes every active company's upcoming filing due
// dates. Companies without a fiscal year end are skipped and logged, not
// errored.
func (c *Controller) RecomputeSchedule(ctx context.Context) (*ScheduleResult, error) {
	companies, err := c.companies.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tracked companies: %w", err)
	}

	result := &ScheduleResult{}
	now := time.Now().UTC()
	for _, company := range companies {
		if company.FiscalYearEndMon == 0 {
			c.log.WithField("ticker", company.Ticker).Info("skipping schedule: no fiscal year end")
			result.CompaniesSkipped++
			continue
		}

		due := duedate.ComputeDueDates(time.Month(company.FiscalYearEndMon), company.FiscalYearEndDay, now)
		for _, d := range due {
			check := store.ScheduledCheck{
				CompanyID: company.ID,
				FormType:  d.FormType,
				PeriodEnd: d.PeriodEnd,
				DueDate:   d.DueDate,
			}
			if err := c.checks.Upsert(ctx, check); err != nil {
				return result, err
			}
			result.ChecksWritten++
		}
		result.CompaniesScheduled++
	}

	c.logOp(ctx, "info", "schedule recomputed", map[string]interface{}{
		"scheduled": result.CompaniesScheduled,
		"skipped":   result.CompaniesSkipped,
		"checks":    result.ChecksWritten,
	})
	return result, nil
}

func (c *Controller) logOp(ctx context.Context, level, message string, detail map[string]interface{}) {
	if c.oplog == nil {
		return
	}
	if err := c.oplog.Write(ctx, level, message, detail); err != nil {
		c.log.WithError(err).Warn("operational log write failed")
	}
}
