// Package pipeline drives filings through retrieval, schedule parsing,
// derived-field computation and persistence, and orchestrates full-history
// backfills and incremental checks across the tracked-company universe.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tjbakshi/bdch-folio-tracker-sub000/pkg/core/edgar"
	"github.com/tjbakshi/bdch-folio-tracker-sub000/pkg/core/schedule"
	"github.com/tjbakshi/bdch-folio-tracker-sub000/pkg/core/store"
)

// DocumentFetcher retrieves the raw HTML for a filing document.
// Implementations may fetch from live EDGAR or from a test fixture.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, url string) (string, error)
}

// Discoverer queries the filing index for a company's filing history.
type Discoverer interface {
	DiscoverFilings(ctx context.Context, cik string, yearsBack int) ([]edgar.Filing, error)
}

// CompanyStore reads the tracked-company universe.
type CompanyStore interface {
	ListActive(ctx context.Context) ([]store.Company, error)
	GetByTicker(ctx context.Context, ticker string) (*store.Company, error)
}

// FilingStore persists filing metadata and status.
type FilingStore interface {
	Upsert(ctx context.Context, f store.FilingRecord) (uuid.UUID, store.FilingStatus, error)
	GetByAccession(ctx context.Context, accession string) (*store.FilingRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*store.FilingRecord, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status store.FilingStatus, errMsg *string) error
	LatestFilingDate(ctx context.Context, companyID uuid.UUID, formType string) (*time.Time, error)
	ListByStatus(ctx context.Context, companyID uuid.UUID, status store.FilingStatus) ([]store.FilingRecord, error)
}

// InvestmentStore persists extracted rows; raw and computed pairs land
// atomically or not at all.
type InvestmentStore interface {
	SaveRows(ctx context.Context, raws []store.RawInvestmentRecord, computed []store.ComputedInvestmentRecord) error
}

// CheckStore persists scheduled filing due dates.
type CheckStore interface {
	Upsert(ctx context.Context, check store.ScheduledCheck) error
}

// OpLog records operational outcomes for the dashboard. Write failures are
// logged but never fail the pipeline.
type OpLog interface {
	Write(ctx context.Context, level, message string, detail map[string]interface{}) error
}

// Orchestrator runs one filing through the extraction state machine:
// pending -> processing -> {completed | failed}.
type Orchestrator struct {
	fetcher     DocumentFetcher
	filings     FilingStore
	investments InvestmentStore
	oplog       OpLog
	parseOpts   schedule.Options
	log         *logrus.Entry
}

// NewOrchestrator wires an orchestrator with default parse options.
func NewOrchestrator(fetcher DocumentFetcher, filings FilingStore, investments InvestmentStore, oplog OpLog) *Orchestrator {
	return &Orchestrator{
		fetcher:     fetcher,
		filings:     filings,
		investments: investments,
		oplog:       oplog,
		parseOpts:   schedule.DefaultOptions(),
		log:         logrus.WithField("component", "orchestrator"),
	}
}

// SetParseOptions overrides the schedule-parsing thresholds.
func (o *Orchestrator) SetParseOptions(opts schedule.Options) {
	o.parseOpts = opts
}

// ExtractFiling drives one filing through retrieval, parsing, computation and
// persistence. Returns the number of persisted investments. Any unrecoverable
// error moves the filing to failed with the error message recorded; a filing
// whose document contains no schedule still completes with zero rows.
func (o *Orchestrator) ExtractFiling(ctx context.Context, filing store.FilingRecord) (int, error) {
	log := o.log.WithFields(logrus.Fields{
		"accession": filing.AccessionNumber,
		"form":      filing.FormType,
	})

	if err := o.filings.UpdateStatus(ctx, filing.ID, store.FilingProcessing, nil); err != nil {
		return 0, err
	}

	html, err := o.fetcher.FetchDocument(ctx, filing.DocumentURL)
	if err != nil {
		return 0, o.fail(ctx, filing, log, err)
	}

	investments, err := schedule.ParseDocument(html, o.parseOpts)
	if err != nil {
		return 0, o.fail(ctx, filing, log, err)
	}

	if len(investments) == 0 {
		// Absence of a schedule is a valid outcome, not a failure.
		log.Info("no investment schedule located")
		o.logOp(ctx, "info", "no investment schedule located", map[string]interface{}{
			"accession": filing.AccessionNumber,
		})
	} else {
		raws, computed := buildRecords(filing, investments)
		if err := o.investments.SaveRows(ctx, raws, computed); err != nil {
			return 0, o.fail(ctx, filing, log, err)
		}
	}

	if err := o.filings.UpdateStatus(ctx, filing.ID, store.FilingCompleted, nil); err != nil {
		return 0, err
	}

	log.WithField("investments", len(investments)).Info("filing extraction completed")
	return len(investments), nil
}

// fail moves the filing to failed, recording the triggering error message.
// The cause may be the caller's own cancellation, so the status write runs on
// a context detached from it: a filing must never stay in processing without
// an error message.
func (o *Orchestrator) fail(ctx context.Context, filing store.FilingRecord, log *logrus.Entry, cause error) error {
	msg := cause.Error()
	detached := context.WithoutCancel(ctx)
	if err := o.filings.UpdateStatus(detached, filing.ID, store.FilingFailed, &msg); err != nil {
		log.WithError(err).Error("could not record failed status")
	}
	log.WithError(cause).Error("filing extraction failed")
	o.logOp(detached, "error", "filing extraction failed", map[string]interface{}{
		"accession": filing.AccessionNumber,
		"error":     msg,
	})
	return cause
}

func (o *Orchestrator) logOp(ctx context.Context, level, message string, detail map[string]interface{}) {
	if o.oplog == nil {
		return
	}
	if err := o.oplog.Write(ctx, level, message, detail); err != nil {
		o.log.WithError(err).Warn("operational log write failed")
	}
}
