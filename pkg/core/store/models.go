package store

import (
	"time"

	"github.com/google/uuid"
)

// FilingStatus is the per-filing processing state.
// Transitions: pending -> processing -> {completed | failed}. There is no
// automatic path back to pending; a filing stranded in processing after a
// crash must be re-queued by an explicit operator action.
type FilingStatus string

const (
	FilingPending    FilingStatus = "pending"
	FilingProcessing FilingStatus = "processing"
	FilingCompleted  FilingStatus = "completed"
	FilingFailed     FilingStatus = "failed"
)

// Company is a tracked issuer. Created by administrative seeding; the
// pipeline only reads it.
type Company struct {
	ID               uuid.UUID
	Ticker           string
	CIK              string
	Name             string
	Active           bool
	FiscalYearEndMon int // 0 = unknown
	FiscalYearEndDay int
}

// FilingRecord is one discovered filing. The accession number is globally
// unique and acts as the idempotency key: re-discovery upserts, never
// duplicates.
type FilingRecord struct {
	ID              uuid.UUID
	CompanyID       uuid.UUID
	AccessionNumber string
	FormType        string
	FilingDate      time.Time
	ReportDate      *time.Time
	DocumentURL     string
	Status          FilingStatus
	ErrorMessage    *string
}

// RawInvestmentRecord holds one as-extracted schedule row. Immutable once
// written; RawRow keeps the original cell text for audit.
type RawInvestmentRecord struct {
	ID              uuid.UUID
	FilingID        uuid.UUID
	Issuer          string
	Description     string
	Tranche         string
	Coupon          string
	Spread          string
	ReferenceRate   string
	AcquisitionDate *time.Time
	Principal       *float64
	Cost            *float64
	FairValue       *float64
	RawRow          []string
}

// ComputedInvestmentRecord is the one-to-one derived counterpart of a raw
// record. Written in the same unit of work as its raw record.
type ComputedInvestmentRecord struct {
	ID           uuid.UUID
	RawRecordID  uuid.UUID
	FilingID     uuid.UUID
	Mark         *float64 // fair value / principal; nil when principal absent or zero
	IsNonAccrual bool
	QuarterYear  string // e.g. "Q2-2024"
}

// ScheduledCheck is a computed future filing due date for one company and
// form type. Superseded wholesale on each scheduler run.
type ScheduledCheck struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	FormType  string
	PeriodEnd time.Time
	DueDate   time.Time
}

// OpLogEntry is one operational log record, consumed by the read-side API.
type OpLogEntry struct {
	ID        uuid.UUID
	Level     string // info | warning | error
	Message   string
	Detail    map[string]interface{}
	CreatedAt time.Time
}
