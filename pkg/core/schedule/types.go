// Package schedule locates and parses the "Schedule of Investments" table
// embedded in filing HTML. The markup varies by issuer and by year, so
// location is heuristic: tables are scored by how many investment-schedule
// header patterns they contain, then column positions are mapped to canonical
// fields and data rows are extracted.
package schedule

import "time"

// Field is a canonical investment-schedule column.
type Field string

const (
	FieldIssuer          Field = "issuer"
	FieldDescription     Field = "description"
	FieldTranche         Field = "tranche"
	FieldReferenceRate   Field = "reference_rate"
	FieldSpread          Field = "spread"
	FieldCoupon          Field = "coupon"
	FieldAcquisitionDate Field = "acquisition_date"
	FieldPrincipal       Field = "principal"
	FieldCost            Field = "cost"
	FieldFairValue       Field = "fair_value"
)

// ColumnMap maps canonical fields to header cell positions in one table.
type ColumnMap map[Field]int

// Investment is a raw extracted row from a schedule table. Monetary and date
// fields are nil when the cell was blank or unparseable; nil is "no value",
// never zero.
type Investment struct {
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
	RawRow          []string // original cell text, kept for audit
}

// Options bound the parsing heuristics.
//
// The defaults run one pipeline with MinScore=3 and MinMappedFields=3:
// lenient enough to catch wide-format tables, strict enough that a mapping of
// one or two fields (almost always a coincidental "rate" or "value" header)
// does not produce garbage rows. Marker text is disambiguation, not a
// threshold: tables whose surrounding text carries the "schedule of
// investments" marker are preferred over higher-scoring tables without it.
type Options struct {
	MinScore        int  // minimum header-pattern score for a candidate table
	MinMappedFields int  // tables mapping fewer fields are skipped
	MaxTables       int  // tables inspected per document
	MaxRowsPerTable int  // data rows extracted per table
	EnableFallback  bool // weaker no-column-map extraction path
}

// DefaultOptions returns the thresholds used by the production pipeline.
func DefaultOptions() Options {
	return Options{
		MinScore:        3,
		MinMappedFields: 3,
		MaxTables:       5,
		MaxRowsPerTable: 50,
		EnableFallback:  true,
	}
}
