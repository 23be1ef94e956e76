package schedule

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tjbakshi/bdch-folio-tracker-sub000/pkg/core/normalize"
)

// fieldPattern binds a canonical field to the ordered header patterns that
// identify it. The whole mapper is this table: adding support for a new header
// wording is a one-line change.
type fieldPattern struct {
	field    Field
	patterns []*regexp.Regexp
}

// fieldPatterns is evaluated in order per header cell, and the first matching
// unassigned field claims the cell. Order resolves wording overlaps: reference
// rate is tested before coupon so "Reference Rate" does not land on the bare
// "rate" pattern, and amortized cost before the generic "cost" variants so a
// later plain "Cost" column cannot steal an already-assigned field.
var fieldPatterns = []fieldPattern{
	{FieldIssuer, compileAll(
		`portfolio company`, `company name`, `name of (issuer|investment|portfolio)`, `issuer`, `\bcompany\b`,
	)},
	{FieldDescription, compileAll(
		`business description`, `description of business`, `industry`, `sector`, `\bdescription\b`,
	)},
	{FieldTranche, compileAll(
		`investment type`, `type of investment`, `tranche`, `security type`, `\bsecurity\b`, `\btype\b`,
	)},
	{FieldReferenceRate, compileAll(
		`reference rate`, `\bindex\b`, `benchmark`,
	)},
	{FieldSpread, compileAll(
		`spread`,
	)},
	{FieldCoupon, compileAll(
		`coupon`, `interest rate`, `cash rate`, `\brate\b`,
	)},
	{FieldAcquisitionDate, compileAll(
		`acquisition date`, `date acquired`, `initial acquisition`, `maturity date`, `maturity`,
	)},
	{FieldPrincipal, compileAll(
		`principal`, `par amount`, `par value`, `\bpar\b`, `notional`,
	)},
	{FieldCost, compileAll(
		`amortized cost`, `cost basis`, `\bcost\b`,
	)},
	{FieldFairValue, compileAll(
		`fair value`, `market value`, `\bvalue\b`,
	)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}

// headerRow returns the table's first row containing th cells, falling back
// to its first row overall, along with that row's index among the table's
// rows. Returns index -1 when the table has no rows.
func headerRow(table *goquery.Selection) (*goquery.Selection, int) {
	rows := table.Find("tr")
	if rows.Length() == 0 {
		return nil, -1
	}
	found := -1
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		if row.Find("th").Length() > 0 {
			found = i
			return false
		}
		return true
	})
	if found >= 0 {
		return rows.Eq(found), found
	}
	return rows.Eq(0), 0
}

// MapColumns maps the table's header cell positions to canonical fields.
// Each cell is tested against fieldPatterns in order; the first cell matching
// a field's pattern wins that field and later matches are ignored, so the
// mapping is deterministic for a given table.
func MapColumns(table *goquery.Selection) ColumnMap {
	header, _ := headerRow(table)
	if header == nil {
		return ColumnMap{}
	}

	mapping := ColumnMap{}
	header.Find("th, td").Each(func(idx int, cell *goquery.Selection) {
		text := strings.ToLower(normalize.CleanText(cell.Text()))
		if text == "" {
			return
		}
		for _, fp := range fieldPatterns {
			if _, taken := mapping[fp.field]; taken {
				continue
			}
			for _, pat := range fp.patterns {
				if pat.MatchString(text) {
					mapping[fp.field] = idx
					return // one field per cell
				}
			}
		}
	})
	return mapping
}
