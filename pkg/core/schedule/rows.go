package schedule

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/tjbakshi/bdch-folio-tracker-sub000/pkg/core/normalize"
)

var totalRowRe = regexp.MustCompile(`(?i)\btotal\b|\bsubtotal\b`)

// numericOnlyRe matches rows whose combined text is only digits, punctuation
// and currency symbols. Those are continuation/summary rows, not holdings.
var numericOnlyRe = regexp.MustCompile(`^[\d\s\.,\-—–\(\)\$%€£]*$`)

// fallbackScaleThreshold: schedules frequently state amounts in thousands.
// In the no-column-map fallback a bare value below this is assumed to be
// thousands and scaled up.
const fallbackScaleThreshold = 10000

func rowCellText(row *goquery.Selection) []string {
	var cells []string
	row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, normalize.CleanText(cell.Text()))
	})
	return cells
}

func isTotalRow(cells []string) bool {
	joined := strings.Join(cells, " ")
	return totalRowRe.MatchString(joined)
}

func isNumericOnlyRow(cells []string) bool {
	return numericOnlyRe.MatchString(strings.Join(cells, " "))
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

// validInvestment is the acceptance rule for an extracted row: a plausible
// issuer name and at least one monetary field. Rows failing it are dropped
// silently; most of them are section headers and blank spacer rows.
func validInvestment(inv Investment) bool {
	if len(inv.Issuer) <= 2 {
		return false
	}
	return inv.FairValue != nil || inv.Cost != nil || inv.Principal != nil
}

// ExtractRows walks the table's data rows, applies the column mapping and
// normalization, and returns the accepted investments. The header row, total
// and subtotal rows, and numeric-only rows are skipped. At most
// opts.MaxRowsPerTable rows are extracted.
func ExtractRows(table *goquery.Selection, mapping ColumnMap, opts Options) []Investment {
	if len(mapping) == 0 {
		return nil
	}
	_, headerIdx := headerRow(table)

	var investments []Investment
	table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if opts.MaxRowsPerTable > 0 && len(investments) >= opts.MaxRowsPerTable {
			return false
		}
		if i <= headerIdx {
			return true
		}
		cells := rowCellText(row)
		if len(cells) == 0 || isTotalRow(cells) || isNumericOnlyRow(cells) {
			return true
		}

		inv := Investment{
			Issuer:        normalize.StripFootnotes(cellAt(cells, col(mapping, FieldIssuer))),
			Description:   normalize.CleanText(cellAt(cells, col(mapping, FieldDescription))),
			Tranche:       normalize.CleanText(cellAt(cells, col(mapping, FieldTranche))),
			Coupon:        normalize.CleanText(cellAt(cells, col(mapping, FieldCoupon))),
			Spread:        normalize.CleanText(cellAt(cells, col(mapping, FieldSpread))),
			ReferenceRate: normalize.CleanText(cellAt(cells, col(mapping, FieldReferenceRate))),
			RawRow:        cells,
		}
		if idx, ok := mapping[FieldAcquisitionDate]; ok {
			inv.AcquisitionDate = normalize.ParseDate(cellAt(cells, idx))
		}
		if idx, ok := mapping[FieldPrincipal]; ok {
			inv.Principal = normalize.ParseAmount(cellAt(cells, idx))
		}
		if idx, ok := mapping[FieldCost]; ok {
			inv.Cost = normalize.ParseAmount(cellAt(cells, idx))
		}
		if idx, ok := mapping[FieldFairValue]; ok {
			inv.FairValue = normalize.ParseAmount(cellAt(cells, idx))
		}

		if validInvestment(inv) {
			investments = append(investments, inv)
		}
		return true
	})
	return investments
}

func col(mapping ColumnMap, f Field) int {
	if idx, ok := mapping[f]; ok {
		return idx
	}
	return -1
}

// extractRowsFallback is the deliberately weaker path used only when column
// mapping produced zero fields: the issuer is guessed from the first
// alphabetic-leading cell and the fair value from the last parseable trailing
// cell, scaling values below fallbackScaleThreshold by 1000 on the assumption
// the table is stated in thousands. Coverage over precision; it never runs
// alongside the mapped path.
func extractRowsFallback(table *goquery.Selection, opts Options) []Investment {
	_, headerIdx := headerRow(table)

	var investments []Investment
	table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if opts.MaxRowsPerTable > 0 && len(investments) >= opts.MaxRowsPerTable {
			return false
		}
		if i <= headerIdx {
			return true
		}
		cells := rowCellText(row)
		if len(cells) == 0 || isTotalRow(cells) || isNumericOnlyRow(cells) {
			return true
		}

		issuer := ""
		for _, c := range cells {
			if c != "" && startsWithLetter(c) {
				issuer = normalize.StripFootnotes(c)
				break
			}
		}
		if len(issuer) <= 2 {
			return true
		}

		var value *float64
		for j := len(cells) - 1; j > 0; j-- {
			if v := normalize.ParseAmount(cells[j]); v != nil && *v != 0 {
				value = v
				break
			}
		}
		if value == nil {
			return true
		}
		if *value > 0 && *value < fallbackScaleThreshold {
			scaled := *value * 1000
			value = &scaled
		}

		investments = append(investments, Investment{
			Issuer:    issuer,
			FairValue: value,
			RawRow:    cells,
		})
		return true
	})
	return investments
}

func startsWithLetter(s string) bool {
	for _, r := range s {
		return unicode.IsLetter(r)
	}
	return false
}
