package schedule

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tjbakshi/bdch-folio-tracker-sub000/pkg/core/normalize"
)

// headerPatterns are the semantic column groups that characterize a schedule
// of investments. A table's score is the number of distinct groups whose
// pattern appears in its header context, so a header containing a superset of
// another's patterns can never score lower.
var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`issuer|portfolio company|company|security|name of`),
	regexp.MustCompile(`principal|notional|par\b|cost`),
	regexp.MustCompile(`fair value|market value`),
	regexp.MustCompile(`tranche|type|description`),
	regexp.MustCompile(`coupon|rate`),
	regexp.MustCompile(`maturity|date`),
	regexp.MustCompile(`industry|sector`),
}

var scheduleMarkerRe = regexp.MustCompile(`schedule[s]? of investments|consolidated schedule of investments`)

// headerContextRows is how many leading rows are treated as header context
// when scoring. Schedules often split headers across two physical rows.
const headerContextRows = 3

// ScoreTable counts how many semantic header groups appear in the table's
// header context (th cells plus the first few rows).
func ScoreTable(table *goquery.Selection) int {
	var sb strings.Builder
	table.Find("th").Each(func(_ int, cell *goquery.Selection) {
		sb.WriteString(cell.Text())
		sb.WriteString(" ")
	})
	table.Find("tr").Slice(0, min(table.Find("tr").Length(), headerContextRows)).Each(func(_ int, row *goquery.Selection) {
		sb.WriteString(row.Text())
		sb.WriteString(" ")
	})
	context := strings.ToLower(normalize.CleanText(sb.String()))

	score := 0
	for _, pat := range headerPatterns {
		if pat.MatchString(context) {
			score++
		}
	}
	return score
}

// hasScheduleMarker reports whether the text surrounding the table mentions a
// schedule of investments. Checks the preceding siblings and the parent chain,
// the same way a reader would find the caption above the table.
func hasScheduleMarker(table *goquery.Selection) bool {
	sel := table
	for i := 0; i < 5; i++ {
		prev := sel.Prev()
		if prev.Length() == 0 {
			break
		}
		if scheduleMarkerRe.MatchString(strings.ToLower(prev.Text())) {
			return true
		}
		sel = prev
	}
	// Caption inside the table itself.
	if caption := table.Find("caption"); caption.Length() > 0 {
		if scheduleMarkerRe.MatchString(strings.ToLower(caption.Text())) {
			return true
		}
	}
	return false
}

type candidate struct {
	table  *goquery.Selection
	score  int
	marker bool
	pos    int
}

// FindScheduleTables returns the tables most likely to be the investment
// schedule, best first. Tables scoring below opts.MinScore are ignored.
// Tables with an explicit "schedule of investments" marker in their
// surrounding context outrank higher-scoring tables without one. A document
// with no qualifying table yields an empty result, not an error.
func FindScheduleTables(doc *goquery.Document, opts Options) []*goquery.Selection {
	var cands []candidate
	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		score := ScoreTable(table)
		if score < opts.MinScore {
			return
		}
		cands = append(cands, candidate{
			table:  table,
			score:  score,
			marker: hasScheduleMarker(table),
			pos:    i,
		})
	})

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].marker != cands[j].marker {
			return cands[i].marker
		}
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].pos < cands[j].pos
	})

	if opts.MaxTables > 0 && len(cands) > opts.MaxTables {
		cands = cands[:opts.MaxTables]
	}

	tables := make([]*goquery.Selection, 0, len(cands))
	for _, c := range cands {
		tables = append(tables, c.table)
	}
	return tables
}
