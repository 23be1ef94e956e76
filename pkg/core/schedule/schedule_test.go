package schedule

import (
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse test html: %v", err)
	}
	return doc
}

func tableHTML(headers []string, rows [][]string) string {
	var sb strings.Builder
	sb.WriteString("<table><tr>")
	for _, h := range headers {
		sb.WriteString("<th>" + h + "</th>")
	}
	sb.WriteString("</tr>")
	for _, row := range rows {
		sb.WriteString("<tr>")
		for _, c := range row {
			sb.WriteString("<td>" + c + "</td>")
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</table>")
	return sb.String()
}

var scheduleHeaders = []string{"Company Name", "Business Description", "Investment Type", "Principal Amount", "Fair Value"}

func TestScoreTableMonotonic(t *testing.T) {
	// A header with strictly more recognized patterns never scores lower.
	subset := tableHTML([]string{"Company Name", "Fair Value"}, nil)
	superset := tableHTML([]string{"Company Name", "Fair Value", "Principal", "Maturity Date", "Industry"}, nil)

	subDoc := docFromHTML(t, subset)
	superDoc := docFromHTML(t, superset)

	subScore := ScoreTable(subDoc.Find("table").First())
	superScore := ScoreTable(superDoc.Find("table").First())

	if superScore < subScore {
		t.Errorf("superset scored %d, below subset score %d", superScore, subScore)
	}
	if subScore < 2 {
		t.Errorf("expected issuer+value headers to score at least 2, got %d", subScore)
	}
}

func TestFindScheduleTablesNoCandidate(t *testing.T) {
	html := "<html><body><p>No tables here.</p>" +
		tableHTML([]string{"Quarter", "Revenue"}, [][]string{{"Q1", "5"}}) +
		"</body></html>"
	doc := docFromHTML(t, html)

	tables := FindScheduleTables(doc, DefaultOptions())
	if len(tables) != 0 {
		t.Errorf("expected no candidate tables, got %d", len(tables))
	}
}

func TestFindScheduleTablesPrefersMarker(t *testing.T) {
	// Both tables qualify; the one preceded by the textual marker must win
	// even though the other scores at least as high.
	noise := tableHTML(append(scheduleHeaders, "Industry", "Maturity Date"), nil)
	marked := tableHTML(scheduleHeaders, nil)
	html := "<html><body>" + noise +
		"<p>Consolidated Schedule of Investments</p>" + marked +
		"</body></html>"
	doc := docFromHTML(t, html)

	tables := FindScheduleTables(doc, DefaultOptions())
	if len(tables) == 0 {
		t.Fatal("expected candidate tables")
	}
	if !hasScheduleMarker(tables[0]) {
		t.Error("expected the marked table to be preferred")
	}
}

func TestMapColumns(t *testing.T) {
	doc := docFromHTML(t, tableHTML(scheduleHeaders, nil))
	table := doc.Find("table").First()

	mapping := MapColumns(table)

	expected := ColumnMap{
		FieldIssuer:      0,
		FieldDescription: 1,
		FieldTranche:     2,
		FieldPrincipal:   3,
		FieldFairValue:   4,
	}
	if !reflect.DeepEqual(mapping, expected) {
		t.Errorf("mapping mismatch:\n got  %v\n want %v", mapping, expected)
	}
}

func TestMapColumnsDeterministic(t *testing.T) {
	doc := docFromHTML(t, tableHTML(scheduleHeaders, nil))
	table := doc.Find("table").First()

	first := MapColumns(table)
	second := MapColumns(table)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("mapper is not deterministic: %v vs %v", first, second)
	}
}

func TestMapColumnsFirstMatchWins(t *testing.T) {
	// "Amortized Cost" claims the cost field; a later bare "Cost" column must
	// not override it.
	headers := []string{"Company", "Amortized Cost", "Cost", "Fair Value"}
	doc := docFromHTML(t, tableHTML(headers, nil))

	mapping := MapColumns(doc.Find("table").First())
	if mapping[FieldCost] != 1 {
		t.Errorf("expected cost mapped to column 1 (Amortized Cost), got %d", mapping[FieldCost])
	}
}

func TestMapColumnsRateDisambiguation(t *testing.T) {
	headers := []string{"Company", "Reference Rate", "Spread", "Interest Rate"}
	doc := docFromHTML(t, tableHTML(headers, nil))

	mapping := MapColumns(doc.Find("table").First())
	if mapping[FieldReferenceRate] != 1 {
		t.Errorf("reference rate mapped to %d, want 1", mapping[FieldReferenceRate])
	}
	if mapping[FieldSpread] != 2 {
		t.Errorf("spread mapped to %d, want 2", mapping[FieldSpread])
	}
	if mapping[FieldCoupon] != 3 {
		t.Errorf("coupon mapped to %d, want 3", mapping[FieldCoupon])
	}
}

func TestParseDocumentEndToEnd(t *testing.T) {
	html := "<html><body><p>Schedule of Investments</p>" +
		tableHTML(scheduleHeaders, [][]string{
			{"ABC Corp", "Software services", "First Lien", "$1,000,000", "$950,000"},
		}) + "</body></html>"

	investments, err := ParseDocument(html, DefaultOptions())
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(investments) != 1 {
		t.Fatalf("expected exactly 1 investment, got %d", len(investments))
	}

	inv := investments[0]
	if inv.Issuer != "ABC Corp" {
		t.Errorf("issuer = %q, want %q", inv.Issuer, "ABC Corp")
	}
	if inv.Description != "Software services" {
		t.Errorf("description = %q, want %q", inv.Description, "Software services")
	}
	if inv.Tranche != "First Lien" {
		t.Errorf("tranche = %q, want %q", inv.Tranche, "First Lien")
	}
	if inv.Principal == nil || *inv.Principal != 1000000 {
		t.Errorf("principal = %v, want 1000000", inv.Principal)
	}
	if inv.FairValue == nil || *inv.FairValue != 950000 {
		t.Errorf("fair value = %v, want 950000", inv.FairValue)
	}
}

func TestParseDocumentTotalsOnly(t *testing.T) {
	html := "<html><body><p>Schedule of Investments</p>" +
		tableHTML(scheduleHeaders, [][]string{
			{"Total Investments", "", "", "$12,345,000", "$12,000,000"},
			{"", "", "", "1,000", "2,000"},
		}) + "</body></html>"

	investments, err := ParseDocument(html, DefaultOptions())
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(investments) != 0 {
		t.Errorf("expected zero investments from totals-only table, got %d", len(investments))
	}
}

func TestExtractRowsSkipsInvalid(t *testing.T) {
	doc := docFromHTML(t, tableHTML(scheduleHeaders, [][]string{
		{"AB", "too-short issuer", "First Lien", "$100", "$90"}, // issuer too short
		{"Valid Holdings Inc", "no monetary values", "Equity", "—", "—"},
		{"Good Co LLC", "Retail", "Second Lien", "$5,000", "$4,500"},
	}))
	table := doc.Find("table").First()

	investments := ExtractRows(table, MapColumns(table), DefaultOptions())
	if len(investments) != 1 {
		t.Fatalf("expected 1 accepted row, got %d", len(investments))
	}
	if investments[0].Issuer != "Good Co LLC" {
		t.Errorf("accepted issuer = %q, want %q", investments[0].Issuer, "Good Co LLC")
	}
}

func TestExtractRowsStripsFootnotes(t *testing.T) {
	doc := docFromHTML(t, tableHTML(scheduleHeaders, [][]string{
		{"RetailCo Ltd(1)", "Consumer retail", "First Lien", "$200,000", "$190,000"},
	}))
	table := doc.Find("table").First()

	investments := ExtractRows(table, MapColumns(table), DefaultOptions())
	if len(investments) != 1 {
		t.Fatalf("expected 1 row, got %d", len(investments))
	}
	if investments[0].Issuer != "RetailCo Ltd" {
		t.Errorf("issuer = %q, want footnote stripped %q", investments[0].Issuer, "RetailCo Ltd")
	}
}

func TestExtractRowsRowLimit(t *testing.T) {
	rows := make([][]string, 20)
	for i := range rows {
		rows[i] = []string{"Issuer Number " + string(rune('A'+i)), "Desc", "Loan", "$1,000", "$900"}
	}
	doc := docFromHTML(t, tableHTML(scheduleHeaders, rows))
	table := doc.Find("table").First()

	opts := DefaultOptions()
	opts.MaxRowsPerTable = 5
	investments := ExtractRows(table, MapColumns(table), opts)
	if len(investments) != 5 {
		t.Errorf("expected row limit of 5 to apply, got %d rows", len(investments))
	}
}

func TestExtractRowsFallback(t *testing.T) {
	// No recognizable headers at all: the weak path should still pull an
	// issuer and a trailing value, scaling thousands-stated amounts.
	html := "<table>" +
		"<tr><td>Holding</td><td>Col2</td><td>Col3</td></tr>" +
		"<tr><td>Widget Makers LLC</td><td>note</td><td>1,250</td></tr>" +
		"</table>"
	doc := docFromHTML(t, html)
	table := doc.Find("table").First()

	if mapping := MapColumns(table); len(mapping) != 0 {
		t.Fatalf("test premise broken: expected empty mapping, got %v", mapping)
	}

	investments := extractRowsFallback(table, DefaultOptions())
	if len(investments) != 1 {
		t.Fatalf("expected 1 fallback row, got %d", len(investments))
	}
	if investments[0].Issuer != "Widget Makers LLC" {
		t.Errorf("issuer = %q", investments[0].Issuer)
	}
	if investments[0].FairValue == nil || *investments[0].FairValue != 1250000 {
		t.Errorf("fair value = %v, want 1250000 (1,250 thousands scaled)", investments[0].FairValue)
	}
}
