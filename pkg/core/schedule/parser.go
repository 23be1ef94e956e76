package schedule

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseDocument runs the full location -> mapping -> extraction pass over one
// filing document. Candidate tables are inspected best-first; a table mapping
// fewer than opts.MinMappedFields is skipped, except that a table mapping
// zero fields falls through to the weak fallback path when enabled. A
// document with no qualifying table returns an empty slice and no error:
// absence of a schedule is a valid outcome.
func ParseDocument(html string, opts Options) ([]Investment, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document html: %w", err)
	}
	return ParseParsedDocument(doc, opts)
}

// ParseParsedDocument is ParseDocument over an already-parsed handle.
func ParseParsedDocument(doc *goquery.Document, opts Options) ([]Investment, error) {
	tables := FindScheduleTables(doc, opts)
	if len(tables) == 0 {
		return nil, nil
	}

	var investments []Investment
	for _, table := range tables {
		mapping := MapColumns(table)
		switch {
		case len(mapping) >= opts.MinMappedFields:
			investments = append(investments, ExtractRows(table, mapping, opts)...)
		case len(mapping) == 0 && opts.EnableFallback:
			investments = append(investments, extractRowsFallback(table, opts)...)
		default:
			// Partially mapped below threshold: skip rather than extract noise.
		}
	}
	return investments, nil
}
