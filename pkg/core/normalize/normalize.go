// Package normalize converts raw filing cell text into typed values.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	footnoteRe   = regexp.MustCompile(`(\s*\((?:\d{1,2}|[a-z])\)\s*|[\*†‡]+\s*)+$`)
	numericRe    = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// CleanText collapses whitespace runs to a single space, strips quote
// characters and trims the result.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "“", "")
	s = strings.ReplaceAll(s, "”", "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// StripFootnotes removes trailing footnote markers from issuer names:
// parenthesized digits or letters, asterisks and daggers.
// "RetailCo Ltd(1)" -> "RetailCo Ltd".
func StripFootnotes(s string) string {
	s = CleanText(s)
	return strings.TrimSpace(footnoteRe.ReplaceAllString(s, ""))
}

// ParseAmount parses a currency cell into a signed number. Values wholly
// wrapped in parentheses are negative (accounting convention). Placeholder
// tokens ("—", "-", "–", "N/A", empty) and non-numeric remainders yield nil.
// Absence is nil, never zero.
func ParseAmount(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "—" || s == "–" || strings.EqualFold(s, "N/A") {
		return nil
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, "£", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	s = strings.ReplaceAll(s, ",", "")

	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimPrefix(s, "-")
	}

	if !numericRe.MatchString(s) {
		return nil
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if negative {
		val = -val
	}
	return &val
}

// dateLayouts covers the formats seen across filing tables.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"January 2, 2006",
	"Jan 2, 2006",
	"Jan. 2, 2006",
	"January 2006",
	"Jan 2006",
	"2006-01-02T15:04:05Z07:00",
}

// ParseDate attempts generic date parsing against the known layouts and
// normalizes to a UTC calendar date. Empty or unparseable input yields nil.
// Never returns an error.
func ParseDate(s string) *time.Time {
	s = CleanText(s)
	if s == "" || s == "-" || s == "—" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}
