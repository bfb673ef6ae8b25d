package parser

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// Ordered total patterns, most specific keyword first. "summe" is handled
// separately below because it must not match inside "zwischensumme".
var totalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)zu zahlen\s*:?\s*(-?\d{1,6}[,.]\d{2})`),
	regexp.MustCompile(`(?i)endbetrag\s*:?\s*(-?\d{1,6}[,.]\d{2})`),
	regexp.MustCompile(`(?i)gesamtsumme\s*:?\s*(-?\d{1,6}[,.]\d{2})`),
	regexp.MustCompile(`(?i)(?:^|\s)gesamt\s*:?\s*(-?\d{1,6}[,.]\d{2})`),
	regexp.MustCompile(`(?i)total\s*:?\s*(-?\d{1,6}[,.]\d{2})`),
	regexp.MustCompile(`(?i)(?:bar|ec[- ]?karte|kartenzahlung|girocard)\s+(-?\d{1,6}[,.]\d{2})`),
}

// summeRe captures an optional "zwischen" prefix; matches with the prefix
// present are subtotals and are skipped.
var summeRe = regexp.MustCompile(`(?i)(zwischen)?summe\s*:?\s*(-?\d{1,6}[,.]\d{2})`)

// Keywords whose value OCR sometimes wraps onto a following line.
var totalFallbackRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bzu zahlen\b`),
	regexp.MustCompile(`(?i)\bgesamtsumme\b`),
	regexp.MustCompile(`(?i)\bendbetrag\b`),
	regexp.MustCompile(`(?i)\btotal\b`),
}

var (
	leadColonRe   = regexp.MustCompile(`^\s*:?\s*`)
	lineStartAmtRe = regexp.MustCompile(`(?m)^(-?\d{1,6}[,.]\d{2})`)
)

// ExtractTotal scans the full raw text for the printed grand total.
// It returns false when no recognizable total keyword is found.
func ExtractTotal(text string) (decimal.Decimal, bool) {
	for _, re := range totalPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v, ok := ParseAmount(m[1]); ok {
				return v, true
			}
		}
	}
	for _, m := range summeRe.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			continue
		}
		if v, ok := ParseAmount(m[2]); ok {
			return v, true
		}
	}

	// Fallback: the keyword and its value got split across lines by OCR.
	// Scan forward from the keyword for the first amount at a line start.
	for _, re := range totalFallbackRes {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		tail := leadColonRe.ReplaceAllString(text[loc[1]:], "")
		if m := lineStartAmtRe.FindStringSubmatch(tail); m != nil {
			if v, ok := ParseAmount(m[1]); ok {
				return v, true
			}
		}
	}

	return decimal.Zero, false
}
