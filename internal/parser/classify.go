package parser

import (
	"regexp"
	"strings"
)

// Line vocabulary for German retail receipts (Lidl, Aldi, Rewe, Edeka,
// Penny, Netto and similar layouts). The trailing [AB8] in priceRe is the
// VAT-class suffix; OCR reads the letter B as the digit 8 often enough that
// it has to be tolerated.
var (
	priceRe     = regexp.MustCompile(`(-?\d{1,4}[,.]\d{2,3})\s*[AB8]?\s*$`)
	qtyInlineRe = regexp.MustCompile(`(\d{1,4}[,.]\d{1,3})\s*[xX×:]\s*(\d{1,4})`)

	discountRe      = regexp.MustCompile(`(?i)rabattaktion|preisvorteil|aktionsnachlass|preisreduz|aktionsrabatt|coupon|gutschein`)
	depositRe       = regexp.MustCompile(`(?i)\bpfand\b`)
	depositReturnRe = regexp.MustCompile(`(?i)pfandr[uü]ckgabe|leergut`)

	// summaryRe marks the start of the receipt's summary block: totals,
	// tender and change lines. Item parsing stops there.
	summaryRe = regexp.MustCompile(`(?i)^(summe|gesamt|gesamtsumme|endbetrag|zu zahlen|total\b|zwischensumme|bar\b|kartenzahlung|mastercard|visa|ec[- ]?karte|bezahlung|girocard|bezahlt|gegeben|r[uü]ckgeld|kreditkarte)`)

	// skipRe matches boilerplate: tax summary rows, store metadata,
	// timestamps, decorative separators.
	skipRe = regexp.MustCompile(`(?i)^(ust|mwst|steuer|netto|brutto|datum|uhr(?:zeit)?|kasse|bon\b|beleg\b|filiale|markt\b|tel[.:]|fax|www\.|http|vielen dank|tse|ust-id|str\.|plz|scheck|trinkgeld|eur$|\*{3,}|={3,}|-{5,}|_{3,})`)

	// noiseRe matches a bare "N x value" fragment: the tail of a quantity
	// line that OCR wrapped onto its own line.
	noiseRe = regexp.MustCompile(`^-?\d{1,3}\s*[xX×]\s+\d`)

	taxSuffixRe = regexp.MustCompile(`\s+[AB8]\s*$`)
	// unitTailRe strips trailing weight/piece fragments like "0,456 kg 2".
	unitTailRe = regexp.MustCompile(`\d[,:;]\d+\s*(Kg|kg|St|st|Stk|stk)[;,.]?\s*\d*$`)

	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
	letterRe     = regexp.MustCompile(`[a-zA-Z\x{00C0}-\x{024F}]`)
)

// lineKind is the first-match-wins classification of a receipt line.
type lineKind int

const (
	lineSkip lineKind = iota
	lineNoise
	lineSummary
	linePriced
	lineUnpriced
)

// classifyLine tags a trimmed, non-empty line. Priced lines carry their
// trailing amount string and the offset where it starts (the description
// portion is everything before it).
func classifyLine(line string) (kind lineKind, amount string, descEnd int) {
	if skipRe.MatchString(line) {
		return lineSkip, "", 0
	}
	if noiseRe.MatchString(line) {
		return lineNoise, "", 0
	}
	if summaryRe.MatchString(line) {
		return lineSummary, "", 0
	}
	if loc := priceRe.FindStringSubmatchIndex(line); loc != nil {
		return linePriced, line[loc[2]:loc[3]], loc[2]
	}
	return lineUnpriced, "", 0
}

// matchPrice returns the trailing amount of a line, for lines already known
// to be in the summary block (deposit returns past the total marker).
func matchPrice(line string) (string, bool) {
	m := priceRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// cleanDescription strips the VAT suffix and collapses whitespace.
func cleanDescription(raw string) string {
	s := taxSuffixRe.ReplaceAllString(raw, "")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// isDescriptionLike reports whether an unpriced line looks like an item
// description worth carrying over (a wrapped line whose price and discount
// print below it).
func isDescriptionLike(line string) bool {
	return len([]rune(line)) > 2 && letterRe.MatchString(line)
}
