package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Tolerances used throughout parsing and correction. Amounts are compared
// against the printed total with a one-cent tolerance; a substitution must
// improve the gap by more than half a cent to be accepted.
var (
	matchTolerance = decimal.New(2, -2)  // 0.02
	improveEpsilon = decimal.New(5, -3)  // 0.005
	oneCent        = decimal.New(1, -2)  // 0.01
	maxResidual    = decimal.New(50, -2) // 0.50
)

// ParseAmount converts a decimal-comma amount string ("2,49", "-6,50",
// "1,999") to a Decimal. A third fractional digit is an OCR artifact and is
// truncated, not rounded.
func ParseAmount(s string) (decimal.Decimal, bool) {
	clean := strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, false
	}
	return d.Truncate(2), true
}

// mustAmount parses candidate strings built from known-good digit patterns.
func mustAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("parser: bad candidate amount " + s)
	}
	return d
}

// formatEuro renders a signed amount the way receipts print it, for
// discount notes: "−0,90 €" or "+1,50 €".
func formatEuro(v decimal.Decimal) string {
	sign := "+"
	if v.Sign() < 0 {
		sign = "−"
	}
	return sign + strings.Replace(v.Abs().StringFixed(2), ".", ",", 1) + " €"
}

// PriceCandidates generates OCR-plausible reinterpretations of an item
// price. The OCR engine systematically reads a leading 0 as 8 or 9, so the
// rules are deliberately narrow:
//
//   - leading 8/9 → 0
//   - multi-digit "8X.YZ" → "X.YZ" → "0.YZ" (two compounding misreads)
//   - first fractional digit 9 → 0 (e.g. 1,99 → 1,09)
//
// Candidates are generated from the absolute value; all are non-negative.
func PriceCandidates(v decimal.Decimal) []decimal.Decimal {
	s := v.Abs().StringFixed(2)
	var out []decimal.Decimal

	if s[0] == '8' || s[0] == '9' {
		out = append(out, mustAmount("0"+s[1:]))
	}

	if len(s) > 4 && (s[0] == '8' || s[0] == '9') {
		rest := s[1:]
		if strings.Contains(rest, ".") {
			out = append(out, mustAmount(rest))
			if rest[0] != '0' {
				out = append(out, mustAmount("0"+rest[1:]))
			}
		}
	}

	if len(s) >= 4 && s[1] == '.' && s[2] == '9' {
		out = append(out, mustAmount(s[:2]+"0"+string(s[3])))
	}

	return out
}

// DiscountCandidates reinterprets a discount magnitude. Only the most
// reliable pattern (leading 8/9 → 0) is used here, because a wrong discount
// correction silently shifts the fused item's price.
func DiscountCandidates(abs decimal.Decimal) []decimal.Decimal {
	s := abs.Abs().StringFixed(2)
	if s[0] == '8' || s[0] == '9' {
		return []decimal.Decimal{mustAmount("0" + s[1:])}
	}
	return nil
}

// QtyUnitCandidates reinterprets a unit price from a quantity line. In
// quantity contexts the OCR engine also confuses 0 with 6 (0,29 → 6,29).
func QtyUnitCandidates(unit decimal.Decimal) []decimal.Decimal {
	s := unit.Abs().StringFixed(2)
	var out []decimal.Decimal
	if s[0] == '6' && len(s) >= 4 {
		out = append(out, mustAmount("0"+s[1:]))
	}
	if s[0] == '8' || s[0] == '9' {
		out = append(out, mustAmount("0"+s[1:]))
	}
	return out
}
