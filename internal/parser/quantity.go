package parser

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// qtyCheck is the outcome of cross-checking a quantity line.
type qtyCheck struct {
	price     decimal.Decimal
	validated bool
	// corrected is set when validation only succeeded through an
	// OCR-plausible reinterpretation, not a direct arithmetic match.
	corrected bool
}

// validateQuantityLine verifies round(unit × count) against the line's
// trailing total within one cent. On mismatch it tries candidate
// reinterpretations of the unit price first, then of the total itself,
// accepting the first combination that checks out. A validated line needs
// no further correction against the receipt total.
func validateQuantityLine(line string, lineTotal decimal.Decimal) qtyCheck {
	m := qtyInlineRe.FindStringSubmatch(line)
	if m == nil {
		return qtyCheck{price: lineTotal}
	}

	unit, ok := ParseAmount(m[1])
	if !ok {
		return qtyCheck{price: lineTotal}
	}
	count, err := strconv.Atoi(m[2])
	if err != nil || count <= 0 {
		return qtyCheck{price: lineTotal}
	}
	qty := decimal.NewFromInt(int64(count))

	matches := func(u, total decimal.Decimal) bool {
		return u.Mul(qty).Round(2).Sub(total).Abs().LessThan(matchTolerance)
	}

	if matches(unit, lineTotal) {
		return qtyCheck{price: lineTotal, validated: true}
	}

	for _, c := range QtyUnitCandidates(unit) {
		if matches(c, lineTotal) {
			return qtyCheck{price: lineTotal, validated: true, corrected: true}
		}
	}
	for _, c := range DiscountCandidates(unit) {
		if matches(c, lineTotal) {
			return qtyCheck{price: lineTotal, validated: true, corrected: true}
		}
	}

	for _, ct := range PriceCandidates(lineTotal) {
		if matches(unit, ct) {
			return qtyCheck{price: ct, validated: true, corrected: true}
		}
		for _, cu := range QtyUnitCandidates(unit) {
			if matches(cu, ct) {
				return qtyCheck{price: ct, validated: true, corrected: true}
			}
		}
		for _, cu := range DiscountCandidates(unit) {
			if matches(cu, ct) {
				return qtyCheck{price: ct, validated: true, corrected: true}
			}
		}
	}

	return qtyCheck{price: lineTotal}
}
