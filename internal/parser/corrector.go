package parser

import (
	"github.com/shopspring/decimal"

	"github.com/wgsplit/receipt-split-server/internal/models"
)

// maxGreedyPasses bounds the single-item correction loop; realistic
// receipts stay well under 60 lines, so correction cost stays near-linear.
const maxGreedyPasses = 30

func sumPrices(items []models.Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price)
	}
	return sum.Round(2)
}

// eligible reports whether an item's price may still be corrected. Items
// with independent numeric confirmation (quantity check), deposits and
// fused-discount items are off limits.
func eligible(it models.Item) bool {
	return !it.QtyValidated && !it.Deposit && it.Note == ""
}

// candidatesFor generates price substitutions for one item. Deposit-return
// credits are stored negative, so their candidates are sign-flipped.
func candidatesFor(it models.Item) []decimal.Decimal {
	cands := PriceCandidates(it.Price)
	if it.DepositReturn {
		for i, c := range cands {
			cands[i] = c.Neg()
		}
	}
	return cands
}

// AutoCorrect searches for minimal digit-substitution corrections that
// bring the item sum into agreement with the printed receipt total.
//
// Three bounded passes:
//  1. greedy single-item substitutions, each item corrected at most once;
//  2. the best pair of substitutions across two different items;
//  3. residual absorption: a 1–50 cent leftover is added outright to the
//     first eligible item, since small residuals are more likely rounding
//     noise than a recoverable OCR error.
//
// With no total, or a sum already within a cent, items pass through
// untouched. This is a local heuristic, not a global optimum search.
func AutoCorrect(items []models.Item, receiptTotal *decimal.Decimal) []models.Item {
	if receiptTotal == nil || receiptTotal.Sign() <= 0 {
		return items
	}
	total := *receiptTotal

	if sumPrices(items).Sub(total).Abs().LessThan(matchTolerance) {
		return items
	}

	best := make([]models.Item, len(items))
	copy(best, items)
	bestDiff := sumPrices(best).Sub(total).Abs()

	corrected := make(map[int]bool)

	for pass := 0; pass < maxGreedyPasses && bestDiff.GreaterThan(matchTolerance); pass++ {
		sum := sumPrices(best)

		type option struct {
			index int
			price decimal.Decimal
			diff  decimal.Decimal
		}
		var bestOpt *option

		for i, it := range best {
			if corrected[i] || !eligible(it) {
				continue
			}
			for _, c := range candidatesFor(it) {
				newDiff := sum.Sub(it.Price).Add(c).Round(2).Sub(total).Abs()
				if newDiff.LessThan(bestDiff.Sub(improveEpsilon)) {
					if bestOpt == nil || newDiff.LessThan(bestOpt.diff) {
						bestOpt = &option{index: i, price: c, diff: newDiff}
					}
				}
			}
		}

		if bestOpt == nil {
			break
		}
		best[bestOpt.index].Price = bestOpt.price
		best[bestOpt.index].OCRCorrected = true
		corrected[bestOpt.index] = true
		bestDiff = bestOpt.diff
	}

	// Pair pass: two substitutions on different items whose combined delta
	// best matches the remaining deficit.
	if bestDiff.GreaterThan(matchTolerance) {
		sum := sumPrices(best)
		deficit := total.Sub(sum)

		type option struct {
			index int
			price decimal.Decimal
			delta decimal.Decimal
		}
		var options []option
		for i, it := range best {
			if !eligible(it) || it.OCRCorrected {
				continue
			}
			for _, c := range candidatesFor(it) {
				options = append(options, option{index: i, price: c, delta: c.Sub(it.Price).Round(2)})
			}
		}

		var bestPair []option
		bestPairDiff := bestDiff
		for a := 0; a < len(options); a++ {
			for b := a + 1; b < len(options); b++ {
				if options[a].index == options[b].index {
					continue
				}
				newDiff := deficit.Sub(options[a].delta.Add(options[b].delta)).Abs()
				if newDiff.LessThan(bestPairDiff.Sub(improveEpsilon)) {
					bestPair = []option{options[a], options[b]}
					bestPairDiff = newDiff
				}
			}
		}

		if bestPair != nil {
			for _, opt := range bestPair {
				best[opt.index].Price = opt.price
				best[opt.index].OCRCorrected = true
			}
			bestDiff = sumPrices(best).Sub(total).Abs()
		}
	}

	// Residual absorption: nudge one item by the whole leftover.
	if bestDiff.GreaterThanOrEqual(oneCent) && bestDiff.LessThanOrEqual(maxResidual) {
		deficit := total.Sub(sumPrices(best)).Round(2)
		for i, it := range best {
			if !eligible(it) {
				continue
			}
			newPrice := it.Price.Add(deficit).Round(2)
			if newPrice.GreaterThanOrEqual(oneCent.Neg()) {
				best[i].Price = newPrice
				best[i].OCRCorrected = true
				break
			}
		}
	}

	return best
}
