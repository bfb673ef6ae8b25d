// Package parser extracts structured, priced items from raw receipt OCR
// text and reconciles them against the printed receipt total.
//
// Handles:
//   - standard German receipt formats (Lidl, Aldi, Rewe, Edeka, Penny, Netto …)
//   - quantity multipliers ("1,95 x 2", "0,25 x 12") with arithmetic cross-check
//   - discount fusion (Rabattaktion, Preisvorteil … merged into the item above)
//   - Pfand and Pfandrückgabe lines
//   - receipt total extraction ("zu zahlen" …)
//   - OCR digit correction (leading 0↔8, 0↔9) using the total as reference
package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wgsplit/receipt-split-server/internal/models"
)

// builderState is the carry-over threaded through the line walk. pending
// holds the most recent line that looked like a description but had no
// price, for receipts that print an item's discount on the following line.
type builderState struct {
	items          []models.Item
	pending        string
	summaryReached bool
}

// Parse turns raw OCR text into a sequence of items plus the printed grand
// total. It never fails: unusable input yields an empty item list.
func Parse(text string) models.ParseResult {
	var totalPtr *decimal.Decimal
	if total, ok := ExtractTotal(text); ok {
		totalPtr = &total
	}

	st := builderState{}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		st = processLine(st, line)
	}

	items := AutoCorrect(st.items, totalPtr)
	if items == nil {
		items = []models.Item{}
	}
	return models.ParseResult{
		Items:        items,
		ReceiptTotal: totalPtr,
		Sum:          sumPrices(items),
	}
}

// processLine classifies one line and folds it into the builder state.
// Rules are evaluated in order, first match wins.
func processLine(st builderState, line string) builderState {
	kind, amountStr, descEnd := classifyLine(line)

	switch kind {
	case lineSkip:
		st.pending = ""
		return st

	case lineNoise:
		// Wrapped quantity fragment; drop it, carry-over untouched.
		return st

	case lineSummary:
		st.pending = ""
		// A deposit return printed inside the summary block is still a
		// real credit line.
		st = maybeDepositReturn(st, line)
		st.summaryReached = true
		return st
	}

	if st.summaryReached {
		// Past the total marker, summary text can masquerade as item
		// lines. Only deposit returns remain actionable.
		return maybeDepositReturn(st, line)
	}

	if kind == lineUnpriced {
		if isDescriptionLike(line) {
			st.pending = line
		}
		return st
	}

	price, ok := ParseAmount(amountStr)
	if !ok {
		return st
	}
	desc := strings.TrimSpace(line[:descEnd])

	if discountRe.MatchString(line) || discountRe.MatchString(desc) {
		return fuseDiscount(st, desc, price)
	}

	// Any other negative amount right below an item is an implicit
	// discount (the keyword got mangled by OCR).
	if price.Sign() < 0 && len(st.items) > 0 && !depositReturnRe.MatchString(line) {
		return fuseDiscount(st, desc, price)
	}

	if depositReturnRe.MatchString(line) || depositReturnRe.MatchString(desc) {
		st.pending = ""
		st.items = append(st.items, depositReturnItem(price))
		return st
	}

	if depositRe.MatchString(line) || depositRe.MatchString(desc) {
		st.pending = ""
		d := cleanDescription(desc)
		if d == "" {
			d = "Pfand"
		}
		st.items = append(st.items, models.Item{Description: d, Price: price.Abs(), Deposit: true})
		return st
	}

	qty := qtyCheck{price: price}
	if qtyInlineRe.MatchString(line) {
		qty = validateQuantityLine(line, price)
	}

	desc = cleanDescription(desc)
	if loc := qtyInlineRe.FindStringIndex(desc); loc != nil {
		desc = strings.TrimSpace(desc[:loc[0]])
	}
	desc = strings.TrimSpace(unitTailRe.ReplaceAllString(desc, ""))
	if desc == "" {
		return st
	}

	st.pending = ""
	st.items = append(st.items, models.Item{
		Description:  desc,
		Price:        qty.price,
		QtyValidated: qty.validated,
		OCRCorrected: qty.corrected,
	})
	return st
}

// fuseDiscount merges a discount line into the preceding item, or creates a
// new item from a pending unpriced description. If fusing would drive the
// previous item negative, the discount magnitude is reinterpreted with the
// first OCR candidate that keeps the result non-negative.
func fuseDiscount(st builderState, desc string, amount decimal.Decimal) builderState {
	discount := amount
	if discount.Sign() > 0 {
		discount = discount.Neg()
	}
	abs := discount.Abs()

	label := cleanDescription(desc)
	if label == "" {
		label = "Rabatt"
	}

	if st.pending != "" {
		st.items = append(st.items, models.Item{
			Description: cleanDescription(st.pending),
			Price:       abs.Neg(),
			Note:        label + " (" + formatEuro(discount) + ")",
		})
		st.pending = ""
		return st
	}

	if len(st.items) == 0 {
		return st
	}

	prev := &st.items[len(st.items)-1]
	if prev.Price.Add(discount).Sign() < 0 {
		for _, c := range DiscountCandidates(abs) {
			if prev.Price.Sub(c).Sign() >= 0 {
				discount = c.Neg()
				break
			}
		}
	}
	prev.Price = prev.Price.Add(discount).Round(2)
	prev.Note = label + " (" + formatEuro(discount) + ")"
	return st
}

// maybeDepositReturn appends a deposit-return credit if the line is one.
func maybeDepositReturn(st builderState, line string) builderState {
	if !depositReturnRe.MatchString(line) {
		return st
	}
	if s, ok := matchPrice(line); ok {
		if v, ok := ParseAmount(s); ok {
			st.items = append(st.items, depositReturnItem(v))
		}
	}
	return st
}

// depositReturnItem builds a Pfandrückgabe credit. The amount is forced
// negative regardless of the sign OCR produced.
func depositReturnItem(v decimal.Decimal) models.Item {
	price := v
	if price.Sign() >= 0 {
		price = price.Neg()
	}
	return models.Item{Description: "Pfandrückgabe", Price: price, DepositReturn: true}
}
