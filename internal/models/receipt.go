package models

import "github.com/shopspring/decimal"

func init() {
	// Prices go out as JSON numbers, matching what the editing UI expects.
	decimal.MarshalJSONWithoutQuotes = true
}

// Item represents a single priced line recovered from a receipt.
type Item struct {
	Description string          `json:"desc"`
	Price       decimal.Decimal `json:"price"`

	// Deposit marks a Pfand charge (always positive).
	Deposit bool `json:"pfand,omitempty"`
	// DepositReturn marks a Pfandrückgabe credit (always negative).
	DepositReturn bool `json:"pfandReturn,omitempty"`

	// Note describes a discount that was fused into this item's price.
	Note string `json:"note,omitempty"`

	// OCRCorrected is set when the price was repaired against the
	// printed receipt total or a quantity cross-check.
	OCRCorrected bool `json:"ocrCorrected,omitempty"`

	// QtyValidated means the line's unit × count arithmetic was confirmed,
	// which exempts the item from further price correction. Internal only.
	QtyValidated bool `json:"-"`
}

// ParseResult is the output of parsing one receipt text.
type ParseResult struct {
	Items []Item `json:"items"`

	// ReceiptTotal is the printed grand total, nil when no total keyword
	// was found in the text.
	ReceiptTotal *decimal.Decimal `json:"receiptTotal"`

	// Sum is the final sum of all item prices, for callers that want to
	// surface a remaining gap against ReceiptTotal.
	Sum decimal.Decimal `json:"sum"`
}
