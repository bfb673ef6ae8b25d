package models

import "github.com/shopspring/decimal"

// Assignment describes who pays for one item. Quantities, when present and
// non-zero, supersede Members: the item is split proportionally to each
// participant's weight. Otherwise the item is split evenly across Members;
// an empty or absent set means everyone shares it.
type Assignment struct {
	Members    []int       `json:"members,omitempty"`
	Quantities map[int]int `json:"quantities,omitempty"`
}

// Balance is one participant's position after a receipt is settled.
type Balance struct {
	// Paid is the receipt total for the payer, zero for everyone else.
	Paid decimal.Decimal `json:"paid"`
	// Share is the sum of this participant's item portions.
	Share decimal.Decimal `json:"share"`
	// Net is Paid − Share. Positive means this person is owed money.
	Net decimal.Decimal `json:"net"`
}

// Transfer is one settling payment between two participants.
type Transfer struct {
	From   int             `json:"from"`
	To     int             `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// Settlement is the full result of a settlement computation.
type Settlement struct {
	Shares    []decimal.Decimal `json:"shares"`
	Balances  []Balance         `json:"balances"`
	Transfers []Transfer        `json:"transfers"`

	// TotalReceipt is the sum of all item prices.
	TotalReceipt decimal.Decimal `json:"totalReceipt"`
	// TotalAssigned is the portion of TotalReceipt covered by assignments
	// (including the implicit everyone-split for unassigned items).
	TotalAssigned decimal.Decimal `json:"totalAssigned"`
}
