// Package settle allocates item costs across participants and reduces the
// resulting debt graph to a minimal set of peer-to-peer transfers.
package settle

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wgsplit/receipt-split-server/internal/models"
)

// halfCent is the noise floor below which a remaining obligation counts as
// settled; it keeps rounding dust from generating sub-cent transfers.
var (
	halfCent = decimal.New(5, -3)
	oneCent  = decimal.New(1, -2)
)

// Compute settles a receipt: per-participant shares, balances against the
// payer, and the transfers that clear all debts.
//
// Per item, a weighted-quantity assignment (weights > 0) supersedes the
// explicit member set; an empty or absent set means everyone shares the
// item. Assignment entries referencing an out-of-range participant index
// are ignored rather than raised.
func Compute(items []models.Item, members []string, payer int, assignments map[int]models.Assignment) (*models.Settlement, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("at least one participant required")
	}
	if payer < 0 || payer >= len(members) {
		return nil, fmt.Errorf("payer index %d out of range for %d participants", payer, len(members))
	}

	n := len(members)
	shares := make([]decimal.Decimal, n)
	totalReceipt := decimal.Zero
	totalAssigned := decimal.Zero

	for idx, item := range items {
		totalReceipt = totalReceipt.Add(item.Price)
		a := assignments[idx]

		if weights, weightSum := validWeights(a.Quantities, n); weightSum > 0 {
			sumD := decimal.NewFromInt(weightSum)
			for mi, w := range weights {
				part := item.Price.Mul(decimal.NewFromInt(w)).Div(sumD).Round(2)
				shares[mi] = shares[mi].Add(part)
			}
			totalAssigned = totalAssigned.Add(item.Price)
			continue
		}

		participants := validMembers(a.Members, n)
		if len(participants) == 0 {
			participants = everyone(n)
		}
		part := item.Price.Div(decimal.NewFromInt(int64(len(participants)))).Round(2)
		for _, mi := range participants {
			shares[mi] = shares[mi].Add(part)
		}
		totalAssigned = totalAssigned.Add(item.Price)
	}

	for i := range shares {
		shares[i] = shares[i].Round(2)
	}

	balances := make([]models.Balance, n)
	for i := range balances {
		paid := decimal.Zero
		if i == payer {
			paid = totalReceipt
		}
		balances[i] = models.Balance{
			Paid:  paid.Round(2),
			Share: shares[i],
			Net:   paid.Sub(shares[i]).Round(2),
		}
	}

	return &models.Settlement{
		Shares:        shares,
		Balances:      balances,
		Transfers:     simplifyDebts(balances),
		TotalReceipt:  totalReceipt.Round(2),
		TotalAssigned: totalAssigned.Round(2),
	}, nil
}

// validWeights filters a quantity map down to in-range positive weights and
// returns their sum.
func validWeights(quantities map[int]int, n int) (map[int]int64, int64) {
	if len(quantities) == 0 {
		return nil, 0
	}
	out := make(map[int]int64)
	var sum int64
	for mi, w := range quantities {
		if mi < 0 || mi >= n || w <= 0 {
			continue
		}
		out[mi] = int64(w)
		sum += int64(w)
	}
	return out, sum
}

func validMembers(members []int, n int) []int {
	var out []int
	for _, mi := range members {
		if mi >= 0 && mi < n {
			out = append(out, mi)
		}
	}
	return out
}

func everyone(n int) []int {
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	return all
}

// simplifyDebts reduces net balances to a minimal transfer list. Debtors
// and creditors are each sorted largest first, then walked with two
// cursors; every step settles the smaller of the two head amounts and
// advances whichever side drops below half a cent. At most
// participants − 1 transfers result; uncovered rounding dust is dropped.
func simplifyDebts(balances []models.Balance) []models.Transfer {
	type entry struct {
		idx    int
		amount decimal.Decimal
	}
	var debtors, creditors []entry
	for i, b := range balances {
		switch {
		case b.Net.LessThan(halfCent.Neg()):
			debtors = append(debtors, entry{idx: i, amount: b.Net.Neg()})
		case b.Net.GreaterThan(halfCent):
			creditors = append(creditors, entry{idx: i, amount: b.Net})
		}
	}

	sort.SliceStable(debtors, func(a, b int) bool {
		return debtors[a].amount.GreaterThan(debtors[b].amount)
	})
	sort.SliceStable(creditors, func(a, b int) bool {
		return creditors[a].amount.GreaterThan(creditors[b].amount)
	})

	transfers := []models.Transfer{}
	di, ci := 0, 0
	for di < len(debtors) && ci < len(creditors) {
		d := &debtors[di]
		c := &creditors[ci]

		amount := decimal.Min(d.amount, c.amount).Round(2)
		if amount.GreaterThanOrEqual(oneCent) {
			transfers = append(transfers, models.Transfer{From: d.idx, To: c.idx, Amount: amount})
			d.amount = d.amount.Sub(amount)
			c.amount = c.amount.Sub(amount)
		}

		if d.amount.LessThan(halfCent) {
			di++
		}
		if c.amount.LessThan(halfCent) {
			ci++
		}
	}

	return transfers
}
