package parser

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wgsplit/receipt-split-server/internal/models"
)

func TestAutoCorrect_NoTotalPassesThrough(t *testing.T) {
	items := []models.Item{{Description: "A", Price: d("8.79")}}

	got := AutoCorrect(items, nil)
	if !got[0].Price.Equal(d("8.79")) || got[0].OCRCorrected {
		t.Errorf("without a total nothing may change: %+v", got[0])
	}
}

func TestAutoCorrect_WithinTolerancePassesThrough(t *testing.T) {
	items := []models.Item{
		{Description: "A", Price: d("1.99")},
		{Description: "B", Price: d("2.54")},
	}
	total := d("4.54") // off by 0.01, inside tolerance

	got := AutoCorrect(items, &total)
	for i, it := range got {
		if it.OCRCorrected {
			t.Errorf("item %d should be untouched: %+v", i, it)
		}
	}
}

func TestAutoCorrect_GreedySingleSubstitution(t *testing.T) {
	items := []models.Item{
		{Description: "Croissant", Price: d("8.79")},
		{Description: "Zwiebeln", Price: d("1.49")},
	}
	total := d("2.28")

	got := AutoCorrect(items, &total)
	if !got[0].Price.Equal(d("0.79")) {
		t.Errorf("Croissant: got %s, want 0.79", got[0].Price)
	}
	if !got[0].OCRCorrected {
		t.Error("Croissant should be flagged as corrected")
	}
	if !got[1].Price.Equal(d("1.49")) || got[1].OCRCorrected {
		t.Errorf("Zwiebeln must stay untouched: %+v", got[1])
	}
}

func TestAutoCorrect_SkipsProtectedItems(t *testing.T) {
	items := []models.Item{
		{Description: "Drinks", Price: d("8.79"), QtyValidated: true},
		{Description: "Pfand", Price: d("8.75"), Deposit: true},
		{Description: "Käse", Price: d("8.50"), Note: "Rabattaktion (−0,20 €)"},
	}
	total := d("2.04") // would match if all three were rewritten

	got := AutoCorrect(items, &total)
	for i, it := range got {
		if it.OCRCorrected {
			t.Errorf("protected item %d was corrected: %+v", i, it)
		}
		if !it.Price.Equal(items[i].Price) {
			t.Errorf("protected item %d price changed: %s -> %s", i, items[i].Price, it.Price)
		}
	}
}

func TestAutoCorrect_PairSubstitution(t *testing.T) {
	// Neither substitution helps alone: rewriting A overshoots by 8, the
	// deposit return overshoots the other way. Together they land exactly.
	items := []models.Item{
		{Description: "A", Price: d("9.10")},
		{Description: "Pfandrückgabe", Price: d("-8.50"), DepositReturn: true},
		{Description: "C", Price: d("2.00")},
	}
	total := d("1.60")

	got := AutoCorrect(items, &total)
	if !got[0].Price.Equal(d("0.10")) || !got[0].OCRCorrected {
		t.Errorf("A: got %+v, want 0.10 corrected", got[0])
	}
	if !got[1].Price.Equal(d("-0.50")) || !got[1].OCRCorrected {
		t.Errorf("deposit return: got %+v, want -0.50 corrected", got[1])
	}
	if !sumPrices(got).Equal(total) {
		t.Errorf("sum = %s, want %s", sumPrices(got), total)
	}
}

func TestAutoCorrect_ResidualAbsorption(t *testing.T) {
	items := []models.Item{
		{Description: "A", Price: d("1.49")},
		{Description: "B", Price: d("2.00")},
	}
	total := d("3.58") // 0.09 short, no candidate explains it

	got := AutoCorrect(items, &total)
	if !got[0].Price.Equal(d("1.58")) || !got[0].OCRCorrected {
		t.Errorf("A should absorb the residual: %+v", got[0])
	}
	if !got[1].Price.Equal(d("2.00")) {
		t.Errorf("B must stay untouched: %+v", got[1])
	}
}

func TestAutoCorrect_ResidualSkipsItemGoingNegative(t *testing.T) {
	items := []models.Item{
		{Description: "Pfandrückgabe", Price: d("-0.30"), DepositReturn: true},
		{Description: "B", Price: d("5.00")},
	}
	total := d("4.30") // deficit -0.40 would push the return to -0.70

	got := AutoCorrect(items, &total)
	if !got[0].Price.Equal(d("-0.30")) {
		t.Errorf("deposit return absorbed the residual: %+v", got[0])
	}
	if !got[1].Price.Equal(d("4.60")) || !got[1].OCRCorrected {
		t.Errorf("B: got %+v, want 4.60 corrected", got[1])
	}
}

func TestAutoCorrect_LargeResidualLeftAlone(t *testing.T) {
	items := []models.Item{{Description: "A", Price: d("1.49")}}
	total := d("5.00") // 3.51 gap, beyond any plausible repair

	got := AutoCorrect(items, &total)
	if !got[0].Price.Equal(d("1.49")) || got[0].OCRCorrected {
		t.Errorf("unexplainable gap must not be absorbed: %+v", got[0])
	}
}

func TestSumPrices(t *testing.T) {
	items := []models.Item{
		{Price: d("1.49")},
		{Price: d("3.75")},
		{Price: d("-6.50")},
	}
	if got := sumPrices(items); !got.Equal(d("-1.26")) {
		t.Errorf("sumPrices = %s, want -1.26", got)
	}
	if !sumPrices(nil).Equal(decimal.Zero) {
		t.Error("sumPrices(nil) should be zero")
	}
}
