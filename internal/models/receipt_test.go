package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestItemJSON(t *testing.T) {
	it := Item{
		Description:  "Croissant Schin",
		Price:        decimal.RequireFromString("0.79"),
		OCRCorrected: true,
		QtyValidated: true,
	}

	data, err := json.Marshal(it)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	s := string(data)

	// Prices serialize as JSON numbers for the editing UI.
	if !strings.Contains(s, `"price":0.79`) {
		t.Errorf("price should be a bare number: %s", s)
	}
	if !strings.Contains(s, `"ocrCorrected":true`) {
		t.Errorf("missing correction flag: %s", s)
	}
	// The quantity-validation flag is parser-internal.
	if strings.Contains(s, "QtyValidated") || strings.Contains(s, "qtyValidated") {
		t.Errorf("internal flag leaked into JSON: %s", s)
	}

	// Zero-valued flags stay out of the payload entirely.
	plain, _ := json.Marshal(Item{Description: "Brot", Price: decimal.RequireFromString("1.99")})
	if strings.Contains(string(plain), "pfand") || strings.Contains(string(plain), "note") {
		t.Errorf("empty optional fields should be omitted: %s", plain)
	}
}
