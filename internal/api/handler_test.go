package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/wgsplit/receipt-split-server/internal/config"
	"github.com/wgsplit/receipt-split-server/internal/models"
)

func setupTestApp() *fiber.App {
	return NewApp(config.Default())
}

func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest("GET", "/api/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result map[string]string
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if result["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", result["status"])
	}

	if result["engine"] != "fiber" {
		t.Errorf("expected engine=fiber, got %q", result["engine"])
	}
}

func TestParseEndpoint(t *testing.T) {
	app := setupTestApp()

	text := "Gemüsezwiebeln 1,49 A\nAnanas Scheiben 2,55 A\nzu zahlen 4,04\n"
	req := httptest.NewRequest("POST", "/api/parse", strings.NewReader(text))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result struct {
		Items        []models.Item `json:"items"`
		ReceiptTotal *float64      `json:"receiptTotal"`
		Sum          float64       `json:"sum"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(result.Items) != 2 {
		t.Fatalf("items: got %d, want 2", len(result.Items))
	}
	if result.ReceiptTotal == nil || *result.ReceiptTotal != 4.04 {
		t.Errorf("receiptTotal: got %v, want 4.04", result.ReceiptTotal)
	}
	if result.Sum != 4.04 {
		t.Errorf("sum: got %v, want 4.04", result.Sum)
	}

	// Prices must serialize as JSON numbers, not strings.
	if !bytes.Contains(body, []byte(`"price":1.49`)) {
		t.Errorf("expected numeric price in body: %s", body)
	}
}

func TestSettleEndpoint(t *testing.T) {
	app := setupTestApp()

	payload := `{
		"items": [{"desc": "Einkauf", "price": 30.00}],
		"members": ["Anna", "Ben", "Clara"],
		"payer": 0,
		"assignments": {}
	}`
	req := httptest.NewRequest("POST", "/api/settle", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result struct {
		Shares    []float64 `json:"shares"`
		Transfers []struct {
			From   int     `json:"from"`
			To     int     `json:"to"`
			Amount float64 `json:"amount"`
		} `json:"transfers"`
		TotalReceipt float64 `json:"totalReceipt"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if result.TotalReceipt != 30.00 {
		t.Errorf("totalReceipt: got %v, want 30", result.TotalReceipt)
	}
	if len(result.Shares) != 3 {
		t.Fatalf("shares: got %d, want 3", len(result.Shares))
	}
	for i, s := range result.Shares {
		if s != 10.00 {
			t.Errorf("share[%d] = %v, want 10", i, s)
		}
	}
	if len(result.Transfers) != 2 {
		t.Errorf("transfers: got %d, want 2", len(result.Transfers))
	}
}

func TestSettleEndpointRejectsBadPayer(t *testing.T) {
	app := setupTestApp()

	payload := `{"items": [], "members": ["Anna"], "payer": 3}`
	req := httptest.NewRequest("POST", "/api/settle", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestScanEndpointRequiresFile(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest("POST", "/api/scan", nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=----test")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	// Should fail because no file in the body
	if resp.StatusCode == fiber.StatusOK {
		t.Error("expected non-200 for missing file")
	}
}

func TestScanEndpointRejectsUnsupportedType(t *testing.T) {
	app := setupTestApp()

	var buf bytes.Buffer
	buf.WriteString("------test\r\n")
	buf.WriteString("Content-Disposition: form-data; name=\"receipt\"; filename=\"notes.txt\"\r\n")
	buf.WriteString("Content-Type: text/plain\r\n\r\n")
	buf.WriteString("kein beleg\r\n")
	buf.WriteString("------test--\r\n")

	req := httptest.NewRequest("POST", "/api/scan", &buf)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=----test")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest("GET", "/metrics", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
