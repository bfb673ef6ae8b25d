// Package extractor obtains raw text from uploaded receipts. Digital PDFs
// are read through their text layer; scanned PDFs and photos go through
// external OCR (pdftoppm + tesseract).
package extractor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ReceiptText extracts the raw text of a receipt file. PDF receipts use the
// first page only; supermarket receipts are single-page and later pages of
// exported PDFs tend to be legal boilerplate.
func ReceiptText(path string, isPDF bool, opts Options) (string, error) {
	if !isPDF {
		return OCRImage(path, opts)
	}

	text, err := textLayerFirstPage(path)
	if err == nil && isReadableText(text) {
		return text, nil
	}

	// No usable text layer — the PDF is a scan. Rasterize and OCR.
	text, ocrErr := OCRPDFFirstPage(path, opts)
	if ocrErr != nil {
		if err != nil {
			return "", fmt.Errorf("PDF text extraction failed (%v) and OCR fallback failed: %w", err, ocrErr)
		}
		return "", fmt.Errorf("PDF has no readable text layer and OCR fallback failed: %w", ocrErr)
	}
	return text, nil
}

// textLayerFirstPage reads page 1 through the PDF library. The library can
// panic on malformed files, so recover into an error.
func textLayerFirstPage(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if r.NumPage() == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	page := r.Page(1)
	if page.V.IsNull() {
		return "", fmt.Errorf("PDF page 1 is empty")
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	var lines []string
	for _, row := range rows {
		var parts []string
		for _, word := range row.Content {
			parts = append(parts, word.S)
		}
		if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// receiptWords that appear on virtually every German receipt. Extracted
// text containing none of them is likely font-encoding garbage.
var receiptWords = []string{
	"summe", "gesamt", "zu zahlen", "eur", "mwst", "ust",
	"pfand", "kasse", "bon", "datum", "rabatt", "bar", "karte", "danke",
}

func containsReceiptWords(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range receiptWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// textQuality returns the ratio of readable characters to total. Strict
// set: identity-encoded fonts produce exotic unicode that IsLetter would
// wrongly accept; German umlauts and the euro sign are allowed explicitly.
func textQuality(text string) float64 {
	total, readable := 0, 0
	for _, r := range text {
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
			strings.ContainsRune(".,-/:;()'\"€%&*xX", r) ||
			strings.ContainsRune("äöüßÄÖÜ", r) {
			readable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// isReadableText requires enough text, a high readable-character ratio and
// at least one recognizable receipt word.
func isReadableText(text string) bool {
	if len(text) <= 50 {
		return false
	}
	if textQuality(text) <= 0.6 {
		return false
	}
	return containsReceiptWords(text)
}
