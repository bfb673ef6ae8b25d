// Package writer exports parsed receipts to CSV for spreadsheet review.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/wgsplit/receipt-split-server/internal/models"
)

// CSVWriter writes parsed receipt items to CSV format.
type CSVWriter struct {
	// IncludeSummary prepends receipt-level rows (printed total, item sum).
	IncludeSummary bool
}

// WriteToFile writes the parse result to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, result *models.ParseResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, result)
}

// Write writes the parse result in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, result *models.ParseResult) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	if w.IncludeSummary {
		if result.ReceiptTotal != nil {
			writer.Write([]string{"# Receipt Total", result.ReceiptTotal.StringFixed(2)})
		}
		writer.Write([]string{"# Item Sum", result.Sum.StringFixed(2)})
	}

	header := []string{"Description", "Price", "Kind", "Note", "Corrected"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, item := range result.Items {
		row := []string{
			item.Description,
			item.Price.StringFixed(2),
			itemKind(item),
			item.Note,
			boolMark(item.OCRCorrected),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return writer.Error()
}

func itemKind(item models.Item) string {
	switch {
	case item.Deposit:
		return "PFAND"
	case item.DepositReturn:
		return "PFAND-RETURN"
	default:
		return "ITEM"
	}
}

func boolMark(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
