package extractor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Options configures external OCR. Zero values fall back to settings tuned
// for German receipts. No binarization threshold is applied anywhere in the
// pipeline because it destroys the 0-vs-8 distinction the parser's
// corrector depends on.
type Options struct {
	// Language is the tesseract language pack, default "deu".
	Language string
	// PageSegMode is tesseract's --psm; 6 (uniform block of text) suits
	// the single narrow column of a receipt.
	PageSegMode int
	// DPI used when rasterizing PDF pages, default 300.
	DPI int
}

func (o Options) language() string {
	if o.Language == "" {
		return "deu"
	}
	return o.Language
}

func (o Options) psm() string {
	if o.PageSegMode == 0 {
		return "6"
	}
	return strconv.Itoa(o.PageSegMode)
}

func (o Options) dpi() string {
	if o.DPI == 0 {
		return "300"
	}
	return strconv.Itoa(o.DPI)
}

// OCRImage runs tesseract on a receipt photo.
// Requires: tesseract (tesseract-ocr) with the language pack installed.
func OCRImage(imagePath string, opts Options) (string, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return "", fmt.Errorf("tesseract not available (install tesseract-ocr): %w", err)
	}

	outBase := imagePath + "-ocr"
	cmd := exec.Command("tesseract", imagePath, outBase,
		"-l", opts.language(), "--psm", opts.psm())
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("tesseract failed: %v (output: %s)", err, string(out))
	}

	outFile := outBase + ".txt"
	defer os.Remove(outFile)

	data, err := os.ReadFile(outFile)
	if err != nil {
		return "", fmt.Errorf("tesseract produced no output file: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("tesseract produced no text")
	}
	return text, nil
}

// OCRPDFFirstPage rasterizes the first PDF page and runs OCR on it.
// Requires: pdftoppm (poppler-utils) and tesseract.
func OCRPDFFirstPage(pdfPath string, opts Options) (string, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return "", fmt.Errorf("pdftoppm not available (install poppler-utils): %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "receipt-page-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	imgPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.Command("pdftoppm", "-r", opts.dpi(), "-png", "-f", "1", "-l", "1", pdfPath, imgPrefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm failed: %v (output: %s)", err, string(out))
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return "", fmt.Errorf("failed to read temp dir: %w", err)
	}
	var images []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			images = append(images, filepath.Join(tmpDir, e.Name()))
		}
	}
	if len(images) == 0 {
		return "", fmt.Errorf("pdftoppm produced no page image")
	}
	sort.Strings(images)

	return OCRImage(images[0], opts)
}

// IsPDF reports whether an upload should take the PDF path, by declared
// content type first and filename extension as fallback.
func IsPDF(contentType, filename string) bool {
	if contentType == "application/pdf" {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// IsSupportedUpload accepts images and PDFs, mirroring what the scanner
// boundary allows through.
func IsSupportedUpload(contentType, filename string) bool {
	if strings.HasPrefix(contentType, "image/") || IsPDF(contentType, filename) {
		return true
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".webp", ".tif", ".tiff", ".bmp":
		return true
	}
	return false
}
