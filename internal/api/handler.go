// Package api exposes the receipt parser and settlement engine over HTTP.
package api

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/wgsplit/receipt-split-server/internal/config"
	"github.com/wgsplit/receipt-split-server/internal/extractor"
	"github.com/wgsplit/receipt-split-server/internal/models"
	"github.com/wgsplit/receipt-split-server/internal/parser"
	"github.com/wgsplit/receipt-split-server/internal/prom"
	"github.com/wgsplit/receipt-split-server/internal/settle"
)

const Version = "1.0.0"

// Handler holds the HTTP handlers that need configuration.
type Handler struct {
	Cfg *config.Config
}

// NewApp builds the fiber application with all routes registered.
func NewApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: cfg.Server.UploadLimitMB << 20,
	})
	app.Use(cors.New())
	app.Use(requestLogger())

	h := &Handler{Cfg: cfg}

	app.Get("/api/health", HandleHealth)
	app.Post("/api/parse", HandleParse)
	app.Post("/api/settle", HandleSettle)
	app.Post("/api/scan", h.HandleScan)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Serve the built frontend with index.html fallback for SPA routes.
	if cfg.Server.StaticDir != "" {
		app.Static("/", cfg.Server.StaticDir)
		index := filepath.Join(cfg.Server.StaticDir, "index.html")
		app.Get("/*", func(c *fiber.Ctx) error {
			return c.SendFile(index)
		})
	}

	return app
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("request")
		return err
	}
}

// HandleHealth reports service liveness.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": Version,
	})
}

// ParseResponse is the JSON result of /api/parse and /api/scan.
type ParseResponse struct {
	ID string `json:"id,omitempty"`
	models.ParseResult
	RawText string `json:"rawText,omitempty"`
}

// HandleParse parses raw receipt text posted as the request body.
func HandleParse(c *fiber.Ctx) error {
	text := string(c.Body())
	result := runParse(text)
	return c.JSON(ParseResponse{ParseResult: result})
}

// HandleScan accepts an uploaded receipt (image or PDF), extracts its text
// and parses it.
func (h *Handler) HandleScan(c *fiber.Ctx) error {
	fh, err := c.FormFile("receipt")
	if err != nil {
		prom.ScansTotal.WithLabelValues("missing_file").Inc()
		return writeError(c, fiber.StatusBadRequest, "Kein Bild oder PDF hochgeladen.")
	}

	contentType := fh.Header.Get("Content-Type")
	if !extractor.IsSupportedUpload(contentType, fh.Filename) {
		prom.ScansTotal.WithLabelValues("unsupported").Inc()
		return writeError(c, fiber.StatusBadRequest, "Nur Bilder (JPG, PNG, …) oder PDF sind erlaubt.")
	}

	id := uuid.New().String()
	tmpPath := filepath.Join(os.TempDir(), id+filepath.Ext(fh.Filename))
	if err := c.SaveFile(fh, tmpPath); err != nil {
		prom.ScansTotal.WithLabelValues("save_error").Inc()
		log.Error().Err(err).Msg("failed to store upload")
		return writeError(c, fiber.StatusInternalServerError, "Upload konnte nicht gespeichert werden.")
	}
	defer os.Remove(tmpPath)

	log.Info().Str("id", id).Str("file", fh.Filename).Int64("size", fh.Size).Msg("scanning receipt")

	text, err := extractor.ReceiptText(tmpPath, extractor.IsPDF(contentType, fh.Filename), extractor.Options{
		Language:    h.Cfg.OCR.Language,
		PageSegMode: h.Cfg.OCR.PageSegMode,
		DPI:         h.Cfg.OCR.DPI,
	})
	if err != nil {
		prom.ScansTotal.WithLabelValues("extract_error").Inc()
		log.Error().Err(err).Str("id", id).Msg("text extraction failed")
		return writeError(c, fiber.StatusUnprocessableEntity, "Fehler beim Scannen: "+err.Error())
	}

	result := runParse(text)
	prom.ScansTotal.WithLabelValues("ok").Inc()
	return c.JSON(ParseResponse{ID: id, ParseResult: result, RawText: text})
}

// SettleRequest is the JSON input of /api/settle. Assignments are keyed by
// item index.
type SettleRequest struct {
	Items       []models.Item             `json:"items"`
	Members     []string                  `json:"members"`
	Payer       int                       `json:"payer"`
	Assignments map[int]models.Assignment `json:"assignments"`
}

// HandleSettle computes shares, balances and settling transfers.
func HandleSettle(c *fiber.Ctx) error {
	var req SettleRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "Ungültige Anfrage: "+err.Error())
	}

	result, err := settle.Compute(req.Items, req.Members, req.Payer, req.Assignments)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	prom.SettlementsTotal.Inc()
	log.Info().
		Int("items", len(req.Items)).
		Int("members", len(req.Members)).
		Int("transfers", len(result.Transfers)).
		Msg("settlement computed")
	return c.JSON(result)
}

// runParse wraps the core parser with metrics and logging.
func runParse(text string) models.ParseResult {
	start := time.Now()
	result := parser.Parse(text)
	prom.ParseDuration.Observe(time.Since(start).Seconds())
	prom.ParsesTotal.WithLabelValues(strconv.FormatBool(result.ReceiptTotal != nil)).Inc()

	corrected := 0
	for _, it := range result.Items {
		if it.OCRCorrected {
			corrected++
		}
	}
	if corrected > 0 {
		prom.CorrectionsTotal.Add(float64(corrected))
	}

	ev := log.Info().Int("items", len(result.Items)).Str("sum", result.Sum.StringFixed(2))
	if result.ReceiptTotal != nil {
		ev = ev.Str("receipt_total", result.ReceiptTotal.StringFixed(2))
	}
	ev.Int("corrected", corrected).Msg("receipt parsed")
	return result
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
