package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wgsplit/receipt-split-server/internal/api"
	"github.com/wgsplit/receipt-split-server/internal/config"
	"github.com/wgsplit/receipt-split-server/internal/extractor"
	"github.com/wgsplit/receipt-split-server/internal/parser"
	"github.com/wgsplit/receipt-split-server/internal/writer"
)

const AppName = "receipt-split-server"
const AppDesc = "Parses German supermarket receipts (OCR or PDF text layer), reconciles item prices against the printed total and settles shared expenses between flatmates."

var cli struct {
	ConfigPath string `env:"CONFIG_PATH" help:"${env} - Path to config file" default:""`
	LogLevel   string `env:"LOG_LEVEL" help:"${env} - Log level: debug, info, warn, error" default:"info"`

	Serve   ServeCmd   `cmd:"" default:"withargs" help:"Run the HTTP server."`
	Convert ConvertCmd `cmd:"" help:"Convert receipt files to CSV."`
	Version VersionCmd `cmd:"" help:"Print version and exit."`
}

type ServeCmd struct {
	Listen    string `env:"LISTEN_ADDRESS" help:"${env} - Address to listen on" default:""`
	StaticDir string `env:"STATIC_DIR" help:"${env} - Directory with the built frontend" default:""`
}

type ConvertCmd struct {
	Paths   []string `arg:"" help:"Receipt files (image, PDF or plain text)." type:"existingfile"`
	Output  string   `short:"o" help:"Output CSV path (defaults to input filename with .csv extension)."`
	Summary bool     `help:"Include receipt total and item sum rows." default:"true" negatable:""`
}

type VersionCmd struct{}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name(AppName),
		kong.Description(AppDesc),
	)
	log.Logger = log.Output(os.Stderr).With().Caller().Logger()
	if lvl, err := zerolog.ParseLevel(cli.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cfg, err := config.Load(cli.ConfigPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cli.ConfigPath).Msg("failed to load config")
	}

	ctx.FatalIfErrorf(ctx.Run(cfg))
}

func (s *ServeCmd) Run(cfg *config.Config) error {
	if s.Listen != "" {
		cfg.Server.Listen = s.Listen
	}
	if s.StaticDir != "" {
		cfg.Server.StaticDir = s.StaticDir
	}

	app := api.NewApp(cfg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigChan
		log.Info().Msgf("Received signal %s. Shutting down...", sig)
		_ = app.Shutdown()
	}()

	log.Info().
		Str("version", api.Version).
		Str("listen", cfg.Server.Listen).
		Msg("Starting " + AppName)
	return app.Listen(cfg.Server.Listen)
}

func (c *ConvertCmd) Run(cfg *config.Config) error {
	for _, path := range c.Paths {
		if err := convertFile(path, c.Output, c.Summary, cfg); err != nil {
			return fmt.Errorf("converting %s: %w", path, err)
		}
	}
	return nil
}

func convertFile(path, output string, summary bool, cfg *config.Config) error {
	text, err := readReceipt(path, cfg)
	if err != nil {
		return err
	}

	result := parser.Parse(text)
	log.Info().Str("file", path).Int("items", len(result.Items)).Msg("receipt parsed")
	if len(result.Items) == 0 {
		log.Warn().Str("file", path).Msg("no items found, the receipt layout may not match expected patterns")
	}

	outPath := output
	if outPath == "" {
		outPath = strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
	}

	w := &writer.CSVWriter{IncludeSummary: summary}
	if err := w.WriteToFile(outPath, &result); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}

	fmt.Printf("%s -> %s (%d items)\n", path, outPath, len(result.Items))
	return nil
}

func readReceipt(path string, cfg *config.Config) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".txt" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return extractor.ReceiptText(path, ext == ".pdf", extractor.Options{
		Language:    cfg.OCR.Language,
		PageSegMode: cfg.OCR.PageSegMode,
		DPI:         cfg.OCR.DPI,
	})
}

func (v *VersionCmd) Run(cfg *config.Config) error {
	fmt.Printf("%s v%s\n", AppName, api.Version)
	return nil
}
