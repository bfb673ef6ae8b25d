// Package config loads server settings from an optional YAML file and
// applies defaults for anything unset.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	// Listen is the address the HTTP server binds to.
	Listen string `yaml:"listen"`
	// StaticDir, when set, serves a built frontend with index.html fallback.
	StaticDir string `yaml:"static_dir"`
	// UploadLimitMB caps the size of uploaded receipt scans.
	UploadLimitMB int `yaml:"upload_limit_mb"`
}

type OCRConfig struct {
	Language    string `yaml:"language"`
	PageSegMode int    `yaml:"page_seg_mode"`
	DPI         int    `yaml:"dpi"`
}

type Config struct {
	Server ServerConfig `yaml:"server"`
	OCR    OCRConfig    `yaml:"ocr"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:        ":3001",
			UploadLimitMB: 20,
		},
		OCR: OCRConfig{
			Language:    "deu",
			PageSegMode: 6,
			DPI:         300,
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}

	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":3001"
	}
	if cfg.Server.UploadLimitMB <= 0 {
		cfg.Server.UploadLimitMB = 20
	}
	return cfg, nil
}
