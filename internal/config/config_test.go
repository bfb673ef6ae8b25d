package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Listen != ":3001" {
		t.Errorf("listen: got %q, want :3001", cfg.Server.Listen)
	}
	if cfg.Server.UploadLimitMB != 20 {
		t.Errorf("upload limit: got %d, want 20", cfg.Server.UploadLimitMB)
	}
	if cfg.OCR.Language != "deu" || cfg.OCR.PageSegMode != 6 || cfg.OCR.DPI != 300 {
		t.Errorf("ocr defaults: %+v", cfg.OCR)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `server:
  listen: ":8080"
  static_dir: /srv/app
ocr:
  language: eng
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Listen != ":8080" {
		t.Errorf("listen: got %q, want :8080", cfg.Server.Listen)
	}
	if cfg.Server.StaticDir != "/srv/app" {
		t.Errorf("static dir: got %q", cfg.Server.StaticDir)
	}
	if cfg.OCR.Language != "eng" {
		t.Errorf("language: got %q, want eng", cfg.OCR.Language)
	}
	// Unset values keep their defaults.
	if cfg.Server.UploadLimitMB != 20 {
		t.Errorf("upload limit: got %d, want 20", cfg.Server.UploadLimitMB)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("server: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
