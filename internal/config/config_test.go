package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewCreatesAppStructure(t *testing.T) {
	home := t.TempDir()
	cfg, err := New(home)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Root != filepath.Join(home, AppDir) {
		t.Fatalf("root = %q", cfg.Root)
	}
	if _, err := os.Stat(cfg.SettingsPath()); err != nil {
		t.Fatalf("settings file should be written on first run: %v", err)
	}
	if _, err := os.Stat(cfg.LogsDir()); err != nil {
		t.Fatalf("logs dir should exist: %v", err)
	}
	if cfg.Settings.Model != "gemini-3-flash-preview" {
		t.Fatalf("default model = %q", cfg.Settings.Model)
	}
	if !cfg.Settings.Bilingual {
		t.Fatalf("bilingual defaults on")
	}
}

func TestLoadSettingsParsesYaml(t *testing.T) {
	home := t.TempDir()
	appDir := filepath.Join(home, AppDir)
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatal(err)
	}
	settings := "version: 1\nmodel: gemini-custom\nbilingual: false\n"
	if err := os.WriteFile(filepath.Join(appDir, "config.yaml"), []byte(settings), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := New(home)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Settings.Model != "gemini-custom" {
		t.Fatalf("model = %q", cfg.Settings.Model)
	}
	if cfg.Settings.Bilingual {
		t.Fatalf("bilingual should be off")
	}
}

func TestNormalizeFillsBlankModel(t *testing.T) {
	s := Settings{Model: "   "}
	s.normalize()
	if s.Model != "gemini-3-flash-preview" {
		t.Fatalf("blank model should fall back, got %q", s.Model)
	}
	if s.Version != 1 {
		t.Fatalf("version should default to 1, got %d", s.Version)
	}
}

func TestSetBilingualPersists(t *testing.T) {
	home := t.TempDir()
	cfg, err := New(home)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if err := cfg.SetBilingual(false); err != nil {
		t.Fatalf("set bilingual: %v", err)
	}

	reloaded, err := New(home)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if reloaded.Settings.Bilingual {
		t.Fatalf("bilingual preference must persist across runs")
	}
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.APIKey != "test-key" {
		t.Fatalf("api key = %q", cfg.APIKey)
	}
}
