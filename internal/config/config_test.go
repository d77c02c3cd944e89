package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soltrace.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestTemplateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soltrace.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected existing file to be kept")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite template: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	def := Default()
	if cfg.Server.Addr != def.Server.Addr || cfg.Server.MaxBodyBytes != def.Server.MaxBodyBytes {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Output.Format != OutputJSON || cfg.Input.Format != InputText {
		t.Fatalf("unexpected formats: %+v %+v", cfg.Input, cfg.Output)
	}
	if len(cfg.Server.CorsOrigins) != 1 {
		t.Fatalf("unexpected cors origins: %+v", cfg.Server.CorsOrigins)
	}
}

func TestLoadPartialFillsDefaults(t *testing.T) {
	path := writeFile(t, `
[output]
format = "yaml"
typed = true

[log]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Output.Format != OutputYAML || !cfg.Output.Typed {
		t.Fatalf("unexpected output: %+v", cfg.Output)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.Log.Level)
	}
	if cfg.Server.Name != "soltrace" || cfg.Input.Format != InputText {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, `
[output]
fromat = "yaml"
`)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected unknown key error")
	}
	if !strings.Contains(err.Error(), "fromat") {
		t.Fatalf("expected error to name the key, got %v", err)
	}
}

func TestLoadRejectsBadFormat(t *testing.T) {
	path := writeFile(t, `
[input]
format = "csv"
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "input.format") {
		t.Fatalf("expected input.format error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}
