package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelgate/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.MediaServer.URL == "" {
		t.Fatal("expected default media server URL")
	}
	if cfg.Workflow.SceneDelayMS <= 0 {
		t.Fatal("expected positive default scene delay")
	}
}

func TestLoadOverridesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[mediaserver]
url = "http://stash.local:9999/"
api_key = " secret "

[workflow]
scene_delay_ms = 250

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.MediaServer.URL != "http://stash.local:9999" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.MediaServer.URL)
	}
	if cfg.MediaServer.APIKey != "secret" {
		t.Fatalf("expected api key trimmed, got %q", cfg.MediaServer.APIKey)
	}
	if cfg.Workflow.SceneDelayMS != 250 {
		t.Fatalf("expected scene delay 250, got %d", cfg.Workflow.SceneDelayMS)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lowercased log format, got %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty media server", func(c *config.Config) { c.MediaServer.URL = "" }, "mediaserver.url"},
		{"negative delay", func(c *config.Config) { c.Workflow.SceneDelayMS = -1 }, "scene_delay_ms"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error when file already exists")
	}
}
