package testsupport

import (
	"path/filepath"
	"testing"

	"reelgate/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Workflow.SceneDelayMS = 0
	cfg.Notifications.Enabled = false

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithMediaServerURL points the test config at the given media server base URL.
func WithMediaServerURL(url string) ConfigOption {
	return func(c *config.Config) {
		c.MediaServer.URL = url
	}
}

// WithCatalogURL points the test config at the given catalog base URL.
func WithCatalogURL(url string) ConfigOption {
	return func(c *config.Config) {
		c.Catalog.BaseURL = url
	}
}

// WithSceneDelay sets the inter-scene pacing delay in milliseconds.
func WithSceneDelay(ms int) ConfigOption {
	return func(c *config.Config) {
		c.Workflow.SceneDelayMS = ms
	}
}
