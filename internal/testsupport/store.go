package testsupport

import (
	"testing"

	"reelgate/internal/batch"
	"reelgate/internal/config"
	"reelgate/internal/events"
	"reelgate/internal/rules"
)

// MustOpenRuleStore opens a rules.Store for tests and registers cleanup.
func MustOpenRuleStore(t testing.TB, cfg *config.Config, hub *events.Hub) *rules.Store {
	t.Helper()

	store, err := rules.Open(cfg, hub)
	if err != nil {
		t.Fatalf("rules.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenBatchStore opens a batch.Store for tests and registers cleanup.
func MustOpenBatchStore(t testing.TB, cfg *config.Config, hub *events.Hub) *batch.Store {
	t.Helper()

	store, err := batch.Open(cfg, hub)
	if err != nil {
		t.Fatalf("batch.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
