package api_test

import (
	"testing"
	"time"

	"reelgate/internal/api"
	"reelgate/internal/batch"
	"reelgate/internal/rules"
)

func TestFromRuleFormatsTimestamps(t *testing.T) {
	created := time.Date(2026, 2, 3, 4, 5, 6, 700000000, time.UTC)
	dto := api.FromRule(rules.Rule{
		ID:        "r1",
		Type:      rules.TypeStudio,
		Mode:      rules.ModeBlocklist,
		Pattern:   "acme",
		Enabled:   true,
		CreatedAt: created,
	})
	if dto.CreatedAt != "2026-02-03T04:05:06.700Z" {
		t.Fatalf("created at = %q", dto.CreatedAt)
	}
	if dto.UpdatedAt != "" {
		t.Fatalf("zero updated at should be omitted, got %q", dto.UpdatedAt)
	}
	if dto.Type != "studio" || dto.Mode != "blocklist" {
		t.Fatalf("unexpected dto %+v", dto)
	}
}

func TestFromBatchIncludesSummary(t *testing.T) {
	dto := api.FromBatch(batch.Batch{
		ID: "batch-1",
		Scenes: []batch.SceneRecord{
			{StashID: "s1", Status: batch.StatusAdded},
			{StashID: "s2", Status: batch.StatusFiltered, Error: "studio matches blocklist pattern \"acme\""},
			{StashID: "s3", Status: batch.StatusError, Error: "boom"},
		},
	})
	if len(dto.Scenes) != 3 {
		t.Fatalf("got %d scenes", len(dto.Scenes))
	}
	if dto.Summary.Total != 3 || dto.Summary.Added != 1 || dto.Summary.Filtered != 1 || dto.Summary.Errors != 1 {
		t.Fatalf("summary = %+v", dto.Summary)
	}
	if dto.Scenes[1].Error == "" {
		t.Fatal("filtered reason should survive conversion")
	}
}

func TestFromRulesEmpty(t *testing.T) {
	if out := api.FromRules(nil); out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", out)
	}
}
