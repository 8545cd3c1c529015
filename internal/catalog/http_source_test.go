package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelgate/internal/catalog"
	"reelgate/internal/services"
)

func TestCandidatesNormalizesEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/pages/scenes" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("url"); got != "https://catalog.example/studio/acme" {
			t.Fatalf("unexpected url param: %q", got)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "s1", "title": "One", "studio": "Acme", "performers": []string{"A", "a", "B"}},
			{"id": "", "title": "skipped"},
			{"id": "s2"},
		})
	}))
	defer server.Close()

	source := catalog.NewHTTPSource(server.URL, "", server.Client())
	candidates, err := source.Candidates(context.Background(), "https://catalog.example/studio/acme")
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].ID != "s1" || len(candidates[0].Meta.Performers) != 2 {
		t.Fatalf("unexpected first candidate: %#v", candidates[0])
	}
	if candidates[1].ID != "s2" || candidates[1].Meta.Title != "" {
		t.Fatalf("expected empty metadata tolerated: %#v", candidates[1])
	}
}

func TestCandidateIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{{"id": "a"}, {"id": "b"}})
	}))
	defer server.Close()

	source := catalog.NewHTTPSource(server.URL, "", server.Client())
	ids, err := source.CandidateIDs(context.Background(), "page")
	if err != nil {
		t.Fatalf("CandidateIDs failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("unexpected ids: %#v", ids)
	}
}

func TestSceneMetadataNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	source := catalog.NewHTTPSource(server.URL, "", server.Client())
	_, err := source.SceneMetadata(context.Background(), "missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
