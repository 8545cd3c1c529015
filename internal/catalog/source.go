package catalog

import (
	"context"
	"net/http"
	"time"

	"reelgate/internal/config"
	"reelgate/internal/scene"
)

// Candidate pairs a stable catalog id with whatever metadata the catalog
// could supply for it.
type Candidate struct {
	ID   string         `json:"id"`
	Meta scene.Metadata `json:"meta"`
}

// Source lists candidate scenes for a catalog page and resolves metadata for
// single scenes.
type Source interface {
	CandidateIDs(ctx context.Context, page string) ([]string, error)
	Candidates(ctx context.Context, page string) ([]Candidate, error)
	SceneMetadata(ctx context.Context, id string) (*scene.Metadata, error)
}

// HTTPDoer describes the HTTP client used by the catalog source.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewConfiguredSource builds the HTTP source from application config.
func NewConfiguredSource(cfg *config.Config) Source {
	if cfg == nil {
		return NewHTTPSource("", "", nil)
	}
	client := &http.Client{Timeout: time.Duration(cfg.Catalog.RequestTimeout) * time.Second}
	return NewHTTPSource(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, client)
}
