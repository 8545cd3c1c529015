package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"reelgate/internal/scene"
	"reelgate/internal/services"
)

const userAgent = "Reelgate-Go/0.1.0"

type httpSource struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
}

// NewHTTPSource constructs an HTTP-backed catalog source.
func NewHTTPSource(baseURL, apiKey string, client HTTPDoer) Source {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpSource{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		client:  client,
	}
}

type sceneEntry struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Studio     string   `json:"studio"`
	Performers []string `json:"performers"`
	Tags       []string `json:"tags"`
}

func (s *httpSource) CandidateIDs(ctx context.Context, page string) ([]string, error) {
	candidates, err := s.Candidates(ctx, page)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		ids = append(ids, cand.ID)
	}
	return ids, nil
}

func (s *httpSource) Candidates(ctx context.Context, page string) ([]Candidate, error) {
	page = strings.TrimSpace(page)
	if page == "" {
		return nil, fmt.Errorf("%w: empty page reference", services.ErrValidation)
	}

	endpoint := fmt.Sprintf("%s/api/v1/pages/scenes?url=%s", s.baseURL, url.QueryEscape(page))
	var entries []sceneEntry
	if err := s.getJSON(ctx, endpoint, &entries); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			continue
		}
		candidates = append(candidates, Candidate{ID: id, Meta: entry.metadata()})
	}
	return candidates, nil
}

func (s *httpSource) SceneMetadata(ctx context.Context, id string) (*scene.Metadata, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty scene id", services.ErrValidation)
	}

	endpoint := fmt.Sprintf("%s/api/v1/scenes/%s", s.baseURL, url.PathEscape(id))
	var entry sceneEntry
	if err := s.getJSON(ctx, endpoint, &entry); err != nil {
		return nil, err
	}
	meta := entry.metadata()
	return &meta, nil
}

func (e sceneEntry) metadata() scene.Metadata {
	return scene.Normalize(scene.Metadata{
		Studio:     e.Studio,
		Performers: e.Performers,
		Tags:       e.Tags,
		Title:      e.Title,
	})
}

func (s *httpSource) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Transient("build catalog request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if s.apiKey != "" {
		req.Header.Set("ApiKey", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return services.Transient("catalog request", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: catalog resource", services.ErrNotFound)
	case resp.StatusCode >= http.StatusMultipleChoices:
		return services.Transient("catalog request", fmt.Errorf("catalog returned %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Transient("decode catalog response", err)
	}
	return nil
}
