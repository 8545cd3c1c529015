package stash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"reelgate/internal/services"
)

const userAgent = "Reelgate-Go/0.1.0"

type httpClient struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
}

// NewHTTPClient constructs an HTTP-backed media-server client.
func NewHTTPClient(baseURL, apiKey string, client HTTPDoer) Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		client:  client,
	}
}

type addRequest struct {
	StashID string `json:"stash_id"`
}

type addResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type conflictResponse struct {
	Title        string `json:"title"`
	HasLocalFile bool   `json:"has_local_file"`
}

func (c *httpClient) LookupAndAdd(ctx context.Context, stashID string) (*Result, error) {
	stashID = strings.TrimSpace(stashID)
	if stashID == "" {
		return nil, fmt.Errorf("%w: empty scene id", services.ErrValidation)
	}

	resp, err := c.post(ctx, "/api/v1/scenes", addRequest{StashID: stashID})
	if err != nil {
		return nil, services.Transient("add scene", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var body addResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, services.Transient("decode add response", err)
		}
		return &Result{Title: body.Title, ExternalID: body.ID}, nil

	case resp.StatusCode == http.StatusConflict:
		var body conflictResponse
		// A bare 409 without a body still counts as a duplicate.
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if !body.HasLocalFile {
			c.triggerSearch(ctx, stashID)
		}
		return nil, &services.ConflictError{HasLocalFile: body.HasLocalFile, Title: body.Title}

	case resp.StatusCode == http.StatusNotFound:
		return nil, services.NotFound("scene", stashID)

	default:
		return nil, services.Transient("add scene", fmt.Errorf("server returned %d: %s", resp.StatusCode, readBody(resp.Body)))
	}
}

// triggerSearch asks the server to search for the duplicate's file. The add
// outcome does not depend on its success, so failures are swallowed.
func (c *httpClient) triggerSearch(ctx context.Context, stashID string) {
	resp, err := c.post(ctx, "/api/v1/scenes/search", addRequest{StashID: stashID})
	if err != nil {
		return
	}
	_ = resp.Body.Close()
}

func (c *httpClient) Remove(ctx context.Context, stashID, externalID string) error {
	target := strings.TrimSpace(externalID)
	if target == "" {
		target = strings.TrimSpace(stashID)
	}
	if target == "" {
		return fmt.Errorf("%w: empty scene id", services.ErrValidation)
	}

	endpoint := fmt.Sprintf("%s/api/v1/scenes/%s", c.baseURL, url.PathEscape(target))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return services.Transient("build delete request", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return services.Transient("delete scene", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < http.StatusMultipleChoices:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return services.NotFound("scene", target)
	default:
		return services.Transient("delete scene", fmt.Errorf("server returned %d: %s", resp.StatusCode, readBody(resp.Body)))
	}
}

func (c *httpClient) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

func (c *httpClient) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("ApiKey", c.apiKey)
	}
}

func readBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
