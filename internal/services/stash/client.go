package stash

import (
	"context"
	"net/http"
	"time"

	"reelgate/internal/config"
)

// Result describes a successfully created scene record.
type Result struct {
	Title      string
	ExternalID string
}

// Client defines the media-server operations the orchestrator needs.
//
// LookupAndAdd returns a Result when a new record was created. Duplicates
// surface as *services.ConflictError, absent catalog ids as
// services.ErrNotFound, and everything else as services.ErrTransient.
type Client interface {
	LookupAndAdd(ctx context.Context, stashID string) (*Result, error)
	Remove(ctx context.Context, stashID, externalID string) error
}

// HTTPDoer describes the HTTP client used by the service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewConfiguredClient builds the HTTP client from application config. A zero
// request timeout means remote calls are never bounded, preserving the
// historical behavior where a hung call stalls its scene.
func NewConfiguredClient(cfg *config.Config) Client {
	if cfg == nil {
		return NewHTTPClient("", "", nil)
	}
	var doer HTTPDoer = http.DefaultClient
	if cfg.MediaServer.RequestTimeout > 0 {
		doer = &http.Client{Timeout: time.Duration(cfg.MediaServer.RequestTimeout) * time.Second}
	}
	return NewHTTPClient(cfg.MediaServer.URL, cfg.MediaServer.APIKey, doer)
}
