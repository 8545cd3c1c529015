// Package stash talks to the media-management server's REST API.
//
// The orchestrator depends only on the small Client interface; the HTTP
// implementation maps remote status codes onto the services error taxonomy
// so callers never parse response bodies themselves. Conflicts on a scene
// without a local file automatically trigger a follow-up search on the
// server before the typed conflict is returned.
package stash
