package ipc

import "reelgate/internal/api"

// Rule mirrors the HTTP API rule DTO for internal IPC callers.
type Rule = api.Rule

// Batch mirrors the HTTP API batch DTO for internal IPC callers.
type Batch = api.Batch

// Scene mirrors the HTTP API scene DTO for internal IPC callers.
type Scene = api.Scene

// StopRequest shuts the daemon down.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents daemon runtime information.
type StatusResponse struct {
	Running     bool   `json:"running"`
	PID         int    `json:"pid"`
	DataDir     string `json:"data_dir"`
	LockPath    string `json:"lock_path"`
	RuleCount   int    `json:"rule_count"`
	BatchCount  int    `json:"batch_count"`
	ErrorScenes int    `json:"error_scenes"`
}

// FilterListRequest fetches the full rule list.
type FilterListRequest struct{}

// FilterListResponse contains rules in evaluation order.
type FilterListResponse struct {
	Rules []Rule `json:"rules"`
}

// FilterAddRequest appends a new default rule.
type FilterAddRequest struct{}

// FilterAddResponse returns the created rule.
type FilterAddResponse struct {
	Rule Rule `json:"rule"`
}

// FilterUpdateRequest merges the set fields into an existing rule. Nil
// fields are left unchanged.
type FilterUpdateRequest struct {
	ID      string  `json:"id"`
	Type    *string `json:"type,omitempty"`
	Mode    *string `json:"mode,omitempty"`
	Pattern *string `json:"pattern,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
}

// FilterUpdateResponse returns the updated rule. Warning is set when the new
// pattern does not compile; such rules are skipped during screening.
type FilterUpdateResponse struct {
	Rule    Rule   `json:"rule"`
	Warning string `json:"warning,omitempty"`
}

// FilterToggleRequest flips a rule's enabled flag.
type FilterToggleRequest struct {
	ID string `json:"id"`
}

// FilterToggleResponse returns the toggled rule.
type FilterToggleResponse struct {
	Rule Rule `json:"rule"`
}

// FilterDeleteRequest removes a rule.
type FilterDeleteRequest struct {
	ID string `json:"id"`
}

// FilterDeleteResponse acknowledges the removal.
type FilterDeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// FilterResetRequest empties the rule list.
type FilterResetRequest struct{}

// FilterResetResponse acknowledges the reset.
type FilterResetResponse struct {
	Reset bool `json:"reset"`
}

// BatchListRequest fetches all batches.
type BatchListRequest struct{}

// BatchListResponse contains batches, newest first.
type BatchListResponse struct {
	Batches []Batch `json:"batches"`
}

// BatchAddRequest screens and submits every candidate scene on a catalog page.
type BatchAddRequest struct {
	Page string `json:"page"`
}

// BatchAddResponse returns the created batch with its waiting/filtered split.
type BatchAddResponse struct {
	Batch Batch `json:"batch"`
}

// SceneAddRequest screens and submits a single scene.
type SceneAddRequest struct {
	StashID string `json:"stash_id"`
}

// SceneAddResponse returns the created single-scene batch.
type SceneAddResponse struct {
	Batch Batch `json:"batch"`
}

// SceneRetryRequest resubmits one error scene.
type SceneRetryRequest struct {
	BatchID string `json:"batch_id"`
	StashID string `json:"stash_id"`
}

// SceneRetryResponse acknowledges the retry.
type SceneRetryResponse struct {
	Queued bool `json:"queued"`
}

// RetryAllRequest resubmits every error scene across all batches.
type RetryAllRequest struct{}

// RetryAllResponse reports how many scenes were queued.
type RetryAllResponse struct {
	Queued int `json:"queued"`
}

// BatchCancelRequest stops processing the remaining scenes of a batch.
type BatchCancelRequest struct {
	BatchID string `json:"batch_id"`
}

// BatchCancelResponse acknowledges the cancel request.
type BatchCancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

// SceneUndoRequest removes a previously added scene from the media server.
type SceneUndoRequest struct {
	BatchID string `json:"batch_id"`
	StashID string `json:"stash_id"`
}

// SceneUndoResponse acknowledges the removal.
type SceneUndoResponse struct {
	Removed bool `json:"removed"`
}

// BatchClearRequest drops all batch history.
type BatchClearRequest struct{}

// BatchClearResponse acknowledges the clear.
type BatchClearResponse struct {
	Cleared bool `json:"cleared"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
