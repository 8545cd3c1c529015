package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Rule describes a filter rule in a transport-friendly format.
type Rule struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Mode      string `json:"mode"`
	Pattern   string `json:"pattern"`
	Enabled   bool   `json:"enabled"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Scene describes one scene's state within a batch.
type Scene struct {
	StashID    string `json:"stashId"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	ExternalID string `json:"externalId,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// Batch wraps a batch with its scenes and aggregate counts.
type Batch struct {
	ID        string       `json:"id"`
	CreatedAt string       `json:"createdAt,omitempty"`
	Scenes    []Scene      `json:"scenes"`
	Summary   BatchSummary `json:"summary"`
}

// BatchSummary aggregates scene counts per status.
type BatchSummary struct {
	Total     int `json:"total"`
	Waiting   int `json:"waiting"`
	Filtered  int `json:"filtered"`
	InFlight  int `json:"inFlight"`
	Added     int `json:"added"`
	Searched  int `json:"searched"`
	Exists    int `json:"exists"`
	Errors    int `json:"errors"`
	Cancelled int `json:"cancelled"`
	Removed   int `json:"removed"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool   `json:"running"`
	PID          int    `json:"pid"`
	DataDir      string `json:"dataDir"`
	LockFilePath string `json:"lockFilePath"`
	RuleCount    int    `json:"ruleCount"`
	BatchCount   int    `json:"batchCount"`
	ErrorScenes  int    `json:"errorScenes"`
}

// RuleListResponse wraps a collection of rules for API responses.
type RuleListResponse struct {
	Rules []Rule `json:"rules"`
}

// BatchListResponse wraps a collection of batches for API responses.
type BatchListResponse struct {
	Batches []Batch `json:"batches"`
}

// BatchResponse wraps a single batch.
type BatchResponse struct {
	Batch Batch `json:"batch"`
}
