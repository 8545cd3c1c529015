package batch

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle of a scene inside a batch.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusFiltered  Status = "filtered"
	StatusAdding    Status = "adding"
	StatusAdded     Status = "added"
	StatusSearched  Status = "searched"
	StatusExists    Status = "exists"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
	StatusRemoving  Status = "removing"
	StatusRemoved   Status = "removed"
)

var allStatuses = []Status{
	StatusWaiting,
	StatusFiltered,
	StatusAdding,
	StatusAdded,
	StatusSearched,
	StatusExists,
	StatusError,
	StatusCancelled,
	StatusRemoving,
	StatusRemoved,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a scene in this status will never be touched by
// batch processing again. Error is deliberately not terminal: it stays
// eligible for retry.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFiltered, StatusCancelled, StatusRemoved, StatusExists:
		return true
	default:
		return false
	}
}

// CanRetry reports whether a scene in this status may be resubmitted.
func (s Status) CanRetry() bool {
	return s == StatusError
}

// CanUndo reports whether a scene in this status may be removed again from the
// media server.
func (s Status) CanUndo() bool {
	return s == StatusAdded || s == StatusSearched
}

// SceneRecord tracks one scene's progress through a batch.
type SceneRecord struct {
	StashID string `json:"stash_id"`
	Title   string `json:"title"`
	Status  Status `json:"status"`
	// Error holds the failure message for error scenes, or the skip reason
	// for filtered ones.
	Error      string    `json:"error,omitempty"`
	ExternalID string    `json:"external_id,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Batch groups the scenes submitted in one operation.
type Batch struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Scenes    []SceneRecord `json:"scenes"`
}

// NewID derives a batch identifier from the given creation time.
func NewID(at time.Time) string {
	return fmt.Sprintf("batch-%d", at.UTC().UnixNano())
}

// Summary aggregates scene counts per status.
type Summary struct {
	Total     int `json:"total"`
	Waiting   int `json:"waiting"`
	Filtered  int `json:"filtered"`
	Adding    int `json:"adding"`
	Added     int `json:"added"`
	Searched  int `json:"searched"`
	Exists    int `json:"exists"`
	Errors    int `json:"errors"`
	Cancelled int `json:"cancelled"`
	Removed   int `json:"removed"`
}

// Summarize counts the batch's scenes by status.
func (b Batch) Summarize() Summary {
	var sum Summary
	sum.Total = len(b.Scenes)
	for _, scene := range b.Scenes {
		switch scene.Status {
		case StatusWaiting:
			sum.Waiting++
		case StatusFiltered:
			sum.Filtered++
		case StatusAdding, StatusRemoving:
			sum.Adding++
		case StatusAdded:
			sum.Added++
		case StatusSearched:
			sum.Searched++
		case StatusExists:
			sum.Exists++
		case StatusError:
			sum.Errors++
		case StatusCancelled:
			sum.Cancelled++
		case StatusRemoved:
			sum.Removed++
		}
	}
	return sum
}
