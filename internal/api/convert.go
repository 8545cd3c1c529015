package api

import (
	"reelgate/internal/batch"
	"reelgate/internal/rules"
)

// FromRule converts a filter rule to its API representation.
func FromRule(rule rules.Rule) Rule {
	dto := Rule{
		ID:      rule.ID,
		Type:    string(rule.Type),
		Mode:    string(rule.Mode),
		Pattern: rule.Pattern,
		Enabled: rule.Enabled,
	}
	if !rule.CreatedAt.IsZero() {
		dto.CreatedAt = rule.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !rule.UpdatedAt.IsZero() {
		dto.UpdatedAt = rule.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromRules converts a slice of filter rules into API DTOs.
func FromRules(list []rules.Rule) []Rule {
	out := make([]Rule, 0, len(list))
	for _, rule := range list {
		out = append(out, FromRule(rule))
	}
	return out
}

// FromScene converts a scene record to its API representation.
func FromScene(record batch.SceneRecord) Scene {
	dto := Scene{
		StashID:    record.StashID,
		Title:      record.Title,
		Status:     string(record.Status),
		Error:      record.Error,
		ExternalID: record.ExternalID,
	}
	if !record.UpdatedAt.IsZero() {
		dto.UpdatedAt = record.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromBatch converts a batch to its API representation.
func FromBatch(b batch.Batch) Batch {
	dto := Batch{
		ID:      b.ID,
		Scenes:  make([]Scene, 0, len(b.Scenes)),
		Summary: fromSummary(b.Summarize()),
	}
	if !b.CreatedAt.IsZero() {
		dto.CreatedAt = b.CreatedAt.UTC().Format(dateTimeFormat)
	}
	for _, record := range b.Scenes {
		dto.Scenes = append(dto.Scenes, FromScene(record))
	}
	return dto
}

// FromBatches converts a slice of batches into API DTOs.
func FromBatches(list []batch.Batch) []Batch {
	out := make([]Batch, 0, len(list))
	for _, item := range list {
		out = append(out, FromBatch(item))
	}
	return out
}

func fromSummary(sum batch.Summary) BatchSummary {
	return BatchSummary{
		Total:     sum.Total,
		Waiting:   sum.Waiting,
		Filtered:  sum.Filtered,
		InFlight:  sum.Adding,
		Added:     sum.Added,
		Searched:  sum.Searched,
		Exists:    sum.Exists,
		Errors:    sum.Errors,
		Cancelled: sum.Cancelled,
		Removed:   sum.Removed,
	}
}
