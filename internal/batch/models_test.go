package batch

import (
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	if status, ok := ParseStatus("  Waiting "); !ok || status != StatusWaiting {
		t.Fatalf("ParseStatus(waiting) = %q, %v", status, ok)
	}
	if _, ok := ParseStatus("bogus"); ok {
		t.Fatal("ParseStatus accepted unknown status")
	}
	if _, ok := ParseStatus(""); ok {
		t.Fatal("ParseStatus accepted empty status")
	}
}

func TestStatusPredicates(t *testing.T) {
	terminal := []Status{StatusFiltered, StatusCancelled, StatusRemoved, StatusExists}
	for _, status := range terminal {
		if !status.IsTerminal() {
			t.Errorf("%s should be terminal", status)
		}
	}
	for _, status := range []Status{StatusWaiting, StatusAdding, StatusAdded, StatusSearched, StatusError, StatusRemoving} {
		if status.IsTerminal() {
			t.Errorf("%s should not be terminal", status)
		}
	}

	if !StatusError.CanRetry() {
		t.Error("error scenes should be retryable")
	}
	if StatusCancelled.CanRetry() {
		t.Error("cancelled scenes should not be retryable")
	}
	if !StatusAdded.CanUndo() || !StatusSearched.CanUndo() {
		t.Error("added and searched scenes should be undoable")
	}
	if StatusExists.CanUndo() {
		t.Error("exists scenes should not be undoable")
	}
}

func TestSummarize(t *testing.T) {
	b := Batch{Scenes: []SceneRecord{
		{Status: StatusAdded},
		{Status: StatusAdded},
		{Status: StatusFiltered},
		{Status: StatusError},
		{Status: StatusWaiting},
	}}
	sum := b.Summarize()
	if sum.Total != 5 || sum.Added != 2 || sum.Filtered != 1 || sum.Errors != 1 || sum.Waiting != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestNewIDIsTimeDerived(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)
	first := NewID(at)
	second := NewID(at.Add(time.Nanosecond))
	if first == second {
		t.Fatal("distinct times should yield distinct ids")
	}
	if first != NewID(at) {
		t.Fatal("same time should yield the same id")
	}
}
