package batch_test

import (
	"context"
	"errors"
	"testing"

	"reelgate/internal/batch"
	"reelgate/internal/events"
	"reelgate/internal/services"
	"reelgate/internal/testsupport"
)

func TestCreatePersistsSeedsInOrder(t *testing.T) {
	store := testsupport.MustOpenBatchStore(t, testsupport.NewConfig(t), nil)
	ctx := context.Background()

	created, err := store.Create(ctx, []batch.Seed{
		{StashID: "s1", Title: "First"},
		{StashID: "s2", Title: "Second", Status: batch.StatusFiltered, Reason: "studio matches blocklist pattern \"acme\""},
		{StashID: "s3", Title: "Third"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated batch id")
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Scenes) != 3 {
		t.Fatalf("got %d scenes, want 3", len(got.Scenes))
	}
	for i, id := range []string{"s1", "s2", "s3"} {
		if got.Scenes[i].StashID != id {
			t.Fatalf("scene %d stash id = %q, want %q", i, got.Scenes[i].StashID, id)
		}
	}
	if got.Scenes[0].Status != batch.StatusWaiting {
		t.Fatalf("default status = %q, want waiting", got.Scenes[0].Status)
	}
	if got.Scenes[1].Status != batch.StatusFiltered || got.Scenes[1].Error == "" {
		t.Fatalf("filtered seed not preserved: %+v", got.Scenes[1])
	}
}

func TestCreateRejectsEmptyBatch(t *testing.T) {
	store := testsupport.MustOpenBatchStore(t, testsupport.NewConfig(t), nil)
	if _, err := store.Create(context.Background(), nil); err == nil {
		t.Fatal("expected error creating empty batch")
	}
}

func TestUpdateSceneMergesFields(t *testing.T) {
	store := testsupport.MustOpenBatchStore(t, testsupport.NewConfig(t), nil)
	ctx := context.Background()

	created, err := store.Create(ctx, []batch.Seed{{StashID: "s1", Title: "First"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	status := batch.StatusAdded
	external := "ms-42"
	updated, err := store.UpdateScene(ctx, created.ID, "s1", batch.SceneUpdate{Status: &status, ExternalID: &external})
	if err != nil {
		t.Fatalf("UpdateScene: %v", err)
	}
	if updated.Status != batch.StatusAdded || updated.ExternalID != "ms-42" {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Title != "First" {
		t.Fatalf("title changed unexpectedly to %q", updated.Title)
	}

	got, err := store.GetScene(ctx, created.ID, "s1")
	if err != nil {
		t.Fatalf("GetScene: %v", err)
	}
	if got.Status != batch.StatusAdded || got.ExternalID != "ms-42" {
		t.Fatalf("persisted scene = %+v", got)
	}
}

func TestUpdateSceneMissing(t *testing.T) {
	store := testsupport.MustOpenBatchStore(t, testsupport.NewConfig(t), nil)
	status := batch.StatusAdded
	_, err := store.UpdateScene(context.Background(), "nope", "s1", batch.SceneUpdate{Status: &status})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetMissingBatch(t *testing.T) {
	store := testsupport.MustOpenBatchStore(t, testsupport.NewConfig(t), nil)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestErrorScenesAcrossBatches(t *testing.T) {
	store := testsupport.MustOpenBatchStore(t, testsupport.NewConfig(t), nil)
	ctx := context.Background()

	first, err := store.Create(ctx, []batch.Seed{{StashID: "a1"}, {StashID: "a2"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := store.Create(ctx, []batch.Seed{{StashID: "b1"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	errStatus := batch.StatusError
	msg := "connection refused"
	for _, ref := range []struct{ batchID, stashID string }{
		{first.ID, "a2"},
		{second.ID, "b1"},
	} {
		if _, err := store.UpdateScene(ctx, ref.batchID, ref.stashID, batch.SceneUpdate{Status: &errStatus, Error: &msg}); err != nil {
			t.Fatalf("UpdateScene: %v", err)
		}
	}

	refs, err := store.ErrorScenes(ctx)
	if err != nil {
		t.Fatalf("ErrorScenes: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("got %d error scenes, want 2", len(refs))
	}
	if refs[0].Scene.StashID != "a2" || refs[1].Scene.StashID != "b1" {
		t.Fatalf("error scenes out of order: %+v", refs)
	}
}

func TestClearAll(t *testing.T) {
	store := testsupport.MustOpenBatchStore(t, testsupport.NewConfig(t), nil)
	ctx := context.Background()

	if _, err := store.Create(ctx, []batch.Seed{{StashID: "s1"}}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no batches after clear, got %d", len(list))
	}
}

func TestMutationsBroadcastBatchList(t *testing.T) {
	hub := events.NewHub(16)
	store := testsupport.MustOpenBatchStore(t, testsupport.NewConfig(t), hub)
	ctx := context.Background()

	created, err := store.Create(ctx, []batch.Seed{{StashID: "s1"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	status := batch.StatusAdding
	if _, err := store.UpdateScene(ctx, created.ID, "s1", batch.SceneUpdate{Status: &status}); err != nil {
		t.Fatalf("UpdateScene: %v", err)
	}

	evs, _, err := hub.Fetch(ctx, 0, 10, false)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("got %d events, want 2", len(evs))
	}
	for _, ev := range evs {
		if ev.Kind != events.KindBatchesUpdated {
			t.Fatalf("event kind = %q, want %q", ev.Kind, events.KindBatchesUpdated)
		}
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := batch.Open(cfg, nil)
	if err != nil {
		t.Fatalf("batch.Open: %v", err)
	}
	ctx := context.Background()
	created, err := first.Create(ctx, []batch.Seed{{StashID: "s1", Title: "First"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := batch.Open(cfg, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	got, err := second.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if len(got.Scenes) != 1 || got.Scenes[0].Title != "First" {
		t.Fatalf("reopened batch = %+v", got)
	}
}
