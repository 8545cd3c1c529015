package orchestrator

import (
	"context"
	"errors"
	"time"

	"reelgate/internal/batch"
	"reelgate/internal/logging"
	"reelgate/internal/services"
)

// sceneRef names one scene inside a batch for a processing run.
type sceneRef struct {
	batchID string
	stashID string
}

// processBatch runs a fresh submission: started notification, the scenes in
// order, then the completion summary. It holds processMu for the whole run,
// so at most one run mutates scene state at any moment.
func (o *Orchestrator) processBatch(ctx context.Context, batchID string, stashIDs []string) {
	o.processMu.Lock()
	defer o.processMu.Unlock()

	start := time.Now()
	if err := o.notifier.NotifyBatchStarted(ctx, batchID, len(stashIDs)); err != nil {
		o.logger.Warn("batch start notification failed", logging.Error(err))
	}

	refs := make([]sceneRef, 0, len(stashIDs))
	for _, stashID := range stashIDs {
		refs = append(refs, sceneRef{batchID: batchID, stashID: stashID})
	}
	if o.runScenes(ctx, refs) {
		o.finishRun(ctx, batchID, time.Since(start))
	}
}

// processRetries resubmits error scenes, possibly spanning several batches.
// Retries pace calls exactly like a fresh run but raise no batch
// notifications; the batches already announced themselves once.
func (o *Orchestrator) processRetries(ctx context.Context, refs []sceneRef) {
	o.processMu.Lock()
	defer o.processMu.Unlock()

	o.runScenes(ctx, refs)
	o.logger.Info("retry run finished",
		logging.String(logging.FieldEventType, "retry_finished"),
		logging.Int("scenes", len(refs)),
	)
}

// runScenes submits refs one at a time with the configured delay between
// consecutive calls, batch boundaries included. A cancel skips the rest of
// the cancelled batch and continues with refs from other batches. It reports
// whether the run reached the end without shutdown or cancellation.
func (o *Orchestrator) runScenes(ctx context.Context, refs []sceneRef) bool {
	defer o.setActiveBatch("")

	completed := true
	for i := 0; i < len(refs); {
		if ctx.Err() != nil {
			return false
		}
		ref := refs[i]
		o.setActiveBatch(ref.batchID)
		if o.consumeCancel(ref.batchID) {
			var remaining []string
			for i < len(refs) && refs[i].batchID == ref.batchID {
				remaining = append(remaining, refs[i].stashID)
				i++
			}
			o.handleCancel(ctx, ref.batchID, remaining)
			completed = false
			continue
		}

		o.processScene(ctx, ref.batchID, ref.stashID)
		i++

		if i < len(refs) && o.sceneDelay > 0 {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(o.sceneDelay):
			}
		}
	}
	return completed
}

func (o *Orchestrator) processScene(ctx context.Context, batchID, stashID string) {
	record, err := o.batches.GetScene(ctx, batchID, stashID)
	if err != nil {
		o.logger.Error("failed to load scene for processing",
			logging.Error(err),
			logging.String(logging.FieldBatchID, batchID),
			logging.String(logging.FieldSceneID, stashID),
		)
		return
	}
	// A scene can settle between scheduling and processing, for example when
	// a cancel lands before the run picks it up.
	switch record.Status {
	case batch.StatusWaiting, batch.StatusAdding, batch.StatusError:
	default:
		return
	}

	if err := o.updateScene(ctx, batchID, stashID, batch.StatusAdding, "", nil); err != nil {
		o.logger.Error("failed to mark scene adding",
			logging.Error(err),
			logging.String(logging.FieldBatchID, batchID),
			logging.String(logging.FieldSceneID, stashID),
		)
		return
	}

	result, err := o.client.LookupAndAdd(ctx, stashID)
	switch {
	case err == nil:
		empty := ""
		external := &empty
		if result != nil && result.ExternalID != "" {
			external = &result.ExternalID
		}
		if err := o.updateScene(ctx, batchID, stashID, batch.StatusAdded, "", external); err != nil {
			o.logger.Error("failed to mark scene added", logging.Error(err))
			return
		}
		if result != nil && result.Title != "" {
			o.updateTitle(ctx, batchID, stashID, result.Title)
		}
		o.logger.Info("scene added",
			logging.String(logging.FieldEventType, "scene_added"),
			logging.String(logging.FieldBatchID, batchID),
			logging.String(logging.FieldSceneID, stashID),
		)

	case isConflict(err):
		conflict := asConflict(err)
		status := batch.StatusSearched
		if conflict != nil && conflict.HasLocalFile {
			status = batch.StatusExists
		}
		if err := o.updateScene(ctx, batchID, stashID, status, "", nil); err != nil {
			o.logger.Error("failed to mark scene conflict", logging.Error(err))
			return
		}
		if conflict != nil && conflict.Title != "" {
			o.updateTitle(ctx, batchID, stashID, conflict.Title)
		}
		o.logger.Info("scene already known to media server",
			logging.String(logging.FieldEventType, "scene_conflict"),
			logging.String(logging.FieldBatchID, batchID),
			logging.String(logging.FieldSceneID, stashID),
			logging.String("resolution", string(status)),
		)

	case ctx.Err() != nil:
		// Daemon shutdown mid-call. Leave the scene in adding; the operator
		// can retry it after restart by inspecting the batch.
		return

	default:
		if updateErr := o.updateScene(ctx, batchID, stashID, batch.StatusError, err.Error(), nil); updateErr != nil {
			o.logger.Error("failed to mark scene error", logging.Error(updateErr))
			return
		}
		o.logger.Error("scene add failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "scene_add_failed"),
			logging.String(logging.FieldBatchID, batchID),
			logging.String(logging.FieldSceneID, stashID),
		)
	}
}

func (o *Orchestrator) handleCancel(ctx context.Context, batchID string, remaining []string) {
	if err := o.cancelRemaining(ctx, batchID, remaining); err != nil {
		o.logger.Error("failed to cancel remaining scenes",
			logging.Error(err),
			logging.String(logging.FieldBatchID, batchID),
		)
		return
	}
	o.logger.Info("batch cancelled",
		logging.String(logging.FieldEventType, "batch_cancelled"),
		logging.String(logging.FieldBatchID, batchID),
		logging.Int("remaining", len(remaining)),
	)
	if err := o.notifier.NotifyBatchCancelled(ctx, batchID, len(remaining)); err != nil {
		o.logger.Warn("cancel notification failed", logging.Error(err))
	}
}

// cancelRemaining marks remaining waiting scenes as cancelled. With a nil
// list it sweeps every waiting scene in the batch.
func (o *Orchestrator) cancelRemaining(ctx context.Context, batchID string, remaining []string) error {
	if remaining == nil {
		current, err := o.batches.Get(ctx, batchID)
		if err != nil {
			return err
		}
		for _, record := range current.Scenes {
			if record.Status == batch.StatusWaiting {
				remaining = append(remaining, record.StashID)
			}
		}
	}
	for _, stashID := range remaining {
		record, err := o.batches.GetScene(ctx, batchID, stashID)
		if err != nil {
			return err
		}
		if record.Status != batch.StatusWaiting && record.Status != batch.StatusAdding {
			continue
		}
		if err := o.updateScene(ctx, batchID, stashID, batch.StatusCancelled, "", nil); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) finishRun(ctx context.Context, batchID string, elapsed time.Duration) {
	current, err := o.batches.Get(ctx, batchID)
	if err != nil {
		o.logger.Error("failed to load batch for summary", logging.Error(err))
		return
	}
	summary := current.Summarize()
	o.logger.Info("batch processing finished",
		logging.String(logging.FieldEventType, "batch_finished"),
		logging.String(logging.FieldBatchID, batchID),
		logging.Int("added", summary.Added),
		logging.Int("searched", summary.Searched),
		logging.Int("exists", summary.Exists),
		logging.Int("errors", summary.Errors),
		logging.Duration("elapsed", elapsed),
	)
	if err := o.notifier.NotifyBatchCompleted(ctx, batchID, summary, elapsed); err != nil {
		o.logger.Warn("completion notification failed", logging.Error(err))
	}
}

// updateTitle adopts the media server's canonical title for a scene.
func (o *Orchestrator) updateTitle(ctx context.Context, batchID, stashID, title string) {
	if _, err := o.batches.UpdateScene(ctx, batchID, stashID, batch.SceneUpdate{Title: &title}); err != nil {
		o.logger.Warn("failed to update scene title",
			logging.Error(err),
			logging.String(logging.FieldSceneID, stashID),
		)
	}
}

func (o *Orchestrator) setActiveBatch(batchID string) {
	o.cancelMu.Lock()
	o.activeBatch = batchID
	o.cancelMu.Unlock()
}

func (o *Orchestrator) consumeCancel(batchID string) bool {
	o.cancelMu.Lock()
	defer o.cancelMu.Unlock()
	if o.cancelFlags[batchID] {
		delete(o.cancelFlags, batchID)
		return true
	}
	return false
}

func isConflict(err error) bool {
	return errors.Is(err, services.ErrConflict)
}

func asConflict(err error) *services.ConflictError {
	var conflict *services.ConflictError
	if errors.As(err, &conflict) {
		return conflict
	}
	return nil
}
