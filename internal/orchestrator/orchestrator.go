package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"reelgate/internal/batch"
	"reelgate/internal/catalog"
	"reelgate/internal/config"
	"reelgate/internal/logging"
	"reelgate/internal/notifications"
	"reelgate/internal/rules"
	"reelgate/internal/scene"
	"reelgate/internal/services"
	"reelgate/internal/services/stash"
)

// Orchestrator coordinates batch submissions against the media server.
type Orchestrator struct {
	cfg      *config.Config
	batches  *batch.Store
	rules    *rules.Store
	source   catalog.Source
	client   stash.Client
	notifier notifications.Service
	logger   *slog.Logger

	sceneDelay time.Duration

	// processMu serializes processing runs so scene writes never interleave.
	processMu sync.Mutex

	mu      sync.Mutex
	running bool
	runCtx  context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	cancelMu    sync.Mutex
	cancelFlags map[string]bool
	activeBatch string
}

// New constructs an orchestrator. notifier and logger may be nil.
func New(cfg *config.Config, batches *batch.Store, ruleStore *rules.Store, source catalog.Source, client stash.Client, notifier notifications.Service, logger *slog.Logger) *Orchestrator {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		cfg:         cfg,
		batches:     batches,
		rules:       ruleStore,
		source:      source,
		client:      client,
		notifier:    notifier,
		logger:      logging.WithComponent(logger, "orchestrator"),
		sceneDelay:  time.Duration(cfg.Workflow.SceneDelayMS) * time.Millisecond,
		cancelFlags: make(map[string]bool),
	}
}

// Start begins accepting background processing work.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return errors.New("orchestrator already running")
	}
	o.runCtx, o.cancel = context.WithCancel(ctx)
	o.running = true
	return nil
}

// Stop terminates background processing and waits for in-flight runs.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	cancel := o.cancel
	o.running = false
	o.cancel = nil
	o.mu.Unlock()

	cancel()
	o.wg.Wait()
}

// Wait blocks until all background runs spawned so far have finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) spawn(run func(ctx context.Context)) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.running {
		return errors.New("orchestrator not running")
	}
	ctx := o.runCtx
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		run(ctx)
	}()
	return nil
}

// AddBatch screens every candidate scene on the given catalog page, records
// the batch, and processes the surviving scenes in the background. The
// returned batch reflects the initial waiting/filtered split.
func (o *Orchestrator) AddBatch(ctx context.Context, page string) (*batch.Batch, error) {
	candidates, err := o.source.Candidates(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no scenes found on page", services.ErrValidation)
	}

	ruleList, err := o.rules.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	// Catalog pages can list the same scene more than once; the first
	// occurrence wins so batch records stay unique per stash id.
	seeds := make([]batch.Seed, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		if _, dup := seen[candidate.ID]; dup {
			continue
		}
		seen[candidate.ID] = struct{}{}
		seed := batch.Seed{
			StashID: candidate.ID,
			Title:   scene.DisplayTitle(candidate.Meta.Title, candidate.ID),
		}
		if decision := rules.Evaluate(ruleList, candidate.Meta); !decision.Allowed {
			seed.Status = batch.StatusFiltered
			seed.Reason = decision.Reason
		}
		seeds = append(seeds, seed)
	}

	created, err := o.batches.Create(ctx, seeds)
	if err != nil {
		return nil, err
	}

	var pending []string
	for _, record := range created.Scenes {
		if record.Status == batch.StatusWaiting {
			pending = append(pending, record.StashID)
		}
	}

	o.logger.Info("batch created",
		logging.String(logging.FieldEventType, "batch_created"),
		logging.String(logging.FieldBatchID, created.ID),
		logging.Int("scenes", len(created.Scenes)),
		logging.Int("filtered", len(created.Scenes)-len(pending)),
	)

	if len(pending) == 0 {
		// Every candidate was screened out; there is no run to wait for,
		// so the batch finishes here.
		o.finishRun(ctx, created.ID, 0)
		return created, nil
	}
	if err := o.spawn(func(runCtx context.Context) {
		o.processBatch(runCtx, created.ID, pending)
	}); err != nil {
		return nil, err
	}
	return created, nil
}

// AddSingle screens one scene and, if it survives, submits it as a
// single-scene batch.
func (o *Orchestrator) AddSingle(ctx context.Context, stashID string) (*batch.Batch, error) {
	meta, err := o.source.SceneMetadata(ctx, stashID)
	if err != nil {
		return nil, fmt.Errorf("scene metadata: %w", err)
	}

	ruleList, err := o.rules.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	seed := batch.Seed{
		StashID: stashID,
		Title:   scene.DisplayTitle(meta.Title, stashID),
	}
	if decision := rules.Evaluate(ruleList, *meta); !decision.Allowed {
		seed.Status = batch.StatusFiltered
		seed.Reason = decision.Reason
	}

	created, err := o.batches.Create(ctx, []batch.Seed{seed})
	if err != nil {
		return nil, err
	}

	if created.Scenes[0].Status != batch.StatusWaiting {
		o.finishRun(ctx, created.ID, 0)
		return created, nil
	}
	if err := o.spawn(func(runCtx context.Context) {
		o.processBatch(runCtx, created.ID, []string{stashID})
	}); err != nil {
		return nil, err
	}
	return created, nil
}

// Retry resubmits a single error scene. The scene skips re-screening: rules
// only gate first submission.
func (o *Orchestrator) Retry(ctx context.Context, batchID, stashID string) error {
	record, err := o.batches.GetScene(ctx, batchID, stashID)
	if err != nil {
		return err
	}
	if !record.Status.CanRetry() {
		return fmt.Errorf("%w: scene %s has status %s, only error scenes can be retried", services.ErrValidation, stashID, record.Status)
	}
	return o.spawn(func(runCtx context.Context) {
		o.processRetries(runCtx, []sceneRef{{batchID: batchID, stashID: stashID}})
	})
}

// RetryAll resubmits every error scene across all batches in submission
// order and returns how many were queued.
func (o *Orchestrator) RetryAll(ctx context.Context) (int, error) {
	refs, err := o.batches.ErrorScenes(ctx)
	if err != nil {
		return 0, err
	}
	if len(refs) == 0 {
		return 0, nil
	}

	queued := make([]sceneRef, 0, len(refs))
	for _, ref := range refs {
		queued = append(queued, sceneRef{batchID: ref.BatchID, stashID: ref.Scene.StashID})
	}

	err = o.spawn(func(runCtx context.Context) {
		o.processRetries(runCtx, queued)
	})
	if err != nil {
		return 0, err
	}
	return len(refs), nil
}

// Cancel requests that the given batch stop processing. Scenes already in a
// settled status keep it; waiting scenes become cancelled. When the batch is
// mid-run the flag is consumed at the top of the processing loop, otherwise
// the waiting scenes are cancelled immediately.
func (o *Orchestrator) Cancel(ctx context.Context, batchID string) error {
	if _, err := o.batches.Get(ctx, batchID); err != nil {
		return err
	}

	o.cancelMu.Lock()
	active := o.activeBatch == batchID
	if active {
		o.cancelFlags[batchID] = true
	}
	o.cancelMu.Unlock()

	if active {
		return nil
	}
	return o.cancelRemaining(ctx, batchID, nil)
}

// Undo removes a previously added scene from the media server. On failure
// the scene reverts to its prior status with the failure recorded.
func (o *Orchestrator) Undo(ctx context.Context, batchID, stashID string) error {
	record, err := o.batches.GetScene(ctx, batchID, stashID)
	if err != nil {
		return err
	}
	if !record.Status.CanUndo() {
		return fmt.Errorf("%w: scene %s has status %s, only added or searched scenes can be removed", services.ErrValidation, stashID, record.Status)
	}
	prior := record.Status

	if err := o.updateScene(ctx, batchID, stashID, batch.StatusRemoving, "", nil); err != nil {
		return err
	}

	if err := o.client.Remove(ctx, stashID, record.ExternalID); err != nil {
		message := err.Error()
		if revertErr := o.updateScene(ctx, batchID, stashID, prior, message, nil); revertErr != nil {
			return revertErr
		}
		o.logger.Error("scene removal failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "scene_remove_failed"),
			logging.String(logging.FieldBatchID, batchID),
			logging.String(logging.FieldSceneID, stashID),
		)
		return fmt.Errorf("remove scene %s: %w", stashID, err)
	}

	empty := ""
	if err := o.updateScene(ctx, batchID, stashID, batch.StatusRemoved, "", &empty); err != nil {
		return err
	}
	o.logger.Info("scene removed",
		logging.String(logging.FieldEventType, "scene_removed"),
		logging.String(logging.FieldBatchID, batchID),
		logging.String(logging.FieldSceneID, stashID),
	)
	return nil
}

func (o *Orchestrator) updateScene(ctx context.Context, batchID, stashID string, status batch.Status, message string, externalID *string) error {
	_, err := o.batches.UpdateScene(ctx, batchID, stashID, batch.SceneUpdate{
		Status:     &status,
		Error:      &message,
		ExternalID: externalID,
	})
	return err
}
