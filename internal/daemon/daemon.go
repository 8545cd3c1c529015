package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"reelgate/internal/batch"
	"reelgate/internal/catalog"
	"reelgate/internal/config"
	"reelgate/internal/events"
	"reelgate/internal/logging"
	"reelgate/internal/notifications"
	"reelgate/internal/orchestrator"
	"reelgate/internal/rules"
	"reelgate/internal/services/stash"
)

// Daemon coordinates the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	batches  *batch.Store
	rules    *rules.Store
	hub      *events.Hub
	orch     *orchestrator.Orchestrator
	notifier notifications.Service
	logPath  string

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DataDir      string
	LockFilePath string
	RuleCount    int
	BatchCount   int
	ErrorScenes  int
}

// eventBufferSize bounds the broadcast replay window.
const eventBufferSize = 256

// New constructs a daemon with all collaborators wired from config.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	hub := events.NewHub(eventBufferSize)
	ruleStore, err := rules.Open(cfg, hub)
	if err != nil {
		return nil, fmt.Errorf("open rule store: %w", err)
	}
	batchStore, err := batch.Open(cfg, hub)
	if err != nil {
		_ = ruleStore.Close()
		return nil, fmt.Errorf("open batch store: %w", err)
	}

	notifier := notifications.NewService(cfg)
	source := catalog.NewConfiguredSource(cfg)
	client := stash.NewConfiguredClient(cfg)
	orch := orchestrator.New(cfg, batchStore, ruleStore, source, client, notifier, logger)

	lockPath := filepath.Join(cfg.Paths.LogDir, "reelgated.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		batches:  batchStore,
		rules:    ruleStore,
		hub:      hub,
		orch:     orch,
		notifier: notifier,
		logPath:  filepath.Join(cfg.Paths.LogDir, "reelgate.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock and launches background processing plus the
// HTTP status API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another reelgate daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.orch.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start orchestrator: %w", err)
	}
	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			d.orch.Stop()
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("reelgate daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.orch.Stop()
	if d.api != nil {
		d.api.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("reelgate daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	var errs []error
	if d.batches != nil {
		errs = append(errs, d.batches.Close())
	}
	if d.rules != nil {
		errs = append(errs, d.rules.Close())
	}
	return errors.Join(errs...)
}

// Rules exposes the filter store to command surfaces.
func (d *Daemon) Rules() *rules.Store { return d.rules }

// Batches exposes the batch store to command surfaces.
func (d *Daemon) Batches() *batch.Store { return d.batches }

// Orchestrator exposes batch processing to command surfaces.
func (d *Daemon) Orchestrator() *orchestrator.Orchestrator { return d.orch }

// Hub exposes the broadcast hub.
func (d *Daemon) Hub() *events.Hub { return d.hub }

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string { return d.logPath }

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if !d.cfg.Notifications.Enabled {
		return false, "notifications disabled", nil
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DataDir:      d.cfg.Paths.DataDir,
		LockFilePath: d.lockPath,
	}
	if list, err := d.rules.List(ctx); err == nil {
		status.RuleCount = len(list)
	}
	if list, err := d.batches.List(ctx); err == nil {
		status.BatchCount = len(list)
	}
	if refs, err := d.batches.ErrorScenes(ctx); err == nil {
		status.ErrorScenes = len(refs)
	}
	return status
}
