package batch

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"reelgate/internal/config"
	"reelgate/internal/events"
	"reelgate/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store manages batch persistence backed by SQLite. Every mutation persists
// before the updated batch list is broadcast on the hub, so subscribers never
// observe state that could be lost on restart.
type Store struct {
	db  *sql.DB
	hub *events.Hub
}

// Open initializes or connects to the batch database. hub may be nil.
func Open(cfg *config.Config, hub *events.Hub) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "batches.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, hub: hub}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

// Seed describes one scene to include when creating a batch. A blank Status
// defaults to waiting.
type Seed struct {
	StashID string
	Title   string
	Status  Status
	Reason  string
}

// Create inserts a batch containing all seeds in order. The whole insert runs
// in one transaction so a batch is never half-created.
func (s *Store) Create(ctx context.Context, seeds []Seed) (*Batch, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("create batch: no scenes given")
	}

	now := time.Now().UTC()
	created := &Batch{ID: NewID(now), CreatedAt: now}
	timestamp := now.Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch insert: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO batches (id, created_at) VALUES (?, ?)`, created.ID, timestamp); err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}

	for i, seed := range seeds {
		status := seed.Status
		if status == "" {
			status = StatusWaiting
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO batch_scenes (batch_id, stash_id, title, status, error, position, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			created.ID,
			seed.StashID,
			seed.Title,
			string(status),
			seed.Reason,
			i,
			timestamp,
		); err != nil {
			return nil, fmt.Errorf("insert batch scene %s: %w", seed.StashID, err)
		}
		created.Scenes = append(created.Scenes, SceneRecord{
			StashID:   seed.StashID,
			Title:     seed.Title,
			Status:    status,
			Error:     seed.Reason,
			UpdatedAt: now,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch insert: %w", err)
	}
	if err := s.broadcast(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// SceneUpdate carries partial scene mutations; nil fields are left unchanged.
type SceneUpdate struct {
	Title      *string
	Status     *Status
	Error      *string
	ExternalID *string
}

// UpdateScene merges the provided fields into the identified scene record and
// broadcasts the refreshed batch list.
func (s *Store) UpdateScene(ctx context.Context, batchID, stashID string, update SceneUpdate) (*SceneRecord, error) {
	record, err := s.GetScene(ctx, batchID, stashID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		record.Title = *update.Title
	}
	if update.Status != nil {
		record.Status = *update.Status
	}
	if update.Error != nil {
		record.Error = *update.Error
	}
	if update.ExternalID != nil {
		record.ExternalID = *update.ExternalID
	}
	record.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(
		ctx,
		`UPDATE batch_scenes SET title = ?, status = ?, error = ?, external_id = ?, updated_at = ?
         WHERE batch_id = ? AND stash_id = ?`,
		record.Title,
		string(record.Status),
		record.Error,
		record.ExternalID,
		record.UpdatedAt.Format(time.RFC3339Nano),
		batchID,
		stashID,
	)
	if err != nil {
		return nil, fmt.Errorf("update batch scene: %w", err)
	}
	if err := s.broadcast(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

// GetScene returns one scene record.
func (s *Store) GetScene(ctx context.Context, batchID, stashID string) (*SceneRecord, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT stash_id, title, status, error, external_id, updated_at
         FROM batch_scenes WHERE batch_id = ? AND stash_id = ?`,
		batchID,
		stashID,
	)
	record, err := scanScene(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.NotFound("scene", batchID+"/"+stashID)
	}
	if err != nil {
		return nil, fmt.Errorf("get batch scene: %w", err)
	}
	return record, nil
}

// Get returns one batch with its scenes in submission order.
func (s *Store) Get(ctx context.Context, batchID string) (*Batch, error) {
	var createdRaw string
	err := s.db.QueryRowContext(ctx, `SELECT created_at FROM batches WHERE id = ?`, batchID).Scan(&createdRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.NotFound("batch", batchID)
	}
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}

	result := &Batch{ID: batchID}
	if created, parseErr := time.Parse(time.RFC3339Nano, createdRaw); parseErr == nil {
		result.CreatedAt = created
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT stash_id, title, status, error, external_id, updated_at
         FROM batch_scenes WHERE batch_id = ? ORDER BY position`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("list batch scenes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		record, err := scanScene(rows)
		if err != nil {
			return nil, err
		}
		result.Scenes = append(result.Scenes, *record)
	}
	return result, rows.Err()
}

// List returns all batches with scenes, newest batch first.
func (s *Store) List(ctx context.Context) ([]Batch, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM batches ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan batch id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var list []Batch
	for _, id := range ids {
		item, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		list = append(list, *item)
	}
	return list, nil
}

// SceneRef addresses one scene record within a batch.
type SceneRef struct {
	BatchID string
	Scene   SceneRecord
}

// ErrorScenes returns every error-status scene across all batches, oldest
// batch first so retries replay in submission order.
func (s *Store) ErrorScenes(ctx context.Context) ([]SceneRef, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT bs.batch_id, bs.stash_id, bs.title, bs.status, bs.error, bs.external_id, bs.updated_at
         FROM batch_scenes bs
         JOIN batches b ON b.id = bs.batch_id
         WHERE bs.status = ?
         ORDER BY b.created_at, bs.position`,
		string(StatusError),
	)
	if err != nil {
		return nil, fmt.Errorf("list error scenes: %w", err)
	}
	defer rows.Close()

	var refs []SceneRef
	for rows.Next() {
		var ref SceneRef
		var statusStr, updatedRaw string
		if err := rows.Scan(&ref.BatchID, &ref.Scene.StashID, &ref.Scene.Title, &statusStr, &ref.Scene.Error, &ref.Scene.ExternalID, &updatedRaw); err != nil {
			return nil, fmt.Errorf("scan error scene: %w", err)
		}
		ref.Scene.Status = Status(statusStr)
		if updated, parseErr := time.Parse(time.RFC3339Nano, updatedRaw); parseErr == nil {
			ref.Scene.UpdatedAt = updated
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// ClearAll drops every batch and its scenes.
func (s *Store) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM batches`); err != nil {
		return fmt.Errorf("clear batches: %w", err)
	}
	return s.broadcast(ctx)
}

func (s *Store) broadcast(ctx context.Context) error {
	if s.hub == nil {
		return nil
	}
	list, err := s.List(ctx)
	if err != nil {
		return err
	}
	if list == nil {
		list = []Batch{}
	}
	s.hub.Publish(events.KindBatchesUpdated, list)
	return nil
}

func scanScene(scanner interface{ Scan(dest ...any) error }) (*SceneRecord, error) {
	var (
		record     SceneRecord
		statusStr  string
		updatedRaw string
	)
	if err := scanner.Scan(&record.StashID, &record.Title, &statusStr, &record.Error, &record.ExternalID, &updatedRaw); err != nil {
		return nil, err
	}
	record.Status = Status(statusStr)
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		record.UpdatedAt = updated
	}
	return &record, nil
}
