package rules

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
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

// Store manages filter rule persistence backed by SQLite. Every mutation
// persists the full rule list before broadcasting it on the hub.
type Store struct {
	db  *sql.DB
	hub *events.Hub
}

// Open initializes or connects to the filter database and runs the legacy
// import when applicable. hub may be nil.
func Open(cfg *config.Config, hub *events.Hub) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "filters.db")
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
	if err := store.importLegacyFile(context.Background(), filepath.Join(cfg.Paths.DataDir, "legacy_filters.json")); err != nil {
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

// Add creates a rule with defaults (studio, blocklist, empty pattern,
// enabled) and appends it to the list.
func (s *Store) Add(ctx context.Context) (*Rule, error) {
	now := time.Now().UTC()
	rule := &Rule{
		ID:        uuid.NewString(),
		Type:      TypeStudio,
		Mode:      ModeBlocklist,
		Pattern:   "",
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.insert(ctx, rule); err != nil {
		return nil, err
	}
	if err := s.broadcast(ctx); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *Store) insert(ctx context.Context, rule *Rule) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO filter_rules (id, type, mode, pattern, enabled, position, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM filter_rules), ?, ?)`,
		rule.ID,
		string(rule.Type),
		string(rule.Mode),
		rule.Pattern,
		boolToInt(rule.Enabled),
		rule.CreatedAt.Format(time.RFC3339Nano),
		rule.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}
	return nil
}

// UpdateParams carries partial rule mutations; nil fields are left unchanged.
type UpdateParams struct {
	Type    *Type
	Mode    *Mode
	Pattern *string
	Enabled *bool
}

// Update merges the provided fields into the identified rule.
func (s *Store) Update(ctx context.Context, id string, params UpdateParams) (*Rule, error) {
	rule, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, services.NotFound("rule", id)
	}

	if params.Type != nil {
		rule.Type = *params.Type
	}
	if params.Mode != nil {
		rule.Mode = *params.Mode
	}
	if params.Pattern != nil {
		rule.Pattern = *params.Pattern
	}
	if params.Enabled != nil {
		rule.Enabled = *params.Enabled
	}
	rule.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(
		ctx,
		`UPDATE filter_rules SET type = ?, mode = ?, pattern = ?, enabled = ?, updated_at = ? WHERE id = ?`,
		string(rule.Type),
		string(rule.Mode),
		rule.Pattern,
		boolToInt(rule.Enabled),
		rule.UpdatedAt.Format(time.RFC3339Nano),
		rule.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update rule: %w", err)
	}
	if err := s.broadcast(ctx); err != nil {
		return nil, err
	}
	return rule, nil
}

// Toggle flips a rule's enabled flag.
func (s *Store) Toggle(ctx context.Context, id string) (*Rule, error) {
	rule, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, services.NotFound("rule", id)
	}
	enabled := !rule.Enabled
	return s.Update(ctx, id, UpdateParams{Enabled: &enabled})
}

// Delete removes a rule.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM filter_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return services.NotFound("rule", id)
	}
	return s.broadcast(ctx)
}

// ResetAll empties the rule list. Calling it on an already-empty list is not
// an error.
func (s *Store) ResetAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM filter_rules`); err != nil {
		return fmt.Errorf("reset rules: %w", err)
	}
	return s.broadcast(ctx)
}

// List returns all rules in evaluation order.
func (s *Store) List(ctx context.Context) ([]Rule, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, type, mode, pattern, enabled, created_at, updated_at
         FROM filter_rules ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var list []Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rule)
	}
	return list, rows.Err()
}

func (s *Store) getByID(ctx context.Context, id string) (*Rule, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, type, mode, pattern, enabled, created_at, updated_at FROM filter_rules WHERE id = ?`,
		id,
	)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rule: %w", err)
	}
	return rule, nil
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
		list = []Rule{}
	}
	s.hub.Publish(events.KindFiltersUpdated, list)
	return nil
}

func (s *Store) importLegacyFile(ctx context.Context, path string) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM filter_rules`).Scan(&count); err != nil {
		return fmt.Errorf("count rules: %w", err)
	}
	if count > 0 {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read legacy filters: %w", err)
	}

	migrated, err := MigrateLegacy(data)
	if err != nil {
		return fmt.Errorf("migrate legacy filters: %w", err)
	}
	for i := range migrated {
		if err := s.insert(ctx, &migrated[i]); err != nil {
			return err
		}
	}
	if err := os.Rename(path, path+".imported"); err != nil {
		return fmt.Errorf("archive legacy filters: %w", err)
	}
	return s.broadcast(ctx)
}

func scanRule(scanner interface{ Scan(dest ...any) error }) (*Rule, error) {
	var (
		id         string
		typeStr    string
		modeStr    string
		pattern    string
		enabled    int
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&id, &typeStr, &modeStr, &pattern, &enabled, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	rule := &Rule{
		ID:      id,
		Type:    Type(typeStr),
		Mode:    Mode(modeStr),
		Pattern: pattern,
		Enabled: enabled != 0,
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		rule.CreatedAt = created
	}
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		rule.UpdatedAt = updated
	}
	return rule, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
