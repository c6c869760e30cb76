package presets

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "modernc.org/sqlite"

	"qween/internal/beauty"
	"qween/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

const maxNameLength = 64

var (
	// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
	// ErrNotFound is returned for an unknown preset name.
	ErrNotFound = errors.New("preset not found")
	// ErrInvalidName is returned for empty or oversized names.
	ErrInvalidName = errors.New("invalid preset name")
)

// Preset is a saved parameter set.
type Preset struct {
	Name       string            `json:"name" toml:"name"`
	Parameters beauty.Parameters `json:"parameters" toml:"parameters"`
	Enabled    bool              `json:"enabled" toml:"enabled"`
	UpdatedAt  time.Time         `json:"updated_at" toml:"updated_at"`
}

// Snapshot returns the preset as store state.
func (p Preset) Snapshot() beauty.Snapshot {
	return beauty.Snapshot{Parameters: p.Parameters, Enabled: p.Enabled}
}

// Store manages preset persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the preset database for cfg.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.PresetDBPath())
}

// OpenPath opens the database at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, now: time.Now}
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

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to start over)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// NormalizeName trims name and checks its length.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if utf8.RuneCountInString(trimmed) > maxNameLength {
		return "", fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return trimmed, nil
}

// Save creates or replaces the preset called name.
func (s *Store) Save(ctx context.Context, name string, snap beauty.Snapshot) (Preset, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return Preset{}, err
	}
	payload, err := json.Marshal(snap.Parameters)
	if err != nil {
		return Preset{}, fmt.Errorf("encode parameters: %w", err)
	}
	now := s.now().UTC().Truncate(time.Second)

	_, err = s.exec(ctx,
		`INSERT INTO presets (name, params_json, enabled, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET params_json = excluded.params_json,
		   enabled = excluded.enabled, updated_at = excluded.updated_at`,
		name, string(payload), boolToInt(snap.Enabled), now.Format(time.RFC3339),
	)
	if err != nil {
		return Preset{}, fmt.Errorf("save preset %q: %w", name, err)
	}
	return Preset{Name: name, Parameters: snap.Parameters, Enabled: snap.Enabled, UpdatedAt: now}, nil
}

// Load returns the preset called name.
func (s *Store) Load(ctx context.Context, name string) (Preset, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return Preset{}, err
	}
	row := s.db.QueryRowContext(ctxOrBackground(ctx),
		"SELECT name, params_json, enabled, updated_at FROM presets WHERE name = ?", name)
	preset, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Preset{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Preset{}, fmt.Errorf("load preset %q: %w", name, err)
	}
	return preset, nil
}

// List returns every preset ordered by name.
func (s *Store) List(ctx context.Context) ([]Preset, error) {
	rows, err := s.db.QueryContext(ctxOrBackground(ctx),
		"SELECT name, params_json, enabled, updated_at FROM presets ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	var out []Preset
	for rows.Next() {
		preset, err := scanPreset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		out = append(out, preset)
	}
	return out, rows.Err()
}

// Delete removes the preset called name.
func (s *Store) Delete(ctx context.Context, name string) error {
	name, err := NormalizeName(name)
	if err != nil {
		return err
	}
	res, err := s.exec(ctx, "DELETE FROM presets WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete preset %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// SaveLast records the state restored at the next mount.
func (s *Store) SaveLast(ctx context.Context, snap beauty.Snapshot) error {
	payload, err := json.Marshal(snap.Parameters)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	_, err = s.exec(ctx,
		`INSERT INTO last_state (id, params_json, enabled, updated_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET params_json = excluded.params_json,
		   enabled = excluded.enabled, updated_at = excluded.updated_at`,
		string(payload), boolToInt(snap.Enabled), s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save last state: %w", err)
	}
	return nil
}

// LoadLast returns the last recorded state, if any.
func (s *Store) LoadLast(ctx context.Context) (beauty.Snapshot, bool, error) {
	var (
		payload string
		enabled int
		updated string
	)
	err := s.db.QueryRowContext(ctxOrBackground(ctx),
		"SELECT params_json, enabled, updated_at FROM last_state WHERE id = 1",
	).Scan(&payload, &enabled, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return beauty.Snapshot{}, false, nil
	}
	if err != nil {
		return beauty.Snapshot{}, false, fmt.Errorf("load last state: %w", err)
	}
	var params beauty.Parameters
	if err := json.Unmarshal([]byte(payload), &params); err != nil {
		return beauty.Snapshot{}, false, fmt.Errorf("decode last state: %w", err)
	}
	return beauty.Snapshot{Parameters: params.Clamped(), Enabled: enabled != 0}, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPreset(row scanner) (Preset, error) {
	var (
		p       Preset
		payload string
		enabled int
		updated string
	)
	if err := row.Scan(&p.Name, &payload, &enabled, &updated); err != nil {
		return Preset{}, err
	}
	if err := json.Unmarshal([]byte(payload), &p.Parameters); err != nil {
		return Preset{}, fmt.Errorf("decode parameters: %w", err)
	}
	p.Parameters = p.Parameters.Clamped()
	p.Enabled = enabled != 0
	if ts, err := time.Parse(time.RFC3339, updated); err == nil {
		p.UpdatedAt = ts
	}
	return p, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
