package presets

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// holdWriteLock opens a second connection to path and keeps the database
// write lock until the returned release function runs.
func holdWriteLock(t *testing.T, path string) func() {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	conn, err := db.Conn(context.Background())
	if err != nil {
		t.Fatalf("conn: %v", err)
	}
	if _, err := conn.ExecContext(context.Background(), "BEGIN IMMEDIATE"); err != nil {
		t.Fatalf("begin immediate: %v", err)
	}
	return func() {
		_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		_ = conn.Close()
	}
}

func impatientStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "presets.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	store.db.SetMaxOpenConns(1)
	if _, err := store.db.Exec("PRAGMA busy_timeout = 0"); err != nil {
		t.Fatalf("busy_timeout: %v", err)
	}
	return store
}

func TestDatabaseLocked(t *testing.T) {
	store := impatientStore(t)
	release := holdWriteLock(t, store.Path())
	defer release()

	_, err := store.db.Exec("DELETE FROM presets")
	if err == nil {
		t.Fatal("expected write to fail while another connection holds the lock")
	}
	if !databaseLocked(err) {
		t.Fatalf("expected busy error, got %v", err)
	}
	if databaseLocked(nil) {
		t.Fatal("nil is not a busy error")
	}
	if databaseLocked(errors.New("database is locked")) {
		t.Fatal("untyped errors are not treated as busy")
	}
}

func TestExecRetriesWhileLocked(t *testing.T) {
	store := impatientStore(t)
	release := holdWriteLock(t, store.Path())
	go func() {
		time.Sleep(25 * time.Millisecond)
		release()
	}()

	if _, err := store.exec(context.Background(),
		"INSERT INTO presets (name, params_json, enabled, updated_at) VALUES (?, ?, ?, ?)",
		"evening", "{}", 1, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		t.Fatalf("exec: %v", err)
	}
}

func TestExecStopsOnCancel(t *testing.T) {
	store := impatientStore(t)
	release := holdWriteLock(t, store.Path())
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.exec(ctx, "DELETE FROM presets"); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}
