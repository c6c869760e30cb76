package presets

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// A writer holding the database lock makes concurrent writes fail with
// SQLITE_BUSY; those are retried with doubling backoff.
const (
	lockedWriteAttempts = 5
	lockedWriteDelay    = 10 * time.Millisecond
	lockedWriteMaxDelay = 200 * time.Millisecond
)

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// databaseLocked reports whether err is SQLITE_BUSY, including extended
// busy codes.
func databaseLocked(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_BUSY
}

// exec runs a write statement, retrying while the database is locked.
func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ctxOrBackground(ctx)
	delay := lockedWriteDelay
	for attempt := 1; ; attempt++ {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err == nil || !databaseLocked(err) || attempt == lockedWriteAttempts {
			return res, err
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
		delay = min(delay*2, lockedWriteMaxDelay)
	}
}
