// Package syncbridge forwards parameter changes to the live engine session.
package syncbridge

import (
	"log/slog"
	"sync/atomic"

	"qween/internal/beauty"
	"qween/internal/engine"
	"qween/internal/logging"
)

// Target exposes the engine session while it is ready.
type Target interface {
	ActiveSession() (engine.Session, bool)
}

// Stats counts bridge activity.
type Stats struct {
	Pushed  uint64 `json:"pushed"`
	Skipped uint64 `json:"skipped"`
}

// Bridge pushes every store change to the target's session when one is
// ready. Changes made while no session is ready are dropped, not queued; the
// next session starts from the store's values at construction.
type Bridge struct {
	target  Target
	logger  *slog.Logger
	pushed  atomic.Uint64
	skipped atomic.Uint64
}

// New returns a bridge for target.
func New(target Target, logger *slog.Logger) *Bridge {
	return &Bridge{target: target, logger: logging.NewComponentLogger(logger, "syncbridge")}
}

// Attach subscribes the bridge to store and returns the unsubscribe function.
func (b *Bridge) Attach(store *beauty.Store) func() {
	return store.Subscribe(b.Handle)
}

// Handle forwards one change.
func (b *Bridge) Handle(change beauty.Change) {
	values := change.Effective
	if change.Kind == beauty.ChangeReset {
		// Reset pushes the default look even while effects are disabled.
		values = beauty.DefaultParameters().Effective(true)
	}

	sess, ok := b.target.ActiveSession()
	if !ok {
		b.skipped.Add(1)
		b.logger.Debug("session not ready; change not forwarded",
			logging.String("change", string(change.Kind)),
		)
		return
	}
	sess.SetBeautify(values)
	b.pushed.Add(1)
	b.logger.Debug("beautify pushed",
		logging.String("change", string(change.Kind)),
		logging.String("key", string(change.Key)),
		logging.Bool("enabled", change.Enabled),
	)
}

// Stats returns push and skip counters.
func (b *Bridge) Stats() Stats {
	return Stats{Pushed: b.pushed.Load(), Skipped: b.skipped.Load()}
}
