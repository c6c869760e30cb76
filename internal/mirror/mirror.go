package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"qween/internal/beauty"
	"qween/internal/camera"
	"qween/internal/config"
	"qween/internal/engine"
	"qween/internal/engine/wsengine"
	"qween/internal/logging"
	"qween/internal/presets"
	"qween/internal/session"
	"qween/internal/syncbridge"
)

// Options supplies collaborators. Nil fields get production defaults built
// from Config.
type Options struct {
	Config *config.Config
	Engine engine.Engine
	Prober camera.Prober
	// Negotiator, when set, replaces the prober-backed negotiator.
	Negotiator session.Negotiator
	Presets    *presets.Store
	Presenter  session.Presenter
	Logger     *slog.Logger
}

// Mirror coordinates one mirror view and enforces single-instance execution.
type Mirror struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *beauty.Store
	ctrl    *session.Controller
	bridge  *syncbridge.Bridge
	presets *presets.Store
	hotplug *camera.HotplugMonitor

	lockPath string
	lock     *flock.Flock

	mountMu     sync.Mutex
	running     atomic.Bool
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
}

// Status represents mirror runtime information.
type Status struct {
	Running      bool             `json:"running"`
	Session      session.Status   `json:"session"`
	Parameters   beauty.Snapshot  `json:"parameters"`
	Effective    beauty.Effective `json:"effective"`
	Bridge       syncbridge.Stats `json:"bridge"`
	Device       string           `json:"device"`
	Hotplug      bool             `json:"hotplug"`
	LockPath     string           `json:"lock_path"`
	PresetDBPath string           `json:"preset_db_path"`
	PID          int              `json:"pid"`
}

// New constructs a mirror with initialized dependencies.
func New(opts Options) (*Mirror, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("mirror requires config")
	}
	logger := logging.NewComponentLogger(opts.Logger, "mirror")

	prober := opts.Prober
	if prober == nil {
		prober = camera.NewV4L2Prober(cfg.Camera.Device, filepath.Join(cfg.Paths.StateDir, "locks"))
	}
	eng := opts.Engine
	if eng == nil {
		eng = wsengine.New(cfg.Engine.URL, opts.Logger,
			wsengine.WithHandshakeTimeout(time.Duration(cfg.Engine.HandshakeTimeoutSeconds)*time.Second))
	}
	presenter := opts.Presenter
	if presenter == nil {
		presenter = logPresenter{logger: logger}
	}

	m := &Mirror{
		cfg:      cfg,
		logger:   logger,
		store:    beauty.NewStore(),
		presets:  opts.Presets,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}

	negotiator := opts.Negotiator
	if negotiator == nil {
		negotiator = camera.NewNegotiator(prober, opts.Logger,
			camera.WithProfiles(
				camera.Profile{Width: cfg.Camera.IdealWidth, Height: cfg.Camera.IdealHeight},
				camera.Profile{Width: cfg.Camera.FallbackWidth, Height: cfg.Camera.FallbackHeight},
			),
			camera.WithProbeTimeout(time.Duration(cfg.Camera.ProbeTimeoutSeconds)*time.Second),
		)
	}
	m.ctrl = session.New(session.Options{
		Credentials: cfg.Credentials,
		Negotiator:  negotiator,
		Engine:      eng,
		Mirror:      cfg.Camera.Mirror,
		Loading:     engine.LoadingConfig{Enabled: cfg.Engine.LoadingEnabled, LineWidth: cfg.Engine.LoadingLineWidth},
		Beautify:    m.store.Effective,
		Presenter:   presenter,
		Logger:      opts.Logger,
	})
	m.bridge = syncbridge.New(m.ctrl, opts.Logger)

	if cfg.Camera.WatchHotplug {
		m.hotplug = camera.NewHotplugMonitor(cfg.Camera.Device, opts.Logger, m.cameraRemoved)
	}
	return m, nil
}

// Start acquires the single-instance lock, restores the last parameters and
// mounts the mirror view.
func (m *Mirror) Start(ctx context.Context) error {
	if m.running.Load() {
		return errors.New("mirror already running")
	}
	if err := m.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ok, err := m.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another qween daemon instance is already running")
	}

	m.ctx, m.cancel = context.WithCancel(ctx)
	m.restoreLast(m.ctx)
	m.unsubscribe = m.bridge.Attach(m.store)
	if err := m.hotplug.Start(m.ctx); err != nil {
		m.logger.Debug("hotplug monitor unavailable", logging.Error(err))
	}
	m.running.Store(true)
	m.Mount(m.ctx)

	m.logger.Info("qween mirror started",
		logging.String(logging.FieldEventType, "mirror_started"),
		logging.String("lock", m.lockPath),
		logging.String(logging.FieldDevice, m.cfg.Camera.Device),
	)
	return nil
}

// Stop unmounts, records the last parameters and releases the lock.
func (m *Mirror) Stop() {
	if !m.running.Load() {
		return
	}

	m.Unmount()
	m.hotplug.Stop()
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.saveLast(context.Background())
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if err := m.lock.Unlock(); err != nil {
		logging.WarnWithContext(m.logger, "failed to release mirror lock", "lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "the next daemon start may report a running instance"),
		)
	}
	m.ctx = nil
	m.running.Store(false)
	m.logger.Info("qween mirror stopped", logging.String(logging.FieldEventType, "mirror_stopped"))
}

// Close releases resources held by the mirror.
func (m *Mirror) Close() error {
	m.Stop()
	if m.presets != nil {
		return m.presets.Close()
	}
	return nil
}

// Mount starts a session for the view. It is a no-op while one is active.
func (m *Mirror) Mount(ctx context.Context) {
	m.mountMu.Lock()
	defer m.mountMu.Unlock()
	m.ctrl.Start(ctx)
}

// Unmount tears the active session down.
func (m *Mirror) Unmount() {
	m.mountMu.Lock()
	defer m.mountMu.Unlock()
	m.ctrl.Stop()
}

// Remount tears down and starts a fresh session, returning once it settles
// or ctx ends.
func (m *Mirror) Remount(ctx context.Context) (session.Status, error) {
	m.mountMu.Lock()
	m.ctrl.Stop()
	base := m.ctx
	if base == nil {
		base = context.WithoutCancel(ctx)
	}
	m.ctrl.Start(base)
	m.mountMu.Unlock()
	return m.ctrl.Wait(ctx)
}

// Wait blocks until the current session settles.
func (m *Mirror) Wait(ctx context.Context) (session.Status, error) {
	return m.ctrl.Wait(ctx)
}

// Status returns a snapshot of the mirror.
func (m *Mirror) Status() Status {
	status := Status{
		Running:    m.running.Load(),
		Session:    m.ctrl.Status(),
		Parameters: m.store.Snapshot(),
		Effective:  m.store.Effective(),
		Bridge:     m.bridge.Stats(),
		Device:     m.cfg.Camera.Device,
		Hotplug:    m.hotplug.Running(),
		LockPath:   m.lockPath,
		PID:        os.Getpid(),
	}
	if m.presets != nil {
		status.PresetDBPath = m.presets.Path()
	}
	return status
}

func (m *Mirror) cameraRemoved(device string) {
	m.ctrl.ReportCameraRemoved(device)
}

func (m *Mirror) restoreLast(ctx context.Context) {
	if m.presets == nil || !m.cfg.Beauty.RestoreLast {
		return
	}
	snap, ok, err := m.presets.LoadLast(ctx)
	if err != nil {
		logging.WarnWithContext(m.logger, "failed to restore last parameters", "params_restore_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "mirror starts from default parameters"),
		)
		return
	}
	if !ok {
		return
	}
	m.store.Restore(snap.Parameters, snap.Enabled)
	m.logger.Info("restored last parameters",
		logging.String(logging.FieldEventType, "params_restored"),
		logging.Bool("enabled", snap.Enabled),
	)
}

func (m *Mirror) saveLast(ctx context.Context) {
	if m.presets == nil {
		return
	}
	if err := m.presets.SaveLast(ctx, m.store.Snapshot()); err != nil {
		logging.WarnWithContext(m.logger, "failed to record last parameters", "params_persist_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "next start uses older parameters"),
		)
	}
}

type logPresenter struct {
	logger *slog.Logger
}

func (p logPresenter) Present(sessionID string, stream engine.MediaStream) {
	p.logger.Info("presenting mirror output",
		logging.String(logging.FieldEventType, "output_presented"),
		logging.String(logging.FieldSessionID, sessionID),
		logging.String("stream", stream.ID),
		logging.String("url", stream.URL),
		logging.Int("width", stream.Width),
		logging.Int("height", stream.Height),
	)
}
