package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"qween/internal/auth"
	"qween/internal/beauty"
	"qween/internal/camera"
	"qween/internal/config"
	"qween/internal/engine"
	"qween/internal/logging"
)

const defaultOutputTimeout = 10 * time.Second

// Negotiator picks the camera profile. It must not fail.
type Negotiator interface {
	Negotiate(ctx context.Context) camera.Profile
}

// Presenter receives the processed output once the session is ready.
type Presenter interface {
	Present(sessionID string, stream engine.MediaStream)
}

// Options wires a Controller.
type Options struct {
	Credentials config.Credentials
	Negotiator  Negotiator
	Engine      engine.Engine
	Mirror      bool
	Loading     engine.LoadingConfig
	// Beautify returns the effective values at construction time.
	Beautify  func() beauty.Effective
	Presenter Presenter
	// OnTransition is called outside the controller lock after every state change.
	OnTransition  func(Status)
	OutputTimeout time.Duration
	Logger        *slog.Logger
	Tracer        trace.Tracer
	Now           func() time.Time
}

// Controller owns the lifecycle of one mirror session.
type Controller struct {
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer

	mu         sync.Mutex
	latched    bool
	generation uint64
	status     Status
	session    engine.Session
	cancel     context.CancelFunc
	done       chan struct{}
	signaled   bool

	// readyObserved is set once the engine reported ready for the current
	// generation; errors after that point are diagnostics, not failures.
	readyObserved     bool
	pendingDiagnostic string
}

// New returns an idle controller.
func New(opts Options) *Controller {
	if opts.OutputTimeout <= 0 {
		opts.OutputTimeout = defaultOutputTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Beautify == nil {
		opts.Beautify = func() beauty.Effective { return beauty.DefaultParameters().Effective(true) }
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("qween/session")
	}
	return &Controller{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "session"),
		tracer: tracer,
		status: Status{State: StateIdle},
	}
}

// Start begins initialization and returns immediately. It is a no-op while
// the controller is latched by an earlier Start.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.latched {
		state := c.status.State
		c.mu.Unlock()
		c.logger.Debug("start ignored; session already started",
			logging.String(logging.FieldState, string(state)),
		)
		return
	}

	c.latched = true
	c.generation++
	gen := c.generation
	id := uuid.NewString()
	c.done = make(chan struct{})
	c.signaled = false
	c.readyObserved = false
	c.pendingDiagnostic = ""
	c.status = Status{
		State:      StateInitializing,
		Loading:    true,
		SessionID:  id,
		Generation: gen,
		StartedAt:  c.opts.Now(),
	}
	initializing := c.status

	if !c.opts.Credentials.Complete() {
		c.failLocked(FailureConfiguration, ReasonMissingCredentials)
		failed := c.status
		c.mu.Unlock()

		c.notify(initializing)
		logging.WarnWithContext(c.logger, "session failed: credentials incomplete", "session_failed",
			logging.String(logging.FieldSessionID, id),
			logging.Any("missing", c.opts.Credentials.Missing()),
			logging.String(logging.FieldErrorHint, "set QWEEN_APP_ID, QWEEN_LICENSE_KEY and QWEEN_SECRET_KEY or the [credentials] section"),
			logging.String(logging.FieldImpact, "mirror shows no camera"),
		)
		c.notify(failed)
		return
	}

	initCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	initCtx = logging.WithSessionID(initCtx, id)
	c.cancel = cancel
	c.mu.Unlock()

	c.logger.Info("session initializing",
		logging.String(logging.FieldEventType, "session_initializing"),
		logging.String(logging.FieldSessionID, id),
	)
	c.notify(initializing)
	go c.initialize(initCtx, gen, id)
}

// Stop tears the session down and returns the controller to Idle. Results of
// the stopped attempt that arrive later are discarded. Stop is safe from any
// state.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.latched && c.status.State == StateIdle {
		c.mu.Unlock()
		return
	}
	c.latched = false
	c.generation++
	sess := c.session
	cancel := c.cancel
	previous := c.status
	c.session = nil
	c.cancel = nil
	c.readyObserved = false
	c.pendingDiagnostic = ""
	c.status = Status{State: StateIdle, Generation: c.generation}
	c.signalLocked()
	idle := c.status
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sess != nil {
		if err := sess.Close(); err != nil {
			c.logger.Debug("engine session close failed", logging.Error(err))
		}
	}
	c.logger.Info("session stopped",
		logging.String(logging.FieldEventType, "session_stopped"),
		logging.String(logging.FieldSessionID, previous.SessionID),
		logging.String("previous_state", string(previous.State)),
	)
	c.notify(idle)
}

// Wait blocks until the current attempt reaches Ready or Failed, Stop is
// called, or ctx ends.
func (c *Controller) Wait(ctx context.Context) (Status, error) {
	c.mu.Lock()
	done := c.done
	status := c.status
	c.mu.Unlock()

	if done == nil || status.State != StateInitializing {
		return status, nil
	}
	select {
	case <-done:
		return c.Status(), nil
	case <-ctx.Done():
		return c.Status(), ctx.Err()
	}
}

// Status returns a snapshot.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// ActiveSession returns the engine session while the controller is Ready.
func (c *Controller) ActiveSession() (engine.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status.State != StateReady || c.session == nil {
		return nil, false
	}
	return c.session, true
}

// ReportRuntimeError records an engine error observed outside the event
// stream. It is handled like an error event.
func (c *Controller) ReportRuntimeError(e *engine.Error) {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()
	c.handleError(gen, e, classifyRuntime)
}

// ReportCameraRemoved records that the capture device went away. Before
// Ready the session fails with the no-camera reason; afterwards it becomes a
// diagnostic.
func (c *Controller) ReportCameraRemoved(device string) {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()
	c.handleError(gen, &engine.Error{
		Name:        "NotFoundError",
		Message:     "camera removed",
		Environment: device,
	}, classifyCameraRemoved)
}

func (c *Controller) initialize(ctx context.Context, gen uint64, id string) {
	ctx, span := c.tracer.Start(ctx, "session.start",
		trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	profile := c.negotiate(ctx)
	if !c.setProfile(gen, profile) {
		return
	}

	signer := auth.NewSigner(c.opts.Credentials.AppID, c.opts.Credentials.SecretKey)
	cfg := engine.Config{
		Auth:       signer.Sign,
		AppID:      c.opts.Credentials.AppID,
		LicenseKey: c.opts.Credentials.LicenseKey,
		Camera:     engine.CameraConfig{Width: profile.Width, Height: profile.Height, Mirror: c.opts.Mirror},
		Loading:    c.opts.Loading,
		Beautify:   c.opts.Beautify(),
	}

	sess, err := c.create(ctx, cfg)
	if err != nil {
		span.SetStatus(codes.Error, "engine construction failed")
		kind, reason := classifyConstruction(err)
		c.fail(gen, kind, reason, err)
		return
	}
	if !c.attach(gen, sess) {
		c.logger.Debug("discarding engine session created after teardown")
		_ = sess.Close()
		return
	}

	c.observe(ctx, gen, sess)
}

func (c *Controller) negotiate(ctx context.Context) camera.Profile {
	ctx, span := c.tracer.Start(ctx, "camera.negotiate")
	defer span.End()

	var profile camera.Profile
	if c.opts.Negotiator != nil {
		profile = c.opts.Negotiator.Negotiate(ctx)
	}
	if profile.Width <= 0 || profile.Height <= 0 {
		profile = camera.FallbackProfile()
	}
	span.SetAttributes(
		attribute.Int("camera.width", profile.Width),
		attribute.Int("camera.height", profile.Height),
	)
	return profile
}

func (c *Controller) create(ctx context.Context, cfg engine.Config) (engine.Session, error) {
	ctx, span := c.tracer.Start(ctx, "engine.create")
	defer span.End()

	if c.opts.Engine == nil {
		err := errors.New("no effect engine configured")
		span.RecordError(err)
		return nil, err
	}
	sess, err := c.opts.Engine.Create(ctx, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return sess, nil
}

func (c *Controller) observe(ctx context.Context, gen uint64, sess engine.Session) {
	for ev := range sess.Events() {
		if !c.current(gen) {
			return
		}
		switch ev.Kind {
		case engine.EventCreated:
			c.logger.Info("engine session created",
				logging.String(logging.FieldEventType, "engine_created"),
				logging.String(logging.FieldSessionID, c.Status().SessionID),
			)
		case engine.EventReady:
			c.handleReady(ctx, gen, sess)
		case engine.EventError:
			c.handleError(gen, ev.Err, classifyRuntime)
		default:
			c.logger.Debug("ignoring unknown engine event", logging.String("kind", string(ev.Kind)))
		}
	}

	if !c.current(gen) {
		return
	}
	if c.Status().State == StateInitializing {
		err := fmt.Errorf("%w before ready", engine.ErrClosed)
		c.fail(gen, FailureConstruction, initializationFailed(err), err)
		return
	}
	c.diagnose(gen, "engine session ended")
}

func (c *Controller) handleReady(ctx context.Context, gen uint64, sess engine.Session) {
	c.mu.Lock()
	if gen != c.generation || c.status.State != StateInitializing || c.readyObserved {
		c.mu.Unlock()
		c.logger.Debug("ignoring ready after terminal state")
		return
	}
	c.readyObserved = true
	c.mu.Unlock()

	outCtx, cancel := context.WithTimeout(ctx, c.opts.OutputTimeout)
	stream, err := sess.Output(outCtx)
	cancel()
	if err != nil {
		c.failAfterReady(gen, FailureConstruction, initializationFailed(err), err)
		return
	}

	c.mu.Lock()
	if gen != c.generation || c.status.State != StateInitializing {
		c.mu.Unlock()
		return
	}
	c.status.State = StateReady
	c.status.Loading = false
	c.status.Output = &stream
	c.status.SettledAt = c.opts.Now()
	c.status.Diagnostic = c.pendingDiagnostic
	c.pendingDiagnostic = ""
	c.signalLocked()
	ready := c.status
	c.mu.Unlock()

	if c.opts.Presenter != nil {
		c.opts.Presenter.Present(ready.SessionID, stream)
	}
	c.logger.Info("session ready",
		logging.String(logging.FieldEventType, "session_ready"),
		logging.String(logging.FieldSessionID, ready.SessionID),
		logging.String("profile", ready.Profile.String()),
		logging.String("output", stream.ID),
	)
	c.notify(ready)
}

func (c *Controller) handleError(gen uint64, e *engine.Error, classify func(*engine.Error) (FailureKind, string)) {
	if e == nil {
		e = &engine.Error{Message: "unspecified runtime error"}
	}
	c.mu.Lock()
	state := c.status.State
	deferred := gen == c.generation && state == StateInitializing && c.readyObserved
	if deferred {
		c.pendingDiagnostic = runtimeFailed(e)
	}
	c.mu.Unlock()

	switch {
	case deferred:
		c.logger.Debug("engine error while output is attached; kept as diagnostic",
			logging.String("diagnostic", runtimeFailed(e)),
		)
	case state == StateInitializing:
		kind, reason := classify(e)
		c.fail(gen, kind, reason, e)
	case state == StateReady:
		c.diagnose(gen, runtimeFailed(e))
	default:
		c.logger.Debug("ignoring engine error outside an active session",
			logging.String(logging.FieldState, string(state)),
		)
	}
}

// fail moves an initializing session to Failed unless ready was already
// observed for it.
func (c *Controller) fail(gen uint64, kind FailureKind, reason string, cause error) {
	c.settleFailure(gen, kind, reason, cause, false)
}

// failAfterReady is used when attaching the output fails after ready.
func (c *Controller) failAfterReady(gen uint64, kind FailureKind, reason string, cause error) {
	c.settleFailure(gen, kind, reason, cause, true)
}

func (c *Controller) settleFailure(gen uint64, kind FailureKind, reason string, cause error, afterReady bool) {
	c.mu.Lock()
	if gen != c.generation || c.status.State != StateInitializing || (c.readyObserved && !afterReady) {
		c.mu.Unlock()
		return
	}
	c.pendingDiagnostic = ""
	c.failLocked(kind, reason)
	failed := c.status
	c.mu.Unlock()

	attrs := []logging.Attr{
		logging.String(logging.FieldSessionID, failed.SessionID),
		logging.String("reason", reason),
		logging.String("kind", string(kind)),
		logging.String(logging.FieldImpact, "mirror shows no camera until remounted"),
	}
	if cause != nil {
		attrs = append(attrs, logging.Error(cause))
	}
	logging.ErrorWithContext(c.logger, "session failed", "session_failed", attrs...)
	c.notify(failed)
}

func (c *Controller) failLocked(kind FailureKind, reason string) {
	c.status.State = StateFailed
	c.status.Reason = reason
	c.status.Kind = kind
	c.status.Loading = false
	c.status.SettledAt = c.opts.Now()
	c.signalLocked()
}

func (c *Controller) diagnose(gen uint64, msg string) {
	c.mu.Lock()
	if gen != c.generation || c.status.State != StateReady {
		c.mu.Unlock()
		return
	}
	c.status.Diagnostic = msg
	status := c.status
	c.mu.Unlock()

	logging.WarnWithContext(c.logger, "engine reported an error after ready", "session_diagnostic",
		logging.String(logging.FieldSessionID, status.SessionID),
		logging.String("diagnostic", msg),
		logging.String(logging.FieldImpact, "effects may stop updating"),
		logging.String(logging.FieldErrorHint, "remount the mirror if the picture froze"),
	)
	c.notify(status)
}

func (c *Controller) setProfile(gen uint64, profile camera.Profile) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	c.status.Profile = profile
	return true
}

func (c *Controller) attach(gen uint64, sess engine.Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.status.State != StateInitializing {
		return false
	}
	c.session = sess
	return true
}

func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation
}

func (c *Controller) signalLocked() {
	if c.done != nil && !c.signaled {
		close(c.done)
		c.signaled = true
	}
}

func (c *Controller) notify(status Status) {
	if c.opts.OnTransition != nil {
		c.opts.OnTransition(status)
	}
}
