package session_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"qween/internal/beauty"
	"qween/internal/camera"
	"qween/internal/config"
	"qween/internal/engine"
	"qween/internal/session"
	"qween/internal/testsupport"
)

var validCredentials = config.Credentials{AppID: "app", LicenseKey: "license", SecretKey: "secret"}

type recordingPresenter struct {
	mu      sync.Mutex
	streams []engine.MediaStream
}

func (p *recordingPresenter) Present(_ string, stream engine.MediaStream) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.streams = append(p.streams, stream)
}

func (p *recordingPresenter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.streams)
}

type transitions struct {
	mu     sync.Mutex
	states []session.State
}

func (tr *transitions) record(s session.Status) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.states = append(tr.states, s.State)
}

func (tr *transitions) terminalCount() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	n := 0
	for _, s := range tr.states {
		if s.Terminal() {
			n++
		}
	}
	return n
}

func newController(eng engine.Engine, neg session.Negotiator, mutate func(*session.Options)) (*session.Controller, *recordingPresenter, *transitions) {
	presenter := &recordingPresenter{}
	tr := &transitions{}
	opts := session.Options{
		Credentials:   validCredentials,
		Negotiator:    neg,
		Engine:        eng,
		Mirror:        true,
		Loading:       engine.LoadingConfig{Enabled: true, LineWidth: 4},
		Presenter:     presenter,
		OnTransition:  tr.record,
		OutputTimeout: time.Second,
	}
	if mutate != nil {
		mutate(&opts)
	}
	return session.New(opts), presenter, tr
}

func waitTerminal(t *testing.T, c *session.Controller) session.Status {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	status, err := c.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v (state %s)", err, status.State)
	}
	return status
}

func nextSession(t *testing.T, eng *testsupport.FakeEngine) *testsupport.FakeSession {
	t.Helper()
	select {
	case s := <-eng.Created():
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("engine session was never created")
	}
	return nil
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestStartReachesReady(t *testing.T) {
	eng := testsupport.NewFakeEngine()
	eng.AutoReady = true
	neg := &testsupport.FakeNegotiator{Profile: camera.Profile{Width: 1280, Height: 720}}
	store := beauty.NewStore()
	c, presenter, tr := newController(eng, neg, func(o *session.Options) { o.Beautify = store.Effective })

	c.Start(context.Background())
	status := waitTerminal(t, c)

	if status.State != session.StateReady {
		t.Fatalf("expected ready, got %s (%s)", status.State, status.Reason)
	}
	if status.Loading {
		t.Fatal("loading must clear on ready")
	}
	if status.Profile != (camera.Profile{Width: 1280, Height: 720}) {
		t.Fatalf("unexpected profile %s", status.Profile)
	}
	if status.Output == nil || status.Output.ID != "fake-output" {
		t.Fatalf("expected output stream in status, got %+v", status.Output)
	}
	if status.SessionID == "" {
		t.Fatal("expected session id")
	}
	if presenter.count() != 1 {
		t.Fatalf("expected one presentation, got %d", presenter.count())
	}
	if tr.terminalCount() != 1 {
		t.Fatalf("expected exactly one terminal transition, got %d", tr.terminalCount())
	}

	configs := eng.Configs()
	if len(configs) != 1 {
		t.Fatalf("expected one construction, got %d", len(configs))
	}
	cfg := configs[0]
	if cfg.Camera.Width != 1280 || cfg.Camera.Height != 720 || !cfg.Camera.Mirror {
		t.Fatalf("unexpected camera config %+v", cfg.Camera)
	}
	if !cfg.Loading.Enabled || cfg.Loading.LineWidth != 4 {
		t.Fatalf("unexpected loading config %+v", cfg.Loading)
	}
	if cfg.Beautify != store.Effective() {
		t.Fatalf("expected initial beautify from store, got %+v", cfg.Beautify)
	}
	if cfg.AppID != "app" || cfg.LicenseKey != "license" {
		t.Fatalf("unexpected credentials in config: %+v", cfg)
	}
	sig := cfg.Auth()
	if len(sig.Signature) != 64 || sig.Timestamp == 0 {
		t.Fatalf("unexpected signature %+v", sig)
	}

	active, ok := c.ActiveSession()
	if !ok || active == nil {
		t.Fatal("expected active session while ready")
	}
}

func TestMissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds config.Credentials
	}{
		{"no app id", config.Credentials{LicenseKey: "l", SecretKey: "s"}},
		{"no license", config.Credentials{AppID: "a", SecretKey: "s"}},
		{"no secret", config.Credentials{AppID: "a", LicenseKey: "l"}},
		{"blank values", config.Credentials{AppID: " ", LicenseKey: " ", SecretKey: " "}},
		{"nothing", config.Credentials{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := testsupport.NewFakeEngine()
			neg := &testsupport.FakeNegotiator{Profile: camera.IdealProfile()}
			c, _, tr := newController(eng, neg, func(o *session.Options) { o.Credentials = tt.creds })

			c.Start(context.Background())
			status := c.Status()

			if status.State != session.StateFailed || status.Reason != "missing credentials" {
				t.Fatalf("expected missing credentials failure, got %s %q", status.State, status.Reason)
			}
			if status.Kind != session.FailureConfiguration {
				t.Fatalf("unexpected kind %q", status.Kind)
			}
			if neg.Calls() != 0 {
				t.Fatal("camera must not be probed without credentials")
			}
			if len(eng.Configs()) != 0 {
				t.Fatal("engine must not be constructed without credentials")
			}
			if tr.terminalCount() != 1 {
				t.Fatalf("expected one terminal transition, got %d", tr.terminalCount())
			}
		})
	}
}

func TestDoubleStartConstructsOnce(t *testing.T) {
	eng := testsupport.NewFakeEngine()
	eng.Gate = make(chan struct{})
	eng.AutoReady = true
	neg := &testsupport.FakeNegotiator{Profile: camera.IdealProfile()}
	c, _, _ := newController(eng, neg, nil)

	c.Start(context.Background())
	c.Start(context.Background())
	if got := c.Status(); got.State != session.StateInitializing || !got.Loading {
		t.Fatalf("expected initializing with loading, got %+v", got)
	}
	close(eng.Gate)

	if status := waitTerminal(t, c); status.State != session.StateReady {
		t.Fatalf("expected ready, got %s", status.State)
	}
	c.Start(context.Background())

	if n := len(eng.Configs()); n != 1 {
		t.Fatalf("expected a single construction, got %d", n)
	}
	if neg.Calls() != 1 {
		t.Fatalf("expected a single negotiation, got %d", neg.Calls())
	}
}

func TestConstructionFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason string
		kind   session.FailureKind
	}{
		{"permission", fmt.Errorf("open: %w", camera.ErrPermissionDenied), "camera access denied", session.FailureCamera},
		{"no device", camera.ErrNoDevice, "no camera found", session.FailureCamera},
		{"busy", camera.ErrDeviceBusy, "camera busy", session.FailureCamera},
		{"runtime name", &engine.Error{Name: "NotAllowedError", Message: "denied"}, "camera access denied", session.FailureCamera},
		{"other", errors.New("license rejected"), "initialization failed: license rejected", session.FailureConstruction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := testsupport.NewFakeEngine()
			eng.Err = tt.err
			c, _, tr := newController(eng, &testsupport.FakeNegotiator{}, nil)

			c.Start(context.Background())
			status := waitTerminal(t, c)

			if status.State != session.StateFailed || status.Reason != tt.reason || status.Kind != tt.kind {
				t.Fatalf("got %s %q %q, want failed %q %q", status.State, status.Reason, status.Kind, tt.reason, tt.kind)
			}
			if status.Loading {
				t.Fatal("loading must clear on failure")
			}
			if status.Profile != camera.FallbackProfile() {
				t.Fatalf("zero profile from negotiator should fall back, got %s", status.Profile)
			}
			if tr.terminalCount() != 1 {
				t.Fatalf("expected one terminal transition, got %d", tr.terminalCount())
			}
		})
	}
}

func TestRuntimeErrorBeforeReady(t *testing.T) {
	eng := testsupport.NewFakeEngine()
	c, presenter, tr := newController(eng, &testsupport.FakeNegotiator{Profile: camera.IdealProfile()}, nil)

	c.Start(context.Background())
	sess := nextSession(t, eng)
	sess.Emit(engine.Event{Kind: engine.EventCreated})
	sess.Emit(engine.Event{Kind: engine.EventError, Err: &engine.Error{Message: "license expired", Environment: "kiosk/1.0"}})

	status := waitTerminal(t, c)
	want := "AR engine error: license expired. Environment: kiosk/1.0"
	if status.State != session.StateFailed || status.Reason != want {
		t.Fatalf("got %s %q, want failed %q", status.State, status.Reason, want)
	}
	if status.Kind != session.FailureRuntime {
		t.Fatalf("unexpected kind %q", status.Kind)
	}

	sess.Emit(engine.Event{Kind: engine.EventReady})
	time.Sleep(20 * time.Millisecond)
	if got := c.Status(); got.State != session.StateFailed {
		t.Fatalf("late ready must not override failure, got %s", got.State)
	}
	if presenter.count() != 0 {
		t.Fatal("failed session must not be presented")
	}
	if tr.terminalCount() != 1 {
		t.Fatalf("expected exactly one terminal transition, got %d", tr.terminalCount())
	}
	if _, ok := c.ActiveSession(); ok {
		t.Fatal("failed controller must not expose an active session")
	}
}

func TestNamedRuntimeErrorKeepsEngineMessage(t *testing.T) {
	eng := testsupport.NewFakeEngine()
	c, _, _ := newController(eng, &testsupport.FakeNegotiator{Profile: camera.IdealProfile()}, nil)

	c.Start(context.Background())
	sess := nextSession(t, eng)
	sess.Emit(engine.Event{Kind: engine.EventError, Err: &engine.Error{
		Name:        "NotAllowedError",
		Message:     "license domain mismatch",
		Environment: "kiosk/1.0",
	}})

	status := waitTerminal(t, c)
	want := "AR engine error: license domain mismatch. Environment: kiosk/1.0"
	if status.State != session.StateFailed || status.Reason != want {
		t.Fatalf("got %s %q, want failed %q", status.State, status.Reason, want)
	}
	if status.Kind != session.FailureRuntime {
		t.Fatalf("expected runtime kind, got %q", status.Kind)
	}
}

func TestCameraRemovedBeforeReady(t *testing.T) {
	eng := testsupport.NewFakeEngine()
	c, presenter, tr := newController(eng, &testsupport.FakeNegotiator{Profile: camera.IdealProfile()}, nil)

	c.Start(context.Background())
	nextSession(t, eng)
	c.ReportCameraRemoved("/dev/video0")

	status := waitTerminal(t, c)
	if status.State != session.StateFailed || status.Reason != "no camera found" {
		t.Fatalf("got %s %q", status.State, status.Reason)
	}
	if status.Kind != session.FailureCamera {
		t.Fatalf("expected camera kind, got %q", status.Kind)
	}
	if presenter.count() != 0 || tr.terminalCount() != 1 {
		t.Fatalf("presented=%d terminal=%d", presenter.count(), tr.terminalCount())
	}
}

func TestErrorWhileAttachingOutputDoesNotFail(t *testing.T) {
	eng := testsupport.NewFakeEngine()
	c, presenter, tr := newController(eng, &testsupport.FakeNegotiator{Profile: camera.IdealProfile()}, nil)

	c.Start(context.Background())
	sess := nextSession(t, eng)
	gate := make(chan struct{})
	sess.OutputGate = gate
	sess.Emit(engine.Event{Kind: engine.EventReady})

	select {
	case <-sess.OutputEntered():
	case <-time.After(2 * time.Second):
		t.Fatal("output was never requested")
	}
	c.ReportRuntimeError(&engine.Error{Message: "usb reset", Environment: "/dev/video0"})
	if got := c.Status().State; got != session.StateInitializing {
		t.Fatalf("error after ready must not settle the session, got %s", got)
	}
	close(gate)

	status := waitTerminal(t, c)
	if status.State != session.StateReady {
		t.Fatalf("expected ready, got %s %q", status.State, status.Reason)
	}
	if status.Diagnostic != "AR engine error: usb reset. Environment: /dev/video0" {
		t.Fatalf("unexpected diagnostic %q", status.Diagnostic)
	}
	if presenter.count() != 1 {
		t.Fatalf("expected one presentation, got %d", presenter.count())
	}
	if tr.terminalCount() != 1 {
		t.Fatalf("expected one terminal transition, got %d", tr.terminalCount())
	}
}

func TestErrorAfterReadyIsDiagnostic(t *testing.T) {
	eng := testsupport.NewFakeEngine()
	eng.AutoReady = true
	c, _, tr := newController(eng, &testsupport.FakeNegotiator{Profile: camera.IdealProfile()}, nil)

	c.Start(context.Background())
	sess := nextSession(t, eng)
	waitTerminal(t, c)

	sess.Emit(engine.Event{Kind: engine.EventError, Err: &engine.Error{Message: "frame drop", Environment: "kiosk"}})
	eventually(t, func() bool { return c.Status().Diagnostic != "" }, "expected diagnostic after post-ready error")

	status := c.Status()
	if status.State != session.StateReady {
		t.Fatalf("post-ready error must not change state, got %s", status.State)
	}
	if status.Diagnostic != "AR engine error: frame drop. Environment: kiosk" {
		t.Fatalf("unexpected diagnostic %q", status.Diagnostic)
	}

	c.ReportRuntimeError(&engine.Error{Message: "camera removed", Environment: "/dev/video0"})
	if got := c.Status().Diagnostic; !strings.Contains(got, "camera removed") {
		t.Fatalf("expected reported error as diagnostic, got %q", got)
	}
	if tr.terminalCount() != 1 {
		t.Fatalf("expected one terminal transition, got %d", tr.terminalCount())
	}
}

func TestOutputFailure(t *testing.T) {
	eng := testsupport.NewFakeEngine()
	c, presenter, _ := newController(eng, &testsupport.FakeNegotiator{Profile: camera.IdealProfile()}, nil)

	c.Start(context.Background())
	sess := nextSession(t, eng)
	sess.OutputErr = errors.New("no track")
	sess.Emit(engine.Event{Kind: engine.EventReady})

	status := waitTerminal(t, c)
	if status.State != session.StateFailed || status.Reason != "initialization failed: no track" {
		t.Fatalf("got %s %q", status.State, status.Reason)
	}
	if presenter.count() != 0 {
		t.Fatal("presenter must not run when output retrieval fails")
	}
}

func TestEventStreamEndsBeforeReady(t *testing.T) {
	eng := testsupport.NewFakeEngine()
	c, _, _ := newController(eng, &testsupport.FakeNegotiator{Profile: camera.IdealProfile()}, nil)

	c.Start(context.Background())
	nextSession(t, eng).End()

	status := waitTerminal(t, c)
	if status.State != session.StateFailed || !strings.HasPrefix(status.Reason, "initialization failed: ") {
		t.Fatalf("got %s %q", status.State, status.Reason)
	}
}

func TestStopDiscardsLateSession(t *testing.T) {
	eng := testsupport.NewFakeEngine()
	eng.Gate = make(chan struct{})
	eng.AutoReady = true
	c, presenter, _ := newController(eng, &testsupport.FakeNegotiator{Profile: camera.IdealProfile()}, nil)

	c.Start(context.Background())
	c.Stop()
	if got := c.Status(); got.State != session.StateIdle {
		t.Fatalf("expected idle after stop, got %s", got.State)
	}

	close(eng.Gate)
	select {
	case sess := <-eng.Created():
		eventually(t, sess.Closed, "late session should be closed")
	case <-time.After(200 * time.Millisecond):
		// Create observed the cancelled context and never produced a session.
	}

	time.Sleep(20 * time.Millisecond)
	if got := c.Status(); got.State != session.StateIdle {
		t.Fatalf("late results must not resurrect the session, got %s", got.State)
	}
	if presenter.count() != 0 {
		t.Fatal("late session must not be presented")
	}
	if _, ok := c.ActiveSession(); ok {
		t.Fatal("idle controller must not expose an active session")
	}
}

func TestStopReleasesSessionAndAllowsRestart(t *testing.T) {
	eng := testsupport.NewFakeEngine()
	eng.AutoReady = true
	c, _, _ := newController(eng, &testsupport.FakeNegotiator{Profile: camera.IdealProfile()}, nil)

	c.Stop()

	c.Start(context.Background())
	first := waitTerminal(t, c)
	sess := nextSession(t, eng)

	c.Stop()
	if !sess.Closed() {
		t.Fatal("stop must close the engine session")
	}
	c.Stop()

	c.Start(context.Background())
	second := waitTerminal(t, c)
	if second.State != session.StateReady {
		t.Fatalf("expected ready after remount, got %s", second.State)
	}
	if second.SessionID == first.SessionID || second.Generation <= first.Generation {
		t.Fatalf("expected a fresh session identity: first=%+v second=%+v", first, second)
	}
	if len(eng.Configs()) != 2 {
		t.Fatalf("expected two constructions, got %d", len(eng.Configs()))
	}
}

func TestWaitHonoursContext(t *testing.T) {
	eng := testsupport.NewFakeEngine()
	eng.Gate = make(chan struct{})
	c, _, _ := newController(eng, &testsupport.FakeNegotiator{Profile: camera.IdealProfile()}, nil)
	defer c.Stop()

	c.Start(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	status, err := c.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if status.State != session.StateInitializing {
		t.Fatalf("expected initializing, got %s", status.State)
	}
}

func TestWaitWhenIdle(t *testing.T) {
	c, _, _ := newController(testsupport.NewFakeEngine(), nil, nil)
	status, err := c.Wait(context.Background())
	if err != nil || status.State != session.StateIdle {
		t.Fatalf("expected immediate idle status, got %s %v", status.State, err)
	}
}
