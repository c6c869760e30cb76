package mirror

import (
	"context"
	"testing"
	"time"

	"qween/internal/engine"
	"qween/internal/session"
	"qween/internal/testsupport"
)

func TestUnmountAfterReadyStopsForwarding(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	eng := testsupport.NewFakeEngine()
	eng.AutoReady = true
	m, err := New(Options{Config: cfg, Engine: eng, Negotiator: &testsupport.FakeNegotiator{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if status, err := m.Wait(ctx); err != nil || status.State != session.StateReady {
		t.Fatalf("Wait = %+v, %v", status, err)
	}
	sessions := eng.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("expected one engine session, got %d", len(sessions))
	}
	old := sessions[0]
	if _, err := m.Update("whiten", 60); err != nil {
		t.Fatalf("Update: %v", err)
	}
	before := len(old.Pushes())
	if before != 1 {
		t.Fatalf("expected one push while ready, got %d", before)
	}

	m.Unmount()
	if !old.Closed() {
		t.Fatal("unmount must close the engine session")
	}
	old.Emit(engine.Event{Kind: engine.EventReady})
	old.Emit(engine.Event{Kind: engine.EventError, Err: &engine.Error{Message: "late", Environment: "kiosk"}})
	time.Sleep(20 * time.Millisecond)

	if _, err := m.Update("whiten", 70); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := len(old.Pushes()); got != before {
		t.Fatalf("torn-down session received %d pushes after unmount", got-before)
	}
	if _, ok := m.ctrl.ActiveSession(); ok {
		t.Fatal("no session may be active after unmount")
	}
	status := m.Status()
	if status.Session.State != session.StateIdle || status.Session.Diagnostic != "" {
		t.Fatalf("expected clean idle session, got %+v", status.Session)
	}
	if status.Bridge.Skipped == 0 {
		t.Fatal("change after unmount should be counted as skipped")
	}
}
