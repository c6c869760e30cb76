package testsupport

import (
	"context"
	"sync"

	"qween/internal/beauty"
	"qween/internal/camera"
	"qween/internal/engine"
)

// FakeEngine records Create calls and hands out FakeSessions.
type FakeEngine struct {
	// Err, when set, is returned from Create.
	Err error
	// Gate, when set, blocks Create until it is closed or ctx ends.
	Gate chan struct{}
	// AutoReady makes new sessions emit created and ready immediately.
	AutoReady bool
	// Output is the stream new sessions return from Output.
	Output engine.MediaStream

	mu       sync.Mutex
	configs  []engine.Config
	sessions []*FakeSession
	created  chan *FakeSession
}

// NewFakeEngine returns an engine whose sessions report a default output.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{
		Output:  engine.MediaStream{ID: "fake-output", Width: 1280, Height: 720},
		created: make(chan *FakeSession, 16),
	}
}

// Create implements engine.Engine.
func (e *FakeEngine) Create(ctx context.Context, cfg engine.Config) (engine.Session, error) {
	e.mu.Lock()
	e.configs = append(e.configs, cfg)
	gate := e.Gate
	e.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if e.Err != nil {
		return nil, e.Err
	}

	sess := NewFakeSession(e.Output)
	e.mu.Lock()
	e.sessions = append(e.sessions, sess)
	e.mu.Unlock()

	if e.AutoReady {
		sess.Emit(engine.Event{Kind: engine.EventCreated})
		sess.Emit(engine.Event{Kind: engine.EventReady})
	}
	e.created <- sess
	return sess, nil
}

// Created returns the channel receiving every session handed out.
func (e *FakeEngine) Created() <-chan *FakeSession { return e.created }

// Configs returns the configs passed to Create.
func (e *FakeEngine) Configs() []engine.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]engine.Config(nil), e.configs...)
}

// Sessions returns the sessions handed out so far.
func (e *FakeEngine) Sessions() []*FakeSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*FakeSession(nil), e.sessions...)
}

// FakeSession is a scriptable engine.Session.
type FakeSession struct {
	// OutputErr, when set, is returned from Output.
	OutputErr error

	// OutputGate, when set, holds Output until it is closed or ctx ends.
	OutputGate chan struct{}

	output        engine.MediaStream
	events        chan engine.Event
	outputEntered chan struct{}

	mu     sync.Mutex
	pushes []beauty.Effective
	closed bool
}

// NewFakeSession returns a session that answers Output with output.
func NewFakeSession(output engine.MediaStream) *FakeSession {
	return &FakeSession{output: output, events: make(chan engine.Event, 16), outputEntered: make(chan struct{}, 1)}
}

// Emit delivers ev unless the session is closed.
func (s *FakeSession) Emit(ev engine.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.events <- ev
}

// End closes the event stream, as when the runtime goes away.
func (s *FakeSession) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

// Events implements engine.Session.
func (s *FakeSession) Events() <-chan engine.Event { return s.events }

// OutputEntered is signalled each time Output is called.
func (s *FakeSession) OutputEntered() <-chan struct{} { return s.outputEntered }

// Output implements engine.Session.
func (s *FakeSession) Output(ctx context.Context) (engine.MediaStream, error) {
	select {
	case s.outputEntered <- struct{}{}:
	default:
	}
	if s.OutputGate != nil {
		select {
		case <-s.OutputGate:
		case <-ctx.Done():
			return engine.MediaStream{}, ctx.Err()
		}
	}
	if s.OutputErr != nil {
		return engine.MediaStream{}, s.OutputErr
	}
	return s.output, nil
}

// SetBeautify implements engine.Session.
func (s *FakeSession) SetBeautify(values beauty.Effective) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushes = append(s.pushes, values)
}

// Close implements engine.Session.
func (s *FakeSession) Close() error {
	s.End()
	return nil
}

// Closed reports whether the event stream has been closed.
func (s *FakeSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Pushes returns every value passed to SetBeautify.
func (s *FakeSession) Pushes() []beauty.Effective {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]beauty.Effective(nil), s.pushes...)
}

// FakeNegotiator returns a fixed profile and counts calls.
type FakeNegotiator struct {
	Profile camera.Profile

	mu    sync.Mutex
	calls int
}

// Negotiate implements session.Negotiator.
func (n *FakeNegotiator) Negotiate(context.Context) camera.Profile {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return n.Profile
}

// Calls returns how many times Negotiate ran.
func (n *FakeNegotiator) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}
