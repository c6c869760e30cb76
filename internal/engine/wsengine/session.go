package wsengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"qween/internal/auth"
	"qween/internal/beauty"
	"qween/internal/engine"
	"qween/internal/logging"
)

const closeTimeout = 2 * time.Second

type session struct {
	conn   *websocket.Conn
	signer func() auth.Signature
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	events chan engine.Event
	ctrl   chan message
	wake   chan struct{}

	mu      sync.Mutex
	pending *beauty.Effective
	waiters map[string]chan message
	closed  bool
	once    sync.Once
}

func newSession(conn *websocket.Conn, signer func() auth.Signature, logger *slog.Logger) *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		conn:    conn,
		signer:  signer,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		events:  make(chan engine.Event, 16),
		ctrl:    make(chan message, 16),
		wake:    make(chan struct{}, 1),
		waiters: map[string]chan message{},
	}
}

func (s *session) start() {
	go s.readLoop()
	go s.writeLoop()
}

func (s *session) Events() <-chan engine.Event { return s.events }

// Output asks the runtime for its processed stream.
func (s *session) Output(ctx context.Context) (engine.MediaStream, error) {
	id := uuid.NewString()
	reply := make(chan message, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return engine.MediaStream{}, engine.ErrClosed
	}
	s.waiters[id] = reply
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.waiters, id)
		s.mu.Unlock()
	}()

	if err := s.enqueue(ctx, message{Type: msgGetOutput, ID: id}); err != nil {
		return engine.MediaStream{}, err
	}

	select {
	case msg := <-reply:
		if msg.Error != nil {
			return engine.MediaStream{}, fmt.Errorf("get output: %w", msg.Error)
		}
		if msg.Output == nil {
			return engine.MediaStream{}, errors.New("get output: runtime returned no stream")
		}
		return *msg.Output, nil
	case <-ctx.Done():
		return engine.MediaStream{}, ctx.Err()
	case <-s.ctx.Done():
		return engine.MediaStream{}, engine.ErrClosed
	}
}

// SetBeautify replaces any unsent value with values.
func (s *session) SetBeautify(values beauty.Effective) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	v := values
	s.pending = &v
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Close tells the runtime to stop and closes the socket.
func (s *session) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.pending = nil
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := wsjson.Write(ctx, s.conn, message{Type: msgClose}); err != nil {
			s.logger.Debug("close message not delivered", logging.Error(err))
		}
		if err := s.conn.Close(websocket.StatusNormalClosure, "session closed"); err != nil {
			s.logger.Debug("websocket close", logging.Error(err))
		}
		s.cancel()
	})
	return nil
}

func (s *session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *session) enqueue(ctx context.Context, msg message) error {
	select {
	case s.ctrl <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return engine.ErrClosed
	}
}

func (s *session) emit(ev engine.Event) {
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}

func (s *session) readLoop() {
	defer close(s.events)
	for {
		var msg message
		if err := wsjson.Read(s.ctx, s.conn, &msg); err != nil {
			if !s.isClosed() && s.ctx.Err() == nil {
				s.emit(engine.Event{Kind: engine.EventError, Err: &engine.Error{
					Name:    "ConnectionError",
					Message: fmt.Sprintf("effect runtime connection lost: %v", err),
				}})
			}
			s.cancel()
			return
		}

		switch msg.Type {
		case msgCreated:
			s.emit(engine.Event{Kind: engine.EventCreated})
		case msgReady:
			s.emit(engine.Event{Kind: engine.EventReady})
		case msgError:
			engErr := msg.Error
			if engErr == nil {
				engErr = &engine.Error{Message: "unspecified runtime error"}
			}
			if msg.ID != "" && s.deliver(msg) {
				continue
			}
			s.emit(engine.Event{Kind: engine.EventError, Err: engErr})
		case msgAuthRequest:
			s.answerAuth(msg.ID)
		case msgOutput:
			if !s.deliver(msg) {
				s.logger.Debug("dropping unsolicited output", logging.String("id", msg.ID))
			}
		default:
			s.logger.Debug("ignoring unknown runtime message", logging.String("type", msg.Type))
		}
	}
}

func (s *session) deliver(msg message) bool {
	s.mu.Lock()
	reply, ok := s.waiters[msg.ID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case reply <- msg:
	default:
	}
	return true
}

func (s *session) answerAuth(id string) {
	if s.signer == nil {
		logging.WarnWithContext(s.logger, "runtime requested authentication but no signer is configured", "engine_auth_unavailable",
			logging.String(logging.FieldImpact, "runtime will reject the session"),
		)
		return
	}
	sig := s.signer()
	if err := s.enqueue(s.ctx, message{Type: msgAuth, ID: id, Signature: &sig}); err != nil {
		s.logger.Debug("auth reply dropped", logging.Error(err))
	}
}

func (s *session) writeLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.ctrl:
			s.write(msg)
		case <-s.wake:
			s.mu.Lock()
			values := s.pending
			s.pending = nil
			s.mu.Unlock()
			if values != nil {
				s.write(message{Type: msgSetBeautify, Beautify: values})
			}
		}
	}
}

func (s *session) write(msg message) {
	if err := wsjson.Write(s.ctx, s.conn, msg); err != nil && s.ctx.Err() == nil {
		logging.WarnWithContext(s.logger, "effect runtime write failed", "engine_write_failed",
			logging.Error(err),
			logging.String("type", msg.Type),
			logging.String(logging.FieldImpact, "runtime may miss the latest update"),
		)
	}
}
