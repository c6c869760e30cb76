package wsengine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"qween/internal/engine"
	"qween/internal/logging"
)

const defaultHandshakeTimeout = 30 * time.Second

// Engine dials a new websocket per session.
type Engine struct {
	url              string
	handshakeTimeout time.Duration
	logger           *slog.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithHandshakeTimeout bounds the dial and the create message.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.handshakeTimeout = d
		}
	}
}

// New returns an Engine for the runtime at url.
func New(url string, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		url:              strings.TrimSpace(url),
		handshakeTimeout: defaultHandshakeTimeout,
		logger:           logging.NewComponentLogger(logger, "wsengine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create dials the runtime and asks it to start a session.
func (e *Engine) Create(ctx context.Context, cfg engine.Config) (engine.Session, error) {
	dialCtx, cancel := context.WithTimeout(ctx, e.handshakeTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, e.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial effect runtime: %w", err)
	}
	conn.SetReadLimit(1 << 20)

	if err := wsjson.Write(dialCtx, conn, createMessage(cfg)); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "create failed")
		return nil, fmt.Errorf("send create: %w", err)
	}

	e.logger.Debug("effect runtime session requested",
		logging.String("url", e.url),
		logging.Int("width", cfg.Camera.Width),
		logging.Int("height", cfg.Camera.Height),
	)

	s := newSession(conn, cfg.Auth, e.logger)
	s.start()
	return s, nil
}
